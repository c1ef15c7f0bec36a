package gsheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.alis.build/gsheets/grid"
	"google.golang.org/api/googleapi"
	sheets "google.golang.org/api/sheets/v4"
)

// failures queues errors returned by the next calls of a method.
type failures map[string][]error

func (f failures) pop(method string) error {
	q := f[method]
	if len(q) == 0 {
		return nil
	}
	f[method] = q[1:]
	return q[0]
}

func apiError(op string, code int, msg string) error {
	return remoteError(op, &googleapi.Error{Code: code, Message: msg})
}

type fakeSheet struct {
	id      int64
	title   string
	index   int64
	rows    int64
	cols    int64
	cells   map[grid.CellIndex]string
	formats map[grid.CellIndex]*sheets.CellFormat
}

func (s *fakeSheet) extent() grid.CellIndex {
	var ext grid.CellIndex
	for c := range s.cells {
		ext.Col = max(ext.Col, c.Col)
		ext.Row = max(ext.Row, c.Row)
	}
	return ext
}

// bounds resolves the unset components of r against the populated extent.
func (s *fakeSheet) bounds(r grid.Region) grid.Region {
	ext := s.extent()
	if r.Start.Col == 0 {
		r.Start.Col = 1
	}
	if r.Start.Row == 0 {
		r.Start.Row = 1
	}
	if r.End.Col == 0 {
		r.End.Col = ext.Col
	}
	if r.End.Row == 0 {
		r.End.Row = ext.Row
	}
	return r
}

type fakeSpreadsheet struct {
	id     string
	title  string
	sheets []*fakeSheet
	nextID int64
}

func (ss *fakeSpreadsheet) addSheet(title string, rows, cols int64) *fakeSheet {
	sh := &fakeSheet{
		id: ss.nextID, title: title, index: int64(len(ss.sheets)), rows: rows, cols: cols,
		cells: map[grid.CellIndex]string{}, formats: map[grid.CellIndex]*sheets.CellFormat{},
	}
	ss.nextID++
	ss.sheets = append(ss.sheets, sh)
	return sh
}

func (ss *fakeSpreadsheet) sheet(title string) *fakeSheet {
	for _, sh := range ss.sheets {
		if sh.title == title {
			return sh
		}
	}
	return nil
}

func (ss *fakeSpreadsheet) sheetByID(id int64) *fakeSheet {
	for _, sh := range ss.sheets {
		if sh.id == id {
			return sh
		}
	}
	return nil
}

func (ss *fakeSpreadsheet) reindex() {
	for i, sh := range ss.sheets {
		sh.index = int64(i)
	}
}

// move places sh at tab position index.
func (ss *fakeSpreadsheet) move(sh *fakeSheet, index int) {
	rest := make([]*fakeSheet, 0, len(ss.sheets))
	for _, other := range ss.sheets {
		if other != sh {
			rest = append(rest, other)
		}
	}
	index = min(max(index, 0), len(rest))
	ss.sheets = append(rest[:index:index], append([]*fakeSheet{sh}, rest[index:]...)...)
	ss.reindex()
}

func (ss *fakeSpreadsheet) metadata() *sheets.Spreadsheet {
	resp := &sheets.Spreadsheet{SpreadsheetId: ss.id, Properties: &sheets.SpreadsheetProperties{Title: ss.title}}
	for _, sh := range ss.sheets {
		resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{
			SheetId: sh.id, Title: sh.title, Index: sh.index,
			GridProperties: &sheets.GridProperties{RowCount: sh.rows, ColumnCount: sh.cols},
		}})
	}
	return resp
}

type fakeSheets struct {
	spreadsheets map[string]*fakeSpreadsheet
	fail         failures
	calls        map[string]int
	nextKey      int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{spreadsheets: map[string]*fakeSpreadsheet{}, fail: failures{}, calls: map[string]int{}}
}

func (f *fakeSheets) add(title string, sheetTitles ...string) *fakeSpreadsheet {
	f.nextKey++
	ss := &fakeSpreadsheet{id: fmt.Sprintf("key-%d", f.nextKey), title: title}
	if len(sheetTitles) == 0 {
		sheetTitles = []string{"Sheet1"}
	}
	for _, t := range sheetTitles {
		ss.addSheet(t, 1000, 26)
	}
	f.spreadsheets[ss.id] = ss
	return ss
}

func (f *fakeSheets) call(method string) error {
	f.calls[method]++
	return f.fail.pop(method)
}

func (f *fakeSheets) resolve(op, id, rangeLabel string) (*fakeSheet, *grid.Region, error) {
	ss, ok := f.spreadsheets[id]
	if !ok {
		return nil, nil, apiError(op, http.StatusNotFound, "Requested entity was not found.")
	}
	title, label, _ := strings.Cut(rangeLabel, "!")
	title = strings.ReplaceAll(strings.TrimSuffix(strings.TrimPrefix(title, "'"), "'"), "''", "'")
	sh := ss.sheet(title)
	if sh == nil {
		return nil, nil, apiError(op, http.StatusBadRequest, "Unable to parse range: "+rangeLabel)
	}
	if label == "" {
		return sh, nil, nil
	}
	r, err := grid.ParseRegion(label)
	if err != nil {
		return nil, nil, apiError(op, http.StatusBadRequest, err.Error())
	}
	return sh, &r, nil
}

func (f *fakeSheets) GetValues(_ context.Context, id, rangeLabel string) ([][]string, error) {
	if err := f.call("GetValues"); err != nil {
		return nil, err
	}
	sh, r, err := f.resolve("values.get", id, rangeLabel)
	if err != nil {
		return nil, err
	}
	region := sh.bounds(grid.Region{})
	if r != nil {
		region = sh.bounds(*r)
	}
	var values [][]string
	for row := region.Start.Row; row <= region.End.Row; row++ {
		var line []string
		last := -1
		for col := region.Start.Col; col <= region.End.Col; col++ {
			v := sh.cells[grid.Cell(col, row)]
			line = append(line, v)
			if v != "" {
				last = len(line) - 1
			}
		}
		values = append(values, line[:last+1])
	}
	for len(values) > 0 && len(values[len(values)-1]) == 0 {
		values = values[:len(values)-1]
	}
	return values, nil
}

func (f *fakeSheets) UpdateValues(_ context.Context, id, rangeLabel string, values [][]string) error {
	if err := f.call("UpdateValues"); err != nil {
		return err
	}
	sh, r, err := f.resolve("values.update", id, rangeLabel)
	if err != nil {
		return err
	}
	start := grid.Cell(1, 1)
	if r != nil {
		start = sh.bounds(*r).Start
	}
	for i, row := range values {
		for j, v := range row {
			c := grid.Cell(start.Col+j, start.Row+i)
			if v == "" {
				delete(sh.cells, c)
			} else {
				sh.cells[c] = v
			}
		}
	}
	return nil
}

func (f *fakeSheets) BatchClear(_ context.Context, id string, ranges []string) error {
	if err := f.call("BatchClear"); err != nil {
		return err
	}
	for _, rng := range ranges {
		sh, r, err := f.resolve("values.batchClear", id, rng)
		if err != nil {
			return err
		}
		region := sh.bounds(grid.Region{})
		if r != nil {
			region = sh.bounds(*r)
		}
		for c := range sh.cells {
			if region.Contains(c) {
				delete(sh.cells, c)
			}
		}
	}
	return nil
}

func (f *fakeSheets) BatchUpdate(_ context.Context, id string, requests []*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	if err := f.call("BatchUpdate"); err != nil {
		return nil, err
	}
	ss, ok := f.spreadsheets[id]
	if !ok {
		return nil, apiError("spreadsheets.batchUpdate", http.StatusNotFound, "Requested entity was not found.")
	}
	resp := &sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: id}
	for _, req := range requests {
		reply := &sheets.Response{}
		switch {
		case req.AddSheet != nil:
			p := req.AddSheet.Properties
			if ss.sheet(p.Title) != nil {
				return nil, apiError("spreadsheets.batchUpdate", http.StatusBadRequest,
					fmt.Sprintf("Invalid requests[0].addSheet: A sheet with the name %q already exists. Please enter another name.", p.Title))
			}
			sh := ss.addSheet(p.Title, p.GridProperties.RowCount, p.GridProperties.ColumnCount)
			reply.AddSheet = &sheets.AddSheetResponse{Properties: &sheets.SheetProperties{
				SheetId: sh.id, Title: sh.title, Index: sh.index,
				GridProperties: &sheets.GridProperties{RowCount: sh.rows, ColumnCount: sh.cols},
			}}
		case req.DeleteSheet != nil:
			for i, sh := range ss.sheets {
				if sh.id == req.DeleteSheet.SheetId {
					ss.sheets = append(ss.sheets[:i], ss.sheets[i+1:]...)
					break
				}
			}
			ss.reindex()
		case req.UpdateSheetProperties != nil:
			p := req.UpdateSheetProperties.Properties
			sh := ss.sheetByID(p.SheetId)
			fields := req.UpdateSheetProperties.Fields
			if strings.Contains(fields, "index") {
				ss.move(sh, int(p.Index))
			}
			if strings.Contains(fields, "gridProperties.rowCount") {
				sh.rows = p.GridProperties.RowCount
			}
			if strings.Contains(fields, "gridProperties.columnCount") {
				sh.cols = p.GridProperties.ColumnCount
			}
		case req.DeleteDimension != nil:
			d := req.DeleteDimension.Range
			sh := ss.sheetByID(d.SheetId)
			n := int(d.EndIndex - d.StartIndex)
			moved := map[grid.CellIndex]string{}
			for c, v := range sh.cells {
				pos := c.Row
				if d.Dimension == "COLUMNS" {
					pos = c.Col
				}
				switch {
				case pos <= int(d.StartIndex):
					moved[c] = v
				case pos > int(d.EndIndex):
					if d.Dimension == "COLUMNS" {
						c.Col -= n
					} else {
						c.Row -= n
					}
					moved[c] = v
				}
			}
			sh.cells = moved
		case req.RepeatCell != nil:
			gr := req.RepeatCell.Range
			sh := ss.sheetByID(gr.SheetId)
			endRow, endCol := gr.EndRowIndex, gr.EndColumnIndex
			if endRow == 0 {
				endRow = sh.rows
			}
			if endCol == 0 {
				endCol = sh.cols
			}
			for row := gr.StartRowIndex + 1; row <= endRow; row++ {
				for col := gr.StartColumnIndex + 1; col <= endCol; col++ {
					sh.formats[grid.Cell(int(col), int(row))] = req.RepeatCell.Cell.UserEnteredFormat
				}
			}
		}
		resp.Replies = append(resp.Replies, reply)
	}
	return resp, nil
}

func (f *fakeSheets) GetSpreadsheet(_ context.Context, id string, ranges []string, fields string) (*sheets.Spreadsheet, error) {
	if err := f.call("GetSpreadsheet"); err != nil {
		return nil, err
	}
	ss, ok := f.spreadsheets[id]
	if !ok {
		return nil, apiError("spreadsheets.get", http.StatusNotFound, "Requested entity was not found.")
	}
	if fields != formatFields {
		return ss.metadata(), nil
	}
	sh, r, err := f.resolve("spreadsheets.get", id, ranges[0])
	if err != nil {
		return nil, err
	}
	data := &sheets.GridData{}
	for row := r.Start.Row; row <= r.End.Row; row++ {
		rd := &sheets.RowData{}
		for col := r.Start.Col; col <= r.End.Col; col++ {
			rd.Values = append(rd.Values, &sheets.CellData{UserEnteredFormat: sh.formats[grid.Cell(col, row)]})
		}
		data.RowData = append(data.RowData, rd)
	}
	return &sheets.Spreadsheet{SpreadsheetId: ss.id, Sheets: []*sheets.Sheet{{Data: []*sheets.GridData{data}}}}, nil
}

func (f *fakeSheets) CreateSpreadsheet(_ context.Context, title string) (*sheets.Spreadsheet, error) {
	if err := f.call("CreateSpreadsheet"); err != nil {
		return nil, err
	}
	return f.add(title).metadata(), nil
}

type fakeDrive struct {
	sheets      *fakeSheets
	fail        failures
	calls       map[string]int
	deleted     []string
	permissions map[string][]*Permission
	revisions   map[string][]*Revision
	downloads   map[string][]byte
	uploads     map[string][]byte
	nextPerm    int
}

func newFakeDrive(s *fakeSheets) *fakeDrive {
	return &fakeDrive{
		sheets:      s,
		fail:        failures{},
		calls:       map[string]int{},
		permissions: map[string][]*Permission{},
		revisions:   map[string][]*Revision{},
		downloads:   map[string][]byte{},
		uploads:     map[string][]byte{},
	}
}

func (d *fakeDrive) call(method string) error {
	d.calls[method]++
	return d.fail.pop(method)
}

func (d *fakeDrive) FindSpreadsheet(_ context.Context, title string) (string, error) {
	if err := d.call("FindSpreadsheet"); err != nil {
		return "", err
	}
	keys := make([]string, 0, len(d.sheets.spreadsheets))
	for k := range d.sheets.spreadsheets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if d.sheets.spreadsheets[k].title == title {
			return k, nil
		}
	}
	return "", notFound(fmt.Sprintf("spreadsheet %q", title), nil)
}

func (d *fakeDrive) DeleteFile(_ context.Context, fileID string) error {
	if err := d.call("DeleteFile"); err != nil {
		return err
	}
	if _, ok := d.sheets.spreadsheets[fileID]; !ok {
		return apiError("files.delete "+fileID, http.StatusNotFound, "File not found: "+fileID)
	}
	delete(d.sheets.spreadsheets, fileID)
	d.deleted = append(d.deleted, fileID)
	return nil
}

func (d *fakeDrive) CreatePermission(_ context.Context, fileID string, req ShareRequest) (*Permission, error) {
	if err := d.call("CreatePermission"); err != nil {
		return nil, err
	}
	d.nextPerm++
	p := &Permission{ID: fmt.Sprintf("perm-%d", d.nextPerm), Type: req.Type, Role: req.Role, EmailAddress: req.Email}
	d.permissions[fileID] = append(d.permissions[fileID], p)
	return p, nil
}

func (d *fakeDrive) DeletePermission(_ context.Context, fileID, permissionID string) error {
	if err := d.call("DeletePermission"); err != nil {
		return err
	}
	perms := d.permissions[fileID]
	for i, p := range perms {
		if p.ID == permissionID {
			d.permissions[fileID] = append(perms[:i:i], perms[i+1:]...)
			return nil
		}
	}
	return apiError("permissions.delete", http.StatusNotFound, "Permission not found: "+permissionID)
}

func (d *fakeDrive) ListPermissions(_ context.Context, fileID string) ([]*Permission, error) {
	if err := d.call("ListPermissions"); err != nil {
		return nil, err
	}
	return append([]*Permission(nil), d.permissions[fileID]...), nil
}

func (d *fakeDrive) ListRevisions(_ context.Context, fileID string) ([]*Revision, error) {
	if err := d.call("ListRevisions"); err != nil {
		return nil, err
	}
	return append([]*Revision(nil), d.revisions[fileID]...), nil
}

func (d *fakeDrive) Download(_ context.Context, url string) ([]byte, error) {
	if err := d.call("Download"); err != nil {
		return nil, err
	}
	data, ok := d.downloads[url]
	if !ok {
		return nil, apiError("download", http.StatusNotFound, "not found")
	}
	return data, nil
}

func (d *fakeDrive) Upload(_ context.Context, r io.Reader, title, _ string) (string, error) {
	if err := d.call("Upload"); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ss := d.sheets.add(title)
	d.uploads[ss.id] = data
	return ss.id, nil
}

func (d *fakeDrive) addRevision(fileID, id string, mtime time.Time, exports map[string][]byte) {
	rev := &Revision{ID: id, MimeType: mimeSpreadsheet, ModifiedTime: mtime, ExportLinks: map[string]string{}}
	for mime, data := range exports {
		url := fmt.Sprintf("https://export.test/%s/%s?mime=%s", fileID, id, mime)
		rev.ExportLinks[mime] = url
		d.downloads[url] = data
	}
	d.revisions[fileID] = append(d.revisions[fileID], rev)
}
