package gsheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.alis.build/gsheets/retry"
	sheets "google.golang.org/api/sheets/v4"
)

const metadataFields = "spreadsheetId,properties.title,sheets.properties"

type sheetMeta struct {
	id    int64
	title string
	index int
	rows  int64
	cols  int64
}

type spreadsheetMeta struct {
	id     string
	title  string
	sheets []sheetMeta
}

func metaFromAPI(s *sheets.Spreadsheet) *spreadsheetMeta {
	meta := &spreadsheetMeta{id: s.SpreadsheetId}
	if s.Properties != nil {
		meta.title = s.Properties.Title
	}
	for _, sh := range s.Sheets {
		if sh.Properties != nil {
			meta.sheets = append(meta.sheets, sheetMetaFromAPI(sh.Properties))
		}
	}
	sort.SliceStable(meta.sheets, func(i, j int) bool { return meta.sheets[i].index < meta.sheets[j].index })
	return meta
}

func sheetMetaFromAPI(p *sheets.SheetProperties) sheetMeta {
	m := sheetMeta{id: p.SheetId, title: p.Title, index: int(p.Index)}
	if p.GridProperties != nil {
		m.rows, m.cols = p.GridProperties.RowCount, p.GridProperties.ColumnCount
	}
	return m
}

// Spreadsheet is an open spreadsheet with at most one active worksheet.
type Spreadsheet struct {
	client     *Client
	id         string
	title      string
	active     *Worksheet
	worksheets map[int64]*Worksheet
}

// ID returns the spreadsheet key.
func (s *Spreadsheet) ID() string { return s.id }

// Title returns the spreadsheet title.
func (s *Spreadsheet) Title() string { return s.title }

// Active returns the active worksheet, or nil.
func (s *Spreadsheet) Active() *Worksheet { return s.active }

func (s *Spreadsheet) String() string {
	return fmt.Sprintf("<Spreadsheet %q id:%s>", s.title, s.id)
}

// setActive makes w the active worksheet. The outgoing worksheet's snapshot is closed.
func (s *Spreadsheet) setActive(w *Worksheet) {
	if s.active != nil {
		s.active.snapshot.Close()
	}
	s.active = w
}

// sync refreshes the worksheets from metas and returns them in tab order. Worksheets of tabs that
// no longer exist are forgotten.
func (s *Spreadsheet) sync(metas []sheetMeta) []*Worksheet {
	seen := make(map[int64]bool, len(metas))
	res := make([]*Worksheet, 0, len(metas))
	for _, m := range metas {
		seen[m.id] = true
		res = append(res, s.worksheet(m))
	}
	for id, w := range s.worksheets {
		if !seen[id] {
			s.forget(w)
		}
	}
	return res
}

// forget drops w after its tab was deleted.
func (s *Spreadsheet) forget(w *Worksheet) {
	w.snapshot.Close()
	delete(s.worksheets, w.id)
	if s.active == w {
		s.active = nil
	}
}

func (s *Spreadsheet) closeSnapshots() {
	for _, w := range s.worksheets {
		w.snapshot.Close()
	}
}

// Delete deletes the spreadsheet. The Spreadsheet must not be used afterwards.
func (s *Spreadsheet) Delete(ctx context.Context) error {
	s.closeSnapshots()
	err := s.client.driveExec.Execute(ctx, func(ctx context.Context) error {
		return s.client.drive.DeleteFile(ctx, s.id)
	})
	if err != nil {
		return fmt.Errorf("delete %v: %w", s, err)
	}
	s.client.log.Infof(ctx, "deleted %v", s)
	s.sync(nil)
	s.client.forget(s)
	return nil
}

// Worksheets lists the worksheets in tab order. Every call returns the same *Worksheet for a tab.
func (s *Spreadsheet) Worksheets(ctx context.Context) ([]*Worksheet, error) {
	meta, err := s.client.fetchMeta(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("list worksheets of %v: %w", s, err)
	}
	s.title = meta.title
	return s.sync(meta.sheets), nil
}

// WorksheetSelector identifies a worksheet by exactly one of its title, ID or tab index. The zero
// value selects the first tab.
type WorksheetSelector struct {
	// Title is matched case-insensitively, ignoring surrounding spaces.
	Title string
	ID    *int64
	Index *int
}

// ByTitle selects a worksheet by title.
func ByTitle(title string) WorksheetSelector { return WorksheetSelector{Title: title} }

// ByID selects a worksheet by sheet ID.
func ByID(id int64) WorksheetSelector { return WorksheetSelector{ID: &id} }

// ByIndex selects a worksheet by its zero-based tab position.
func ByIndex(i int) WorksheetSelector { return WorksheetSelector{Index: &i} }

func (sel WorksheetSelector) match(w *Worksheet, pos int) bool {
	switch {
	case sel.Title != "":
		return strings.EqualFold(strings.TrimSpace(w.title), strings.TrimSpace(sel.Title))
	case sel.ID != nil:
		return w.id == *sel.ID
	case sel.Index != nil:
		return pos == *sel.Index
	}
	return pos == 0
}

func (sel WorksheetSelector) String() string {
	switch {
	case sel.Title != "":
		return fmt.Sprintf("title %q", sel.Title)
	case sel.ID != nil:
		return fmt.Sprintf("id %d", *sel.ID)
	case sel.Index != nil:
		return fmt.Sprintf("index %d", *sel.Index)
	}
	return "index 0"
}

// Select makes the selected worksheet active.
func (s *Spreadsheet) Select(ctx context.Context, sel WorksheetSelector) (*Worksheet, error) {
	all, err := s.Worksheets(ctx)
	if err != nil {
		return nil, err
	}
	for i, w := range all {
		if sel.match(w, i) {
			s.setActive(w)
			s.client.log.Debugf(ctx, "selected %v", w)
			return w, nil
		}
	}
	return nil, notFound(fmt.Sprintf("worksheet %v in %v", sel, s), nil)
}

// AddWorksheetRequest describes a new worksheet. Zero Rows and Cols default to 56 and 26.
type AddWorksheetRequest struct {
	Title string
	Rows  int64
	Cols  int64
	// Index is the zero-based tab position; nil appends.
	Index *int
	// FailIfExists returns ErrAlreadyExists for a taken title instead of selecting that worksheet.
	FailIfExists bool
}

// AddWorksheet adds a worksheet and makes it active.
func (s *Spreadsheet) AddWorksheet(ctx context.Context, req AddWorksheetRequest) (*Worksheet, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: worksheet title is required", ErrInvalidArgument)
	}
	if req.Rows == 0 {
		req.Rows = 56
	}
	if req.Cols == 0 {
		req.Cols = 26
	}
	props := &sheets.SheetProperties{
		Title:          req.Title,
		GridProperties: &sheets.GridProperties{RowCount: req.Rows, ColumnCount: req.Cols},
	}
	if req.Index != nil {
		props.Index = int64(*req.Index)
		props.ForceSendFields = []string{"Index"}
	}
	if s.active != nil {
		s.active.snapshot.Close()
	}

	resp, err := s.client.batchUpdate(ctx, s.id, &sheets.Request{AddSheet: &sheets.AddSheetRequest{Properties: props}})
	switch {
	case err == nil:
	case isDuplicateSheet(err) && req.FailIfExists:
		return nil, fmt.Errorf("%w: worksheet %q in %v", ErrAlreadyExists, req.Title, s)
	case isDuplicateSheet(err):
		s.client.log.Debugf(ctx, "worksheet %q exists, selecting it", req.Title)
		return s.Select(ctx, ByTitle(req.Title))
	default:
		return nil, fmt.Errorf("add worksheet %q to %v: %w", req.Title, s, err)
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return nil, fmt.Errorf("add worksheet %q to %v: empty reply", req.Title, s)
	}
	w := s.worksheet(sheetMetaFromAPI(resp.Replies[0].AddSheet.Properties))
	s.setActive(w)
	s.client.log.Infof(ctx, "created %v", w)
	return w, nil
}

// DeleteWorksheet deletes the active worksheet. No worksheet is active afterwards.
func (s *Spreadsheet) DeleteWorksheet(ctx context.Context) error {
	w := s.active
	if w == nil {
		return ErrNoWorksheet
	}
	w.snapshot.Close()
	_, err := s.client.batchUpdate(ctx, s.id, &sheets.Request{
		DeleteSheet: &sheets.DeleteSheetRequest{SheetId: w.id, ForceSendFields: []string{"SheetId"}},
	})
	if err != nil {
		return fmt.Errorf("delete %v: %w", w, err)
	}
	s.client.log.Infof(ctx, "deleted %v", w)
	s.forget(w)
	return nil
}

// Reorder moves the given worksheets to the tab positions of their order in the slice.
func (s *Spreadsheet) Reorder(ctx context.Context, order []*Worksheet) error {
	if len(order) == 0 {
		return nil
	}
	requests := make([]*sheets.Request, len(order))
	for i, w := range order {
		requests[i] = &sheets.Request{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:         w.id,
				Index:           int64(i),
				ForceSendFields: []string{"SheetId", "Index"},
			},
			Fields: "index",
		}}
	}
	if _, err := s.client.batchUpdate(ctx, s.id, requests...); err != nil {
		return fmt.Errorf("reorder worksheets of %v: %w", s, err)
	}
	for i, w := range order {
		w.index = i
	}
	s.client.log.Infof(ctx, "reordered %d worksheets of %v", len(order), s)
	return nil
}

// ShareRequest grants a permission on a spreadsheet.
type ShareRequest struct {
	// Email is the user or group address, or the domain name for Type "domain".
	Email string
	// Type is one of "user", "group", "domain" or "anyone".
	Type string
	// Role is one of "owner", "writer", "commenter" or "reader". "owner" transfers ownership.
	Role    string
	Notify  bool
	Message string
	// WithLink makes "domain" and "anyone" permissions reachable by link only.
	WithLink bool
}

func (r ShareRequest) validate() error {
	switch r.Type {
	case "user", "group", "domain":
		if r.Email == "" {
			return fmt.Errorf("%w: permission type %q requires an email or domain", ErrInvalidArgument, r.Type)
		}
	case "anyone":
	default:
		return fmt.Errorf("%w: permission type %q", ErrInvalidArgument, r.Type)
	}
	switch r.Role {
	case "owner", "writer", "commenter", "reader":
	default:
		return fmt.Errorf("%w: permission role %q", ErrInvalidArgument, r.Role)
	}
	return nil
}

// Share grants a permission on the spreadsheet.
func (s *Spreadsheet) Share(ctx context.Context, req ShareRequest) (*Permission, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	p, err := retry.Do(ctx, s.client.driveExec, func(ctx context.Context) (*Permission, error) {
		return s.client.drive.CreatePermission(ctx, s.id, req)
	})
	if err != nil {
		return nil, fmt.Errorf("share %v with %s: %w", s, req.Email, err)
	}
	s.client.log.Infof(ctx, "shared %v with %s %s as %s", s, req.Type, req.Email, req.Role)
	return p, nil
}

// Unshare removes the permissions of email. An empty role, or "any", removes every role.
func (s *Spreadsheet) Unshare(ctx context.Context, email, role string) error {
	if email == "" {
		return fmt.Errorf("%w: unshare requires an email or domain", ErrInvalidArgument)
	}
	perms, err := s.Permissions(ctx)
	if err != nil {
		return err
	}
	for _, p := range perms {
		if !strings.EqualFold(p.EmailAddress, email) && !strings.EqualFold(p.Domain, email) {
			continue
		}
		if role != "" && role != "any" && p.Role != role {
			continue
		}
		err := s.client.driveExec.Execute(ctx, func(ctx context.Context) error {
			return s.client.drive.DeletePermission(ctx, s.id, p.ID)
		})
		if err != nil {
			return fmt.Errorf("unshare %v from %s: %w", s, email, err)
		}
		s.client.log.Infof(ctx, "removed %s permission of %s on %v", p.Role, email, s)
	}
	return nil
}

// Permissions lists the permissions on the spreadsheet.
func (s *Spreadsheet) Permissions(ctx context.Context) ([]*Permission, error) {
	perms, err := retry.Do(ctx, s.client.driveExec, func(ctx context.Context) ([]*Permission, error) {
		return s.client.drive.ListPermissions(ctx, s.id)
	})
	if err != nil {
		return nil, fmt.Errorf("list permissions of %v: %w", s, err)
	}
	return perms, nil
}

// Revisions lists the revisions of the spreadsheet, oldest first.
func (s *Spreadsheet) Revisions(ctx context.Context) ([]*Revision, error) {
	revs, err := retry.Do(ctx, s.client.driveExec, func(ctx context.Context) ([]*Revision, error) {
		return s.client.drive.ListRevisions(ctx, s.id)
	})
	if err != nil {
		return nil, fmt.Errorf("list revisions of %v: %w", s, err)
	}
	sort.SliceStable(revs, func(i, j int) bool { return revs[i].ModifiedTime.Before(revs[j].ModifiedTime) })
	return revs, nil
}

// Revision returns the revision with the given ID. An empty ID or "head" returns the latest.
func (s *Spreadsheet) Revision(ctx context.Context, id string) (*Revision, error) {
	revs, err := s.Revisions(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" || id == "head" {
		if len(revs) == 0 {
			return nil, notFound(fmt.Sprintf("revisions of %v", s), nil)
		}
		return revs[len(revs)-1], nil
	}
	for _, r := range revs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, notFound(fmt.Sprintf("revision %s of %v", id, s), nil)
}

// Export writes a revision of the spreadsheet to w in the given MIME type, see the Mime constants.
func (s *Spreadsheet) Export(ctx context.Context, w io.Writer, revisionID, mimeType string) (int64, error) {
	rev, err := s.Revision(ctx, revisionID)
	if err != nil {
		return 0, err
	}
	link, ok := rev.ExportLinks[mimeType]
	if !ok {
		return 0, fmt.Errorf("%w: revision %s of %v cannot be exported as %s", ErrInvalidArgument, rev.ID, s, mimeType)
	}
	data, err := retry.Do(ctx, s.client.driveExec, func(ctx context.Context) ([]byte, error) {
		return s.client.drive.Download(ctx, link)
	})
	if err != nil {
		return 0, fmt.Errorf("export revision %s of %v: %w", rev.ID, s, err)
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), err
	}
	s.client.log.Infof(ctx, "exported revision %s of %v as %s (%d bytes)", rev.ID, s, mimeType, n)
	return int64(n), nil
}

// RevisionValues returns the cell values of one worksheet at a past revision. An empty sheetTitle
// reads the active worksheet, or the first tab when none is active.
func (s *Spreadsheet) RevisionValues(ctx context.Context, revisionID, sheetTitle string) ([][]string, error) {
	var buf bytes.Buffer
	if _, err := s.Export(ctx, &buf, revisionID, MimeXLSX); err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		return nil, fmt.Errorf("read revision %s of %v: %w", revisionID, s, err)
	}
	defer f.Close()

	if sheetTitle == "" && s.active != nil {
		sheetTitle = s.active.title
	}
	if sheetTitle == "" {
		sheetTitle = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetTitle)
	if err != nil {
		var missing excelize.ErrSheetNotExist
		if errors.As(err, &missing) {
			return nil, notFound(fmt.Sprintf("worksheet %q in revision %s of %v", sheetTitle, revisionID, s), nil)
		}
		return nil, fmt.Errorf("read revision %s of %v: %w", revisionID, s, err)
	}
	return rows, nil
}

func (c *Client) batchUpdate(ctx context.Context, spreadsheetID string, requests ...*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	return retry.Do(ctx, c.exec, func(ctx context.Context) (*sheets.BatchUpdateSpreadsheetResponse, error) {
		return c.sheets.BatchUpdate(ctx, spreadsheetID, requests)
	})
}
