package gsheets

import (
	"context"
	"fmt"
	"strings"

	"go.alis.build/gsheets/cellformat"
	"go.alis.build/gsheets/grid"
	"go.alis.build/gsheets/retry"
	sheets "google.golang.org/api/sheets/v4"
)

const formatFields = "sheets.data.rowData.values.userEnteredFormat"

// Worksheet is one tab of a spreadsheet. It owns the grid snapshot used by FindRegions.
type Worksheet struct {
	sheetMeta
	ss       *Spreadsheet
	snapshot *grid.Snapshot
	// searchRegion bounds the fetch that populates the snapshot; nil fetches the whole sheet.
	searchRegion *grid.Region
	pending      []pendingFormat
}

type pendingFormat struct {
	region grid.Region
	format *cellformat.CellFormat
}

// worksheet returns the Worksheet of the tab m.id, creating it on first use, and refreshes its
// metadata. A tab has one Worksheet, and so one snapshot, per Spreadsheet.
func (s *Spreadsheet) worksheet(m sheetMeta) *Worksheet {
	w, ok := s.worksheets[m.id]
	if !ok {
		w = &Worksheet{ss: s, snapshot: grid.NewSnapshot()}
		s.worksheets[m.id] = w
	}
	w.sheetMeta = m
	return w
}

// ID returns the sheet ID.
func (w *Worksheet) ID() int64 { return w.id }

// Title returns the worksheet title.
func (w *Worksheet) Title() string { return w.title }

// Index returns the zero-based tab position.
func (w *Worksheet) Index() int { return w.index }

// RowCount returns the number of rows of the grid.
func (w *Worksheet) RowCount() int64 { return w.rows }

// ColumnCount returns the number of columns of the grid.
func (w *Worksheet) ColumnCount() int64 { return w.cols }

// Snapshot gives read access to the cached grid.
func (w *Worksheet) Snapshot() *grid.Snapshot { return w.snapshot }

func (w *Worksheet) String() string {
	return fmt.Sprintf("<Worksheet %q id:%d>", w.title, w.id)
}

// RegionLabel returns the A1 label of a region, for example "B2:D4", for display. It returns "" for
// regions outside the A1 coordinate range; use Region.Label when the error matters. Range labels
// sent to the API are built with Region.Label and never from RegionLabel.
func RegionLabel(r grid.Region) string {
	l, err := r.Label()
	if err != nil {
		return ""
	}
	return l
}

func (w *Worksheet) rangeOf(r grid.Region) (string, error) {
	l, err := r.Label()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return sheetRange(w.title, l), nil
}

func (w *Worksheet) getValues(ctx context.Context, rangeLabel string) ([][]string, error) {
	c := w.ss.client
	return retry.Do(ctx, c.exec, func(ctx context.Context) ([][]string, error) {
		return c.sheets.GetValues(ctx, w.ss.id, rangeLabel)
	})
}

// Values returns the values of region, or of every populated cell when region is nil. Rows are
// ragged: trailing blanks are not returned.
func (w *Worksheet) Values(ctx context.Context, region *grid.Region) ([][]string, error) {
	rng := sheetRange(w.title, "")
	if region != nil {
		var err error
		if rng, err = w.rangeOf(*region); err != nil {
			return nil, err
		}
	}
	values, err := w.getValues(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("get values %s: %w", rng, err)
	}
	return values, nil
}

// ColumnValues returns the values of column col, starting at row 1.
func (w *Worksheet) ColumnValues(ctx context.Context, col int) ([]string, error) {
	r := grid.Region{Start: grid.Cell(col, 0), End: grid.Cell(col, 0)}
	values, err := w.Values(ctx, &r)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(values))
	for i, row := range values {
		if len(row) > 0 {
			res[i] = row[0]
		}
	}
	return res, nil
}

// RowValues returns the values of row row, starting at column 1.
func (w *Worksheet) RowValues(ctx context.Context, row int) ([]string, error) {
	r := grid.Region{Start: grid.Cell(0, row), End: grid.Cell(0, row)}
	values, err := w.Values(ctx, &r)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

func (w *Worksheet) updateValues(ctx context.Context, rng string, values [][]string) error {
	w.snapshot.Close()
	c := w.ss.client
	err := c.exec.Execute(ctx, func(ctx context.Context) error {
		return c.sheets.UpdateValues(ctx, w.ss.id, rng, values)
	})
	if err != nil {
		return fmt.Errorf("update values %s: %w", rng, err)
	}
	c.log.Debugf(ctx, "updated %s", rng)
	return nil
}

// UpdateCell writes value into cell.
func (w *Worksheet) UpdateCell(ctx context.Context, cell grid.CellIndex, value string) error {
	if !cell.IsSet() {
		return fmt.Errorf("%w: cell %v", ErrInvalidArgument, cell)
	}
	rng, err := w.rangeOf(grid.SingleCell(cell))
	if err != nil {
		return err
	}
	return w.updateValues(ctx, rng, [][]string{{value}})
}

// UpdateCells writes the row-major matrix values with its top-left corner at origin. With transpose
// the matrix is written column-major instead.
func (w *Worksheet) UpdateCells(ctx context.Context, origin grid.CellIndex, values [][]string, transpose bool) error {
	if !origin.IsSet() {
		return fmt.Errorf("%w: origin %v", ErrInvalidArgument, origin)
	}
	if transpose {
		values = transposeValues(values)
	}
	width := 0
	for _, row := range values {
		width = max(width, len(row))
	}
	if len(values) == 0 || width == 0 {
		return nil
	}
	r := grid.Region{Start: origin, End: grid.Cell(origin.Col+width-1, origin.Row+len(values)-1)}
	rng, err := w.rangeOf(r)
	if err != nil {
		return err
	}
	return w.updateValues(ctx, rng, values)
}

// UpdateRegion writes values into region.
func (w *Worksheet) UpdateRegion(ctx context.Context, region grid.Region, values [][]string) error {
	rng, err := w.rangeOf(region)
	if err != nil {
		return err
	}
	return w.updateValues(ctx, rng, values)
}

// Clear clears the values of the given regions in one call.
func (w *Worksheet) Clear(ctx context.Context, regions ...grid.Region) error {
	if len(regions) == 0 {
		return nil
	}
	ranges := make([]string, len(regions))
	for i, r := range regions {
		rng, err := w.rangeOf(r)
		if err != nil {
			return err
		}
		ranges[i] = rng
	}
	w.snapshot.Close()
	c := w.ss.client
	err := c.exec.Execute(ctx, func(ctx context.Context) error {
		return c.sheets.BatchClear(ctx, w.ss.id, ranges)
	})
	if err != nil {
		return fmt.Errorf("clear %s: %w", strings.Join(ranges, ","), err)
	}
	c.log.Debugf(ctx, "cleared %s", strings.Join(ranges, ","))
	return nil
}

// DeleteRows deletes rows start to end inclusive, one-based. A zero end deletes row start only.
func (w *Worksheet) DeleteRows(ctx context.Context, start, end int) error {
	return w.deleteDimension(ctx, "ROWS", start, end)
}

// DeleteColumns deletes columns start to end inclusive, one-based. A zero end deletes column start
// only.
func (w *Worksheet) DeleteColumns(ctx context.Context, start, end int) error {
	return w.deleteDimension(ctx, "COLUMNS", start, end)
}

func (w *Worksheet) deleteDimension(ctx context.Context, dimension string, start, end int) error {
	if end == 0 {
		end = start
	}
	if start < 1 || end < start {
		return fmt.Errorf("%w: delete %s %d to %d", ErrInvalidArgument, strings.ToLower(dimension), start, end)
	}
	w.snapshot.Close()
	_, err := w.ss.client.batchUpdate(ctx, w.ss.id, &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{Range: &sheets.DimensionRange{
			SheetId:         w.id,
			Dimension:       dimension,
			StartIndex:      int64(start - 1),
			EndIndex:        int64(end),
			ForceSendFields: []string{"SheetId", "StartIndex"},
		}},
	})
	if err != nil {
		return fmt.Errorf("delete %s %d to %d of %v: %w", strings.ToLower(dimension), start, end, w, err)
	}
	n := int64(end - start + 1)
	if dimension == "ROWS" {
		w.rows -= n
	} else {
		w.cols -= n
	}
	w.ss.client.log.Debugf(ctx, "deleted %s %d to %d of %v", strings.ToLower(dimension), start, end, w)
	return nil
}

// Resize sets the grid size. A zero cols or rows keeps that dimension.
func (w *Worksheet) Resize(ctx context.Context, cols, rows int64) error {
	var fields []string
	gp := &sheets.GridProperties{}
	if cols > 0 {
		gp.ColumnCount = cols
		fields = append(fields, "gridProperties.columnCount")
	}
	if rows > 0 {
		gp.RowCount = rows
		fields = append(fields, "gridProperties.rowCount")
	}
	if len(fields) == 0 {
		return nil
	}
	w.snapshot.Close()
	_, err := w.ss.client.batchUpdate(ctx, w.ss.id, &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{SheetId: w.id, GridProperties: gp, ForceSendFields: []string{"SheetId"}},
			Fields:     strings.Join(fields, ","),
		},
	})
	if err != nil {
		return fmt.Errorf("resize %v: %w", w, err)
	}
	if cols > 0 {
		w.cols = cols
	}
	if rows > 0 {
		w.rows = rows
	}
	w.ss.client.log.Infof(ctx, "%v col_count=%d row_count=%d", w, w.cols, w.rows)
	return nil
}

// SetSearchRegion bounds the fetch behind FindRegions to region. A nil region searches the whole
// sheet. The snapshot is closed either way.
func (w *Worksheet) SetSearchRegion(region *grid.Region) error {
	if region != nil {
		if err := region.Validate(); err != nil {
			return err
		}
		r := *region
		region = &r
	}
	w.searchRegion = region
	w.snapshot.Close()
	return nil
}

// refresh populates the snapshot if it is expired.
func (w *Worksheet) refresh(ctx context.Context) error {
	if !w.snapshot.Expired() {
		return nil
	}
	rng, origin := sheetRange(w.title, ""), grid.Cell(1, 1)
	if w.searchRegion != nil {
		var err error
		if rng, err = w.rangeOf(*w.searchRegion); err != nil {
			return err
		}
		origin = w.searchRegion.Start
	}
	values, err := w.getValues(ctx, rng)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rng, err)
	}
	w.snapshot.Store(values, origin)
	w.ss.client.log.Debugf(ctx, "cached %d cells of %s", w.snapshot.Len(), rng)
	return nil
}

// FindRegions returns the regions of contiguous cells matching terms along dir, shortest first. The
// last region is usually the intended match. Terms match whole tokens, case-insensitively; a final
// empty term also matches blank cells. No non-empty term yields no regions.
func (w *Worksheet) FindRegions(ctx context.Context, terms []string, dir grid.Direction) ([]grid.Region, error) {
	if err := w.refresh(ctx); err != nil {
		return nil, err
	}
	regions := grid.Find(w.snapshot, terms, dir)
	w.ss.client.log.Debugf(ctx, "find %q along %v in %v: %d regions", terms, dir, w, len(regions))
	return regions, nil
}

func (w *Worksheet) fetchFormats(ctx context.Context, rng string) ([][]*cellformat.CellFormat, error) {
	c := w.ss.client
	resp, err := retry.Do(ctx, c.exec, func(ctx context.Context) (*sheets.Spreadsheet, error) {
		return c.sheets.GetSpreadsheet(ctx, w.ss.id, []string{rng}, formatFields)
	})
	if err != nil {
		return nil, fmt.Errorf("get formats %s: %w", rng, err)
	}
	var res [][]*cellformat.CellFormat
	for _, sh := range resp.Sheets {
		for _, data := range sh.Data {
			for _, row := range data.RowData {
				formats := make([]*cellformat.CellFormat, len(row.Values))
				for i, v := range row.Values {
					formats[i] = cellformat.FromAPI(v.UserEnteredFormat)
				}
				res = append(res, formats)
			}
		}
	}
	return res, nil
}

// CellFormat returns the user-entered format of cell. An unformatted cell yields an empty format.
func (w *Worksheet) CellFormat(ctx context.Context, cell grid.CellIndex) (*cellformat.CellFormat, error) {
	rng, err := w.rangeOf(grid.SingleCell(cell))
	if err != nil {
		return nil, err
	}
	formats, err := w.fetchFormats(ctx, rng)
	if err != nil {
		return nil, err
	}
	if len(formats) == 0 || len(formats[0]) == 0 || formats[0][0] == nil {
		return &cellformat.CellFormat{}, nil
	}
	return formats[0][0], nil
}

// CellFormats returns the user-entered formats of region, row-major. Unformatted cells are nil.
func (w *Worksheet) CellFormats(ctx context.Context, region grid.Region) ([][]*cellformat.CellFormat, error) {
	rng, err := w.rangeOf(region)
	if err != nil {
		return nil, err
	}
	return w.fetchFormats(ctx, rng)
}

// PrepareFormat queues format for region until ApplyFormats. Unset components of region are open
// ended, so a column-only region formats whole columns.
func (w *Worksheet) PrepareFormat(region grid.Region, format *cellformat.CellFormat) error {
	if err := region.Validate(); err != nil {
		return err
	}
	if format.IsZero() {
		return fmt.Errorf("%w: empty format", ErrInvalidArgument)
	}
	w.pending = append(w.pending, pendingFormat{region: region, format: format})
	return nil
}

// CancelFormats drops the queued formats.
func (w *Worksheet) CancelFormats() {
	w.pending = nil
}

// PendingFormats returns the number of queued formats.
func (w *Worksheet) PendingFormats() int {
	return len(w.pending)
}

// ApplyFormats sends the queued formats in one batch update and clears the queue. Formatting leaves
// cell values, and so the snapshot, untouched.
func (w *Worksheet) ApplyFormats(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	requests := make([]*sheets.Request, len(w.pending))
	for i, p := range w.pending {
		requests[i] = &sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
			Range:  w.gridRange(p.region),
			Cell:   &sheets.CellData{UserEnteredFormat: p.format.ToAPI()},
			Fields: strings.Join(p.format.FieldMask(), ","),
		}}
	}
	if _, err := w.ss.client.batchUpdate(ctx, w.ss.id, requests...); err != nil {
		return fmt.Errorf("apply %d formats to %v: %w", len(requests), w, err)
	}
	w.ss.client.log.Debugf(ctx, "applied %d formats to %v", len(requests), w)
	w.pending = nil
	return nil
}

func (w *Worksheet) gridRange(r grid.Region) *sheets.GridRange {
	gr := &sheets.GridRange{SheetId: w.id, ForceSendFields: []string{"SheetId"}}
	if r.Start.Row > 0 {
		gr.StartRowIndex = int64(r.Start.Row - 1)
	}
	if r.End.Row > 0 {
		gr.EndRowIndex = int64(r.End.Row)
	}
	if r.Start.Col > 0 {
		gr.StartColumnIndex = int64(r.Start.Col - 1)
	}
	if r.End.Col > 0 {
		gr.EndColumnIndex = int64(r.End.Col)
	}
	return gr
}

func transposeValues(values [][]string) [][]string {
	width := 0
	for _, row := range values {
		width = max(width, len(row))
	}
	out := make([][]string, width)
	for c := range out {
		out[c] = make([]string, len(values))
		for r, row := range values {
			if c < len(row) {
				out[c][r] = row[c]
			}
		}
	}
	return out
}
