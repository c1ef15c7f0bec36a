package grid

// Snapshot is a read-only copy of a worksheet's values anchored at an origin cell.
//
// A new Snapshot is expired. Store populates it; Close empties it and marks it expired again. A
// Snapshot belongs to a single worksheet and is not safe for concurrent use.
type Snapshot struct {
	origin  CellIndex
	rows    [][]CachedCell
	count   int
	expired bool
}

// NewSnapshot returns an empty, expired Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{expired: true}
}

// Expired reports whether no successful Store happened since creation or the last Close.
func (s *Snapshot) Expired() bool {
	return s.expired
}

// Store replaces the content with values, whose first element is placed at origin. Unset origin
// components default to 1. Rows may have different lengths.
func (s *Snapshot) Store(values [][]string, origin CellIndex) {
	if origin.Col < 1 {
		origin.Col = 1
	}
	if origin.Row < 1 {
		origin.Row = 1
	}
	rows := make([][]CachedCell, len(values))
	count := 0
	for r, row := range values {
		cells := make([]CachedCell, len(row))
		for c, v := range row {
			cells[c] = NewCachedCell(origin.Col+c, origin.Row+r, v)
		}
		rows[r] = cells
		count += len(cells)
	}
	s.origin = origin
	s.rows = rows
	s.count = count
	s.expired = false
}

// Close empties the snapshot and marks it expired.
func (s *Snapshot) Close() {
	s.origin = CellIndex{}
	s.rows = nil
	s.count = 0
	s.expired = true
}

// Origin returns the cell the first stored value was placed at.
func (s *Snapshot) Origin() CellIndex {
	return s.origin
}

// Len returns the number of cached cells.
func (s *Snapshot) Len() int {
	return s.count
}

// Rows returns the cached cells, row by row. The slices must not be modified.
func (s *Snapshot) Rows() [][]CachedCell {
	return s.rows
}

// Cells returns every cached cell in row-major order.
func (s *Snapshot) Cells() []CachedCell {
	cells := make([]CachedCell, 0, s.count)
	for _, row := range s.rows {
		cells = append(cells, row...)
	}
	return cells
}

// Value returns the cached value at c.
func (s *Snapshot) Value(c CellIndex) (string, bool) {
	r, col := c.Row-s.origin.Row, c.Col-s.origin.Col
	if s.expired || r < 0 || r >= len(s.rows) || col < 0 || col >= len(s.rows[r]) {
		return "", false
	}
	return s.rows[r][col].value, true
}
