package grid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRegion is returned when a region's start lies after its end.
var ErrInvalidRegion = errors.New("invalid region")

// Region is an inclusive rectangle of cells. Equal regions have equal endpoints.
type Region struct {
	Start CellIndex
	End   CellIndex
}

// NewRegion returns the region spanning (startCol, startRow) to (endCol, endRow). Zero components
// are left unset.
func NewRegion(startCol, startRow, endCol, endRow int) (Region, error) {
	r := Region{Start: Cell(startCol, startRow), End: Cell(endCol, endRow)}
	return r, r.Validate()
}

// SingleCell returns the one-cell region at c.
func SingleCell(c CellIndex) Region {
	return Region{Start: c, End: c}
}

// Validate checks that start does not exceed end on any component set on both endpoints.
func (r Region) Validate() error {
	if r.Start.Col < 0 || r.Start.Row < 0 || r.End.Col < 0 || r.End.Row < 0 {
		return fmt.Errorf("%w: negative coordinate in %v", ErrInvalidRegion, r)
	}
	if r.Start.Col > 0 && r.End.Col > 0 && r.Start.Col > r.End.Col {
		return fmt.Errorf("%w: start column %d after end column %d", ErrInvalidRegion, r.Start.Col, r.End.Col)
	}
	if r.Start.Row > 0 && r.End.Row > 0 && r.Start.Row > r.End.Row {
		return fmt.Errorf("%w: start row %d after end row %d", ErrInvalidRegion, r.Start.Row, r.End.Row)
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("<Region start:%v end:%v>", r.Start, r.End)
}

// Label returns the A1 range of the region, for example "B2:D4".
func (r Region) Label() (string, error) {
	s, err := r.Start.Label()
	if err != nil {
		return "", err
	}
	e, err := r.End.Label()
	if err != nil {
		return "", err
	}
	return s + ":" + e, nil
}

// ParseRegion parses an A1 range such as "B2:D4", "Sheet1!A1:C3" or "C5". A single cell label
// yields a region whose start equals its end.
func ParseRegion(label string) (Region, error) {
	l := strings.TrimSpace(label)
	if i := strings.LastIndex(l, "!"); i >= 0 {
		l = l[i+1:]
	}
	first, second, found := strings.Cut(l, ":")
	start, err := ParseCellIndex(first)
	if err != nil {
		return Region{}, err
	}
	if !found {
		return SingleCell(start), nil
	}
	end, err := ParseCellIndex(second)
	if err != nil {
		return Region{}, err
	}
	r := Region{Start: start, End: end}
	return r, r.Validate()
}

// Length returns the extent of the region along the search axis: the column span for AlongColumns,
// the row span for AlongRows. A single cell has length 0.
func (r Region) Length(dir Direction) int {
	if dir == AlongRows {
		return r.End.Row - r.Start.Row
	}
	return r.End.Col - r.Start.Col
}

// Contains reports whether c lies inside the region. Both endpoints must be set.
func (r Region) Contains(c CellIndex) bool {
	return c.Col >= r.Start.Col && c.Col <= r.End.Col && c.Row >= r.Start.Row && c.Row <= r.End.Row
}

// Cells lists the cells of a fully set region in row-major order.
func (r Region) Cells() []CellIndex {
	if !r.Start.IsSet() || !r.End.IsSet() {
		return nil
	}
	cells := make([]CellIndex, 0, (r.End.Row-r.Start.Row+1)*(r.End.Col-r.Start.Col+1))
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			cells = append(cells, Cell(col, row))
		}
	}
	return cells
}

// Transpose swaps columns and rows on both endpoints.
func (r Region) Transpose() Region {
	return Region{
		Start: Cell(r.Start.Row, r.Start.Col),
		End:   Cell(r.End.Row, r.End.Col),
	}
}
