package grid

import (
	"fmt"
	"strings"
)

// Direction is the axis along which matched cells are joined into runs.
type Direction int

const (
	// AlongColumns joins cells of the same row in consecutive columns.
	AlongColumns Direction = iota
	// AlongRows joins cells of the same column in consecutive rows.
	AlongRows
)

func (d Direction) String() string {
	if d == AlongRows {
		return "row"
	}
	return "col"
}

// ParseDirection accepts "col", "column", "x", "row" and "y", in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "col", "cols", "column", "columns", "x":
		return AlongColumns, nil
	case "row", "rows", "y":
		return AlongRows, nil
	default:
		return AlongColumns, fmt.Errorf("unknown search direction %q", s)
	}
}

// next returns the neighbour of c along the direction.
func (d Direction) next(c CellIndex) CellIndex {
	if d == AlongRows {
		return Cell(c.Col, c.Row+1)
	}
	return Cell(c.Col+1, c.Row)
}

// prev returns the cell preceding c along the direction.
func (d Direction) prev(c CellIndex) CellIndex {
	if d == AlongRows {
		return Cell(c.Col, c.Row-1)
	}
	return Cell(c.Col-1, c.Row)
}
