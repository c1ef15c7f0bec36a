package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidLabel is returned when an A1 label cannot be parsed.
var ErrInvalidLabel = errors.New("invalid A1 label")

// CellIndex is a 1-based (column, row) pair. A zero component is unset, which the A1 notation
// renders as a whole column ("C") or a whole row ("7").
type CellIndex struct {
	Col int
	Row int
}

// Cell returns the CellIndex for the given column and row.
func Cell(col, row int) CellIndex {
	return CellIndex{Col: col, Row: row}
}

// IsSet reports whether both components are set.
func (c CellIndex) IsSet() bool {
	return c.Col > 0 && c.Row > 0
}

// IsZero reports whether neither component is set.
func (c CellIndex) IsZero() bool {
	return c.Col <= 0 && c.Row <= 0
}

func (c CellIndex) String() string {
	return fmt.Sprintf("<CellIndex col:%d row:%d>", c.Col, c.Row)
}

// Label returns the A1 label of the cell, for example "B2".
func (c CellIndex) Label() (string, error) {
	switch {
	case c.IsSet():
		return excelize.CoordinatesToCellName(c.Col, c.Row)
	case c.Col > 0:
		return excelize.ColumnNumberToName(c.Col)
	case c.Row > 0:
		return strconv.Itoa(c.Row), nil
	default:
		return "", fmt.Errorf("%w: cell index has neither column nor row", ErrInvalidLabel)
	}
}

// ParseCellIndex parses an A1 label such as "B2", "$B$2", "B" or "2".
func ParseCellIndex(label string) (CellIndex, error) {
	l := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(label), "$", ""))
	if l == "" {
		return CellIndex{}, fmt.Errorf("%w: empty label", ErrInvalidLabel)
	}

	letters := strings.IndexFunc(l, func(r rune) bool { return r < 'A' || r > 'Z' })
	switch letters {
	case -1:
		col, err := excelize.ColumnNameToNumber(l)
		if err != nil {
			return CellIndex{}, fmt.Errorf("%w: %q: %v", ErrInvalidLabel, label, err)
		}
		return CellIndex{Col: col}, nil
	case 0:
		row, err := strconv.Atoi(l)
		if err != nil || row < 1 {
			return CellIndex{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
		}
		return CellIndex{Row: row}, nil
	}

	col, row, err := excelize.CellNameToCoordinates(l)
	if err != nil {
		return CellIndex{}, fmt.Errorf("%w: %q: %v", ErrInvalidLabel, label, err)
	}
	return CellIndex{Col: col, Row: row}, nil
}

// CachedCell is a cell value captured in a Snapshot.
type CachedCell struct {
	col   int
	row   int
	value string
}

// NewCachedCell returns a CachedCell at (col, row) holding value.
func NewCachedCell(col, row int, value string) CachedCell {
	return CachedCell{col: col, row: row, value: value}
}

func (c CachedCell) Col() int      { return c.col }
func (c CachedCell) Row() int      { return c.row }
func (c CachedCell) Value() string { return c.value }

// Index returns the coordinates of the cell.
func (c CachedCell) Index() CellIndex {
	return CellIndex{Col: c.col, Row: c.row}
}
