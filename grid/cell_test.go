package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellIndex_Label(t *testing.T) {
	tests := []struct {
		name    string
		cell    CellIndex
		want    string
		wantErr bool
	}{
		{name: "A1", cell: Cell(1, 1), want: "A1"},
		{name: "B2", cell: Cell(2, 2), want: "B2"},
		{name: "AA10", cell: Cell(27, 10), want: "AA10"},
		{name: "ColumnOnly", cell: CellIndex{Col: 3}, want: "C"},
		{name: "RowOnly", cell: CellIndex{Row: 7}, want: "7"},
		{name: "Unset", cell: CellIndex{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cell.Label()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLabel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCellIndex(t *testing.T) {
	tests := []struct {
		label   string
		want    CellIndex
		wantErr bool
	}{
		{label: "B2", want: Cell(2, 2)},
		{label: "$c$5", want: Cell(3, 5)},
		{label: "AA10", want: Cell(27, 10)},
		{label: "D", want: CellIndex{Col: 4}},
		{label: "12", want: CellIndex{Row: 12}},
		{label: "", wantErr: true},
		{label: "2B", wantErr: true},
		{label: "A0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseCellIndex(tt.label)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLabel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCellIndex_RoundTrip(t *testing.T) {
	for _, c := range []CellIndex{Cell(1, 1), Cell(26, 3), Cell(703, 1000)} {
		label, err := c.Label()
		require.NoError(t, err)
		got, err := ParseCellIndex(label)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestRegion(t *testing.T) {
	r, err := NewRegion(2, 2, 4, 4)
	require.NoError(t, err)

	label, err := r.Label()
	require.NoError(t, err)
	assert.Equal(t, "B2:D4", label)
	assert.Equal(t, 2, r.Length(AlongColumns))
	assert.Equal(t, 2, r.Length(AlongRows))
	assert.True(t, r.Contains(Cell(3, 3)))
	assert.False(t, r.Contains(Cell(5, 3)))
	assert.Len(t, r.Cells(), 9)

	_, err = NewRegion(4, 1, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidRegion)
	_, err = NewRegion(1, 5, 1, 2)
	assert.ErrorIs(t, err, ErrInvalidRegion)

	whole, err := NewRegion(1, 0, 3, 0)
	require.NoError(t, err)
	label, err = whole.Label()
	require.NoError(t, err)
	assert.Equal(t, "A:C", label)
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		label   string
		want    Region
		wantErr error
	}{
		{label: "B2:D4", want: Region{Start: Cell(2, 2), End: Cell(4, 4)}},
		{label: "'My Sheet'!A1:C3", want: Region{Start: Cell(1, 1), End: Cell(3, 3)}},
		{label: "C5", want: Region{Start: Cell(3, 5), End: Cell(3, 5)}},
		{label: "D4:B2", wantErr: ErrInvalidRegion},
		{label: "B2:??", wantErr: ErrInvalidLabel},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseRegion(tt.label)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"col", "X", "column"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, AlongColumns, d)
	}
	for _, s := range []string{"row", "Y"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, AlongRows, d)
	}
	_, err := ParseDirection("diagonal")
	assert.Error(t, err)
}
