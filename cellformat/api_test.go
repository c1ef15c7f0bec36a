package cellformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sheets "google.golang.org/api/sheets/v4"
)

func TestToAPI(t *testing.T) {
	f := &CellFormat{HorizontalAlignment: AlignRight, WrapStrategy: WrapClip}
	f.Text().Bold = Bool(true)
	f.Text().Underline = Bool(false)
	f.Text().FontSize = Int(10)
	f.Border(Left).Style = BorderDashed
	require.NoError(t, f.SetBackground("red", 1))

	got := f.ToAPI()
	require.NotNil(t, got)
	assert.Equal(t, "RIGHT", got.HorizontalAlignment)
	assert.Equal(t, "CLIP", got.WrapStrategy)
	assert.True(t, got.TextFormat.Bold)
	assert.False(t, got.TextFormat.Underline)
	assert.Equal(t, []string{"Underline"}, got.TextFormat.ForceSendFields)
	assert.Equal(t, int64(10), got.TextFormat.FontSize)
	assert.Equal(t, "DASHED", got.Borders.Left.Style)
	assert.Nil(t, got.Borders.Top)
	assert.Equal(t, 1.0, got.BackgroundColor.Red)
	assert.Equal(t, []string{"Blue", "Green"}, got.BackgroundColor.ForceSendFields)
	assert.Nil(t, got.TextRotation)

	var nilFormat *CellFormat
	assert.Nil(t, nilFormat.ToAPI())
}

func TestFromAPI(t *testing.T) {
	got := FromAPI(&sheets.CellFormat{
		VerticalAlignment: "MIDDLE",
		BackgroundColor:   &sheets.Color{Red: 1, Green: 1, Blue: 1, Alpha: 1},
		TextFormat:        &sheets.TextFormat{Bold: true, FontSize: 11, Link: &sheets.Link{Uri: "https://example.com"}},
		TextRotation:      &sheets.TextRotation{Vertical: true},
	})
	require.NotNil(t, got)
	assert.Equal(t, AlignMiddle, got.VerticalAlignment)
	assert.Equal(t, "white", got.BackgroundColorName())
	assert.True(t, *got.TextFormat.Bold)
	assert.False(t, *got.TextFormat.Italic)
	assert.Equal(t, int64(11), *got.TextFormat.FontSize)
	assert.Equal(t, "https://example.com", got.TextFormat.Link.URI)
	assert.True(t, *got.TextRotation.Vertical)
	assert.Nil(t, got.TextRotation.Angle)
	assert.Nil(t, got.Borders)
	assert.Nil(t, FromAPI(nil))
}

func TestFieldMask(t *testing.T) {
	f := &CellFormat{HorizontalAlignment: AlignLeft}
	f.Text().Bold = Bool(true)
	f.Border(Top).Style = BorderSolid
	f.Border(Top).Color = &Color{Red: Float(1)}
	require.NoError(t, f.SetBackground("lime", 1))

	assert.Equal(t, []string{
		"userEnteredFormat.backgroundColor",
		"userEnteredFormat.borders.top.color",
		"userEnteredFormat.borders.top.style",
		"userEnteredFormat.horizontalAlignment",
		"userEnteredFormat.textFormat.bold",
	}, f.FieldMask())
	assert.Empty(t, (&CellFormat{}).FieldMask())
}
