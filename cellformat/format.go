package cellformat

import (
	"encoding/json"
	"fmt"
)

// Color is an RGBA colour with components in [0, 1].
type Color struct {
	Red, Green, Blue, Alpha *float64
}

// Border is one edge of a cell.
type Border struct {
	Style string
	Color *Color
}

// Borders holds the four edges of a cell.
type Borders struct {
	Top, Bottom, Left, Right *Border
}

// Link is a hyperlink target.
type Link struct {
	URI string
}

// TextFormat is the run format of a cell's text.
type TextFormat struct {
	ForegroundColor *Color
	FontFamily      string
	FontSize        *int64
	Bold            *bool
	Italic          *bool
	Strikethrough   *bool
	Underline       *bool
	Link            *Link
}

// TextRotation rotates the text of a cell by an angle or stacks it vertically.
type TextRotation struct {
	Angle    *int64
	Vertical *bool
}

// CellFormat is the root of the format tree. Nil and empty fields are left untouched when applied.
type CellFormat struct {
	BackgroundColor     *Color
	Borders             *Borders
	HorizontalAlignment string
	VerticalAlignment   string
	WrapStrategy        string
	TextDirection       string
	TextFormat          *TextFormat
	TextRotation        *TextRotation
}

// Side names one edge of a cell.
type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
	Left   Side = "left"
	Right  Side = "right"
)

var colorFields = []field[Color]{
	floatField("red", func(c *Color) **float64 { return &c.Red }),
	floatField("green", func(c *Color) **float64 { return &c.Green }),
	floatField("blue", func(c *Color) **float64 { return &c.Blue }),
	floatField("alpha", func(c *Color) **float64 { return &c.Alpha }),
}

var borderFields = []field[Border]{
	stringField("style", func(b *Border) *string { return &b.Style }, &borderStyles),
	nodeField("color", func(b *Border) **Color { return &b.Color }, colorFields),
}

var bordersFields = []field[Borders]{
	nodeField("top", func(b *Borders) **Border { return &b.Top }, borderFields),
	nodeField("bottom", func(b *Borders) **Border { return &b.Bottom }, borderFields),
	nodeField("left", func(b *Borders) **Border { return &b.Left }, borderFields),
	nodeField("right", func(b *Borders) **Border { return &b.Right }, borderFields),
}

var linkFields = []field[Link]{
	stringField("uri", func(l *Link) *string { return &l.URI }, nil),
}

var textFormatFields = []field[TextFormat]{
	nodeField("foregroundColor", func(t *TextFormat) **Color { return &t.ForegroundColor }, colorFields),
	stringField("fontFamily", func(t *TextFormat) *string { return &t.FontFamily }, nil),
	intField("fontSize", func(t *TextFormat) **int64 { return &t.FontSize }),
	boolField("bold", func(t *TextFormat) **bool { return &t.Bold }),
	boolField("italic", func(t *TextFormat) **bool { return &t.Italic }),
	boolField("strikethrough", func(t *TextFormat) **bool { return &t.Strikethrough }),
	boolField("underline", func(t *TextFormat) **bool { return &t.Underline }),
	nodeField("link", func(t *TextFormat) **Link { return &t.Link }, linkFields),
}

var textRotationFields = []field[TextRotation]{
	intField("angle", func(r *TextRotation) **int64 { return &r.Angle }),
	boolField("vertical", func(r *TextRotation) **bool { return &r.Vertical }),
}

var cellFormatFields = []field[CellFormat]{
	nodeField("backgroundColor", func(f *CellFormat) **Color { return &f.BackgroundColor }, colorFields),
	nodeField("borders", func(f *CellFormat) **Borders { return &f.Borders }, bordersFields),
	stringField("horizontalAlignment", func(f *CellFormat) *string { return &f.HorizontalAlignment }, &horizontalAlignments),
	stringField("verticalAlignment", func(f *CellFormat) *string { return &f.VerticalAlignment }, &verticalAlignments),
	stringField("wrapStrategy", func(f *CellFormat) *string { return &f.WrapStrategy }, &wrapStrategies),
	stringField("textDirection", func(f *CellFormat) *string { return &f.TextDirection }, &textDirections),
	nodeField("textFormat", func(f *CellFormat) **TextFormat { return &f.TextFormat }, textFormatFields),
	nodeField("textRotation", func(f *CellFormat) **TextRotation { return &f.TextRotation }, textRotationFields),
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// ToMap returns the nested map form of f keyed by Sheets REST field names. Unset fields are omitted.
func (f *CellFormat) ToMap() map[string]any {
	m := encode(f, cellFormatFields)
	if m == nil {
		m = map[string]any{}
	}
	return m
}

// FromMap builds a CellFormat from its nested map form. Unknown keys are ignored.
func FromMap(m map[string]any) (*CellFormat, error) {
	f := &CellFormat{}
	if err := decode(f, m, cellFormatFields); err != nil {
		return nil, fmt.Errorf("cellformat: %w", err)
	}
	return f, nil
}

// MarshalJSON encodes the map form of f.
func (f *CellFormat) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.ToMap())
}

// UnmarshalJSON replaces f with the format decoded from data.
func (f *CellFormat) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := FromMap(m)
	if err != nil {
		return err
	}
	*f = *parsed
	return nil
}

// IsZero reports whether no field of f is set.
func (f *CellFormat) IsZero() bool {
	return f == nil || len(f.ToMap()) == 0
}

// Border returns the border of the given side, creating it if unset.
func (f *CellFormat) Border(side Side) *Border {
	if f.Borders == nil {
		f.Borders = &Borders{}
	}
	var b **Border
	switch side {
	case Top:
		b = &f.Borders.Top
	case Bottom:
		b = &f.Borders.Bottom
	case Left:
		b = &f.Borders.Left
	default:
		b = &f.Borders.Right
	}
	if *b == nil {
		*b = &Border{}
	}
	return *b
}

// Text returns the text format, creating it if unset.
func (f *CellFormat) Text() *TextFormat {
	if f.TextFormat == nil {
		f.TextFormat = &TextFormat{}
	}
	return f.TextFormat
}

// SetBackground sets the background to a named colour of the default colour map.
func (f *CellFormat) SetBackground(name string, opacity float64) error {
	c, ok := defaultColors.Color(name, opacity)
	if !ok {
		return fmt.Errorf("cellformat: unknown colour %q", name)
	}
	f.BackgroundColor = c
	return nil
}

// BackgroundColorName returns the name of the default colour nearest to the background, or "" when
// no background is set.
func (f *CellFormat) BackgroundColorName() string {
	if f == nil || f.BackgroundColor == nil {
		return ""
	}
	return defaultColors.NearestName(*f.BackgroundColor)
}
