package cellformat

import (
	"sort"

	sheets "google.golang.org/api/sheets/v4"
)

// ToAPI converts f to its Sheets API form. Booleans explicitly set to false are force-sent so the
// API clears them.
func (f *CellFormat) ToAPI() *sheets.CellFormat {
	if f == nil {
		return nil
	}
	return &sheets.CellFormat{
		BackgroundColor:     colorToAPI(f.BackgroundColor),
		Borders:             bordersToAPI(f.Borders),
		HorizontalAlignment: f.HorizontalAlignment,
		VerticalAlignment:   f.VerticalAlignment,
		WrapStrategy:        f.WrapStrategy,
		TextDirection:       f.TextDirection,
		TextFormat:          textFormatToAPI(f.TextFormat),
		TextRotation:        textRotationToAPI(f.TextRotation),
	}
}

// FieldMask returns the "userEnteredFormat" field paths set in f, as expected by a repeatCell
// request.
func (f *CellFormat) FieldMask() []string {
	var paths []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if child, ok := v.(map[string]any); ok && k != "backgroundColor" && k != "color" && k != "foregroundColor" {
				walk(prefix+"."+k, child)
				continue
			}
			paths = append(paths, prefix+"."+k)
		}
	}
	walk("userEnteredFormat", f.ToMap())
	sort.Strings(paths)
	return paths
}

// FromAPI converts a Sheets API cell format. A nil input yields nil.
func FromAPI(c *sheets.CellFormat) *CellFormat {
	if c == nil {
		return nil
	}
	return &CellFormat{
		BackgroundColor:     colorFromAPI(c.BackgroundColor),
		Borders:             bordersFromAPI(c.Borders),
		HorizontalAlignment: c.HorizontalAlignment,
		VerticalAlignment:   c.VerticalAlignment,
		WrapStrategy:        c.WrapStrategy,
		TextDirection:       c.TextDirection,
		TextFormat:          textFormatFromAPI(c.TextFormat),
		TextRotation:        textRotationFromAPI(c.TextRotation),
	}
}

func colorToAPI(c *Color) *sheets.Color {
	if c == nil {
		return nil
	}
	out := &sheets.Color{Red: value(c.Red), Green: value(c.Green), Blue: value(c.Blue), Alpha: value(c.Alpha)}
	for name, v := range map[string]*float64{"Red": c.Red, "Green": c.Green, "Blue": c.Blue, "Alpha": c.Alpha} {
		if v != nil && *v == 0 {
			out.ForceSendFields = append(out.ForceSendFields, name)
		}
	}
	sort.Strings(out.ForceSendFields)
	return out
}

func colorFromAPI(c *sheets.Color) *Color {
	if c == nil {
		return nil
	}
	return &Color{Red: Float(c.Red), Green: Float(c.Green), Blue: Float(c.Blue), Alpha: Float(c.Alpha)}
}

func borderToAPI(b *Border) *sheets.Border {
	if b == nil {
		return nil
	}
	return &sheets.Border{Style: b.Style, Color: colorToAPI(b.Color)}
}

func borderFromAPI(b *sheets.Border) *Border {
	if b == nil {
		return nil
	}
	return &Border{Style: b.Style, Color: colorFromAPI(b.Color)}
}

func bordersToAPI(b *Borders) *sheets.Borders {
	if b == nil {
		return nil
	}
	return &sheets.Borders{
		Top:    borderToAPI(b.Top),
		Bottom: borderToAPI(b.Bottom),
		Left:   borderToAPI(b.Left),
		Right:  borderToAPI(b.Right),
	}
}

func bordersFromAPI(b *sheets.Borders) *Borders {
	if b == nil {
		return nil
	}
	return &Borders{
		Top:    borderFromAPI(b.Top),
		Bottom: borderFromAPI(b.Bottom),
		Left:   borderFromAPI(b.Left),
		Right:  borderFromAPI(b.Right),
	}
}

func textFormatToAPI(t *TextFormat) *sheets.TextFormat {
	if t == nil {
		return nil
	}
	out := &sheets.TextFormat{
		ForegroundColor: colorToAPI(t.ForegroundColor),
		FontFamily:      t.FontFamily,
	}
	if t.FontSize != nil {
		out.FontSize = *t.FontSize
	}
	if t.Link != nil {
		out.Link = &sheets.Link{Uri: t.Link.URI}
	}
	for _, b := range []struct {
		name string
		v    *bool
		dst  *bool
	}{
		{"Bold", t.Bold, &out.Bold},
		{"Italic", t.Italic, &out.Italic},
		{"Strikethrough", t.Strikethrough, &out.Strikethrough},
		{"Underline", t.Underline, &out.Underline},
	} {
		if b.v == nil {
			continue
		}
		*b.dst = *b.v
		if !*b.v {
			out.ForceSendFields = append(out.ForceSendFields, b.name)
		}
	}
	return out
}

func textFormatFromAPI(t *sheets.TextFormat) *TextFormat {
	if t == nil {
		return nil
	}
	out := &TextFormat{
		ForegroundColor: colorFromAPI(t.ForegroundColor),
		FontFamily:      t.FontFamily,
		Bold:            Bool(t.Bold),
		Italic:          Bool(t.Italic),
		Strikethrough:   Bool(t.Strikethrough),
		Underline:       Bool(t.Underline),
	}
	if t.FontSize != 0 {
		out.FontSize = Int(t.FontSize)
	}
	if t.Link != nil {
		out.Link = &Link{URI: t.Link.Uri}
	}
	return out
}

func textRotationToAPI(r *TextRotation) *sheets.TextRotation {
	if r == nil {
		return nil
	}
	out := &sheets.TextRotation{}
	if r.Angle != nil {
		out.Angle = *r.Angle
		out.ForceSendFields = append(out.ForceSendFields, "Angle")
	}
	if r.Vertical != nil {
		out.Vertical = *r.Vertical
		out.ForceSendFields = append(out.ForceSendFields, "Vertical")
	}
	return out
}

func textRotationFromAPI(r *sheets.TextRotation) *TextRotation {
	if r == nil {
		return nil
	}
	if r.Vertical {
		return &TextRotation{Vertical: Bool(true)}
	}
	return &TextRotation{Angle: Int(r.Angle)}
}
