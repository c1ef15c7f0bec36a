package cellformat

import (
	"math"
	"strings"
)

// ColorMap maps colour names to RGB colours.
type ColorMap struct {
	names  []string
	colors map[string]Color
}

// NewColorMap returns a ColorMap holding the sixteen basic web colours.
func NewColorMap() *ColorMap {
	m := &ColorMap{colors: make(map[string]Color)}
	for _, c := range []struct {
		name    string
		r, g, b float64
	}{
		{"white", 1, 1, 1},
		{"silver", 0.75, 0.75, 0.75},
		{"gray", 0.5, 0.5, 0.5},
		{"black", 0, 0, 0},
		{"red", 1, 0, 0},
		{"maroon", 0.5, 0, 0},
		{"yellow", 1, 1, 0},
		{"olive", 0.5, 0.5, 0},
		{"lime", 0, 1, 0},
		{"green", 0, 0.5, 0},
		{"aqua", 0, 1, 1},
		{"teal", 0, 0.5, 0.5},
		{"blue", 0, 0, 1},
		{"navy", 0, 0, 0.5},
		{"fuchsia", 1, 0, 1},
		{"purple", 0.5, 0, 0.5},
	} {
		m.Upsert(c.name, c.r, c.g, c.b)
	}
	return m
}

// Names returns the colour names in insertion order.
func (m *ColorMap) Names() []string {
	return append([]string(nil), m.names...)
}

// Upsert adds or replaces a named colour. Names are case-insensitive.
func (m *ColorMap) Upsert(name string, red, green, blue float64) *ColorMap {
	key := strings.ToLower(name)
	if _, ok := m.colors[key]; !ok {
		m.names = append(m.names, key)
	}
	m.colors[key] = Color{Red: Float(red), Green: Float(green), Blue: Float(blue)}
	return m
}

// Color returns the named colour with the given opacity.
func (m *ColorMap) Color(name string, opacity float64) (*Color, bool) {
	c, ok := m.colors[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	c.Alpha = Float(opacity)
	return &c, true
}

// NearestName returns the name of the colour closest to c in RGB space. Unset components count as 0.
func (m *ColorMap) NearestName(c Color) string {
	best, bestDist := "", math.Inf(1)
	for _, name := range m.names {
		ref := m.colors[name]
		d := math.Sqrt(
			math.Pow(value(c.Red)-value(ref.Red), 2) +
				math.Pow(value(c.Green)-value(ref.Green), 2) +
				math.Pow(value(c.Blue)-value(ref.Blue), 2))
		if d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

var defaultColors = NewColorMap()

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
