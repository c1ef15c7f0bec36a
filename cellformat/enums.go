package cellformat

import (
	"fmt"
	"strings"
)

// Horizontal alignments.
const (
	AlignLeft   = "LEFT"
	AlignCenter = "CENTER"
	AlignRight  = "RIGHT"
)

// Vertical alignments.
const (
	AlignTop    = "TOP"
	AlignMiddle = "MIDDLE"
	AlignBottom = "BOTTOM"
)

// Border styles.
const (
	BorderDotted      = "DOTTED"
	BorderDashed      = "DASHED"
	BorderSolid       = "SOLID"
	BorderSolidMedium = "SOLID_MEDIUM"
	BorderSolidThick  = "SOLID_THICK"
	BorderNone        = "NONE"
	BorderDouble      = "DOUBLE"
)

// Wrap strategies, see https://developers.google.com/sheets/api/reference/rest/v4/spreadsheets/cells#WrapStrategy
const (
	WrapOverflowCell = "OVERFLOW_CELL"
	WrapLegacyWrap   = "LEGACY_WRAP"
	WrapClip         = "CLIP"
	WrapWrap         = "WRAP"
)

// Text directions.
const (
	LeftToRight = "LEFT_TO_RIGHT"
	RightToLeft = "RIGHT_TO_LEFT"
)

var (
	horizontalAlignments = enum("horizontal alignment", AlignLeft, AlignCenter, AlignRight)
	verticalAlignments   = enum("vertical alignment", AlignTop, AlignMiddle, AlignBottom)
	borderStyles         = enum("border style", BorderDotted, BorderDashed, BorderSolid, BorderSolidMedium, BorderSolidThick, BorderNone, BorderDouble)
	wrapStrategies       = enum("wrap strategy", WrapOverflowCell, WrapLegacyWrap, WrapClip, WrapWrap)
	textDirections       = enum("text direction", LeftToRight, RightToLeft)
)

type enumeration struct {
	kind   string
	values map[string]string
}

func enum(kind string, values ...string) enumeration {
	e := enumeration{kind: kind, values: make(map[string]string, len(values))}
	for _, v := range values {
		e.values[strings.ToLower(v)] = v
	}
	return e
}

func (e enumeration) parse(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "null" && e.kind == borderStyles.kind {
		key = "none"
	}
	if v, ok := e.values[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown %s %q", e.kind, name)
}

// ParseHorizontalAlignment accepts "left", "center" or "right" in any case.
func ParseHorizontalAlignment(name string) (string, error) { return horizontalAlignments.parse(name) }

// ParseVerticalAlignment accepts "top", "middle" or "bottom" in any case.
func ParseVerticalAlignment(name string) (string, error) { return verticalAlignments.parse(name) }

// ParseBorderStyle accepts names such as "solid", "solid_medium" or "none".
func ParseBorderStyle(name string) (string, error) { return borderStyles.parse(name) }

// ParseWrapStrategy accepts names such as "clip" or "overflow_cell".
func ParseWrapStrategy(name string) (string, error) { return wrapStrategies.parse(name) }

// ParseTextDirection accepts "left_to_right" or "right_to_left".
func ParseTextDirection(name string) (string, error) { return textDirections.parse(name) }
