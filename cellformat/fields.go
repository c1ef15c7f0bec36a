package cellformat

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// field binds one key of a node's map form to the Go field holding it.
type field[T any] struct {
	key    string
	encode func(*T) (any, bool)
	decode func(*T, any) error
}

func stringField[T any](key string, ptr func(*T) *string, e *enumeration) field[T] {
	return field[T]{
		key: key,
		encode: func(v *T) (any, bool) {
			s := *ptr(v)
			return s, s != ""
		},
		decode: func(v *T, raw any) error {
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("%s: expected string, got %T", key, raw)
			}
			if e != nil && s != "" {
				parsed, err := e.parse(s)
				if err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
				s = parsed
			}
			*ptr(v) = s
			return nil
		},
	}
}

func floatField[T any](key string, ptr func(*T) **float64) field[T] {
	return field[T]{
		key: key,
		encode: func(v *T) (any, bool) {
			f := *ptr(v)
			if f == nil {
				return nil, false
			}
			return *f, true
		},
		decode: func(v *T, raw any) error {
			f, err := toFloat(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*ptr(v) = &f
			return nil
		},
	}
}

func intField[T any](key string, ptr func(*T) **int64) field[T] {
	return field[T]{
		key: key,
		encode: func(v *T) (any, bool) {
			i := *ptr(v)
			if i == nil {
				return nil, false
			}
			return *i, true
		},
		decode: func(v *T, raw any) error {
			f, err := toFloat(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			i := int64(f)
			*ptr(v) = &i
			return nil
		},
	}
}

func boolField[T any](key string, ptr func(*T) **bool) field[T] {
	return field[T]{
		key: key,
		encode: func(v *T) (any, bool) {
			b := *ptr(v)
			if b == nil {
				return nil, false
			}
			return *b, true
		},
		decode: func(v *T, raw any) error {
			var b bool
			switch x := raw.(type) {
			case bool:
				b = x
			case string:
				parsed, err := strconv.ParseBool(x)
				if err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
				b = parsed
			default:
				return fmt.Errorf("%s: expected bool, got %T", key, raw)
			}
			*ptr(v) = &b
			return nil
		},
	}
}

func nodeField[T, C any](key string, ptr func(*T) **C, fields []field[C]) field[T] {
	return field[T]{
		key: key,
		encode: func(v *T) (any, bool) {
			m := encode(*ptr(v), fields)
			return m, len(m) > 0
		},
		decode: func(v *T, raw any) error {
			m, ok := raw.(map[string]any)
			if !ok {
				return fmt.Errorf("%s: expected object, got %T", key, raw)
			}
			child := *ptr(v)
			if child == nil {
				child = new(C)
			}
			if err := decode(child, m, fields); err != nil {
				return fmt.Errorf("%s.%w", key, err)
			}
			*ptr(v) = child
			return nil
		},
	}
}

func encode[T any](v *T, fields []field[T]) map[string]any {
	if v == nil {
		return nil
	}
	m := make(map[string]any)
	for _, f := range fields {
		if val, ok := f.encode(v); ok {
			m[f.key] = val
		}
	}
	return m
}

func decode[T any](v *T, m map[string]any, fields []field[T]) error {
	for _, f := range fields {
		raw, ok := m[f.key]
		if !ok || raw == nil {
			continue
		}
		if err := f.decode(v, raw); err != nil {
			return err
		}
	}
	return nil
}

func toFloat(raw any) (float64, error) {
	switch x := raw.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("expected number, got %T", raw)
}
