package registry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Interpolate replaces placeholders in the form "{key}" with the values from fields.
// Keys may contain letters, digits, "_" and ".".
// Placeholders are left untouched when the key is missing or the value can't be rendered as a string (for example, maps, slices, or nil pointers).
func (r *Registry) Interpolate(template string, fields map[string]any) string {
	return Interpolate(template, fields)
}

// Interpolate is the function behind Registry.Interpolate.
func Interpolate(template string, fields map[string]any) string {
	if len(fields) == 0 || !strings.Contains(template, "{") {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))

	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start+1:], '}')
		if end < 0 {
			break
		}
		end += start + 1

		key := rest[start+1 : end]
		val, ok := render(fields, key)
		if !ok {
			// Keep the opening brace and continue scanning after it
			b.WriteString(rest[:start+1])
			rest = rest[start+1:]
			continue
		}

		b.WriteString(rest[:start])
		b.WriteString(val)
		rest = rest[end+1:]
	}
	b.WriteString(rest)

	return b.String()
}

func render(fields map[string]any, key string) (string, bool) {
	if !validKey(key) {
		return "", false
	}
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	return stringify(v)
}

// stringify renders scalar values, errors and Stringers.
// Values whose Error or String method panics, such as typed nil pointers, are not rendered.
func stringify(v any) (res string, ok bool) {
	defer func() {
		if recover() != nil {
			res, ok = "", false
		}
	}()

	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x), true
	case time.Time:
		return x.Format(time.RFC3339), true
	case error:
		return x.Error(), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return "", false
	}
}

func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9',
			c == '_', c == '.':
			// Valid
		default:
			return false
		}
	}
	return true
}
