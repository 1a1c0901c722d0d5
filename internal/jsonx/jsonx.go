// Package jsonx navigates dynamically decoded JSON payloads. Upstream feeds
// change shape without notice, so every accessor tolerates missing keys and
// wrong types by returning a zero value.
package jsonx

import (
	"fmt"
	"strconv"
)

// Map returns the object at key, or nil.
func Map(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

// Array returns the array at key, or nil.
func Array(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	v, _ := m[key].([]any)
	return v
}

// String returns the value at key rendered as a string. Numbers come back
// without a trailing ".000000" so IDs survive the float64 round trip.
func String(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return Stringify(m[key])
}

// Bool returns the boolean at key. JSON "true"/"false" strings count too.
func Bool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Int returns the value at key as an int, or 0.
func Int(m map[string]any, key string) int {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Stringify renders any scalar as a string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
