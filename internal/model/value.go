package model

import (
	"encoding/json"
	"strconv"
)

// Value wraps a decoded JSON value (map[string]any, []any, string, bool,
// json.Number, float64 or nil) and provides lookups that never fail.
// A missing key, a wrong type, or a nil receiver all yield the zero Value,
// whose accessors return zero defaults.
type Value struct {
	raw any
}

// V wraps raw as a Value.
func V(raw any) Value {
	return Value{raw: raw}
}

// Raw returns the wrapped value.
func (v Value) Raw() any {
	return v.raw
}

// Present reports whether the value exists (is not JSON null or missing).
func (v Value) Present() bool {
	return v.raw != nil
}

// Get walks the object keys in order and returns the value at the end of the
// path, or the zero Value if any step is missing or not an object.
func (v Value) Get(keys ...string) Value {
	cur := v.raw
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return Value{}
		}
		cur, ok = obj[k]
		if !ok {
			return Value{}
		}
	}
	return Value{raw: cur}
}

// Has reports whether key is present on an object value, even if its value is null.
func (v Value) Has(key string) bool {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return false
	}
	_, ok = obj[key]
	return ok
}

// IsObject reports whether the value is a JSON object.
func (v Value) IsObject() bool {
	_, ok := v.raw.(map[string]any)
	return ok
}

// Keys returns the number of keys of an object value, 0 otherwise.
func (v Value) Keys() int {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return 0
	}
	return len(obj)
}

// List returns the elements of an array value, or nil.
func (v Value) List() []Value {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(arr))
	for i, e := range arr {
		out[i] = Value{raw: e}
	}
	return out
}

// Len returns the length of an array value, 0 otherwise.
func (v Value) Len() int {
	arr, ok := v.raw.([]any)
	if !ok {
		return 0
	}
	return len(arr)
}

// String returns the string value, or def when the value is not a string.
func (v Value) String(def string) string {
	s, ok := v.raw.(string)
	if !ok {
		return def
	}
	return s
}

// Bool returns the boolean value, or false.
func (v Value) Bool() bool {
	b, _ := v.raw.(bool)
	return b
}

// Float returns the numeric value as float64, or 0.
func (v Value) Float() float64 {
	switch n := v.raw.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// Int returns the numeric value as int64, truncating fractions, or 0.
func (v Value) Int() int64 {
	switch n := v.raw.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0
		}
		return int64(f)
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	default:
		return 0
	}
}

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool {
	switch v.raw.(type) {
	case json.Number, float64, int, int64:
		return true
	default:
		return false
	}
}
