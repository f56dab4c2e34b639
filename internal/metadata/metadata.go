// Package metadata models the flat, primitive-only metadata records attached
// to stored passages. The vector store only accepts strings, integers, floats,
// and booleans; Sanitize is the boundary that coerces everything else.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the primitive type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

// Value is a tagged union over the primitive types the store accepts.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int wraps an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports which primitive the value holds.
func (v Value) Kind() Kind { return v.kind }

// StringValue returns the held string, or "" for non-string kinds.
func (v Value) StringValue() string { return v.s }

// IntValue returns the held integer, or 0 for non-int kinds.
func (v Value) IntValue() int64 { return v.i }

// FloatValue returns the held float, or 0 for non-float kinds.
func (v Value) FloatValue() float64 { return v.f }

// BoolValue returns the held boolean, or false for non-bool kinds.
func (v Value) BoolValue() bool { return v.b }

// Text renders the value for display regardless of kind.
func (v Value) Text() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// MarshalJSON emits the bare primitive so stored metadata stays flat.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON restores the primitive kind from its JSON representation.
// Numbers without a fractional part come back as integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		*v = String(val)
	case bool:
		*v = Bool(val)
	case json.Number:
		if i, err := strconv.ParseInt(val.String(), 10, 64); err == nil {
			*v = Int(i)
			return nil
		}
		f, err := val.Float64()
		if err != nil {
			return fmt.Errorf("metadata: parse number %q: %w", val.String(), err)
		}
		*v = Float(f)
	default:
		return fmt.Errorf("metadata: value must be a primitive, got %T", raw)
	}
	return nil
}

// Record is a flat mapping of field names to primitive values.
type Record map[string]Value

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the display text for a field, or "" when absent.
func (r Record) Lookup(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	return v.Text()
}

// Get returns the field's value and whether it is present.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r[key]
	return v, ok
}

// Sanitize coerces arbitrary metadata into a Record. Nil values are dropped,
// primitives pass through with their kind preserved, and anything else is
// converted to its textual representation. The input is never mutated.
func Sanitize(meta map[string]any) Record {
	out := make(Record, len(meta))
	for key, val := range meta {
		if val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			out[key] = String(v)
		case bool:
			out[key] = Bool(v)
		case int:
			out[key] = Int(int64(v))
		case int32:
			out[key] = Int(int64(v))
		case int64:
			out[key] = Int(v)
		case uint:
			out[key] = Int(int64(v))
		case uint32:
			out[key] = Int(int64(v))
		case float32:
			out[key] = Float(float64(v))
		case float64:
			out[key] = Float(v)
		case Value:
			out[key] = v
		default:
			out[key] = String(fmt.Sprintf("%v", v))
		}
	}
	return out
}
