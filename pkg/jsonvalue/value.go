package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindArray
	KindObject
)

// String returns the JSON-ish name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindDouble:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON value. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  *Object
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Double wraps a floating point number.
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps a sequence of values. The slice is not copied.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// FromObject wraps an ordered object. A nil object becomes an empty one.
func FromObject(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload. Doubles without a fractional part convert.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindDouble:
		if v.f == math.Trunc(v.f) && !math.IsInf(v.f, 0) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// AsDouble returns the numeric payload as float64.
func (v Value) AsDouble() (float64, bool) {
	switch v.kind {
	case KindDouble:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Items returns the elements of an array, or nil.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Object returns the object payload, or nil.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Field returns the named member of an object value. Missing members and
// non-object receivers yield Null.
func (v Value) Field(name string) Value {
	if v.kind != KindObject {
		return Value{}
	}
	f, _ := v.obj.Get(name)
	return f
}

// Str returns the string payload or "" for any other kind.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// Text renders scalars as plain text (strings unquoted) and containers as JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return v.String()
	}
}

// Interface converts v back into plain Go values (map[string]any, []any, ...).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		v.obj.Range(func(key string, val Value) bool {
			out[key] = val.Interface()
			return true
		})
		return out
	default:
		return nil
	}
}

// Equal reports deep equality. Int and Double compare by numeric value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		a, aok := v.AsDouble()
		b, bok := o.AsDouble()
		return aok && bok && a == b
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindDouble:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.equal(o.obj)
	}
	return false
}

// MarshalJSON encodes v, keeping object members in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns the compact JSON encoding of v.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid: %v>", err)
	}
	return string(b)
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindDouble:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			buf.WriteString("null")
			return nil
		}
		b, err := json.Marshal(v.f)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindString:
		writeString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		first := true
		var err error
		v.obj.Range(func(key string, val Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeString(buf, key)
			buf.WriteByte(':')
			err = val.encode(buf)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encode appends a newline; strip it.
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1)
}
