package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

// Parse decodes JSON or YAML text into a Value, preserving mapping order.
// Both go through yaml.Node. JSON that yaml.v3 refuses, such as a string
// holding an escaped surrogate pair ("\ud83d\ude00"), is decoded with the
// encoding/json tokenizer instead.
func Parse(data []byte) (Value, error) {
	var root yaml.Node
	err := yaml.Unmarshal(data, &root)
	if err == nil {
		return FromYAML(&root), nil
	}
	if trimmed := bytes.TrimSpace(data); json.Valid(trimmed) {
		return parseJSON(trimmed)
	}
	return Value{}, err
}

func parseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("jsonvalue: trailing data after top-level value")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, _ := keyTok.(string)
				val, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return FromObject(obj), nil
		case '[':
			items := []Value{}
			for dec.More() {
				val, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Array(items...), nil
		}
		return Value{}, fmt.Errorf("jsonvalue: unexpected delimiter %q", t)
	default:
		return FromAny(t), nil
	}
}

// FromYAML converts a decoded yaml.Node tree. Aliases are followed; merge
// keys are kept as ordinary members.
func FromYAML(n *yaml.Node) Value {
	return fromYAML(n, 0)
}

// maxAliasDepth guards against alias loops in hostile documents.
const maxAliasDepth = 64

func fromYAML(n *yaml.Node, depth int) Value {
	if n == nil || depth > maxAliasDepth {
		return Value{}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Value{}
		}
		return fromYAML(n.Content[0], depth)
	case yaml.AliasNode:
		return fromYAML(n.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			items = append(items, fromYAML(c, depth))
		}
		return Array(items...)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			obj.Set(n.Content[i].Value, fromYAML(n.Content[i+1], depth))
		}
		return FromObject(obj)
	case yaml.ScalarNode:
		return scalarFromYAML(n)
	}
	return Value{}
}

func scalarFromYAML(n *yaml.Node) Value {
	switch n.ShortTag() {
	case "!!null":
		return Null()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return Bool(b)
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i)
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return Double(f)
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return Double(f)
		}
	}
	return String(n.Value)
}

// FromAny converts plain Go values (as produced by encoding/json or yaml
// decoding into interface{}) into a Value. Map keys are sorted since Go maps
// carry no order.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return uintValue(uint64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return uintValue(t)
	case float32:
		return Double(float64(t))
	case float64:
		return Double(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		if f, err := t.Float64(); err == nil {
			return Double(f)
		}
		return String(t.String())
	case string:
		return String(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Array(items...)
	case []string:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = String(item)
		}
		return Array(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromAny(t[k]))
		}
		return FromObject(obj)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = val
		}
		return FromAny(m)
	default:
		return String(fmt.Sprint(t))
	}
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return Double(float64(u))
	}
	return Int(int64(u))
}
