package schema

import (
	"github.com/getmockd/specmock/pkg/jsonvalue"
)

// FromValue builds a Node from a decoded schema object. It never fails:
// missing or mistyped keywords are ignored. A non-object input yields nil.
func FromValue(v jsonvalue.Value) *Node {
	if v.Kind() != jsonvalue.KindObject {
		return nil
	}

	n := &Node{}
	if ref := v.Field("$ref").Str(); ref != "" {
		n.Kind = KindReference
		n.Ref = RefName(ref)
		// Siblings of $ref are ignored apart from an example.
		n.Example = optionalValue(v, "example")
		return n
	}

	n.Kind = kindOf(v.Field("type"))
	n.Format = v.Field("format").Str()
	n.Example = optionalValue(v, "example")
	n.Default = optionalValue(v, "default")
	if e := v.Field("enum").Items(); len(e) > 0 {
		n.Enum = e
	}

	n.Items = FromValue(v.Field("items"))
	if props := v.Field("properties").Object(); props != nil {
		n.Properties = NewProperties()
		props.Range(func(name string, pv jsonvalue.Value) bool {
			if child := FromValue(pv); child != nil {
				n.Properties.Add(name, child)
			}
			return true
		})
	}
	if ap := v.Field("additionalProperties"); ap.Kind() == jsonvalue.KindObject {
		n.AdditionalProperties = FromValue(ap)
	} else if b, ok := ap.AsBool(); ok && b {
		n.AdditionalProperties = &Node{Kind: KindString}
	}

	n.Minimum = optionalFloat(v, "minimum")
	n.Maximum = optionalFloat(v, "maximum")
	n.ExclusiveMinimum, n.Minimum = exclusiveBound(v.Field("exclusiveMinimum"), n.Minimum)
	n.ExclusiveMaximum, n.Maximum = exclusiveBound(v.Field("exclusiveMaximum"), n.Maximum)
	n.MinLength = optionalInt(v, "minLength")
	n.MaxLength = optionalInt(v, "maxLength")
	n.MinItems = optionalInt(v, "minItems")
	n.MaxItems = optionalInt(v, "maxItems")

	n.AllOf = fromList(v.Field("allOf"))
	n.OneOf = fromList(v.Field("oneOf"))
	n.AnyOf = fromList(v.Field("anyOf"))

	if n.Kind == KindUnknown {
		switch {
		case n.Properties != nil || n.AdditionalProperties != nil:
			n.Kind = KindObject
		case n.Items != nil:
			n.Kind = KindArray
		}
	}
	return n
}

// kindOf accepts both `type: string` and the 3.1 `type: [string, "null"]` form.
func kindOf(t jsonvalue.Value) Kind {
	if s, ok := t.AsString(); ok {
		return ParseKind(s)
	}
	for _, item := range t.Items() {
		if s := item.Str(); s != "" && s != "null" {
			return ParseKind(s)
		}
	}
	return KindUnknown
}

func fromList(v jsonvalue.Value) []*Node {
	items := v.Items()
	if len(items) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(items))
	for _, item := range items {
		if n := FromValue(item); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func optionalValue(v jsonvalue.Value, key string) *jsonvalue.Value {
	obj := v.Object()
	if obj == nil {
		return nil
	}
	val, ok := obj.Get(key)
	if !ok {
		return nil
	}
	return &val
}

func optionalFloat(v jsonvalue.Value, key string) *float64 {
	f, ok := v.Field(key).AsDouble()
	if !ok {
		return nil
	}
	return &f
}

func optionalInt(v jsonvalue.Value, key string) *int {
	i, ok := v.Field(key).AsInt()
	if !ok || i < 0 {
		return nil
	}
	n := int(i)
	return &n
}

// exclusiveBound handles the OpenAPI 3.0 boolean form and the 3.1 numeric form
// of exclusiveMinimum/exclusiveMaximum.
func exclusiveBound(v jsonvalue.Value, bound *float64) (bool, *float64) {
	if b, ok := v.AsBool(); ok {
		return b, bound
	}
	if f, ok := v.AsDouble(); ok {
		return true, &f
	}
	return false, bound
}
