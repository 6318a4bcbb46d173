// Package resolver synthesizes concrete JSON values from schema nodes.
//
// Resolution precedence for a node is: its example (coerced to the declared
// kind), the first enum value, the provider's value for the declared format,
// then the provider's default for the kind. Arrays and objects recurse;
// references resolve through the definitions table with a bounded ancestor
// chain so self-referential schemas terminate.
package resolver

import (
	"strconv"
	"strings"

	"github.com/getmockd/specmock/pkg/datagen"
	"github.com/getmockd/specmock/pkg/jsonvalue"
	"github.com/getmockd/specmock/pkg/schema"
)

// maxRefOccurrences is how many times one definition may appear in the
// ancestor chain before resolution stops descending into it.
const maxRefOccurrences = 2

// additionalPropPrefix names synthesized keys when the owning property has no
// name, as for a response body or an array item.
const additionalPropPrefix = "additionalProp"

// Options controls array fan-out and the scalar provider.
type Options struct {
	Provider datagen.Provider

	// RootArrayCount is the element count of an array that is the resolved
	// value itself; ChildArrayCount applies at every deeper level.
	RootArrayCount  int
	ChildArrayCount int

	// DistinctElements resolves each array slot separately instead of
	// replicating one resolved item.
	DistinctElements bool
}

// Ancestors is the chain of definition names being resolved, outermost first.
// Push never modifies the receiver, so one chain can be shared by sibling
// resolutions running concurrently.
type Ancestors []string

// Push returns a new chain with name appended.
func (a Ancestors) Push(name string) Ancestors {
	out := make(Ancestors, len(a), len(a)+1)
	copy(out, a)
	return append(out, name)
}

// Count reports how often name occurs in the chain.
func (a Ancestors) Count(name string) int {
	n := 0
	for _, s := range a {
		if s == name {
			n++
		}
	}
	return n
}

// Resolver turns schema nodes into values. It holds no per-call state and is
// safe for concurrent use when its Provider is.
type Resolver struct {
	defs schema.Definitions
	opts Options
}

// New creates a Resolver over defs. A nil Provider uses the built-in fixed
// defaults.
func New(defs schema.Definitions, opts Options) *Resolver {
	if opts.Provider == nil {
		opts.Provider = datagen.NewFixed(datagen.DefaultValues())
	}
	opts.RootArrayCount = max(opts.RootArrayCount, 0)
	opts.ChildArrayCount = max(opts.ChildArrayCount, 0)
	return &Resolver{defs: defs, opts: opts}
}

// Resolve produces a value for node. The boolean is false when no value was
// produced: a nil node, an unknown reference or a cut reference cycle.
func (r *Resolver) Resolve(node *schema.Node, ancestors Ancestors) (jsonvalue.Value, bool) {
	return r.resolve(node, ancestors, 0, "")
}

// ResolveDefinition resolves the named definition as a top-level value.
func (r *Resolver) ResolveDefinition(name string) (jsonvalue.Value, bool) {
	return r.Resolve(&schema.Node{Kind: schema.KindReference, Ref: name}, nil)
}

func (r *Resolver) resolve(n *schema.Node, anc Ancestors, depth int, name string) (jsonvalue.Value, bool) {
	if n == nil {
		return jsonvalue.Null(), false
	}

	if n.IsReference() {
		def, ok := r.defs.Lookup(n.Ref)
		if !ok {
			return jsonvalue.Null(), false
		}
		if n.Example != nil {
			return coerce(*n.Example, def.Kind), true
		}
		if anc.Count(n.Ref) >= maxRefOccurrences {
			return jsonvalue.Null(), false
		}
		return r.resolve(def, anc.Push(n.Ref), depth, name)
	}

	if n.Example != nil {
		return coerce(*n.Example, n.Kind), true
	}
	if len(n.Enum) > 0 {
		return coerce(n.Enum[0], n.Kind), true
	}

	switch {
	case len(n.AllOf) > 0:
		return r.allOf(n, anc, depth, name)
	case len(n.OneOf) > 0:
		return r.resolve(n.OneOf[0], anc, depth, name)
	case len(n.AnyOf) > 0:
		return r.resolve(n.AnyOf[0], anc, depth, name)
	}

	switch n.Kind {
	case schema.KindArray:
		return r.array(n, anc, depth), true
	case schema.KindObject:
		return jsonvalue.FromObject(r.object(n, anc, depth, name)), true
	}
	if n.Format != "" {
		return r.opts.Provider.ForFormat(n.Format, n), true
	}
	return r.opts.Provider.ForKind(n.Kind, n), true
}

// fanout is the configured element count at the given nesting depth.
func (r *Resolver) fanout(depth int) int {
	if depth == 0 {
		return r.opts.RootArrayCount
	}
	return r.opts.ChildArrayCount
}

func (r *Resolver) array(n *schema.Node, anc Ancestors, depth int) jsonvalue.Value {
	if n.Items == nil {
		return jsonvalue.Array()
	}
	if whole, ok := r.itemSequenceExample(n.Items); ok {
		return whole
	}

	count := r.fanout(depth)
	items := make([]jsonvalue.Value, 0, count)
	if r.opts.DistinctElements {
		for range count {
			v, ok := r.resolve(n.Items, anc, depth+1, "")
			if !ok {
				return jsonvalue.Array()
			}
			items = append(items, v)
		}
		return jsonvalue.Array(items...)
	}

	v, ok := r.resolve(n.Items, anc, depth+1, "")
	if !ok {
		return jsonvalue.Array()
	}
	for range count {
		items = append(items, v)
	}
	return jsonvalue.Array(items...)
}

// itemSequenceExample reports an item-level example that is itself a
// sequence while the item schema is not array-typed. Such an example
// describes the whole array and is used in place of replication.
func (r *Resolver) itemSequenceExample(items *schema.Node) (jsonvalue.Value, bool) {
	kind := items.Kind
	example := items.Example
	if items.IsReference() {
		def, ok := r.defs.Lookup(items.Ref)
		if !ok {
			return jsonvalue.Null(), false
		}
		kind = def.Kind
		if example == nil {
			example = def.Example
		}
	}
	if example == nil || example.Kind() != jsonvalue.KindArray || kind == schema.KindArray {
		return jsonvalue.Null(), false
	}
	return *example, true
}

func (r *Resolver) object(n *schema.Node, anc Ancestors, depth int, name string) *jsonvalue.Object {
	obj := jsonvalue.NewObject()
	n.Properties.Range(func(prop string, child *schema.Node) {
		if v, ok := r.resolve(child, anc, depth+1, prop); ok {
			obj.Set(prop, v)
		}
	})

	if n.AdditionalProperties != nil {
		prefix := name
		if prefix == "" {
			prefix = additionalPropPrefix
		}
		for i := range r.fanout(depth + 1) {
			key := prefix + strconv.Itoa(i+1)
			if v, ok := r.resolve(n.AdditionalProperties, anc, depth+1, key); ok {
				obj.Set(key, v)
			}
		}
	}
	return obj
}

// allOf merges the members of every object-valued branch with the node's own
// properties. A composition that yields no object falls back to the first
// resolved branch.
func (r *Resolver) allOf(n *schema.Node, anc Ancestors, depth int, name string) (jsonvalue.Value, bool) {
	merged := jsonvalue.NewObject()
	isObject := n.Kind == schema.KindObject || n.Properties.Len() > 0
	var first *jsonvalue.Value

	for _, branch := range n.AllOf {
		v, ok := r.resolve(branch, anc, depth, name)
		if !ok {
			continue
		}
		if obj := v.Object(); obj != nil {
			isObject = true
			obj.Range(func(k string, fv jsonvalue.Value) bool {
				merged.Set(k, fv)
				return true
			})
			continue
		}
		if first == nil {
			first = &v
		}
	}
	if isObject {
		own := r.object(n, anc, depth, name)
		own.Range(func(k string, fv jsonvalue.Value) bool {
			merged.Set(k, fv)
			return true
		})
		return jsonvalue.FromObject(merged), true
	}
	if first != nil {
		return *first, true
	}
	return jsonvalue.Null(), false
}

// coerce converts an example literal to the declared kind where the
// conversion is lossless; anything else is returned verbatim.
func coerce(v jsonvalue.Value, kind schema.Kind) jsonvalue.Value {
	switch kind {
	case schema.KindString:
		switch v.Kind() {
		case jsonvalue.KindBool, jsonvalue.KindInt, jsonvalue.KindDouble:
			return jsonvalue.String(v.Text())
		}
	case schema.KindInteger:
		if i, ok := v.AsInt(); ok {
			return jsonvalue.Int(i)
		}
		if s, ok := v.AsString(); ok {
			if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				return jsonvalue.Int(i)
			}
		}
	case schema.KindNumber:
		if v.Kind() == jsonvalue.KindInt || v.Kind() == jsonvalue.KindDouble {
			return v
		}
		if s, ok := v.AsString(); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return jsonvalue.Double(f)
			}
		}
	case schema.KindBoolean:
		if s, ok := v.AsString(); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return jsonvalue.Bool(b)
			}
		}
	}
	return v
}
