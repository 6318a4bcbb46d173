// Package schema holds the immutable JSON-Schema model that response bodies
// are synthesized from.
package schema

import (
	"strings"

	"github.com/getmockd/specmock/pkg/jsonvalue"
)

// Kind is the resolution path of a Node.
type Kind uint8

// Node kinds. KindReference nodes resolve through Definitions.
const (
	KindUnknown Kind = iota
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindArray
	KindObject
	KindReference
)

// ParseKind maps a JSON-Schema type keyword to a Kind.
func ParseKind(s string) Kind {
	switch strings.ToLower(s) {
	case "string":
		return KindString
	case "integer":
		return KindInteger
	case "number":
		return KindNumber
	case "boolean":
		return KindBoolean
	case "array":
		return KindArray
	case "object":
		return KindObject
	default:
		return KindUnknown
	}
}

// String returns the JSON-Schema keyword for k.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Node is one schema fragment. Nodes are built once at parse time and shared
// read-only between operations and request handlers.
type Node struct {
	Kind   Kind
	Format string

	// Ref is the definition name when Kind is KindReference.
	Ref string

	Items                *Node
	Properties           *Properties
	AdditionalProperties *Node

	// Example pre-empts generation when non-nil.
	Example *jsonvalue.Value
	Enum    []jsonvalue.Value
	Default *jsonvalue.Value

	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MinLength        *int
	MaxLength        *int
	MinItems         *int
	MaxItems         *int

	AllOf []*Node
	OneOf []*Node
	AnyOf []*Node
}

// IsReference reports whether n resolves through a named definition.
func (n *Node) IsReference() bool {
	return n != nil && n.Kind == KindReference && n.Ref != ""
}

// Properties is an ordered name -> Node mapping.
type Properties struct {
	names []string
	nodes map[string]*Node
}

// NewProperties creates an empty property set.
func NewProperties() *Properties {
	return &Properties{nodes: make(map[string]*Node)}
}

// Add appends a property; a repeated name replaces the earlier node in place.
func (p *Properties) Add(name string, n *Node) {
	if _, ok := p.nodes[name]; !ok {
		p.names = append(p.names, name)
	}
	p.nodes[name] = n
}

// Get returns the named property.
func (p *Properties) Get(name string) (*Node, bool) {
	if p == nil {
		return nil, false
	}
	n, ok := p.nodes[name]
	return n, ok
}

// Names returns the property names in declaration order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Range calls fn for each property in declaration order.
func (p *Properties) Range(fn func(name string, n *Node)) {
	if p == nil {
		return
	}
	for _, name := range p.names {
		fn(name, p.nodes[name])
	}
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Definitions maps definition names ("definitions" in Swagger 2.0,
// "components.schemas" in OpenAPI 3) to their schemas.
type Definitions map[string]*Node

// Lookup returns the named definition.
func (d Definitions) Lookup(name string) (*Node, bool) {
	n, ok := d[name]
	return n, ok && n != nil
}

// RefName extracts the definition name from a JSON reference such as
// "#/definitions/Pet" or "#/components/schemas/Pet". JSON-pointer escapes
// are decoded.
func RefName(ref string) string {
	if ref == "" {
		return ""
	}
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name = ref[i+1:]
	}
	name = strings.ReplaceAll(name, "~1", "/")
	return strings.ReplaceAll(name, "~0", "~")
}
