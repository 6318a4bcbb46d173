package document

import (
	"github.com/getmockd/specmock/pkg/jsonvalue"
	"github.com/getmockd/specmock/pkg/schema"
)

// Dialect identifies the input document flavour.
type Dialect int

// Supported dialects.
const (
	DialectUnknown Dialect = iota
	DialectSwagger2
	DialectOpenAPI3
)

// String returns a human-readable dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectSwagger2:
		return "swagger 2.0"
	case DialectOpenAPI3:
		return "openapi 3"
	default:
		return "unknown"
	}
}

// Parameter locations.
const (
	InPath     = "path"
	InQuery    = "query"
	InHeader   = "header"
	InCookie   = "cookie"
	InBody     = "body"
	InFormData = "formData"
)

// Document is the dialect-independent view of a Swagger/OpenAPI document.
type Document struct {
	Dialect Dialect
	Title   string
	Version string

	// BasePath is already applied to every Operation.Path.
	BasePath string

	Operations  []*Operation
	Definitions schema.Definitions
}

// Operation is one (method, URL template) pair.
type Operation struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Parameters  []Parameter
	RequestBody *RequestBody

	// ContentType is the produced media type declared for the operation.
	ContentType string

	// Responses are sorted by status code; a "default" response has code 0
	// and sorts first.
	Responses []*Response
}

// PathParameter returns the path parameter with the given name.
func (op *Operation) PathParameter(name string) (Parameter, bool) {
	for _, p := range op.Parameters {
		if p.In == InPath && p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Parameter describes one declared operation parameter.
type Parameter struct {
	Name     string
	In       string
	Type     schema.Kind
	Format   string
	Required bool
	Schema   *schema.Node
}

// RequestBody is the declared request payload.
type RequestBody struct {
	ContentType string
	Required    bool
	Schema      *schema.Node
}

// Response is one declared status code outcome.
type Response struct {
	StatusCode  int
	Key         string
	Description string
	ContentType string
	Headers     []Header

	// Schema is nil for body-less responses.
	Schema *schema.Node

	// Example is a media-type level example; it wins over Schema.
	Example *jsonvalue.Value
}

// Header is a declared response header.
type Header struct {
	Name   string
	Schema *schema.Node
}
