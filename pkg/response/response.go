// Package response turns declared operation responses into servable status,
// header and body triples.
package response

import (
	"sort"
	"strings"

	"github.com/getmockd/specmock/pkg/document"
	"github.com/getmockd/specmock/pkg/jsonvalue"
	"github.com/getmockd/specmock/pkg/resolver"
)

// DefaultContentType is used for synthesized bodies when neither the response
// nor the operation declares a media type.
const DefaultContentType = "application/json"

// Resolved is one fully synthesized response.
type Resolved struct {
	StatusCode  int
	Headers     map[string]string
	Body        []byte
	ContentType string
	Description string

	// IsDefault marks the response served when no datasource overrides it.
	IsDefault bool
}

// Empty is the fallback for operations without a 2xx response.
func Empty() Resolved {
	return Resolved{StatusCode: 200, Headers: map[string]string{}, IsDefault: true}
}

// Builder synthesizes responses through a Resolver.
type Builder struct {
	resolver *resolver.Resolver
}

// NewBuilder creates a Builder.
func NewBuilder(r *resolver.Resolver) *Builder {
	return &Builder{resolver: r}
}

// BuildAll resolves every response of op that has a concrete status code,
// sorted by status code, and marks the default one.
func (b *Builder) BuildAll(op *document.Operation) []Resolved {
	out := make([]Resolved, 0, len(op.Responses))
	for _, r := range op.Responses {
		if r.StatusCode == 0 {
			continue
		}
		out = append(out, b.Build(op, r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StatusCode < out[j].StatusCode })
	if i := defaultIndex(out); i >= 0 {
		out[i].IsDefault = true
	}
	return out
}

// Build resolves a single declared response of op.
func (b *Builder) Build(op *document.Operation, r *document.Response) Resolved {
	res := Resolved{
		StatusCode:  r.StatusCode,
		Headers:     make(map[string]string, len(r.Headers)),
		Description: r.Description,
	}

	for _, h := range r.Headers {
		if h.Schema == nil {
			continue
		}
		if h.Schema.Default != nil {
			res.Headers[h.Name] = h.Schema.Default.Text()
			continue
		}
		if v, ok := b.resolver.Resolve(h.Schema, nil); ok {
			res.Headers[h.Name] = v.Text()
		}
	}

	ct := r.ContentType
	if ct == "" {
		ct = op.ContentType
	}

	var body jsonvalue.Value
	var ok bool
	if r.Example != nil {
		body, ok = *r.Example, true
	} else {
		body, ok = b.resolver.Resolve(r.Schema, nil)
	}
	if !ok {
		return res
	}

	if ct == "" {
		ct = DefaultContentType
	}
	res.ContentType = ct
	res.Body = Encode(body, ct)
	return res
}

// Default returns the response with the lowest status code in [200,299], or
// Empty when there is none.
func Default(responses []Resolved) Resolved {
	if i := defaultIndex(responses); i >= 0 {
		r := responses[i]
		r.IsDefault = true
		return r
	}
	return Empty()
}

func defaultIndex(responses []Resolved) int {
	best := -1
	for i, r := range responses {
		if r.StatusCode < 200 || r.StatusCode > 299 {
			continue
		}
		if best < 0 || r.StatusCode < responses[best].StatusCode {
			best = i
		}
	}
	return best
}

// Encode serializes v for the given media type. Strings bound for non-JSON
// media types are written raw; everything else is JSON.
func Encode(v jsonvalue.Value, contentType string) []byte {
	if s, ok := v.AsString(); ok && !isJSON(contentType) {
		return []byte(s)
	}
	return []byte(v.String())
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return ct == "" || ct == "application/json" || strings.HasSuffix(ct, "+json")
}
