// Package routing compiles declared operations into ordered, matchable
// endpoints.
//
// Endpoints without path parameters always match before parameterized ones,
// so a literal route such as /user/login wins over /user/{username} no matter
// the declaration order.
package routing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/getmockd/specmock/pkg/document"
	"github.com/getmockd/specmock/pkg/schema"
)

// Segment patterns for typed path parameters.
const (
	IntegerPattern = `-?[0-9]+`
	NumberPattern  = `-?[0-9]+(?:\.[0-9]+)?`
	DefaultPattern = `[^/]+`
)

var paramRe = regexp.MustCompile(`\{([^{}/]+)\}`)

// Endpoint is the routable form of one operation.
type Endpoint struct {
	Method string

	// Path is the URL template, base path included.
	Path string

	// Route equals Path for literal endpoints and is the anchored regular
	// expression for parameterized ones.
	Route string

	HasPathParameters bool
	Operation         *document.Operation

	// MuxTemplate is Path with every parameter constrained to its pattern,
	// in gorilla/mux template syntax.
	MuxTemplate string

	literalSegments int
	re              *regexp.Regexp
}

// NewEndpoint compiles op.
func NewEndpoint(op *document.Operation) *Endpoint {
	ep := &Endpoint{
		Method:      strings.ToUpper(op.Method),
		Path:        op.Path,
		Route:       op.Path,
		Operation:   op,
		MuxTemplate: op.Path,
	}
	if !paramRe.MatchString(op.Path) {
		ep.literalSegments = len(splitPath(op.Path))
		return ep
	}

	ep.HasPathParameters = true
	ep.Route = RoutePattern(op)
	ep.re = regexp.MustCompile(ep.Route)
	ep.MuxTemplate = muxTemplate(op)
	for _, seg := range splitPath(op.Path) {
		if !strings.Contains(seg, "{") {
			ep.literalSegments++
		}
	}
	return ep
}

// Matches reports whether the concrete path matches the endpoint's route.
func (ep *Endpoint) Matches(path string) bool {
	if !ep.HasPathParameters {
		return ep.Path == path
	}
	return ep.re.MatchString(path)
}

// RoutePattern returns the anchored regular expression matching op.Path.
// Literal text is quoted; each {name} is replaced by the pattern for the
// declared type of path parameter name.
func RoutePattern(op *document.Operation) string {
	var b strings.Builder
	b.WriteByte('^')
	forEachPart(op.Path, func(literal, name string) {
		if name == "" {
			b.WriteString(regexp.QuoteMeta(literal))
			return
		}
		b.WriteString(ParameterPattern(op, name))
	})
	b.WriteByte('$')
	return b.String()
}

// ParameterPattern returns the segment pattern for the named path parameter.
func ParameterPattern(op *document.Operation, name string) string {
	p, ok := op.PathParameter(name)
	if !ok {
		return DefaultPattern
	}
	switch p.Type {
	case schema.KindInteger:
		return IntegerPattern
	case schema.KindNumber:
		return NumberPattern
	default:
		return DefaultPattern
	}
}

// muxTemplate rewrites {name} as {pN:pattern}. Variables are renamed because
// mux reserves ':' and '}' in names; values are extracted by PathParameters.
func muxTemplate(op *document.Operation) string {
	var b strings.Builder
	i := 0
	forEachPart(op.Path, func(literal, name string) {
		if name == "" {
			b.WriteString(literal)
			return
		}
		b.WriteString("{p" + strconv.Itoa(i) + ":" + ParameterPattern(op, name) + "}")
		i++
	})
	return b.String()
}

// forEachPart splits a template into literal runs and parameter names.
func forEachPart(path string, fn func(literal, name string)) {
	last := 0
	for _, m := range paramRe.FindAllStringSubmatchIndex(path, -1) {
		if m[0] > last {
			fn(path[last:m[0]], "")
		}
		fn("", path[m[2]:m[3]])
		last = m[1]
	}
	if last < len(path) {
		fn(path[last:], "")
	}
}

// PathParameters binds template parameters to the segments of a concrete
// path by position. The two paths must have the same number of segments.
func PathParameters(template, path string) (map[string]string, bool) {
	ts, ps := strings.Split(template, "/"), strings.Split(path, "/")
	if len(ts) != len(ps) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range ts {
		if seg == ps[i] {
			continue
		}
		if !strings.Contains(seg, "{") {
			return nil, false
		}
		if m := paramRe.FindStringSubmatch(seg); m != nil && m[0] == seg {
			params[m[1]] = ps[i]
			continue
		}
		if !bindSegment(seg, ps[i], params) {
			return nil, false
		}
	}
	return params, true
}

// bindSegment handles segments mixing literal text and parameters, such as
// "{id}.json".
func bindSegment(template, segment string, params map[string]string) bool {
	var b strings.Builder
	var names []string
	b.WriteByte('^')
	forEachPart(template, func(literal, name string) {
		if name == "" {
			b.WriteString(regexp.QuoteMeta(literal))
			return
		}
		names = append(names, name)
		b.WriteString("(.+?)")
	})
	b.WriteByte('$')

	m := regexp.MustCompile(b.String()).FindStringSubmatch(segment)
	if m == nil {
		return false
	}
	for i, name := range names {
		params[name] = m[i+1]
	}
	return true
}

func splitPath(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
