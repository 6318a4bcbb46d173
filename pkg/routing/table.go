package routing

import (
	"sort"
	"strings"

	"github.com/getmockd/specmock/pkg/document"
)

// Table is the immutable, ordered set of endpoints.
type Table struct {
	endpoints []*Endpoint
	static    map[string]*Endpoint
}

// NewTable compiles ops into a routing table.
func NewTable(ops []*document.Operation) *Table {
	var noParam, hasParam []*Endpoint
	for _, op := range ops {
		if op == nil {
			continue
		}
		ep := NewEndpoint(op)
		if ep.HasPathParameters {
			hasParam = append(hasParam, ep)
		} else {
			noParam = append(noParam, ep)
		}
	}

	sort.SliceStable(noParam, func(i, j int) bool {
		if noParam[i].Path != noParam[j].Path {
			return noParam[i].Path < noParam[j].Path
		}
		return noParam[i].Method < noParam[j].Method
	})
	sort.SliceStable(hasParam, func(i, j int) bool {
		a, b := hasParam[i], hasParam[j]
		if a.literalSegments != b.literalSegments {
			return a.literalSegments > b.literalSegments
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Method < b.Method
	})

	t := &Table{
		endpoints: append(noParam, hasParam...),
		static:    make(map[string]*Endpoint, len(noParam)),
	}
	for _, ep := range noParam {
		key := staticKey(ep.Method, ep.Path)
		if _, dup := t.static[key]; !dup {
			t.static[key] = ep
		}
	}
	return t
}

// Endpoints returns the endpoints in match order.
func (t *Table) Endpoints() []*Endpoint {
	out := make([]*Endpoint, len(t.endpoints))
	copy(out, t.endpoints)
	return out
}

// Len returns the number of endpoints.
func (t *Table) Len() int {
	return len(t.endpoints)
}

// Match finds the endpoint for a request and extracts its path parameters.
func (t *Table) Match(method, path string) (*Endpoint, map[string]string, bool) {
	method = strings.ToUpper(method)
	if ep, ok := t.static[staticKey(method, path)]; ok {
		return ep, map[string]string{}, true
	}
	for _, ep := range t.endpoints {
		if !ep.HasPathParameters || ep.Method != method || !ep.Matches(path) {
			continue
		}
		params, ok := PathParameters(ep.Path, path)
		if !ok {
			continue
		}
		return ep, params, true
	}
	return nil, nil, false
}

// Methods returns the methods of every endpoint matching path, in table
// order. It backs 405 responses.
func (t *Table) Methods(path string) []string {
	var out []string
	seen := map[string]bool{}
	for _, ep := range t.endpoints {
		if ep.Matches(path) && !seen[ep.Method] {
			seen[ep.Method] = true
			out = append(out, ep.Method)
		}
	}
	return out
}

func staticKey(method, path string) string {
	return method + " " + path
}
