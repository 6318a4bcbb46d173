package document

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getmockd/specmock/pkg/jsonvalue"
	"github.com/getmockd/specmock/pkg/schema"
)

// Errors returned by Parse. Anything past decoding degrades silently.
var (
	ErrDecode    = errors.New("document is not valid JSON or YAML")
	ErrNotObject = errors.New("document root is not a mapping")
)

// methods is the order operations are collected in for each path.
var methods = []string{"GET", "PUT", "POST", "DELETE", "OPTIONS", "HEAD", "PATCH", "TRACE"}

// maxRefHops bounds chains of local $ref indirection outside schemas.
const maxRefHops = 8

type options struct {
	serverBasePath bool
}

// Option configures Parse.
type Option func(*options)

// WithServerBasePath prefixes OpenAPI 3 paths with the path component of the
// first declared server URL.
func WithServerBasePath(enabled bool) Option {
	return func(o *options) { o.serverBasePath = enabled }
}

// Parse decodes a Swagger 2.0 or OpenAPI 3 document from JSON or YAML.
func Parse(data []byte, opts ...Option) (*Document, error) {
	root, err := jsonvalue.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if root.IsNull() {
		return Empty(), nil
	}
	if root.Kind() != jsonvalue.KindObject {
		return nil, ErrNotObject
	}
	return FromValue(root, opts...), nil
}

// Empty returns a document with no operations.
func Empty() *Document {
	return &Document{Definitions: schema.Definitions{}}
}

// FromValue normalizes an already decoded document tree.
func FromValue(root jsonvalue.Value, opts ...Option) *Document {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := &parser{root: root, opts: o}
	return p.parse()
}

type parser struct {
	root     jsonvalue.Value
	opts     options
	dialect  Dialect
	produces string
	defs     schema.Definitions
}

func (p *parser) parse() *Document {
	doc := &Document{
		Dialect:     detectDialect(p.root),
		Title:       p.root.Field("info").Field("title").Str(),
		Version:     p.root.Field("info").Field("version").Str(),
		Definitions: schema.Definitions{},
	}
	p.dialect = doc.Dialect
	p.defs = doc.Definitions

	p.collectDefinitions(doc.Definitions, p.root.Field("definitions"))
	p.collectDefinitions(doc.Definitions, p.root.Field("components").Field("schemas"))

	switch doc.Dialect {
	case DialectSwagger2:
		doc.BasePath = normalizeBasePath(p.root.Field("basePath").Str())
		p.produces = firstString(p.root.Field("produces"))
	case DialectOpenAPI3:
		if p.opts.serverBasePath {
			doc.BasePath = normalizeBasePath(serverBasePath(p.root.Field("servers")))
		}
	}

	paths := p.root.Field("paths").Object()
	keys := paths.Keys()
	sort.Strings(keys)
	for _, path := range keys {
		item, _ := paths.Get(path)
		item = p.deref(item)
		shared := item.Field("parameters")
		for _, method := range methods {
			opValue := item.Field(strings.ToLower(method))
			if opValue.Kind() != jsonvalue.KindObject {
				continue
			}
			doc.Operations = append(doc.Operations, p.operation(method, doc.BasePath+path, shared, opValue))
		}
	}
	return doc
}

func detectDialect(root jsonvalue.Value) Dialect {
	if v := root.Field("openapi").Text(); strings.HasPrefix(v, "3") {
		return DialectOpenAPI3
	}
	if v := root.Field("swagger").Text(); strings.HasPrefix(v, "2") {
		return DialectSwagger2
	}
	return DialectUnknown
}

func (p *parser) collectDefinitions(into schema.Definitions, defs jsonvalue.Value) {
	defs.Object().Range(func(name string, v jsonvalue.Value) bool {
		if n := schema.FromValue(v); n != nil {
			into[name] = n
		}
		return true
	})
}

func (p *parser) operation(method, path string, shared, v jsonvalue.Value) *Operation {
	op := &Operation{
		Method:      method,
		Path:        path,
		OperationID: v.Field("operationId").Str(),
		Summary:     v.Field("summary").Str(),
	}
	op.Parameters = p.parameters(shared, v.Field("parameters"))

	if p.dialect == DialectSwagger2 || p.dialect == DialectUnknown {
		op.ContentType = firstString(v.Field("produces"))
		if op.ContentType == "" {
			op.ContentType = p.produces
		}
		op.RequestBody = p.swaggerBody(op.Parameters, v.Field("consumes"))
	}
	if rb := p.deref(v.Field("requestBody")); rb.Kind() == jsonvalue.KindObject {
		ct, media := pickContent(rb.Field("content"))
		op.RequestBody = &RequestBody{
			ContentType: ct,
			Required:    boolField(rb, "required"),
			Schema:      schema.FromValue(media.Field("schema")),
		}
	}

	responses := v.Field("responses").Object()
	responses.Range(func(key string, rv jsonvalue.Value) bool {
		code, ok := parseStatusKey(key)
		if !ok {
			return true
		}
		op.Responses = append(op.Responses, p.response(op, key, code, p.deref(rv)))
		return true
	})
	sort.SliceStable(op.Responses, func(i, j int) bool {
		return op.Responses[i].StatusCode < op.Responses[j].StatusCode
	})

	if op.ContentType == "" {
		for _, r := range op.Responses {
			if r.StatusCode >= 200 && r.StatusCode <= 299 && r.ContentType != "" {
				op.ContentType = r.ContentType
				break
			}
		}
	}
	return op
}

func (p *parser) parameters(shared, own jsonvalue.Value) []Parameter {
	var out []Parameter
	index := map[string]int{}
	add := func(list jsonvalue.Value) {
		for _, raw := range list.Items() {
			pv := p.deref(raw)
			name := pv.Field("name").Str()
			if name == "" {
				continue
			}
			param := Parameter{
				Name:     name,
				In:       pv.Field("in").Str(),
				Required: boolField(pv, "required"),
			}
			if s := schema.FromValue(pv.Field("schema")); s != nil {
				param.Schema = s
				resolved := s
				if def, ok := p.defs.Lookup(s.Ref); s.IsReference() && ok {
					resolved = def
				}
				param.Type = resolved.Kind
				param.Format = resolved.Format
			}
			if t := pv.Field("type").Str(); t != "" {
				param.Type = schema.ParseKind(t)
				param.Format = pv.Field("format").Str()
			}
			key := param.In + "\x00" + param.Name
			if i, ok := index[key]; ok {
				out[i] = param
				continue
			}
			index[key] = len(out)
			out = append(out, param)
		}
	}
	add(shared)
	add(own)
	return out
}

func (p *parser) swaggerBody(params []Parameter, consumes jsonvalue.Value) *RequestBody {
	for _, param := range params {
		if param.In != InBody {
			continue
		}
		ct := firstString(consumes)
		if ct == "" {
			ct = firstString(p.root.Field("consumes"))
		}
		if ct == "" {
			ct = "application/json"
		}
		return &RequestBody{ContentType: ct, Required: param.Required, Schema: param.Schema}
	}
	return nil
}

func (p *parser) response(op *Operation, key string, code int, v jsonvalue.Value) *Response {
	r := &Response{
		StatusCode:  code,
		Key:         key,
		Description: v.Field("description").Str(),
	}

	if content := v.Field("content"); content.Kind() == jsonvalue.KindObject {
		ct, media := pickContent(content)
		r.ContentType = ct
		r.Schema = schema.FromValue(media.Field("schema"))
		r.Example = mediaExample(media)
	} else {
		r.ContentType = op.ContentType
		r.Schema = schema.FromValue(v.Field("schema"))
		if examples := v.Field("examples").Object(); examples != nil {
			if ex, ok := examples.Get("application/json"); ok {
				r.Example = &ex
			} else if keys := examples.Keys(); len(keys) > 0 {
				ex, _ := examples.Get(keys[0])
				r.Example = &ex
			}
		}
	}

	headers := v.Field("headers").Object()
	headers.Range(func(name string, hv jsonvalue.Value) bool {
		hv = p.deref(hv)
		// v3 wraps the header schema; v2 declares it inline.
		node := schema.FromValue(hv.Field("schema"))
		if node == nil {
			node = schema.FromValue(hv)
		}
		r.Headers = append(r.Headers, Header{Name: name, Schema: node})
		return true
	})
	return r
}

// pickContent prefers application/json, then the first media type in sorted
// order.
func pickContent(content jsonvalue.Value) (string, jsonvalue.Value) {
	obj := content.Object()
	if obj.Len() == 0 {
		return "", jsonvalue.Null()
	}
	if media, ok := obj.Get("application/json"); ok {
		return "application/json", media
	}
	keys := obj.Keys()
	sort.Strings(keys)
	media, _ := obj.Get(keys[0])
	return keys[0], media
}

func mediaExample(media jsonvalue.Value) *jsonvalue.Value {
	if obj := media.Object(); obj != nil {
		if ex, ok := obj.Get("example"); ok {
			return &ex
		}
	}
	examples := media.Field("examples").Object()
	for _, name := range examples.Keys() {
		ex, _ := examples.Get(name)
		if val, ok := ex.Object().Get("value"); ok {
			return &val
		}
	}
	return nil
}

// deref follows local "#/..." references for non-schema objects such as
// parameters, responses, request bodies and headers.
func (p *parser) deref(v jsonvalue.Value) jsonvalue.Value {
	for range maxRefHops {
		ref := v.Field("$ref").Str()
		if !strings.HasPrefix(ref, "#/") {
			return v
		}
		v = pointer(p.root, ref[2:])
	}
	return v
}

func pointer(root jsonvalue.Value, ptr string) jsonvalue.Value {
	cur := root
	for _, token := range strings.Split(ptr, "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		if idx, err := strconv.Atoi(token); err == nil && cur.Kind() == jsonvalue.KindArray {
			items := cur.Items()
			if idx < 0 || idx >= len(items) {
				return jsonvalue.Null()
			}
			cur = items[idx]
			continue
		}
		cur = cur.Field(token)
	}
	return cur
}

// parseStatusKey accepts "200", "2XX" and "default" (code 0).
func parseStatusKey(key string) (int, bool) {
	if key == "default" {
		return 0, true
	}
	if len(key) == 3 && strings.EqualFold(key[1:], "xx") && key[0] >= '1' && key[0] <= '5' {
		return int(key[0]-'0') * 100, true
	}
	code, err := strconv.Atoi(key)
	if err != nil || code < 100 || code > 599 {
		return 0, false
	}
	return code, true
}

// serverBasePath uses kin-openapi to substitute server variable defaults and
// extract the path of the first server URL.
func serverBasePath(servers jsonvalue.Value) string {
	var list openapi3.Servers
	for _, sv := range servers.Items() {
		srv := &openapi3.Server{URL: sv.Field("url").Str()}
		sv.Field("variables").Object().Range(func(name string, vv jsonvalue.Value) bool {
			if srv.Variables == nil {
				srv.Variables = map[string]*openapi3.ServerVariable{}
			}
			srv.Variables[name] = &openapi3.ServerVariable{Default: vv.Field("default").Text()}
			return true
		})
		list = append(list, srv)
	}
	bp, err := list.BasePath()
	if err != nil {
		return ""
	}
	return bp
}

func normalizeBasePath(bp string) string {
	bp = strings.TrimSuffix(strings.TrimSpace(bp), "/")
	if bp == "" {
		return ""
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	return bp
}

func firstString(v jsonvalue.Value) string {
	for _, item := range v.Items() {
		if s := item.Str(); s != "" {
			return s
		}
	}
	return ""
}

func boolField(v jsonvalue.Value, key string) bool {
	b, _ := v.Field(key).AsBool()
	return b
}
