// Package datasource overrides mock responses with declarative rules.
//
// A rules file lists conditions over the incoming request. The first rule
// whose conditions all hold picks the response to serve:
//
//	rules:
//	  - name: missing pet
//	    method: GET
//	    path: /pet/{petId}
//	    when: params.petId == "0"
//	    status: 404
//	  - name: premium order
//	    method: POST
//	    path: /store/order
//	    match:
//	      $.quantity: 100
//	    body: {"id": 1, "status": "approved"}
//
// `when` is an expr-lang boolean expression over method, path, route,
// operationId, params, query, headers, body and rawBody. `match` maps
// JSONPath expressions over the JSON request body to expected values.
package datasource

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/specmock/pkg/jsonvalue"
	"github.com/getmockd/specmock/pkg/logging"
	"github.com/getmockd/specmock/pkg/mockserver"
	"github.com/getmockd/specmock/pkg/response"
)

// ErrInvalidRule is wrapped by every rule compilation failure.
var ErrInvalidRule = errors.New("invalid datasource rule")

// Rule is one entry of a rules file.
type Rule struct {
	Name   string `yaml:"name" json:"name"`
	Method string `yaml:"method,omitempty" json:"method,omitempty"`

	// Path is compared with the matched endpoint's URL template and with
	// the concrete request path; either may match. A path containing '*',
	// '?' or '[' is a doublestar glob over the concrete path, so
	// "/v2/pet/**" covers every pet route.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	When  string         `yaml:"when,omitempty" json:"when,omitempty"`
	Match map[string]any `yaml:"match,omitempty" json:"match,omitempty"`

	// Status selects the declared response with that code. Zero keeps the
	// default response.
	Status  int               `yaml:"status,omitempty" json:"status,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// Body replaces the response body. Strings are served verbatim, other
	// values as JSON.
	Body any `yaml:"body,omitempty" json:"body,omitempty"`
}

// File is the rules file layout.
type File struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Env is the expression environment of a `when` condition.
type Env struct {
	Method      string            `expr:"method"`
	Path        string            `expr:"path"`
	Route       string            `expr:"route"`
	OperationID string            `expr:"operationId"`
	Params      map[string]string `expr:"params"`
	Query       map[string]string `expr:"query"`
	Headers     map[string]string `expr:"headers"`
	Body        any               `expr:"body"`
	RawBody     string            `expr:"rawBody"`
}

type bodyMatch struct {
	path string
	expr jp.Expr
	want any
}

type compiledRule struct {
	Rule
	glob    bool
	program *vm.Program
	matches []bodyMatch
	body    []byte
}

// Rules is a compiled, immutable rule list. It is safe for concurrent use.
type Rules struct {
	rules []*compiledRule
	log   *slog.Logger
}

// Option configures Rules.
type Option func(*Rules)

// WithLogger sets the logger used to report rule hits and evaluation errors.
func WithLogger(log *slog.Logger) Option {
	return func(r *Rules) {
		if log != nil {
			r.log = log
		}
	}
}

// LoadFromFile reads and compiles a YAML or JSON rules file.
func LoadFromFile(path string, opts ...Option) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data, opts...)
}

// Parse compiles a YAML or JSON rules document.
func Parse(data []byte, opts ...Option) (*Rules, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	return New(f.Rules, opts...)
}

// New compiles rules. Every expression is checked up front.
func New(rules []Rule, opts ...Option) (*Rules, error) {
	r := &Rules{log: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}

	for i, rule := range rules {
		c, err := compile(rule)
		if err != nil {
			name := rule.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			return nil, fmt.Errorf("%w %s: %v", ErrInvalidRule, name, err)
		}
		r.rules = append(r.rules, c)
	}
	return r, nil
}

func compile(rule Rule) (*compiledRule, error) {
	c := &compiledRule{Rule: rule}
	c.Method = strings.ToUpper(rule.Method)

	if strings.ContainsAny(rule.Path, "*?[") {
		if !doublestar.ValidatePattern(rule.Path) {
			return nil, fmt.Errorf("path %q is not a valid glob", rule.Path)
		}
		c.glob = true
	}

	if strings.TrimSpace(rule.When) != "" {
		program, err := expr.Compile(rule.When, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("when: %w", err)
		}
		c.program = program
	}

	for path, want := range rule.Match {
		x, err := jp.ParseString(path)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", path, err)
		}
		c.matches = append(c.matches, bodyMatch{path: path, expr: x, want: want})
	}

	if rule.Status != 0 && (rule.Status < 100 || rule.Status > 599) {
		return nil, fmt.Errorf("status %d out of range", rule.Status)
	}

	switch b := rule.Body.(type) {
	case nil:
	case string:
		c.body = []byte(b)
	default:
		c.body = []byte(jsonvalue.FromAny(b).String())
	}
	return c, nil
}

// Len returns the number of rules.
func (r *Rules) Len() int {
	return len(r.rules)
}

// Choose implements mockserver.ResponseDatasource.
func (r *Rules) Choose(req *mockserver.Request, candidates []response.Resolved) *response.Resolved {
	var env *Env
	var parsed any
	bodyParsed := false

	for _, rule := range r.rules {
		if !rule.matchesRoute(req) {
			continue
		}
		if rule.program != nil {
			if env == nil {
				env = newEnv(req)
			}
			out, err := expr.Run(rule.program, *env)
			if err != nil {
				r.log.Warn("datasource rule failed", "rule", rule.Name, "error", err)
				continue
			}
			if ok, _ := out.(bool); !ok {
				continue
			}
		}
		if len(rule.matches) > 0 {
			if !bodyParsed {
				parsed = parseBody(req.Body)
				bodyParsed = true
			}
			if !rule.matchesBody(parsed) {
				continue
			}
		}

		r.log.Debug("datasource rule matched", "rule", rule.Name, "request_id", req.ID)
		return rule.apply(candidates)
	}
	return nil
}

func (c *compiledRule) matchesRoute(req *mockserver.Request) bool {
	if c.Method != "" && c.Method != strings.ToUpper(req.Method) {
		return false
	}
	if c.Path == "" || c.Path == req.Path {
		return true
	}
	if req.Endpoint != nil && c.Path == req.Endpoint.Path {
		return true
	}
	return c.glob && doublestar.MatchUnvalidated(c.Path, req.Path)
}

func (c *compiledRule) matchesBody(body any) bool {
	if body == nil {
		return false
	}
	for _, m := range c.matches {
		got := m.expr.First(body)
		if !valuesEqual(got, m.want) {
			return false
		}
	}
	return true
}

func (c *compiledRule) apply(candidates []response.Resolved) *response.Resolved {
	var base response.Resolved
	found := false
	if c.Status != 0 {
		for _, cand := range candidates {
			if cand.StatusCode == c.Status {
				base, found = cand, true
				break
			}
		}
		if !found {
			base = response.Resolved{StatusCode: c.Status}
		}
	} else {
		base = response.Default(candidates)
	}

	out := base
	out.Headers = make(map[string]string, len(base.Headers)+len(c.Headers))
	for k, v := range base.Headers {
		out.Headers[k] = v
	}
	for k, v := range c.Headers {
		out.Headers[k] = v
	}
	if c.body != nil {
		out.Body = c.body
		if out.ContentType == "" {
			if _, isString := c.Rule.Body.(string); isString {
				out.ContentType = "text/plain"
			} else {
				out.ContentType = response.DefaultContentType
			}
		}
	}
	return &out
}

func newEnv(req *mockserver.Request) *Env {
	env := &Env{
		Method:  req.Method,
		Path:    req.Path,
		Params:  req.PathParams,
		Query:   firstValues(req.Query),
		Headers: firstValues(req.Headers),
		Body:    parseBody(req.Body),
		RawBody: string(req.Body),
	}
	if env.Params == nil {
		env.Params = map[string]string{}
	}
	if req.Endpoint != nil {
		env.Route = req.Endpoint.Path
		if req.Endpoint.Operation != nil {
			env.OperationID = req.Endpoint.Operation.OperationID
		}
	}
	return env
}

func firstValues[M ~map[string][]string](m M) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func parseBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var data any
	if err := oj.Unmarshal(body, &data); err != nil {
		return nil
	}
	return data
}

var _ mockserver.ResponseDatasource = (*Rules)(nil)

// valuesEqual compares numerically when both sides are numbers, otherwise by
// their printed form.
func valuesEqual(got, want any) bool {
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	if a, ok := toFloat64(got); ok {
		if b, ok := toFloat64(want); ok {
			return a == b
		}
	}
	return fmt.Sprintf("%v", got) == fmt.Sprintf("%v", want)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
