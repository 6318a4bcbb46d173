package mockserver

import (
	"net/http"
	"net/url"

	"github.com/getmockd/specmock/pkg/response"
	"github.com/getmockd/specmock/pkg/routing"
)

// Request is the per-request context handed to a ResponseDatasource. It is
// built once per request and must not be modified.
type Request struct {
	ID         string
	Method     string
	Path       string
	Query      url.Values
	Headers    http.Header
	Body       []byte
	PathParams map[string]string

	// Endpoint is the matched endpoint.
	Endpoint *routing.Endpoint
}

// ResponseDatasource may override the served response. Choose is called
// synchronously on the request goroutine with every resolved candidate of
// the matched endpoint; returning nil serves the default response.
type ResponseDatasource interface {
	Choose(req *Request, candidates []response.Resolved) *response.Resolved
}

// DatasourceFunc adapts a function to ResponseDatasource.
type DatasourceFunc func(req *Request, candidates []response.Resolved) *response.Resolved

// Choose implements ResponseDatasource.
func (f DatasourceFunc) Choose(req *Request, candidates []response.Resolved) *response.Resolved {
	return f(req, candidates)
}
