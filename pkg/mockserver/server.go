// Package mockserver serves synthesized responses for every operation of a
// Swagger 2.0 or OpenAPI 3 document.
package mockserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/specmock/pkg/config"
	"github.com/getmockd/specmock/pkg/datagen"
	"github.com/getmockd/specmock/pkg/document"
	"github.com/getmockd/specmock/pkg/httputil"
	"github.com/getmockd/specmock/pkg/logging"
	"github.com/getmockd/specmock/pkg/resolver"
	"github.com/getmockd/specmock/pkg/response"
	"github.com/getmockd/specmock/pkg/routing"
)

// ErrAlreadyRunning is returned by Start on a running server.
var ErrAlreadyRunning = errors.New("server is already running")

// maxBodyBytes caps request bodies handed to a datasource.
const maxBodyBytes = 10 << 20

// Server is a mock HTTP server built from one API document.
type Server struct {
	cfg        *config.Configuration
	log        *slog.Logger
	doc        *document.Document
	table      *routing.Table
	resolver   *resolver.Resolver
	builder    *response.Builder
	transport  Transport
	datasource ResponseDatasource
	faker      datagen.Faker
	handler    http.Handler

	// responses holds the pre-resolved responses in eager mode.
	responses map[*routing.Endpoint][]response.Resolved

	mu      sync.Mutex
	running bool
	addr    net.Addr
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTransport replaces the default gorilla/mux transport.
func WithTransport(t Transport) Option {
	return func(s *Server) {
		s.transport = t
	}
}

// WithDatasource installs a response override.
func WithDatasource(ds ResponseDatasource) Option {
	return func(s *Server) {
		s.datasource = ds
	}
}

// WithFaker sets the random source used when generation is randomized.
func WithFaker(f datagen.Faker) Option {
	return func(s *Server) {
		s.faker = f
	}
}

// New parses spec and registers one route per declared operation. A spec
// that cannot be decoded at all yields a server without endpoints. A nil
// cfg means config.Default().
func New(spec []byte, cfg *config.Configuration, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg: cfg,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := document.Parse(spec, document.WithServerBasePath(cfg.UseServerBasePath))
	if err != nil {
		s.log.Warn("spec could not be decoded, serving no endpoints", "error", err)
		doc = document.Empty()
	}
	s.doc = doc
	s.table = routing.NewTable(doc.Operations)
	s.resolver = resolver.New(doc.Definitions, resolver.Options{
		Provider:         s.provider(),
		RootArrayCount:   cfg.Generation.RootArrayCount,
		ChildArrayCount:  cfg.Generation.ChildArrayCount,
		DistinctElements: cfg.Generation.DistinctElements,
	})
	s.builder = response.NewBuilder(s.resolver)

	if s.transport == nil {
		s.transport = NewMuxTransport(TransportConfig{
			MaxConnections: cfg.MaxConnections,
			ReadTimeout:    time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(cfg.WriteTimeout) * time.Second,
		}, s.log)
	}

	if !cfg.Generation.Lazy {
		s.responses = make(map[*routing.Endpoint][]response.Resolved, s.table.Len())
	}
	for _, ep := range s.table.Endpoints() {
		if s.responses != nil {
			s.responses[ep] = s.builder.BuildAll(ep.Operation)
		}
		s.transport.Register(ep, s.endpointHandler(ep))
		s.log.Debug("registered endpoint", "method", ep.Method, "path", ep.Path, "route", ep.Route)
	}
	s.transport.SetFallback(http.HandlerFunc(s.notFound), http.HandlerFunc(s.methodNotAllowed))
	s.handler = requestMiddleware(s.log, s.transport.Handler())

	s.log.Info("endpoints registered",
		"dialect", doc.Dialect.String(),
		"count", s.table.Len(),
		"lazy", cfg.Generation.Lazy,
		"randomized", cfg.Generation.Randomized,
	)
	return s, nil
}

func (s *Server) provider() datagen.Provider {
	g := s.cfg.Generation
	if !g.Randomized {
		return datagen.NewFixed(g.Defaults)
	}
	if s.faker == nil {
		s.faker = datagen.NewFaker(g.Seed)
	}
	return datagen.NewRandom(s.faker, g.RandomOptions())
}

// Handler returns the full request pipeline, for httptest or embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the configured address and serves in the background. A bind
// failure is logged and returned; the server then stays stopped.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	addr, err := s.transport.Listen(s.cfg.Addr(), s.handler)
	if err != nil {
		s.log.Error("failed to start server", "addr", s.cfg.Addr(), "error", err)
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.addr = addr
	s.running = true
	s.log.Info("mock server started", "addr", addr.String(), "endpoints", s.table.Len())
	return nil
}

// Stop shuts the transport down. It is a no-op on a stopped server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	s.addr = nil
	if err := s.transport.Shutdown(ctx); err != nil {
		return err
	}
	s.log.Info("mock server stopped")
	return nil
}

// IsRunning reports whether the server is listening.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Addr returns the bound address, or nil when not running.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Document returns the parsed document.
func (s *Server) Document() *document.Document {
	return s.doc
}

// Endpoints returns the registered endpoints in match order.
func (s *Server) Endpoints() []*routing.Endpoint {
	return s.table.Endpoints()
}

// Match finds the endpoint serving method and path.
func (s *Server) Match(method, path string) (*routing.Endpoint, map[string]string, bool) {
	return s.table.Match(method, path)
}

// Resolver returns the resolver backing response synthesis.
func (s *Server) Resolver() *resolver.Resolver {
	return s.resolver
}

// Responses returns the resolved responses of ep. In lazy mode they are
// synthesized on every call.
func (s *Server) Responses(ep *routing.Endpoint) []response.Resolved {
	if s.responses != nil {
		if rs, ok := s.responses[ep]; ok {
			return rs
		}
	}
	return s.builder.BuildAll(ep.Operation)
}

func (s *Server) endpointHandler(ep *routing.Endpoint) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := infoFrom(r.Context())
		info.route = ep.Method + " " + ep.Path

		candidates := s.Responses(ep)
		chosen := s.choose(w, r, ep, info.id, candidates)
		if chosen == nil {
			return
		}

		for name, value := range chosen.Headers {
			w.Header().Set(name, value)
		}
		httputil.WriteRaw(w, chosen.StatusCode, chosen.ContentType, chosen.Body)
	})
}

// choose returns the response to serve, or nil once an error response was
// written.
func (s *Server) choose(w http.ResponseWriter, r *http.Request, ep *routing.Endpoint, id string, candidates []response.Resolved) *response.Resolved {
	def := response.Default(candidates)
	if s.datasource == nil {
		return &def
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
		return nil
	}
	params, _ := routing.PathParameters(ep.Path, r.URL.Path)
	req := &Request{
		ID:         id,
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      r.URL.Query(),
		Headers:    r.Header.Clone(),
		Body:       body,
		PathParams: params,
		Endpoint:   ep,
	}
	if chosen := s.datasource.Choose(req, candidates); chosen != nil {
		return chosen
	}
	return &def
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	if allowed := s.table.Methods(r.URL.Path); len(allowed) > 0 {
		httputil.WriteMethodNotAllowed(w, r.Method, allowed)
		return
	}
	httputil.WriteNotFound(w, r.Method, r.URL.Path)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteMethodNotAllowed(w, r.Method, s.table.Methods(r.URL.Path))
}
