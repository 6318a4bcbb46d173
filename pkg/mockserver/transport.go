package mockserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"github.com/getmockd/specmock/pkg/logging"
	"github.com/getmockd/specmock/pkg/routing"
)

// Transport is the HTTP server capability the mock server runs on.
//
// Routes are registered in match order before Listen is called; the first
// registered route matching a request handles it.
type Transport interface {
	Register(ep *routing.Endpoint, h http.Handler)
	SetFallback(notFound, methodNotAllowed http.Handler)
	Handler() http.Handler

	// Listen binds addr and serves h in the background. It returns once the
	// listener is bound or binding failed.
	Listen(addr string, h http.Handler) (net.Addr, error)
	Shutdown(ctx context.Context) error
}

// TransportConfig tunes the default transport.
type TransportConfig struct {
	// MaxConnections caps concurrently open connections; zero means no cap.
	MaxConnections int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// MuxTransport serves registered endpoints through a gorilla/mux router.
type MuxTransport struct {
	cfg    TransportConfig
	router *mux.Router
	log    *slog.Logger

	mu     sync.Mutex
	server *http.Server
	done   chan struct{}
}

// NewMuxTransport creates a transport with an empty router.
func NewMuxTransport(cfg TransportConfig, log *slog.Logger) *MuxTransport {
	if log == nil {
		log = logging.Nop()
	}
	return &MuxTransport{
		cfg:    cfg,
		router: mux.NewRouter(),
		log:    log,
	}
}

// Register adds a route for ep. Literal paths match exactly; parameterized
// ones use ep.MuxTemplate so typed parameters only match their pattern.
func (t *MuxTransport) Register(ep *routing.Endpoint, h http.Handler) {
	t.router.Path(ep.MuxTemplate).Methods(ep.Method).Handler(h)
}

// SetFallback sets the handlers for unmatched paths and unmatched methods.
func (t *MuxTransport) SetFallback(notFound, methodNotAllowed http.Handler) {
	t.router.NotFoundHandler = notFound
	t.router.MethodNotAllowedHandler = methodNotAllowed
}

// Handler returns the router.
func (t *MuxTransport) Handler() http.Handler {
	return t.router
}

// Listen implements Transport. A nil h serves the router itself.
func (t *MuxTransport) Listen(addr string, h http.Handler) (net.Addr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.server != nil {
		return nil, ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if t.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, t.cfg.MaxConnections)
	}

	if h == nil {
		h = t.router
	}
	srv := &http.Server{
		Handler:           h,
		ReadTimeout:       t.cfg.ReadTimeout,
		ReadHeaderTimeout: t.cfg.ReadTimeout,
		WriteTimeout:      t.cfg.WriteTimeout,
	}
	done := make(chan struct{})
	t.server, t.done = srv, done

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.log.Error("HTTP server error", "error", err)
		}
	}()
	return ln.Addr(), nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (t *MuxTransport) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	srv, done := t.server, t.done
	t.server, t.done = nil, nil
	t.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	<-done
	return nil
}

var _ Transport = (*MuxTransport)(nil)
