package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hupe1980/trademesh/logging"
)

// StatusFunc supplies the payload served on /status. Wire it to
// Engine.SystemStatus so operators see live agent states.
type StatusFunc func() any

// ServerOptions configure the observability HTTP server.
type ServerOptions struct {
	// Status supplies the /status payload. When nil the route returns
	// a minimal liveness document.
	Status StatusFunc

	// Logger receives request logs. Defaults to NoOpLogger.
	Logger logging.Logger

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server exposes the operational surface of a TradeMesh deployment:
// Prometheus metrics, a liveness probe and a system status document.
//
// Routes:
//   - GET /metrics  Prometheus exposition
//   - GET /healthz  liveness probe
//   - GET /status   live system status (agents, layers, message counts)
type Server struct {
	router *mux.Router
	server *http.Server
	status StatusFunc
	logger logging.Logger
}

// NewServer builds the observability server listening on addr.
func NewServer(addr string, optFns ...func(o *ServerOptions)) *Server {
	opts := ServerOptions{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	InitMetrics()

	s := &Server{
		router: mux.NewRouter(),
		status: opts.Status,
		logger: opts.Logger,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// WithStatus wires the /status payload source.
func WithStatus(fn StatusFunc) func(o *ServerOptions) {
	return func(o *ServerOptions) { o.Status = fn }
}

// WithServerLogger sets the request logger.
func WithServerLogger(l logging.Logger) func(o *ServerOptions) {
	return func(o *ServerOptions) { o.Logger = l }
}

func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.Handle("/metrics", MetricsHandler()).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router.HandleFunc("/status", s.handleStatus).Methods("GET")
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.status == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"status": "unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts serving and blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("observability server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
