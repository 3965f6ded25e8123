// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handler "github.com/newthinker/bondcalc/internal/api/handler/api"
	"github.com/newthinker/bondcalc/internal/api/middleware"
	"github.com/newthinker/bondcalc/internal/metrics"
	"github.com/newthinker/bondcalc/internal/portfolio"
	"github.com/newthinker/bondcalc/internal/storage/archive"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the valuation API
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	APIKey       string
	MaxBodyBytes int64
	MetricsPath  string // empty disables the metrics endpoint
}

// Dependencies holds what the handlers need.
type Dependencies struct {
	Calculators handler.Calculators
	Book        *portfolio.Book // nil when no portfolio is configured
	Store       archive.Storage // nil disables report export
	Metrics     *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Calculators == nil {
		return nil, fmt.Errorf("calculators required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	var h http.Handler = mux
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}
	s.httpServer.Handler = metrics.LoggingMiddleware(logger)(h)

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	var book handler.Book
	if deps.Book != nil {
		book = deps.Book
	}

	valuations := handler.NewValuationHandler(deps.Calculators, book)
	profiles := handler.NewProfileHandler(deps.Calculators, book, deps.Store, s.logger)

	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.APIKeyAuth(cfg.APIKey)(middleware.MaxBody(cfg.MaxBodyBytes)(h))
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.Handle("POST /api/v1/valuations", protect(valuations.Value))
	s.mux.Handle("POST /api/v1/profiles", protect(profiles.Create))

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the server's root handler, middleware included.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
