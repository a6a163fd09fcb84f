package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"veritas-hq/aegis/pkg/config"
	"veritas-hq/aegis/pkg/enforcement"
	"veritas-hq/aegis/pkg/policy"
	"veritas-hq/aegis/pkg/store"
	"veritas-hq/aegis/pkg/telemetry/metrics"
)

// Server is the governance HTTP API server.
type Server struct {
	config       *config.ServerConfig
	store        store.Store
	policies     *policy.Registry
	coordinator  *enforcement.Coordinator
	httpMetrics  *metrics.HTTPMetrics
	promRegistry *prometheus.Registry
	logger       *slog.Logger

	httpServer *http.Server
	mu         sync.Mutex
	isRunning  bool
}

// NewServer creates a new API server. promRegistry may be nil to disable the
// /metrics endpoint.
func NewServer(cfg *config.ServerConfig, st store.Store, policies *policy.Registry, coordinator *enforcement.Coordinator, httpMetrics *metrics.HTTPMetrics, promRegistry *prometheus.Registry) *Server {
	return &Server{
		config:       cfg,
		store:        st,
		policies:     policies,
		coordinator:  coordinator,
		httpMetrics:  httpMetrics,
		promRegistry: promRegistry,
		logger:       slog.Default().With("component", "server"),
	}
}

// Start starts the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true

	handler := s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return s.shutdown()
	}
}

// shutdown drains in-flight requests within the configured timeout.
func (s *Server) shutdown() error {
	s.logger.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
	return nil
}

// setupRoutes builds the route table and wraps it in the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	if s.promRegistry != nil {
		mux.Handle("GET /metrics", metrics.Handler(s.promRegistry))
	}

	mux.HandleFunc("POST /api/v1/models", s.handleCreateModel)
	mux.HandleFunc("GET /api/v1/models", s.handleListModels)
	mux.HandleFunc("GET /api/v1/models/{id}", s.handleGetModel)
	mux.HandleFunc("PUT /api/v1/models/{id}/status", s.handleChangeStatus)
	mux.HandleFunc("POST /api/v1/models/{id}/versions", s.handleCreateVersion)
	mux.HandleFunc("GET /api/v1/models/{id}/versions", s.handleListVersions)
	mux.HandleFunc("POST /api/v1/versions/{id}/metrics", s.handleCreateMetric)
	mux.HandleFunc("GET /api/v1/versions/{id}/metrics", s.handleListMetrics)

	mux.HandleFunc("POST /api/v1/policies", s.handleCreatePolicy)
	mux.HandleFunc("GET /api/v1/policies", s.handleListPolicies)
	mux.HandleFunc("GET /api/v1/policies/{id}", s.handleGetPolicy)
	mux.HandleFunc("PATCH /api/v1/policies/{id}", s.handleUpdatePolicy)
	mux.HandleFunc("DELETE /api/v1/policies/{id}", s.handleDeactivatePolicy)

	mux.HandleFunc("GET /api/v1/violations", s.handleListViolations)
	mux.HandleFunc("GET /api/v1/violations/export", s.handleExportViolations)
	mux.HandleFunc("GET /api/v1/audit", s.handleListAudit)
	mux.HandleFunc("GET /api/v1/audit/export", s.handleExportAudit)

	var handler http.Handler = mux
	handler = MetricsMiddleware(s.httpMetrics)(handler)
	handler = LoggingMiddleware(handler)
	handler = RecoveryMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}
