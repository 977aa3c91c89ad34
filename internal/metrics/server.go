package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// StateFunc reports the current session state ("connecting", "listening",
// "processing" or "closed").
type StateFunc func() string

// ServerConfig configures the metrics HTTP server.
type ServerConfig struct {
	Port int
	Path string
}

// Server exposes metrics and a health check over HTTP.
type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

// NewServer creates the HTTP server. It does not start listening.
func NewServer(cfg ServerConfig, collector *Collector, state StateFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		logger: logger,
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: NewHandler(cfg.Path, collector, state),
		},
	}
}

// NewHandler creates the HTTP handler for metrics and health checks.
func NewHandler(path string, collector *Collector, state StateFunc) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, collector.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		current := state()

		health := struct {
			Status     string            `json:"status"`
			Components map[string]string `json:"components"`
		}{
			Status:     "healthy",
			Components: map[string]string{"websocket": current},
		}

		switch current {
		case "connecting":
			health.Status = "degraded"
		case "closed":
			health.Status = "unhealthy"
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("starting metrics server", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server error", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
