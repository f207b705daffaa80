// Package api exposes the advisor over a JSON HTTP interface: session
// lifecycle, conversational queries, and health probes.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/paisewise/paisewise/internal/advisor"
	"github.com/paisewise/paisewise/internal/calc"
)

// QueryEngine answers a question within a session. Satisfied by
// *advisor.Engine.
type QueryEngine interface {
	Query(ctx context.Context, session *advisor.Session, question string, params calc.Input) (*advisor.Response, error)
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger         *slog.Logger
	Engine         QueryEngine       // Required
	Sessions       *advisor.Sessions // Required
	RequestTimeout time.Duration     // Per-query deadline (0 = 3 minutes)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("query engine is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session registry is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	sh := &sessionHandler{
		sessions: cfg.Sessions,
		engine:   cfg.Engine,
		timeout:  timeout,
		logger:   logger,
	}

	mux := http.NewServeMux()

	// Session lifecycle
	mux.HandleFunc("POST /api/v1/sessions", sh.createSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", sh.getSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/reset", sh.resetSession)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", sh.deleteSession)

	// Advisory queries
	mux.HandleFunc("POST /api/v1/sessions/{id}/query", sh.query)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → Routes
	// RequestID sits before Logging so request_id is available in log
	// attributes.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux keeps the health probe outside the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// health is a simple health check endpoint for container probes.
func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
