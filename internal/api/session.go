package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/paisewise/paisewise/internal/advisor"
	"github.com/paisewise/paisewise/internal/calc"
	"github.com/paisewise/paisewise/internal/knowledge"
	"github.com/paisewise/paisewise/internal/memory"
	"github.com/paisewise/paisewise/internal/ollama"
)

const maxRequestBody = 1 << 20 // 1MB

// sessionHandler serves session lifecycle and query endpoints.
type sessionHandler struct {
	sessions *advisor.Sessions
	engine   QueryEngine
	timeout  time.Duration
	logger   *slog.Logger
}

// sessionResponse is the JSON shape of a session resource.
type sessionResponse struct {
	SessionID string        `json:"session_id"`
	CreatedAt time.Time     `json:"created_at"`
	History   []memory.Turn `json:"history,omitempty"`
}

// queryRequest is the body of POST /api/v1/sessions/{id}/query.
type queryRequest struct {
	Question string     `json:"question"`
	Params   calc.Input `json:"params,omitempty"`
}

func (h *sessionHandler) createSession(w http.ResponseWriter, _ *http.Request) {
	s := h.sessions.Create()
	h.logger.Info("session created", "session_id", s.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt,
	})
}

func (h *sessionHandler) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found", "session not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt,
		History:   s.History(),
	})
}

func (h *sessionHandler) resetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found", "session not found", h.logger)
		return
	}
	s.Reset()
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt,
	})
}

func (h *sessionHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *sessionHandler) query(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found", "session not found", h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "missing_question", "question is required", h.logger)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.engine.Query(ctx, s, req.Question, req.Params)
	if err != nil {
		status, code := queryErrorStatus(err)
		writeError(w, status, code, err.Error(), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// queryErrorStatus maps engine errors to HTTP status codes. Input problems
// are the caller's fault, busy sessions surface as a conflict, and failures
// of the completion or retrieval services as a bad gateway. The deadline
// check runs before the backend checks so a backend call that ran out the
// request deadline reports as a timeout.
func queryErrorStatus(err error) (int, string) {
	var (
		validationErr *calc.ValidationError
		domainErr     *calc.DomainError
		completionErr *ollama.BackendError
		retrievalErr  *knowledge.BackendError
	)
	switch {
	case errors.Is(err, advisor.ErrSessionBusy):
		return http.StatusConflict, "session_busy"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "invalid_params"
	case errors.As(err, &domainErr):
		return http.StatusUnprocessableEntity, "precondition_violated"
	case errors.As(err, &completionErr), errors.As(err, &retrievalErr):
		return http.StatusBadGateway, "backend_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
