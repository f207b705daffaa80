package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paisewise/paisewise/internal/advisor"
	"github.com/paisewise/paisewise/internal/calc"
	"github.com/paisewise/paisewise/internal/knowledge"
	"github.com/paisewise/paisewise/internal/log"
	"github.com/paisewise/paisewise/internal/ollama"
	"github.com/paisewise/paisewise/internal/scenario"
)

type stubEngine struct {
	resp        *advisor.Response
	err         error
	panics      bool
	gotQuestion string
	gotParams   calc.Input
	calls       int
}

func (s *stubEngine) Query(_ context.Context, _ *advisor.Session, question string, params calc.Input) (*advisor.Response, error) {
	s.calls++
	s.gotQuestion = question
	s.gotParams = params
	if s.panics {
		panic("boom")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newTestServer(t *testing.T, engine *stubEngine) (*httptest.Server, *advisor.Sessions) {
	t.Helper()

	sessions := advisor.NewSessions()
	srv, err := NewServer(ServerConfig{
		Logger:   log.NewNop(),
		Engine:   engine,
		Sessions: sessions,
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, sessions
}

func TestNewServerRequiresCollaborators(t *testing.T) {
	if _, err := NewServer(ServerConfig{Sessions: advisor.NewSessions()}); err == nil {
		t.Error("NewServer() without engine succeeded, want error")
	}
	if _, err := NewServer(ServerConfig{Engine: &stubEngine{}}); err == nil {
		t.Error("NewServer() without sessions succeeded, want error")
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, &stubEngine{})

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts, sessions := newTestServer(t, &stubEngine{})

	// Create
	resp, err := http.Post(ts.URL+"/api/v1/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sessions error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	if created.SessionID == "" {
		t.Fatal("created session has empty ID")
	}
	if sessions.Len() != 1 {
		t.Errorf("registry has %d sessions, want 1", sessions.Len())
	}

	// Get
	getResp, err := http.Get(ts.URL + "/api/v1/sessions/" + created.SessionID)
	if err != nil {
		t.Fatalf("GET session error = %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d, want 200", getResp.StatusCode)
	}

	// Delete
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/sessions/"+created.SessionID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE session error = %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", delResp.StatusCode)
	}

	// Gone
	goneResp, err := http.Get(ts.URL + "/api/v1/sessions/" + created.SessionID)
	if err != nil {
		t.Fatalf("GET deleted session error = %v", err)
	}
	goneResp.Body.Close()
	if goneResp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want 404", goneResp.StatusCode)
	}
}

func TestQueryHappyPath(t *testing.T) {
	engine := &stubEngine{
		resp: &advisor.Response{
			Answer:    "Under the new regime your total tax is Rs 1,45,600.",
			Scenario:  scenario.TaxCalculation,
			Sources:   []advisor.Source{{Name: "tax-guide.md", Similarity: 0.91}},
			FollowUps: []string{"Which deductions should I claim?"},
		},
	}
	ts, sessions := newTestServer(t, engine)
	s := sessions.Create()

	body := `{"question": "How much tax do I owe?", "params": {"annual_income": 1500000}}`
	resp, err := http.Post(ts.URL+"/api/v1/sessions/"+s.ID+"/query", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST query error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query status = %d, want 200", resp.StatusCode)
	}
	if engine.gotQuestion != "How much tax do I owe?" {
		t.Errorf("engine question = %q", engine.gotQuestion)
	}
	if income, ok := engine.gotParams["annual_income"].(float64); !ok || income != 1500000 {
		t.Errorf("engine params = %v, want annual_income 1500000", engine.gotParams)
	}

	var got advisor.Response
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Answer != engine.resp.Answer {
		t.Errorf("answer = %q", got.Answer)
	}
	if got.Scenario != scenario.TaxCalculation {
		t.Errorf("scenario = %q, want %q", got.Scenario, scenario.TaxCalculation)
	}
}

func TestQueryValidation(t *testing.T) {
	engine := &stubEngine{resp: &advisor.Response{}}
	ts, sessions := newTestServer(t, engine)
	s := sessions.Create()

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"unknown session", "/api/v1/sessions/nope/query", `{"question": "hi"}`, http.StatusNotFound},
		{"malformed body", "/api/v1/sessions/" + s.ID + "/query", `{not json`, http.StatusBadRequest},
		{"missing question", "/api/v1/sessions/" + s.ID + "/query", `{"params": {}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+tt.path, "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST error = %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times, want 0", engine.calls)
	}
}

func TestQueryErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"session busy", advisor.ErrSessionBusy, http.StatusConflict, "session_busy"},
		{"wrapped session busy", fmt.Errorf("query: %w", advisor.ErrSessionBusy), http.StatusConflict, "session_busy"},
		{"validation error", &calc.ValidationError{Field: "annual_income", Reason: "required"}, http.StatusBadRequest, "invalid_params"},
		{"domain error", &calc.DomainError{Reason: "expenses exceed income"}, http.StatusUnprocessableEntity, "precondition_violated"},
		{"completion failure", &ollama.BackendError{Op: "complete", Err: errors.New("status 503")}, http.StatusBadGateway, "backend_error"},
		{"retrieval failure", fmt.Errorf("retrieve passages: %w", &knowledge.BackendError{Op: "search", Err: errors.New("connection refused")}), http.StatusBadGateway, "backend_error"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"backend deadline", &ollama.BackendError{Op: "complete", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, "timeout"},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, sessions := newTestServer(t, &stubEngine{err: tt.err})
			s := sessions.Create()

			resp, err := http.Post(ts.URL+"/api/v1/sessions/"+s.ID+"/query", "application/json",
				strings.NewReader(`{"question": "hi"}`))
			if err != nil {
				t.Fatalf("POST error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestQueryPanicRecovered(t *testing.T) {
	ts, sessions := newTestServer(t, &stubEngine{panics: true})
	s := sessions.Create()

	resp, err := http.Post(ts.URL+"/api/v1/sessions/"+s.ID+"/query", "application/json",
		strings.NewReader(`{"question": "hi"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts, _ := newTestServer(t, &stubEngine{})

	resp, err := http.Post(ts.URL+"/api/v1/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}

	// Caller-supplied IDs are echoed back.
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/sessions", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	echoed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	echoed.Body.Close()
	if got := echoed.Header.Get("X-Request-ID"); got != "trace-42" {
		t.Errorf("X-Request-ID = %q, want trace-42", got)
	}
}

func TestResetSessionClearsHistory(t *testing.T) {
	ts, sessions := newTestServer(t, &stubEngine{resp: &advisor.Response{Answer: "ok"}})
	s := sessions.Create()

	resp, err := http.Post(ts.URL+"/api/v1/sessions/"+s.ID+"/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("POST reset error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("reset status = %d, want 200", resp.StatusCode)
	}
	if len(s.History()) != 0 {
		t.Errorf("history has %d turns after reset, want 0", len(s.History()))
	}
}
