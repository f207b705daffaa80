package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paisewise/paisewise/internal/log"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{
		BaseURL:    srv.URL,
		Model:      "llama3.2",
		EmbedModel: "nomic-embed-text",
		Timeout:    5 * time.Second,
	}, log.NewNop())
	c.retry.InitialInterval = time.Millisecond
	c.retry.MaxInterval = 2 * time.Millisecond
	return c, srv
}

func TestNewClientLimiter(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost:11434", RequestsPerSecond: 4}, log.NewNop())
	if c.limiter == nil {
		t.Error("limiter is nil with a positive request rate")
	}
	if got := float64(c.limiter.Limit()); got != 4 {
		t.Errorf("limiter rate = %v, want 4", got)
	}

	c = NewClient(Config{BaseURL: "http://localhost:11434"}, log.NewNop())
	if c.limiter != nil {
		t.Error("limiter set with zero request rate, want disabled")
	}
}

func TestComplete(t *testing.T) {
	var gotReq generateRequest
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s, want /api/generate", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "an answer", Done: true})
	}))

	opts := DefaultOptions()
	got, err := c.Complete(context.Background(), "a question", opts)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "an answer" {
		t.Errorf("Complete() = %q, want %q", got, "an answer")
	}
	if gotReq.Stream {
		t.Error("request streamed, want stream=false")
	}
	if gotReq.Options != opts {
		t.Errorf("options = %+v, want %+v", gotReq.Options, opts)
	}
}

func TestCompleteRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "recovered"})
	}))

	got, err := c.Complete(context.Background(), "q", DefaultOptions())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "recovered" {
		t.Errorf("Complete() = %q, want recovered", got)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server saw %d calls, want 3", n)
	}
}

func TestCompleteNonRetryableFailsFast(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.Complete(context.Background(), "q", DefaultOptions())
	var berr *BackendError
	if !errors.As(err, &berr) {
		t.Fatalf("error = %v, want *BackendError", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on 404)", n)
	}
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.Complete(context.Background(), "q", DefaultOptions())
	var berr *BackendError
	if !errors.As(err, &berr) {
		t.Fatalf("error = %v, want *BackendError", err)
	}
	if n := calls.Load(); n != 4 {
		t.Errorf("server saw %d calls, want initial + 3 retries", n)
	}
}

func TestEmbed(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %s, want /api/embed", r.URL.Path)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		resp := embedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i := range resp.Embeddings {
			resp.Embeddings[i] = []float32{float32(i), 0.5}
		}
		json.NewEncoder(w).Encode(resp)
	}))

	vecs, err := c.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if vecs[1][0] != 1 {
		t.Errorf("vectors out of order: %v", vecs)
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1}}})
	}))

	_, err := c.Embed(context.Background(), []string{"one", "two"})
	var berr *BackendError
	if !errors.As(err, &berr) {
		t.Fatalf("error = %v, want *BackendError", err)
	}
}

func TestEmbedEmptyInputSkipsNetwork(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request for empty input")
	}))
	vecs, err := c.Embed(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("Embed(nil) = %v, %v; want nil, nil", vecs, err)
	}
}

func TestRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("status 503: upstream"), true},
		{errors.New("Connection Reset by peer"), true},
		{errors.New("rate limit exceeded"), true},
		{errors.New("status 400: bad request"), false},
	}
	for _, tt := range tests {
		if got := retryableError(tt.err); got != tt.want {
			t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
