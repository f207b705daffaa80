package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/paisewise/paisewise/internal/calc"
	"github.com/paisewise/paisewise/internal/log"
	"github.com/paisewise/paisewise/internal/rag"
	"github.com/paisewise/paisewise/internal/scenario"
)

type mockRetriever struct {
	passages []rag.Passage
	err      error
	calls    int
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string) ([]rag.Passage, error) {
	m.calls++
	return m.passages, m.err
}

type mockCompleter struct {
	answer     string
	err        error
	block      chan struct{}
	calls      int
	lastPrompt string
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.answer, m.err
}

type mockVisualizer struct {
	charts map[string][]byte
	err    error
}

func (m *mockVisualizer) Render(t scenario.Type, result calc.Result) (map[string][]byte, error) {
	return m.charts, m.err
}

type mockReporter struct {
	path string
	err  error
}

func (m *mockReporter) Generate(t scenario.Type, question, answer string, result calc.Result, charts map[string][]byte) (string, error) {
	return m.path, m.err
}

func newTestEngine(retriever *mockRetriever, completer *mockCompleter) *Engine {
	return New(Config{
		Registry:  calc.NewRegistry(),
		Retriever: retriever,
		Completer: completer,
		Logger:    log.NewNop(),
	})
}

func TestQueryTaxEndToEnd(t *testing.T) {
	retriever := &mockRetriever{passages: []rag.Passage{
		{Content: "The new regime has lower slab rates but fewer deductions.", Source: "tax-guide.md", Similarity: 0.9},
	}}
	completer := &mockCompleter{answer: "Under the new regime your tax is lower."}
	engine := newTestEngine(retriever, completer)
	session := NewSessions().Create()

	resp, err := engine.Query(context.Background(), session,
		"I earn 1500000 per annum. Calculate my yearly income tax based on new regime",
		calc.Input{"annual_income": 1500000.0, "tax_regime": "new"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if resp.Scenario != scenario.TaxCalculation {
		t.Errorf("scenario = %s, want tax_calculation", resp.Scenario)
	}
	for _, regime := range []string{"old_regime", "new_regime"} {
		sub, ok := resp.Calculations[regime].(map[string]any)
		if !ok {
			t.Fatalf("calculations missing %s", regime)
		}
		if _, ok := sub["effective_tax_rate"].(float64); !ok {
			t.Errorf("%s has no effective_tax_rate", regime)
		}
	}
	if resp.Answer == "" || len(resp.Sources) != 1 {
		t.Errorf("answer=%q sources=%d, want populated answer and 1 source", resp.Answer, len(resp.Sources))
	}
	if len(resp.FollowUps) != 3 {
		t.Errorf("got %d follow-ups, want 3", len(resp.FollowUps))
	}
	if len(resp.History) != 2 {
		t.Errorf("history has %d turns, want question and answer", len(resp.History))
	}
	// Prompt carries the calculations and the passage.
	if !strings.Contains(completer.lastPrompt, "Financial Calculations") ||
		!strings.Contains(completer.lastPrompt, "tax-guide.md") {
		t.Errorf("prompt missing sections:\n%s", completer.lastPrompt)
	}
}

func TestQueryBackendFailureLeavesMemoryUntouched(t *testing.T) {
	retriever := &mockRetriever{}
	completer := &mockCompleter{err: errors.New("backend down")}
	engine := newTestEngine(retriever, completer)
	session := NewSessions().Create()

	before := len(session.History())
	_, err := engine.Query(context.Background(), session, "how should I budget?", nil)
	if err == nil {
		t.Fatal("Query() succeeded, want error")
	}
	if got := len(session.History()); got != before {
		t.Errorf("history grew from %d to %d on failure", before, got)
	}
}

func TestQueryValidationErrorAbortsBeforeBackend(t *testing.T) {
	retriever := &mockRetriever{}
	completer := &mockCompleter{answer: "unused"}
	engine := newTestEngine(retriever, completer)
	session := NewSessions().Create()

	_, err := engine.Query(context.Background(), session,
		"how much tax do I owe?", calc.Input{"annual_income": -5.0})
	var verr *calc.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if retriever.calls != 0 || completer.calls != 0 {
		t.Errorf("backend touched on invalid input: retriever=%d completer=%d", retriever.calls, completer.calls)
	}
	if len(session.History()) != 0 {
		t.Error("history modified on validation failure")
	}
}

func TestQueryRetrieverFailureIsFatal(t *testing.T) {
	retriever := &mockRetriever{err: errors.New("index offline")}
	completer := &mockCompleter{answer: "unused"}
	engine := newTestEngine(retriever, completer)
	session := NewSessions().Create()

	if _, err := engine.Query(context.Background(), session, "retire at 60?", nil); err == nil {
		t.Fatal("Query() succeeded, want error")
	}
	if completer.calls != 0 {
		t.Error("completion attempted after retrieval failure")
	}
}

func TestQueryCancellationLeavesMemoryUntouched(t *testing.T) {
	retriever := &mockRetriever{}
	completer := &mockCompleter{answer: "never", block: make(chan struct{})}
	engine := newTestEngine(retriever, completer)
	session := NewSessions().Create()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := engine.Query(ctx, session, "slow question", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if len(session.History()) != 0 {
		t.Error("history modified on cancellation")
	}
}

func TestQuerySessionBusy(t *testing.T) {
	retriever := &mockRetriever{}
	block := make(chan struct{})
	completer := &mockCompleter{answer: "slow answer", block: block}
	engine := newTestEngine(retriever, completer)
	session := NewSessions().Create()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := engine.Query(context.Background(), session, "first", nil); err != nil {
			t.Errorf("first query failed: %v", err)
		}
	}()

	// Wait until the first query is inside the backend call.
	deadline := time.After(time.Second)
	for completer.calls == 0 {
		select {
		case <-deadline:
			t.Fatal("first query never reached the backend")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	_, err := engine.Query(context.Background(), session, "second", nil)
	if !errors.Is(err, ErrSessionBusy) {
		t.Errorf("concurrent query error = %v, want ErrSessionBusy", err)
	}

	close(block)
	wg.Wait()
}

func TestQueryArtifactFailuresAreNonFatal(t *testing.T) {
	retriever := &mockRetriever{}
	completer := &mockCompleter{answer: "your plan looks fine"}
	engine := New(Config{
		Registry:   calc.NewRegistry(),
		Retriever:  retriever,
		Completer:  completer,
		Visualizer: &mockVisualizer{err: errors.New("render crash")},
		Reporter:   &mockReporter{err: errors.New("disk full")},
		Logger:     log.NewNop(),
	})
	session := NewSessions().Create()

	resp, err := engine.Query(context.Background(), session, "plan my retirement",
		calc.Input{
			"current_age":          30,
			"retirement_age":       60,
			"current_savings":      100000.0,
			"monthly_contribution": 5000.0,
		})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.Charts.Status != ArtifactFailed {
		t.Errorf("charts status = %s, want failed", resp.Charts.Status)
	}
	if resp.Report.Status != ArtifactFailed {
		t.Errorf("report status = %s, want failed", resp.Report.Status)
	}
	if resp.Answer == "" {
		t.Error("answer missing despite artifact-only failures")
	}
}

func TestQueryArtifactsGenerated(t *testing.T) {
	engine := New(Config{
		Registry:   calc.NewRegistry(),
		Retriever:  &mockRetriever{},
		Completer:  &mockCompleter{answer: "ok"},
		Visualizer: &mockVisualizer{charts: map[string][]byte{"projection": {1, 2}}},
		Reporter:   &mockReporter{path: "/tmp/report.pdf"},
		Logger:     log.NewNop(),
	})
	session := NewSessions().Create()

	resp, err := engine.Query(context.Background(), session, "plan my retirement",
		calc.Input{
			"current_age":          30,
			"retirement_age":       60,
			"current_savings":      100000.0,
			"monthly_contribution": 5000.0,
		})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.Charts.Status != ArtifactGenerated || len(resp.Charts.Charts) != 1 {
		t.Errorf("charts = %+v, want generated with 1 chart", resp.Charts)
	}
	if resp.Report.Status != ArtifactGenerated || resp.Report.Path != "/tmp/report.pdf" {
		t.Errorf("report = %+v, want generated with path", resp.Report)
	}
}

func TestQueryWithoutParamsSkipsCalculator(t *testing.T) {
	completer := &mockCompleter{answer: "general advice"}
	engine := newTestEngine(&mockRetriever{}, completer)
	session := NewSessions().Create()

	resp, err := engine.Query(context.Background(), session, "what is an emergency fund?", nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.Calculations != nil {
		t.Errorf("calculations = %v, want none", resp.Calculations)
	}
	if !strings.Contains(completer.lastPrompt, "No specific calculations") {
		t.Error("prompt missing the no-calculations placeholder")
	}
}

func TestQueryMultiTurnHistoryInPrompt(t *testing.T) {
	completer := &mockCompleter{answer: "sure"}
	engine := newTestEngine(&mockRetriever{}, completer)
	session := NewSessions().Create()

	if _, err := engine.Query(context.Background(), session, "how do I start saving?", nil); err != nil {
		t.Fatalf("first query: %v", err)
	}
	if _, err := engine.Query(context.Background(), session, "and how much per month?", nil); err != nil {
		t.Fatalf("second query: %v", err)
	}

	if !strings.Contains(completer.lastPrompt, "how do I start saving?") {
		t.Error("second prompt missing first turn")
	}
	if len(session.History()) != 4 {
		t.Errorf("history has %d turns, want 4", len(session.History()))
	}
}

func TestSessionsLifecycle(t *testing.T) {
	reg := NewSessions()
	s := reg.Create()
	if s.ID == "" {
		t.Fatal("session has no ID")
	}
	if got, ok := reg.Get(s.ID); !ok || got != s {
		t.Fatalf("Get(%q) = %v, %v", s.ID, got, ok)
	}
	reg.Delete(s.ID)
	if _, ok := reg.Get(s.ID); ok {
		t.Error("session still present after Delete")
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}
