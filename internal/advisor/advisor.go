// Package advisor is the orchestration core: it classifies a question,
// runs the scenario's calculator, retrieves reference passages, assembles
// the prompt, calls the completion backend and composes the structured
// response, updating conversation memory only after everything that can
// fail has succeeded.
package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/paisewise/paisewise/internal/calc"
	"github.com/paisewise/paisewise/internal/log"
	"github.com/paisewise/paisewise/internal/memory"
	"github.com/paisewise/paisewise/internal/rag"
	"github.com/paisewise/paisewise/internal/scenario"
)

// Completer is the completion backend port. Satisfied by binding sampling
// options around the Ollama client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever fetches reference passages for a question, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]rag.Passage, error)
}

// Visualizer renders charts for a calculation. Failure is non-fatal.
type Visualizer interface {
	Render(t scenario.Type, result calc.Result) (map[string][]byte, error)
}

// Reporter writes a PDF report and returns its path. Failure is non-fatal.
type Reporter interface {
	Generate(t scenario.Type, question, answer string, result calc.Result, charts map[string][]byte) (string, error)
}

// Source is one cited passage in a response.
type Source struct {
	Content    string  `json:"content"`
	Name       string  `json:"name"`
	Similarity float32 `json:"similarity"`
}

// Response is the full result of one query.
type Response struct {
	Answer       string         `json:"answer"`
	Sources      []Source       `json:"sources"`
	Scenario     scenario.Type  `json:"scenario"`
	Calculations calc.Result    `json:"calculations,omitempty"`
	History      []memory.Turn  `json:"history"`
	FollowUps    []string       `json:"follow_up_questions"`
	Charts       ChartArtifact  `json:"charts"`
	Report       ReportArtifact `json:"report"`
}

// Engine wires the pipeline together. Construct once; safe for concurrent
// use across sessions.
type Engine struct {
	registry  *calc.Registry
	retriever Retriever
	completer Completer
	viz       Visualizer
	reporter  Reporter
	assembler *Assembler
	logger    log.Logger
}

// Config carries the Engine's collaborators. Visualizer and Reporter are
// optional; their artifacts report skipped when absent.
type Config struct {
	Registry   *calc.Registry
	Retriever  Retriever
	Completer  Completer
	Visualizer Visualizer
	Reporter   Reporter
	Assembler  *Assembler
	Logger     log.Logger
}

// New builds an Engine.
func New(cfg Config) *Engine {
	assembler := cfg.Assembler
	if assembler == nil {
		assembler = DefaultAssembler()
	}
	return &Engine{
		registry:  cfg.Registry,
		retriever: cfg.Retriever,
		completer: cfg.Completer,
		viz:       cfg.Visualizer,
		reporter:  cfg.Reporter,
		assembler: assembler,
		logger:    cfg.Logger,
	}
}

// Query answers one question within a session. params may be nil; without
// them no calculator runs and the answer relies on retrieval alone.
//
// The session is locked for the duration: a concurrent query against the
// same session fails with ErrSessionBusy. Memory is appended only after
// the backend call succeeds; any failure leaves history untouched.
func (e *Engine) Query(ctx context.Context, session *Session, question string, params calc.Input) (*Response, error) {
	if !session.mu.TryLock() {
		return nil, ErrSessionBusy
	}
	defer session.mu.Unlock()

	start := time.Now()
	t := scenario.Classify(question)
	enrichment := scenario.Enhance(t)
	e.logger.Debug("classified query", "session", session.ID, "scenario", t)

	var result calc.Result
	if params != nil {
		var err error
		result, err = e.registry.Calculate(t, params)
		if err != nil {
			// Abort before any backend call is made.
			return nil, err
		}
	}

	passages, err := e.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve passages: %w", err)
	}

	calcText := formatCalculations(result)
	prompt := e.assembler.Assemble(question, t, enrichment, calcText, passages, session.mem.Recent(e.assembler.HistoryTurns))

	answer, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	charts := e.renderCharts(t, result)
	report := e.generateReport(t, question, answer, result, charts.Charts)

	// The query has succeeded; only now does it become part of history.
	session.mem.Append(
		memory.Turn{Role: memory.RoleUser, Content: question},
		memory.Turn{Role: memory.RoleAssistant, Content: answer},
	)

	sources := make([]Source, len(passages))
	for i, p := range passages {
		sources[i] = Source{Content: p.Content, Name: p.Source, Similarity: p.Similarity}
	}

	e.logger.Info("query answered",
		"session", session.ID,
		"scenario", t,
		"sources", len(sources),
		"elapsed", time.Since(start),
	)

	return &Response{
		Answer:       answer,
		Sources:      sources,
		Scenario:     t,
		Calculations: result,
		History:      session.mem.Snapshot(),
		FollowUps:    followUpQuestions(t, result),
		Charts:       charts,
		Report:       report,
	}, nil
}

func (e *Engine) renderCharts(t scenario.Type, result calc.Result) ChartArtifact {
	if e.viz == nil || len(result) == 0 {
		return ChartArtifact{Status: ArtifactSkipped}
	}
	charts, err := e.viz.Render(t, result)
	if err != nil {
		e.logger.Warn("chart rendering failed", "scenario", t, "error", err)
		return ChartArtifact{Status: ArtifactFailed, Error: err.Error()}
	}
	if len(charts) == 0 {
		return ChartArtifact{Status: ArtifactSkipped}
	}
	return ChartArtifact{Status: ArtifactGenerated, Charts: charts}
}

func (e *Engine) generateReport(t scenario.Type, question, answer string, result calc.Result, charts map[string][]byte) ReportArtifact {
	if e.reporter == nil {
		return ReportArtifact{Status: ArtifactSkipped}
	}
	path, err := e.reporter.Generate(t, question, answer, result, charts)
	if err != nil {
		e.logger.Warn("report generation failed", "scenario", t, "error", err)
		return ReportArtifact{Status: ArtifactFailed, Error: err.Error()}
	}
	return ReportArtifact{Status: ArtifactGenerated, Path: path}
}
