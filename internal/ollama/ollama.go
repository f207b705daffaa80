// Package ollama is a minimal client for a local Ollama server: non-streaming
// text generation and embeddings over its HTTP API, with rate limiting and
// retry on transient failures.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/paisewise/paisewise/internal/log"
)

// Options are the per-request sampling controls forwarded to the model.
type Options struct {
	Temperature   float64 `json:"temperature"`
	NumPredict    int     `json:"num_predict"`
	TopP          float64 `json:"top_p"`
	TopK          int     `json:"top_k"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

// DefaultOptions returns the sampling profile tuned for grounded financial
// answers: low temperature, mild repetition penalty.
func DefaultOptions() Options {
	return Options{
		Temperature:   0.2,
		NumPredict:    1024,
		TopP:          0.9,
		TopK:          40,
		RepeatPenalty: 1.1,
	}
}

// Config holds the connection settings for a Client.
type Config struct {
	BaseURL    string
	Model      string
	EmbedModel string
	Timeout    time.Duration
	// RequestsPerSecond throttles outbound calls; zero disables throttling.
	RequestsPerSecond float64
}

// Client talks to one Ollama server. Safe for concurrent use.
type Client struct {
	baseURL    string
	model      string
	embedModel string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryConfig
	logger     log.Logger
}

// NewClient builds a Client from config. Zero timeout defaults to two minutes
// to accommodate cold model loads.
func NewClient(cfg Config, logger log.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		retry:      DefaultRetryConfig(),
		logger:     logger,
	}
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete generates a completion for prompt and returns the full response
// text. Transient failures are retried with exponential backoff; the final
// error is a *BackendError.
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	req := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: opts,
	}
	var resp generateResponse
	if err := c.do(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns one embedding vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := embedRequest{Model: c.embedModel, Input: texts}
	var resp embedResponse
	if err := c.do(ctx, "/api/embed", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, &BackendError{
			Op:  "embed",
			Err: fmt.Errorf("got %d embeddings for %d inputs", len(resp.Embeddings), len(texts)),
		}
	}
	return resp.Embeddings, nil
}

// do posts a JSON body and decodes the JSON response, retrying transient
// failures. Each attempt waits on the rate limiter first.
func (c *Client) do(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &BackendError{Op: path, Err: fmt.Errorf("encode request: %w", err)}
	}

	var lastErr error
	delay := c.retry.InitialInterval
	start := time.Now()

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return &BackendError{Op: path, Err: fmt.Errorf("rate limit wait: %w", err)}
			}
		}

		err := c.doOnce(ctx, path, payload, out)
		if err == nil {
			c.logger.Debug("ollama request succeeded",
				"path", path,
				"attempts", attempt+1,
				"elapsed", time.Since(start),
			)
			return nil
		}
		lastErr = err

		if !retryableError(err) {
			return &BackendError{Op: path, Err: err}
		}
		if attempt == c.retry.MaxRetries {
			break
		}

		c.logger.Debug("retrying ollama request",
			"path", path,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return &BackendError{Op: path, Err: ctx.Err()}
		case <-time.After(delay):
			delay = min(delay*2, c.retry.MaxInterval)
		}
	}

	return &BackendError{
		Op:  path,
		Err: fmt.Errorf("after %d retries (elapsed %v): %w", c.retry.MaxRetries, time.Since(start), lastErr),
	}
}

func (c *Client) doOnce(ctx context.Context, path string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
