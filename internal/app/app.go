// Package app assembles the application: configuration, logging, storage,
// the model backend, and the advisor pipeline, with lifecycle management.
package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paisewise/paisewise/internal/advisor"
	"github.com/paisewise/paisewise/internal/config"
	"github.com/paisewise/paisewise/internal/knowledge"
	"github.com/paisewise/paisewise/internal/log"
	"github.com/paisewise/paisewise/internal/ollama"
	"github.com/paisewise/paisewise/internal/rag"
)

// App is the core application container. Build one with Setup and release
// its resources with Close.
type App struct {
	Config *config.Config
	Logger log.Logger

	DBPool    *pgxpool.Pool
	Knowledge *knowledge.Store
	Indexer   *rag.Indexer
	Ollama    *ollama.Client
	Sessions  *advisor.Sessions
	Engine    *advisor.Engine
}

// Close releases all resources held by the application.
func (a *App) Close() {
	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database pool closed")
	}
}

// NewLogger builds the application logger from configuration.
func NewLogger(cfg *config.Config) log.Logger {
	return log.New(log.Config{
		Level: parseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// completer binds a fixed set of sampling options to the Ollama client so
// the advisor sees the single-method interface it expects.
type completer struct {
	client *ollama.Client
	opts   ollama.Options
}

func (c completer) Complete(ctx context.Context, prompt string) (string, error) {
	return c.client.Complete(ctx, prompt, c.opts)
}

// Setup creates and initializes the application. On error everything
// already initialized is released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	pool, err := provideDBPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	a.Ollama = ollama.NewClient(ollama.Config{
		BaseURL:           cfg.OllamaHost,
		Model:             cfg.Model,
		EmbedModel:        cfg.EmbedModel,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.OllamaRequestsPerSecond,
	}, logger)

	a.Knowledge = provideKnowledgeStore(pool, a.Ollama, logger)
	a.Indexer = rag.NewIndexer(a.Knowledge, logger)
	a.Sessions = advisor.NewSessions()
	a.Engine = provideEngine(cfg, a.Knowledge, a.Ollama, logger)

	return a, nil
}
