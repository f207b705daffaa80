package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paisewise/paisewise/internal/advisor"
	"github.com/paisewise/paisewise/internal/calc"
	"github.com/paisewise/paisewise/internal/config"
	"github.com/paisewise/paisewise/internal/database"
	"github.com/paisewise/paisewise/internal/knowledge"
	"github.com/paisewise/paisewise/internal/log"
	"github.com/paisewise/paisewise/internal/ollama"
	"github.com/paisewise/paisewise/internal/rag"
	"github.com/paisewise/paisewise/internal/report"
	"github.com/paisewise/paisewise/internal/viz"
)

// provideDBPool runs migrations and opens the connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config, logger log.Logger) (*pgxpool.Pool, error) {
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Debug("migrations applied")

	pool, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return pool, nil
}

// provideKnowledgeStore builds the vector store over the pool, using the
// Ollama client as its embedder.
func provideKnowledgeStore(pool *pgxpool.Pool, client *ollama.Client, logger log.Logger) *knowledge.Store {
	return knowledge.New(database.NewQueries(pool), client, logger)
}

// provideEngine assembles the advisor pipeline. Chart rendering can be
// switched off in configuration; report generation is always on.
func provideEngine(cfg *config.Config, store *knowledge.Store, client *ollama.Client, logger log.Logger) *advisor.Engine {
	opts := ollama.DefaultOptions()
	opts.Temperature = cfg.Temperature
	opts.NumPredict = cfg.NumPredict
	opts.TopP = cfg.TopP
	opts.TopK = cfg.TopK
	opts.RepeatPenalty = cfg.RepeatPenalty

	engineCfg := advisor.Config{
		Registry:  calc.NewRegistry(),
		Retriever: rag.NewRetriever(store, cfg.RetrievalTopK),
		Completer: completer{client: client, opts: opts},
		Reporter:  report.NewGenerator(cfg.ReportDir, logger),
		Assembler: &advisor.Assembler{
			MaxTokens:    cfg.PromptTokenBudget,
			HistoryTurns: cfg.HistoryTurns,
		},
		Logger: logger,
	}
	if cfg.ChartsEnabled {
		engineCfg.Visualizer = viz.NewRenderer()
	}
	return advisor.New(engineCfg)
}
