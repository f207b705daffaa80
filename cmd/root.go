// Package cmd implements the paisewise command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/paisewise/paisewise/internal/app"
	"github.com/paisewise/paisewise/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "paisewise",
	Short: "PaiseWise, a document-grounded personal finance assistant",
	Long: `PaiseWise answers personal finance questions for the Indian context:
tax regimes, retirement planning, investments, insurance, debt, and more.

Answers are grounded in your own document collection and backed by
deterministic financial calculators. Running paisewise with no arguments
starts an interactive chat session.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupApp loads configuration, installs the logger, and assembles the
// application. Callers own the returned App and must Close it.
func setupApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}
	return a, nil
}
