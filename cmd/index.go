package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [directory]",
	Short: "Index a directory of documents into the knowledge base",
	Long: `Index walks a directory, splits every supported document (.txt, .md,
.csv, .json) into overlapping chunks, embeds them, and stores them in the
vector database for retrieval.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.Indexer.IndexDirectory(ctx, args[0])
	if err != nil {
		return fmt.Errorf("indexing %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %s\n", count, args[0])
	return nil
}
