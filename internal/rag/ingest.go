package rag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/paisewise/paisewise/internal/knowledge"
	"github.com/paisewise/paisewise/internal/log"
)

// supportedExtensions lists the plain-text formats the indexer reads.
var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".json": true,
}

// Indexer walks a directory of reference documents, splits them into chunks
// and writes the chunks into the knowledge store.
type Indexer struct {
	store    *knowledge.Store
	splitter *Splitter
	logger   log.Logger
}

// NewIndexer builds an Indexer with the default splitter.
func NewIndexer(store *knowledge.Store, logger log.Logger) *Indexer {
	return &Indexer{
		store:    store,
		splitter: NewSplitter(),
		logger:   logger,
	}
}

// IndexDirectory ingests every supported file under dir, recursively.
// Returns the number of chunks indexed.
func (ix *Indexer) IndexDirectory(ctx context.Context, dir string) (int, error) {
	total := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		n, err := ix.IndexFile(ctx, path)
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
		total += n
		return nil
	})
	if err != nil {
		return total, err
	}
	ix.logger.Info("directory indexed", "dir", dir, "chunks", total)
	return total, nil
}

// IndexFile ingests one file and returns the number of chunks written.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}

	chunks := ix.splitter.Split(string(data))
	if len(chunks) == 0 {
		return 0, nil
	}

	source := filepath.Base(path)
	passages := make([]knowledge.Passage, len(chunks))
	for i, chunk := range chunks {
		passages[i] = knowledge.Passage{
			ID:      uuid.NewString(),
			Content: chunk,
			Source:  source,
			Metadata: map[string]string{
				"source": source,
				"chunk":  fmt.Sprintf("%d", i),
			},
		}
	}
	if err := ix.store.AddBatch(ctx, passages); err != nil {
		return 0, err
	}

	ix.logger.Debug("file indexed", "path", path, "chunks", len(chunks))
	return len(chunks), nil
}
