// Package knowledge manages the passage corpus with vector search over
// PostgreSQL + pgvector. Passages are embedded on ingest; queries embed the
// question and rank by cosine similarity.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"

	"github.com/paisewise/paisewise/internal/database"
	"github.com/paisewise/paisewise/internal/log"
)

// Embedder turns texts into vectors. Satisfied by the Ollama client.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Querier is the database surface the store needs.
type Querier interface {
	UpsertPassage(ctx context.Context, arg database.UpsertPassageParams) error
	SearchPassages(ctx context.Context, arg database.SearchPassagesParams) ([]database.SearchPassagesRow, error)
	SearchPassagesAll(ctx context.Context, arg database.SearchPassagesAllParams) ([]database.SearchPassagesRow, error)
	CountPassages(ctx context.Context, filterMetadata []byte) (int64, error)
	DeletePassage(ctx context.Context, id string) error
}

// Store manages passages with vector search. Safe for concurrent use.
type Store struct {
	queries  Querier
	embedder Embedder
	logger   log.Logger
}

// New creates a Store.
func New(querier Querier, embedder Embedder, logger log.Logger) *Store {
	return &Store{
		queries:  querier,
		embedder: embedder,
		logger:   logger,
	}
}

// Add embeds and upserts one passage.
func (s *Store) Add(ctx context.Context, p Passage) error {
	vecs, err := s.embedder.Embed(ctx, []string{p.Content})
	if err != nil {
		return fmt.Errorf("embed passage %q: %w", p.ID, err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return fmt.Errorf("empty embedding for passage %q", p.ID)
	}
	embedding := pgvector.NewVector(vecs[0])

	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	err = s.queries.UpsertPassage(ctx, database.UpsertPassageParams{
		ID:        p.ID,
		Content:   p.Content,
		Source:    p.Source,
		Metadata:  metadataJSON,
		Embedding: &embedding,
		CreatedAt: pgtype.Timestamptz{Time: p.CreatedAt, Valid: !p.CreatedAt.IsZero()},
	})
	if err != nil {
		return fmt.Errorf("upsert passage %q: %w", p.ID, err)
	}

	s.logger.Debug("added passage", "id", p.ID, "source", p.Source, "content_length", len(p.Content))
	return nil
}

// AddBatch embeds all passages in one call and upserts them in order. The
// first failure stops the batch.
func (s *Store) AddBatch(ctx context.Context, passages []Passage) error {
	if len(passages) == 0 {
		return nil
	}
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vecs) != len(passages) {
		return fmt.Errorf("embedder returned %d vectors for %d passages", len(vecs), len(passages))
	}

	for i, p := range passages {
		embedding := pgvector.NewVector(vecs[i])
		metadataJSON, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %q: %w", p.ID, err)
		}
		err = s.queries.UpsertPassage(ctx, database.UpsertPassageParams{
			ID:        p.ID,
			Content:   p.Content,
			Source:    p.Source,
			Metadata:  metadataJSON,
			Embedding: &embedding,
			CreatedAt: pgtype.Timestamptz{Time: p.CreatedAt, Valid: !p.CreatedAt.IsZero()},
		})
		if err != nil {
			return fmt.Errorf("upsert passage %q: %w", p.ID, err)
		}
	}
	s.logger.Info("indexed passages", "count", len(passages))
	return nil
}

// Search embeds the query and returns the most similar passages, best
// first. Failures of the search service itself surface as *BackendError.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	vecs, err := s.embedder.Embed(queryCtx, []string{query})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("query embedding timeout: %w", err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, errors.New("empty embedding returned for query")
	}
	queryEmbedding := pgvector.NewVector(vecs[0])

	var rows []database.SearchPassagesRow
	if len(cfg.filter) > 0 {
		filterJSON, err := json.Marshal(cfg.filter)
		if err != nil {
			return nil, fmt.Errorf("marshal filter: %w", err)
		}
		rows, err = s.queries.SearchPassages(queryCtx, database.SearchPassagesParams{
			QueryEmbedding: &queryEmbedding,
			FilterMetadata: filterJSON,
			ResultLimit:    int32(cfg.topK),
		})
		if err != nil {
			return nil, &BackendError{Op: "search", Err: err}
		}
	} else {
		rows, err = s.queries.SearchPassagesAll(queryCtx, database.SearchPassagesAllParams{
			QueryEmbedding: &queryEmbedding,
			ResultLimit:    int32(cfg.topK),
		})
		if err != nil {
			return nil, &BackendError{Op: "search", Err: err}
		}
	}

	return s.rowsToResults(rows), nil
}

// Count returns the number of passages matching filter; nil counts all.
func (s *Store) Count(ctx context.Context, filter map[string]string) (int, error) {
	var filterJSON []byte
	if len(filter) > 0 {
		var err error
		filterJSON, err = json.Marshal(filter)
		if err != nil {
			return 0, fmt.Errorf("marshal filter: %w", err)
		}
	}
	count, err := s.queries.CountPassages(ctx, filterJSON)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return int(count), nil
}

// Delete removes one passage.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.queries.DeletePassage(ctx, id); err != nil {
		return fmt.Errorf("delete passage %q: %w", id, err)
	}
	s.logger.Debug("deleted passage", "id", id)
	return nil
}

func (s *Store) rowsToResults(rows []database.SearchPassagesRow) []Result {
	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		var metadata map[string]string
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			s.logger.Warn("unparseable passage metadata", "id", row.ID, "error", err)
			metadata = map[string]string{}
		}
		var createdAt time.Time
		if row.CreatedAt.Valid {
			createdAt = row.CreatedAt.Time
		}
		results = append(results, Result{
			Passage: Passage{
				ID:        row.ID,
				Content:   row.Content,
				Source:    row.Source,
				Metadata:  metadata,
				CreatedAt: createdAt,
			},
			Similarity: row.Similarity,
		})
	}
	return results
}
