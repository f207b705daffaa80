package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// UpsertPassageParams holds one passage row for insert-or-update.
type UpsertPassageParams struct {
	ID        string
	Content   string
	Source    string
	Metadata  []byte
	Embedding *pgvector.Vector
	CreatedAt pgtype.Timestamptz
}

// SearchPassagesParams drives a filtered vector search.
type SearchPassagesParams struct {
	QueryEmbedding *pgvector.Vector
	FilterMetadata []byte
	ResultLimit    int32
}

// SearchPassagesAllParams drives an unfiltered vector search.
type SearchPassagesAllParams struct {
	QueryEmbedding *pgvector.Vector
	ResultLimit    int32
}

// SearchPassagesRow is one vector search hit with its cosine similarity.
type SearchPassagesRow struct {
	ID         string
	Content    string
	Source     string
	Metadata   []byte
	CreatedAt  pgtype.Timestamptz
	Similarity float32
}

// Queries holds the hand-written SQL over the passages table.
type Queries struct {
	pool *pgxpool.Pool
}

// NewQueries wraps a pool.
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const upsertPassageSQL = `
INSERT INTO passages (id, content, source, metadata, embedding, created_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
ON CONFLICT (id) DO UPDATE SET
    content    = EXCLUDED.content,
    source     = EXCLUDED.source,
    metadata   = EXCLUDED.metadata,
    embedding  = EXCLUDED.embedding,
    created_at = EXCLUDED.created_at`

// UpsertPassage inserts or replaces one passage.
func (q *Queries) UpsertPassage(ctx context.Context, arg UpsertPassageParams) error {
	var createdAt any
	if arg.CreatedAt.Valid {
		createdAt = arg.CreatedAt
	}
	_, err := q.pool.Exec(ctx, upsertPassageSQL,
		arg.ID, arg.Content, arg.Source, arg.Metadata, arg.Embedding, createdAt)
	if err != nil {
		return fmt.Errorf("upsert passage: %w", err)
	}
	return nil
}

const searchPassagesSQL = `
SELECT id, content, source, metadata, created_at,
       1 - (embedding <=> $1) AS similarity
FROM passages
WHERE metadata @> $2
ORDER BY embedding <=> $1
LIMIT $3`

// SearchPassages runs a cosine-distance search restricted to passages whose
// metadata contains the filter document.
func (q *Queries) SearchPassages(ctx context.Context, arg SearchPassagesParams) ([]SearchPassagesRow, error) {
	rows, err := q.pool.Query(ctx, searchPassagesSQL,
		arg.QueryEmbedding, arg.FilterMetadata, arg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}
	return scanSearchRows(rows)
}

const searchPassagesAllSQL = `
SELECT id, content, source, metadata, created_at,
       1 - (embedding <=> $1) AS similarity
FROM passages
ORDER BY embedding <=> $1
LIMIT $2`

// SearchPassagesAll runs an unfiltered cosine-distance search.
func (q *Queries) SearchPassagesAll(ctx context.Context, arg SearchPassagesAllParams) ([]SearchPassagesRow, error) {
	rows, err := q.pool.Query(ctx, searchPassagesAllSQL, arg.QueryEmbedding, arg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}
	return scanSearchRows(rows)
}

// CountPassages counts passages whose metadata contains the filter document.
// A nil filter counts everything.
func (q *Queries) CountPassages(ctx context.Context, filterMetadata []byte) (int64, error) {
	var count int64
	var err error
	if filterMetadata == nil {
		err = q.pool.QueryRow(ctx, `SELECT count(*) FROM passages`).Scan(&count)
	} else {
		err = q.pool.QueryRow(ctx,
			`SELECT count(*) FROM passages WHERE metadata @> $1`, filterMetadata).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count passages: %w", err)
	}
	return count, nil
}

// DeletePassage removes one passage by ID.
func (q *Queries) DeletePassage(ctx context.Context, id string) error {
	if _, err := q.pool.Exec(ctx, `DELETE FROM passages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete passage: %w", err)
	}
	return nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

func scanSearchRows(rows pgxRows) ([]SearchPassagesRow, error) {
	defer rows.Close()
	var out []SearchPassagesRow
	for rows.Next() {
		var r SearchPassagesRow
		var similarity float64
		if err := rows.Scan(&r.ID, &r.Content, &r.Source, &r.Metadata, &r.CreatedAt, &similarity); err != nil {
			return nil, fmt.Errorf("scan passage row: %w", err)
		}
		r.Similarity = float32(similarity)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passage rows: %w", err)
	}
	return out, nil
}
