//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"

	"github.com/paisewise/paisewise/internal/database"
	"github.com/paisewise/paisewise/internal/testutil"
)

func vec(dims int, lead float32) *pgvector.Vector {
	values := make([]float32, dims)
	values[0] = lead
	values[1] = 1 - lead
	v := pgvector.NewVector(values)
	return &v
}

func TestPassageRoundTrip(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	q := database.NewQueries(db.Pool)

	passages := []database.UpsertPassageParams{
		{ID: "a", Content: "80C deductions", Source: "tax-guide.md", Metadata: []byte(`{"topic": "tax"}`), Embedding: vec(768, 1.0)},
		{ID: "b", Content: "SIP basics", Source: "invest.md", Metadata: []byte(`{"topic": "investment"}`), Embedding: vec(768, 0.5)},
		{ID: "c", Content: "Term insurance", Source: "insure.md", Metadata: []byte(`{"topic": "insurance"}`), Embedding: vec(768, 0.0)},
	}
	for _, p := range passages {
		if err := q.UpsertPassage(ctx, p); err != nil {
			t.Fatalf("UpsertPassage(%q) error = %v", p.ID, err)
		}
	}

	count, err := q.CountPassages(ctx, nil)
	if err != nil {
		t.Fatalf("CountPassages() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	// Nearest neighbors: a query matching passage "a" exactly ranks it first.
	rows, err := q.SearchPassagesAll(ctx, database.SearchPassagesAllParams{
		QueryEmbedding: vec(768, 1.0),
		ResultLimit:    3,
	})
	if err != nil {
		t.Fatalf("SearchPassagesAll() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].ID != "a" {
		t.Errorf("nearest = %q, want a", rows[0].ID)
	}
	if rows[0].Similarity < 0.99 {
		t.Errorf("exact match similarity = %f, want ~1", rows[0].Similarity)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Similarity > rows[i-1].Similarity {
			t.Errorf("rows not ordered by similarity: %f after %f", rows[i].Similarity, rows[i-1].Similarity)
		}
	}

	// Metadata filter narrows the candidate set.
	filtered, err := q.SearchPassages(ctx, database.SearchPassagesParams{
		QueryEmbedding: vec(768, 1.0),
		FilterMetadata: []byte(`{"topic": "insurance"}`),
		ResultLimit:    3,
	})
	if err != nil {
		t.Fatalf("SearchPassages() error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "c" {
		t.Errorf("filtered search = %v, want only c", filtered)
	}

	// Upsert replaces in place.
	updated := passages[0]
	updated.Content = "80C and 80D deductions"
	if err := q.UpsertPassage(ctx, updated); err != nil {
		t.Fatalf("UpsertPassage(update) error = %v", err)
	}
	count, err = q.CountPassages(ctx, nil)
	if err != nil {
		t.Fatalf("CountPassages() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count after upsert = %d, want 3", count)
	}

	// Delete
	if err := q.DeletePassage(ctx, "b"); err != nil {
		t.Fatalf("DeletePassage() error = %v", err)
	}
	count, err = q.CountPassages(ctx, nil)
	if err != nil {
		t.Fatalf("CountPassages() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count after delete = %d, want 2", count)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	// SetupTestDB already migrated; a second run reports no change.
	if err := database.Migrate(db.ConnStr); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}
