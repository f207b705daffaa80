package rag

import (
	"context"

	"github.com/paisewise/paisewise/internal/knowledge"
)

// Passage is a retrieved chunk handed to prompt assembly, already ordered
// most similar first.
type Passage struct {
	Content    string
	Source     string
	Similarity float32
}

// Retriever fetches the passages most similar to a question.
type Retriever struct {
	store *knowledge.Store
	topK  int
}

// NewRetriever wraps a knowledge store. topK <= 0 defaults to 3, matching
// the store's own default.
func NewRetriever(store *knowledge.Store, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{store: store, topK: topK}
}

// Retrieve returns up to topK passages, best first. An empty corpus yields
// an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Passage, error) {
	results, err := r.store.Search(ctx, query, knowledge.WithTopK(r.topK))
	if err != nil {
		return nil, err
	}
	passages := make([]Passage, len(results))
	for i, res := range results {
		passages[i] = Passage{
			Content:    res.Passage.Content,
			Source:     res.Passage.Source,
			Similarity: res.Similarity,
		}
	}
	return passages, nil
}
