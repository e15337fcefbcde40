package retrieval

import (
	"context"
	"fmt"

	"github.com/hyperjump/predictimed/internal/embedding"
	"github.com/hyperjump/predictimed/internal/models"
)

// Searcher is the read side of a similarity index.
type Searcher interface {
	Search(ctx context.Context, vec []float32, k int) ([]models.Hit, error)
	Dimensions() int
}

// Retriever embeds a question and searches an index with it.
type Retriever struct {
	searcher Searcher
	embedder embedding.Embedder
}

// NewRetriever pairs an index with the embedder its vectors were built with.
func NewRetriever(s Searcher, e embedding.Embedder) (*Retriever, error) {
	if s.Dimensions() != e.Dimensions() {
		return nil, fmt.Errorf("embedder produces %d dimensions, index holds %d", e.Dimensions(), s.Dimensions())
	}
	return &Retriever{searcher: s, embedder: e}, nil
}

// Retrieve returns the k documents most similar to question.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]models.Hit, error) {
	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	return r.searcher.Search(ctx, vec, k)
}
