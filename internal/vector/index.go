// Package vector provides flat inner-product vector indexes. Vectors are
// expected to be L2-normalized, so scores are cosine similarities.
package vector

import "context"

// VectorIndex stores vectors under string IDs and answers top-k queries.
// Indexes are built once and are read-only while serving.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// VectorResult is a single vector search hit.
type VectorResult struct {
	ID    string
	Score float64 // inner product; cosine similarity for normalized vectors
}
