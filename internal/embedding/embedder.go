// Package embedding turns text into fixed-dimension vectors. Hosted providers
// (Hugging Face Inference, OpenAI-compatible APIs), a local ONNX model and a
// deterministic mock share one interface; every vector is L2-normalized so an
// inner product is a cosine similarity.
package embedding

import (
	"context"
	"errors"
)

// ErrProviderError wraps every failure reported by an embedding backend.
var ErrProviderError = errors.New("embedding provider error")

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// embedEach implements EmbedBatch for providers without a batch endpoint.
func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
