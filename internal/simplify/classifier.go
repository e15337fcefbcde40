package simplify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/predictimed/internal/embedding"
	"github.com/hyperjump/predictimed/internal/vector"
)

// ExplanationTypes are the canned categories a term is matched against.
var ExplanationTypes = []string{
	"a medical procedure",
	"a medical condition",
	"a medical treatment",
	"a medical test",
	"a medical device",
}

// ContextClassifier picks the explanation type nearest to a term in the
// context it appears in.
type ContextClassifier struct {
	embedder embedding.Embedder
	types    []string

	mu       sync.Mutex
	typeVecs [][]float32
}

// NewContextClassifier creates a classifier over ExplanationTypes.
func NewContextClassifier(e embedding.Embedder) *ContextClassifier {
	return &ContextClassifier{embedder: e, types: ExplanationTypes}
}

// Classify embeds "term : text" and returns the most similar explanation type.
func (c *ContextClassifier) Classify(ctx context.Context, term, text string) (string, error) {
	typeVecs, err := c.typeVectors(ctx)
	if err != nil {
		return "", err
	}
	vec, err := c.embedder.Embed(ctx, term+" : "+text)
	if err != nil {
		return "", fmt.Errorf("embed term context: %w", err)
	}

	best, bestScore := -1, 0.0
	for i, tv := range typeVecs {
		score := vector.CosineSimilarity(vec, tv)
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return "", errors.New("no explanation types")
	}
	return c.types[best], nil
}

// typeVectors embeds the explanation types once. A failed attempt is retried
// on the next call.
func (c *ContextClassifier) typeVectors(ctx context.Context) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typeVecs != nil {
		return c.typeVecs, nil
	}
	vecs, err := c.embedder.EmbedBatch(ctx, c.types)
	if err != nil {
		return nil, fmt.Errorf("embed explanation types: %w", err)
	}
	if len(vecs) != len(c.types) {
		return nil, fmt.Errorf("embed explanation types: got %d vectors for %d types", len(vecs), len(c.types))
	}
	c.typeVecs = vecs
	return vecs, nil
}
