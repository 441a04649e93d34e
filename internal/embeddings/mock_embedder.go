package embeddings

import (
	"context"
	"math"
	"math/rand"
)

// MockEmbedder generates deterministic, hash-seeded embeddings. There is no
// external embedding API in this engine: similarity search only needs
// embeddings that are stable for identical text and spread out for
// different text, which a seeded PRNG over a unit sphere provides without
// a network dependency.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder returns a MockEmbedder producing vectors of the given
// dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// Embed generates a deterministic unit vector seeded from text's content.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	seed := int64(0)
	for _, c := range text {
		seed = seed*31 + int64(c)
	}
	rng := rand.New(rand.NewSource(seed))

	embedding := make([]float32, m.dimension)
	var sumSquares float64
	for i := 0; i < m.dimension; i++ {
		embedding[i] = float32(rng.NormFloat64())
		sumSquares += float64(embedding[i] * embedding[i])
	}
	if sumSquares > 0 {
		magnitude := float32(math.Sqrt(sumSquares))
		for i := range embedding {
			embedding[i] /= magnitude
		}
	}
	return embedding, nil
}

// Dimension returns the embedding dimension.
func (m *MockEmbedder) Dimension() int {
	return m.dimension
}
