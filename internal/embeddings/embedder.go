// Package embeddings provides the deterministic text-embedding interface
// the similarity search path embeds raw event text through.
package embeddings

import "context"

// Embedder generates vector embeddings from text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
