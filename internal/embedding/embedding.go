// Package embedding provides the text embedding collaborators used by the
// vector store. The default embedder is fully local and deterministic so the
// store works offline; an OpenAI-compatible HTTP embedder is available for
// higher quality retrieval.
package embedding

import "context"

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	// Embed returns the vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimension reports the length of vectors produced by Embed.
	Dimension() int
}
