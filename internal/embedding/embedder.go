// Package embedding provides text embedders (ONNX Runtime, Ollama, deterministic mock)
// and an LRU cache used by the embedding key-phrase ranker.
package embedding

import "context"

// Embedder produces vector embeddings for text. Returned vectors are
// L2-normalized, so a dot product is their cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
