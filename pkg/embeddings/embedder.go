// Package embeddings provides text embedding capabilities over external
// embedding services.
package embeddings

import "context"

// Embedder converts text into fixed-length vector embeddings.
//
// EmbedBatch is 1:1 and order-preserving: output vector i corresponds to
// input text i. Implementations may split large inputs into smaller service
// requests, but batching is purely a performance policy and must not change
// output order or values. Implementations do not cache results; staleness
// tracking belongs to the index fingerprint.
type Embedder interface {
	// Embed converts a single text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts texts into embeddings, one per input, in input
	// order. An empty input yields an empty output and no service calls.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Identity returns a stable identifier for the provider and model
	// (e.g. "openai/text-embedding-3-small"). Vectors from different
	// identities must never be mixed in one index; the identity is folded
	// into the corpus fingerprint.
	Identity() string

	// Close releases any resources held by the embedder.
	Close() error
}
