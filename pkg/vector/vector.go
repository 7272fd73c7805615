// Package vector provides interfaces and types for vector indexing and
// nearest-neighbor search over embedded document segments.
package vector

import (
	"context"

	"github.com/saorihq/saori/pkg/corpus"
)

// Entry pairs a document segment with its embedding vector.
type Entry struct {
	// Segment is the source segment, carried verbatim so query results can
	// surface provenance without a second lookup.
	Segment corpus.Segment

	// Embedding is the segment's vector representation. All entries in one
	// index share the same dimensionality and embedding-service identity.
	Embedding []float32
}

// Result is a search hit with its similarity score.
type Result struct {
	Segment corpus.Segment

	// Score is the cosine similarity to the query vector
	// (higher = more similar).
	Score float32
}

// Index is an immutable snapshot of an embedded corpus supporting
// nearest-neighbor queries. Implementations are safe for concurrent queries;
// replacing an index is the Handle's job, never in-place mutation.
type Index interface {
	// Query returns the top-min(k, Len()) entries by cosine similarity,
	// descending. Ties are broken by insertion order (lower first) so
	// results are deterministic. Returns ErrEmptyIndex when the index
	// holds no segments and ErrDimensionMismatch when the query vector's
	// dimensionality differs from the index's.
	Query(ctx context.Context, embedding []float32, k int) ([]Result, error)

	// Entries returns the index contents in insertion order, vectors
	// bit-exact as supplied at build time. Used for persistence.
	Entries() []Entry

	// Len is the number of indexed segments.
	Len() int

	// Dimensions is the index's vector dimensionality (0 when empty).
	Dimensions() int

	// Fingerprint is the corpus fingerprint this index was built from.
	Fingerprint() string

	// EmbedderID identifies the embedding provider/model that produced
	// the vectors.
	EmbedderID() string

	// Close releases any resources held by the index.
	Close() error
}
