// Package retriever orchestrates the query path: embed the query text,
// search the current vector index, return ranked segments. It adds no
// caching and no retry of its own; failures from the embedder and the index
// propagate with their error kind intact so callers can react per kind.
package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/saorihq/saori/pkg/embeddings"
	"github.com/saorihq/saori/pkg/vector"
)

// ErrConfig is returned for invalid retrieval parameters (k < 1).
var ErrConfig = errors.New("invalid retrieval configuration")

// Retriever answers similarity queries against the live index handle.
type Retriever struct {
	embedder embeddings.Embedder
	handle   *vector.Handle
}

// New creates a Retriever over the given embedder and index handle.
func New(embedder embeddings.Embedder, handle *vector.Handle) *Retriever {
	return &Retriever{embedder: embedder, handle: handle}
}

// Retrieve embeds the query and returns the top-min(k, index size) segments
// by cosine similarity, descending. Requires k >= 1.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]vector.Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", ErrConfig, k)
	}

	// Pin the index for the whole retrieval: a rebuild may swap the handle
	// while the query embedding is in flight, and the retired index must
	// stay queryable until released.
	index, release := r.handle.Acquire()
	if index == nil {
		return nil, vector.ErrEmptyIndex
	}
	defer release()

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return index.Query(ctx, embedding, k)
}
