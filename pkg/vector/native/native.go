// Package native provides the pure-Go vector index: a brute-force linear
// cosine scan. It is the correctness baseline every accelerated backend must
// match, and the default for modest corpora where O(n·D) per query is fine.
package native

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/saorihq/saori/pkg/vector"
)

// Index is an immutable brute-force cosine index.
type Index struct {
	entries     []vector.Entry
	invNorms    []float32
	dims        int
	fingerprint string
	embedderID  string
}

// Build constructs an index from entries. Entry order is preserved and
// defines tie-breaking for equal scores. All vectors must share one
// dimensionality; a mismatch fails the build with ErrDimensionMismatch,
// leaving any prior index the caller holds untouched.
func Build(entries []vector.Entry, fingerprint, embedderID string) (*Index, error) {
	dims := 0
	if len(entries) > 0 {
		dims = len(entries[0].Embedding)
	}

	invNorms := make([]float32, len(entries))
	for i, e := range entries {
		if len(e.Embedding) != dims {
			return nil, fmt.Errorf("%w: entry %d has %d dimensions, want %d",
				vector.ErrDimensionMismatch, i, len(e.Embedding), dims)
		}
		var sum float64
		for _, v := range e.Embedding {
			sum += float64(v) * float64(v)
		}
		if sum > 0 {
			invNorms[i] = float32(1 / math.Sqrt(sum))
		}
	}

	// Copy so later mutation of the caller's slice cannot leak into the
	// immutable snapshot.
	owned := make([]vector.Entry, len(entries))
	copy(owned, entries)

	return &Index{
		entries:     owned,
		invNorms:    invNorms,
		dims:        dims,
		fingerprint: fingerprint,
		embedderID:  embedderID,
	}, nil
}

// Query scans all entries and returns the top-min(k, Len()) by cosine
// similarity, descending, ties broken by insertion order.
func (ix *Index) Query(_ context.Context, embedding []float32, k int) ([]vector.Result, error) {
	if len(ix.entries) == 0 {
		return nil, vector.ErrEmptyIndex
	}
	if len(embedding) != ix.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			vector.ErrDimensionMismatch, len(embedding), ix.dims)
	}

	var qNorm float64
	for _, v := range embedding {
		qNorm += float64(v) * float64(v)
	}
	qInv := float32(0)
	if qNorm > 0 {
		qInv = float32(1 / math.Sqrt(qNorm))
	}

	scores := make([]float32, len(ix.entries))
	for i, e := range ix.entries {
		var dot float32
		for j, v := range e.Embedding {
			dot += v * embedding[j]
		}
		scores[i] = dot * ix.invNorms[i] * qInv
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return order[a] < order[b]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]vector.Result, 0, k)
	for _, i := range order[:k] {
		results = append(results, vector.Result{
			Segment: ix.entries[i].Segment,
			Score:   scores[i],
		})
	}
	return results, nil
}

// Entries returns the index contents in insertion order.
func (ix *Index) Entries() []vector.Entry { return ix.entries }

// Len is the number of indexed segments.
func (ix *Index) Len() int { return len(ix.entries) }

// Dimensions is the vector dimensionality (0 when empty).
func (ix *Index) Dimensions() int { return ix.dims }

// Fingerprint is the corpus fingerprint this index was built from.
func (ix *Index) Fingerprint() string { return ix.fingerprint }

// EmbedderID identifies the embedding provider/model.
func (ix *Index) EmbedderID() string { return ix.embedderID }

// Close is a no-op for the in-memory index.
func (ix *Index) Close() error { return nil }

var _ vector.Index = (*Index)(nil)
