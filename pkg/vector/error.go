package vector

import "errors"

var (
	// ErrEmptyIndex is returned when querying an index with zero segments,
	// i.e. no documents have been ingested yet.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrDimensionMismatch is returned when a query vector's (or, at build
	// time, an entry vector's) dimensionality differs from the index's.
	// It indicates a corrupted index or a mismatched embedding model and
	// calls for a reprocess.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
