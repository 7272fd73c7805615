package embeddings

import "errors"

var (
	// ErrService is returned for embedding service failures: transport
	// errors, timeouts, authentication failures, or non-2xx responses.
	// Transient cases are retried internally before surfacing.
	ErrService = errors.New("embedding service failed")

	// ErrDimension is returned when the service returns vectors whose
	// dimensionality is inconsistent within a batch or with the
	// dimensionality established by earlier calls. This indicates a
	// mismatched model/index pairing and is never retried.
	ErrDimension = errors.New("embedding dimension mismatch")
)
