package corpus

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document is not present in the store.
var ErrNotFound = errors.New("document not found")

// Store persists the document corpus. Implementations must treat documents
// as immutable: Put with an existing name replaces the stored document
// wholesale (supersede, never mutate).
type Store interface {
	// Put stores a document. A document with the same Name is replaced.
	Put(ctx context.Context, doc Document) error

	// Get retrieves a document by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (Document, error)

	// Delete removes a document by ID. Deleting an absent document is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns all documents ordered by name.
	List(ctx context.Context) ([]Document, error)

	// Close releases any resources held by the store.
	Close() error
}
