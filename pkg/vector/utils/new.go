// Package vectorutils is the vector backend utility package
package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/saorihq/saori/pkg/vector"
	"github.com/saorihq/saori/pkg/vector/native"
	"github.com/saorihq/saori/pkg/vector/sqlitevec"
)

// Builder constructs a complete, immutable index from entries. A rebuild
// calls the builder and swaps the result into the live Handle.
type Builder func(entries []vector.Entry, fingerprint, embedderID string) (vector.Index, error)

type NewBuilderOpts struct {
	// BackendType selects the index strategy, chosen once at startup:
	// "native" (pure-Go brute force) or "sqlitevec" (sqlite-vec KNN).
	BackendType string

	// DBPath is the sqlite-vec database path (":memory:" when empty).
	// Ignored by the native backend.
	DBPath string

	Logger *zap.Logger
}

func NewBuilder(o *NewBuilderOpts) (Builder, error) {
	switch o.BackendType {
	case "", "native":
		return func(entries []vector.Entry, fingerprint, embedderID string) (vector.Index, error) {
			return native.Build(entries, fingerprint, embedderID)
		}, nil
	case "sqlitevec":
		cfg := sqlitevec.Config{DBPath: o.DBPath}
		logger := o.Logger
		return func(entries []vector.Entry, fingerprint, embedderID string) (vector.Index, error) {
			return sqlitevec.Build(entries, fingerprint, embedderID, cfg, logger)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", o.BackendType)
	}
}
