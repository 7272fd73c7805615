// Package sqlitevec provides an accelerated vector index backed by SQLite
// with the sqlite-vec extension. Ranking is exact KNN over cosine distance,
// so results match the native brute-force index within floating-point
// tolerance; only the scan is delegated to the extension.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/saorihq/saori/pkg/vector"
)

// Index implements vector.Index using a vec0 virtual table.
type Index struct {
	db     *sql.DB
	logger *zap.Logger

	entries     []vector.Entry
	dims        int
	fingerprint string
	embedderID  string
}

// Config holds configuration for the sqlite-vec index.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" (the default when empty) for an in-memory database.
	DBPath string
}

// Build constructs an index from entries, preserving order (vec0 rowids
// follow insertion order, which drives tie-breaking). All vectors must share
// one dimensionality.
func Build(entries []vector.Entry, fingerprint, embedderID string, c Config, logger *zap.Logger) (*Index, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	dbPath := c.DBPath
	if dbPath == "" {
		dbPath = ":memory:"
	}

	dims := 0
	if len(entries) > 0 {
		dims = len(entries[0].Embedding)
	}
	for i, e := range entries {
		if len(e.Embedding) != dims {
			return nil, fmt.Errorf("%w: entry %d has %d dimensions, want %d",
				vector.ErrDimensionMismatch, i, len(e.Embedding), dims)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection gets its own in-memory database, so the
		// vec0 table only exists on the connection that built it.
		db.SetMaxOpenConns(1)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	if dims > 0 {
		// A file-backed database may hold a previous build.
		if _, err := db.Exec(`DROP TABLE IF EXISTS vec_segments`); err != nil {
			db.Close()
			return nil, fmt.Errorf("dropping stale vec0 table: %w", err)
		}

		createVec := fmt.Sprintf(
			`CREATE VIRTUAL TABLE vec_segments USING vec0(embedding float[%d] distance_metric=cosine)`,
			dims,
		)
		if _, err := db.Exec(createVec); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating vec0 table: %w", err)
		}

		tx, err := db.Begin()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("beginning transaction: %w", err)
		}
		for i, e := range entries {
			blob, err := serializeFloat32(e.Embedding)
			if err != nil {
				tx.Rollback()
				db.Close()
				return nil, fmt.Errorf("serializing embedding %d: %w", i, err)
			}
			// rowid = insertion order + 1 keeps tie-breaking aligned
			// with the native index.
			if _, err := tx.Exec(
				`INSERT INTO vec_segments(rowid, embedding) VALUES (?, ?)`,
				int64(i+1), blob,
			); err != nil {
				tx.Rollback()
				db.Close()
				return nil, fmt.Errorf("inserting embedding %d: %w", i, err)
			}
		}
		if err := tx.Commit(); err != nil {
			db.Close()
			return nil, fmt.Errorf("committing build: %w", err)
		}
	}

	owned := make([]vector.Entry, len(entries))
	copy(owned, entries)

	logger.Info("sqlite-vec index built",
		zap.String("db_path", dbPath),
		zap.Int("segments", len(owned)),
		zap.Int("dimensions", dims),
		zap.String("vec_version", vecVersion),
	)

	return &Index{
		db:          db,
		logger:      logger,
		entries:     owned,
		dims:        dims,
		fingerprint: fingerprint,
		embedderID:  embedderID,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) ([]byte, error) {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf, nil
}

// Query runs a KNN scan over the vec0 table.
func (ix *Index) Query(ctx context.Context, embedding []float32, k int) ([]vector.Result, error) {
	if len(ix.entries) == 0 {
		return nil, vector.ErrEmptyIndex
	}
	if len(embedding) != ix.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			vector.ErrDimensionMismatch, len(embedding), ix.dims)
	}
	if k > len(ix.entries) {
		k = len(ix.entries)
	}

	blob, err := serializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("serializing query embedding: %w", err)
	}

	// vec0 KNN queries only permit ORDER BY distance; the equal-score
	// tie-break on insertion order happens after the scan.
	rows, err := ix.db.QueryContext(ctx, `
		SELECT rowid, distance
		FROM vec_segments
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance
	`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("querying vec0 table: %w", err)
	}
	defer rows.Close()

	type hit struct {
		pos      int
		distance float64
	}
	hits := make([]hit, 0, k)
	for rows.Next() {
		var rowid int64
		var distance float64
		if err := rows.Scan(&rowid, &distance); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		i := int(rowid - 1)
		if i < 0 || i >= len(ix.entries) {
			return nil, fmt.Errorf("vec0 returned unknown rowid %d", rowid)
		}
		hits = append(hits, hit{pos: i, distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].distance != hits[b].distance {
			return hits[a].distance < hits[b].distance
		}
		return hits[a].pos < hits[b].pos
	})

	results := make([]vector.Result, len(hits))
	for i, h := range hits {
		results[i] = vector.Result{
			Segment: ix.entries[h.pos].Segment,
			// vec0 reports cosine distance; similarity = 1 - distance.
			Score: float32(1 - h.distance),
		}
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

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

var _ vector.Index = (*Index)(nil)
