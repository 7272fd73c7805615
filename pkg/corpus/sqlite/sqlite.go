// Package sqlite provides a SQLite-backed corpus store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/saorihq/saori/pkg/corpus"
)

// Store implements corpus.Store using SQLite as the storage backend.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite-backed corpus store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		text TEXT NOT NULL,
		added_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Put stores a document, replacing any prior document with the same name.
func (s *Store) Put(ctx context.Context, doc corpus.Document) error {
	// Replace by name so a re-ingested document supersedes its predecessor.
	query := `
	INSERT INTO documents (id, name, text, added_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET id = excluded.id, text = excluded.text, added_at = excluded.added_at
	`

	_, err := s.db.ExecContext(ctx, query, doc.ID, doc.Name, doc.Text, doc.AddedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
	}
	return nil
}

// Get retrieves a document by its ID.
func (s *Store) Get(ctx context.Context, id string) (corpus.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, text, added_at FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return corpus.Document{}, corpus.ErrNotFound
	}
	if err != nil {
		return corpus.Document{}, fmt.Errorf("failed to scan document: %w", err)
	}
	return doc, nil
}

// Delete removes a document by ID. Deleting an absent document is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

// List returns all documents ordered by name.
func (s *Store) List(ctx context.Context) ([]corpus.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, text, added_at FROM documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []corpus.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (corpus.Document, error) {
	var doc corpus.Document
	var addedAt string
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Text, &addedAt); err != nil {
		return corpus.Document{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, addedAt)
	if err != nil {
		return corpus.Document{}, fmt.Errorf("invalid added_at %q: %w", addedAt, err)
	}
	doc.AddedAt = t
	return doc, nil
}

var _ corpus.Store = (*Store)(nil)
