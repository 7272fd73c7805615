// Package memory provides an in-memory implementation of corpus.Store,
// used for tests and ephemeral single-run setups.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/saorihq/saori/pkg/corpus"
)

// Store implements corpus.Store using in-process data structures.
type Store struct {
	mu sync.RWMutex

	// docs maps document ID -> document.
	docs map[string]corpus.Document

	// byName maps document name -> current document ID, so re-ingesting a
	// name supersedes the previous version.
	byName map[string]string
}

// NewStore creates an empty in-memory corpus store.
func NewStore() *Store {
	return &Store{
		docs:   make(map[string]corpus.Document),
		byName: make(map[string]string),
	}
}

// Put stores a document, replacing any prior document with the same name.
func (s *Store) Put(_ context.Context, doc corpus.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byName[doc.Name]; ok && prev != doc.ID {
		delete(s.docs, prev)
	}
	s.docs[doc.ID] = doc
	s.byName[doc.Name] = doc.ID
	return nil
}

// Get retrieves a document by ID.
func (s *Store) Get(_ context.Context, id string) (corpus.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return corpus.Document{}, corpus.ErrNotFound
	}
	return doc, nil
}

// Delete removes a document by ID.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.docs[id]; ok {
		delete(s.byName, doc.Name)
		delete(s.docs, id)
	}
	return nil
}

// List returns all documents ordered by name.
func (s *Store) List(_ context.Context) ([]corpus.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]corpus.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

var _ corpus.Store = (*Store)(nil)
