// Package corpus defines the document corpus: the set of ingested plain-text
// documents the answer engine is allowed to draw from, the segments they are
// split into, and the fingerprint that ties an index build to the exact
// corpus contents it was computed from.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document is a single ingested document. Documents are immutable: ingesting
// a document with the same name again produces a new Document with a new ID
// that supersedes the old one.
type Document struct {
	// ID is a content hash of the document name and text.
	ID string `json:"id"`

	// Name is the source path or display name supplied at ingestion.
	Name string `json:"name"`

	// Text is the raw extracted plain text. Binary parsing (PDF, DOCX)
	// happens upstream; this package only ever sees text.
	Text string `json:"text"`

	// AddedAt is the ingestion timestamp.
	AddedAt time.Time `json:"added_at"`
}

// NewDocument creates a Document with a content-derived ID.
func NewDocument(name, text string) Document {
	return Document{
		ID:      DocumentID(name, text),
		Name:    name,
		Text:    text,
		AddedAt: time.Now().UTC(),
	}
}

// DocumentID derives the content-addressed document ID from its name and
// text. Two documents with identical name and text share an ID.
func DocumentID(name, text string) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Segment is a bounded span of a document's text, the unit of retrieval.
type Segment struct {
	// DocumentID is the owning document's ID.
	DocumentID string `json:"document_id"`

	// Index is the segment's sequence number within the document.
	Index int `json:"index"`

	// Start and End are the rune span of the segment within the document
	// text (End exclusive), so a boundary never splits a multi-byte
	// character. Consecutive segments overlap by the chunker's configured
	// overlap.
	Start int `json:"start"`
	End   int `json:"end"`

	// Text is the raw segment text, the Start:End rune span verbatim.
	Text string `json:"text"`
}
