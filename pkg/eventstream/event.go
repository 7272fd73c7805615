// Package eventstream defines transport-neutral lifecycle events emitted by
// the answer engine (document ingested, index rebuilt) and the Publisher
// interface backends implement.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeIndexRebuilt is emitted after a full reprocess swaps in a
	// new vector index.
	EventTypeIndexRebuilt = "saori.index.rebuilt"

	// EventTypeDocumentIngested is emitted after a document is stored in
	// the corpus.
	EventTypeDocumentIngested = "saori.document.ingested"
)

// IndexRebuiltEvent is the payload for a completed index rebuild.
type IndexRebuiltEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	Fingerprint string `json:"fingerprint"`
	EmbedderID  string `json:"embedder_id"`
	Documents   int    `json:"documents"`
	Segments    int    `json:"segments"`
	Dimensions  int    `json:"dimensions"`
	DurationMs  int64  `json:"duration_ms"`
}

// DocumentIngestedEvent is the payload for a stored document.
type DocumentIngestedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	Chars      int    `json:"chars"`
}
