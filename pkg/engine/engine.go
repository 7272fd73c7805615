// Package engine orchestrates the answer pipeline: corpus storage, chunking,
// embedding, the live vector index, retrieval, context assembly and answer
// generation. The engine owns the index lifecycle; everything else is a
// collaborator passed in at construction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saorihq/saori/pkg/answer"
	"github.com/saorihq/saori/pkg/assembler"
	"github.com/saorihq/saori/pkg/chunker"
	"github.com/saorihq/saori/pkg/corpus"
	"github.com/saorihq/saori/pkg/embeddings"
	"github.com/saorihq/saori/pkg/eventstream"
	"github.com/saorihq/saori/pkg/indexstore"
	"github.com/saorihq/saori/pkg/retriever"
	"github.com/saorihq/saori/pkg/utils"
	"github.com/saorihq/saori/pkg/vector"
	vectorutils "github.com/saorihq/saori/pkg/vector/utils"
)

var (
	// ErrConfig is returned for invalid engine configuration.
	ErrConfig = errors.New("invalid engine configuration")

	// ErrEmptyQuery is returned when a query is blank.
	ErrEmptyQuery = errors.New("empty query")
)

// DefaultTopK is the number of segments retrieved per query when the
// configuration does not say otherwise.
const DefaultTopK = 5

// Config tunes the engine's query and rebuild behavior.
type Config struct {
	// TopK is the number of segments retrieved per query. Zero means
	// DefaultTopK.
	TopK int

	// MinScore drops retrieved segments scoring below it before context
	// assembly. Zero keeps everything (pure top-k).
	MinScore float32

	// MaxContextChars bounds the assembled context. Zero means
	// assembler.DefaultMaxContextChars.
	MaxContextChars int

	// SnapshotPath is where the index snapshot is persisted. Empty
	// disables persistence.
	SnapshotPath string
}

// Opts carries the engine's collaborators.
type Opts struct {
	Store     corpus.Store
	Chunker   *chunker.Chunker
	Embedder  embeddings.Embedder
	Builder   vectorutils.Builder
	Generator answer.Generator
	Publisher eventstream.Publisher
	Logger    *zap.Logger
	Config    Config
}

// Answer is the result of one query.
type Answer struct {
	Text string `json:"text"`

	// UsedSegments lists the provenance of every segment that made it
	// into the prompt context, in inclusion order. Populated only in
	// test mode.
	UsedSegments []assembler.Provenance `json:"used_segments,omitempty"`
}

// Engine answers questions over an ingested document corpus.
type Engine struct {
	store     corpus.Store
	chunker   *chunker.Chunker
	embedder  embeddings.Embedder
	builder   vectorutils.Builder
	generator answer.Generator
	publisher eventstream.Publisher
	logger    *zap.Logger
	cfg       Config

	handle    *vector.Handle
	retriever *retriever.Retriever
	assembler *assembler.Assembler

	// docNames maps document ID to display name for the excerpt
	// delimiters; replaced wholesale on every rebuild.
	docNames atomic.Pointer[map[string]string]

	// rebuildMu serializes rebuilds. Queries never take it; they read
	// the handle's current index.
	rebuildMu sync.Mutex
}

// New creates an engine from its collaborators.
func New(o *Opts) (*Engine, error) {
	if o.Store == nil || o.Chunker == nil || o.Embedder == nil ||
		o.Builder == nil || o.Generator == nil || o.Publisher == nil {
		return nil, fmt.Errorf("%w: missing collaborator", ErrConfig)
	}
	if o.Config.TopK < 0 {
		return nil, fmt.Errorf("%w: top_k must be >= 0, got %d", ErrConfig, o.Config.TopK)
	}

	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		store:     o.Store,
		chunker:   o.Chunker,
		embedder:  o.Embedder,
		builder:   o.Builder,
		generator: o.Generator,
		publisher: o.Publisher,
		logger:    logger,
		cfg:       o.Config,
		handle:    vector.NewHandle(),
	}

	e.retriever = retriever.New(o.Embedder, e.handle)
	e.assembler = &assembler.Assembler{
		MaxContextChars: o.Config.MaxContextChars,
		DocumentName:    e.documentName,
	}

	return e, nil
}

// Start brings up the index: it loads the persisted snapshot when one exists
// and its fingerprint still matches the corpus and embedder identity,
// otherwise it rebuilds from scratch. A corrupt snapshot is treated as
// absent.
func (e *Engine) Start(ctx context.Context) error {
	if e.cfg.SnapshotPath != "" {
		snap, err := indexstore.Load(e.cfg.SnapshotPath)
		switch {
		case err == nil:
			reused, err := e.tryReuseSnapshot(ctx, snap)
			if err != nil {
				return err
			}
			if reused {
				return nil
			}
			e.logger.Info("index snapshot stale, rebuilding",
				zap.String("path", e.cfg.SnapshotPath))
		case errors.Is(err, indexstore.ErrNotFound):
			e.logger.Info("no index snapshot, rebuilding",
				zap.String("path", e.cfg.SnapshotPath))
		case errors.Is(err, indexstore.ErrCorrupt):
			e.logger.Warn("index snapshot corrupt, rebuilding",
				zap.String("path", e.cfg.SnapshotPath),
				zap.Error(err))
		default:
			return fmt.Errorf("loading index snapshot: %w", err)
		}
	}

	return e.ReprocessAll(ctx)
}

// tryReuseSnapshot swaps in the snapshot's index when its fingerprint still
// matches the current corpus and embedder identity.
func (e *Engine) tryReuseSnapshot(ctx context.Context, snap *indexstore.Snapshot) (bool, error) {
	docs, err := e.store.List(ctx)
	if err != nil {
		return false, fmt.Errorf("listing corpus: %w", err)
	}

	if snap.EmbedderID != e.embedder.Identity() {
		return false, nil
	}
	if snap.Fingerprint != corpus.Fingerprint(docs, e.embedder.Identity()) {
		return false, nil
	}

	ix, err := e.builder(snap.Entries, snap.Fingerprint, snap.EmbedderID)
	if err != nil {
		return false, fmt.Errorf("building index from snapshot: %w", err)
	}

	e.swapIndex(ix, docs)
	e.logger.Info("reusing index snapshot",
		zap.String("fingerprint", snap.Fingerprint),
		zap.Int("segments", ix.Len()),
		zap.Int("dimensions", ix.Dimensions()))
	return true, nil
}

// Ingest stores a document in the corpus, superseding any document with the
// same name. The index is not touched; callers reprocess when ready.
func (e *Engine) Ingest(ctx context.Context, name, text string) (corpus.Document, error) {
	doc := corpus.NewDocument(name, text)
	if err := e.store.Put(ctx, doc); err != nil {
		return corpus.Document{}, fmt.Errorf("storing document: %w", err)
	}

	e.logger.Info("document ingested",
		zap.String("id", doc.ID),
		zap.String("name", doc.Name),
		zap.Int("chars", len(doc.Text)))

	event := &eventstream.DocumentIngestedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeDocumentIngested,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		DocumentID:    doc.ID,
		Name:          doc.Name,
		Chars:         len(doc.Text),
	}
	if err := e.publisher.PublishDocumentIngested(ctx, event); err != nil {
		e.logger.Warn("publishing ingest event", zap.Error(err))
	}

	return doc, nil
}

// Documents lists the corpus, ordered by name.
func (e *Engine) Documents(ctx context.Context) ([]corpus.Document, error) {
	return e.store.List(ctx)
}

// Remove deletes a document from the corpus by ID. Returns
// corpus.ErrNotFound when no such document exists. The index is not
// touched; callers reprocess when ready, and until then answers may still
// draw on the removed document's segments.
func (e *Engine) Remove(ctx context.Context, id string) error {
	doc, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := e.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	e.logger.Info("document removed",
		zap.String("id", doc.ID),
		zap.String("name", doc.Name))
	return nil
}

// ReprocessAll rebuilds the index from the full corpus: chunk every
// document, embed every segment, build a fresh index and swap it in
// atomically. Queries running concurrently see either the old index or the
// new one, never a partial state. There is no incremental mode; any corpus
// change requires a full rebuild.
func (e *Engine) ReprocessAll(ctx context.Context) error {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	started := time.Now()

	docs, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing corpus: %w", err)
	}

	var segments []corpus.Segment
	for _, doc := range docs {
		segments = append(segments, e.chunker.Split(doc)...)
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	vecs, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding corpus: %w", err)
	}

	entries := make([]vector.Entry, len(segments))
	for i := range segments {
		entries[i] = vector.Entry{Segment: segments[i], Embedding: vecs[i]}
	}

	fingerprint := corpus.Fingerprint(docs, e.embedder.Identity())

	ix, err := e.builder(entries, fingerprint, e.embedder.Identity())
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	e.swapIndex(ix, docs)

	if e.cfg.SnapshotPath != "" {
		if err := indexstore.Save(e.cfg.SnapshotPath, indexstore.FromIndex(ix)); err != nil {
			return fmt.Errorf("saving index snapshot: %w", err)
		}
	}

	duration := time.Since(started)
	e.logger.Info("index rebuilt",
		zap.Int("documents", len(docs)),
		zap.Int("segments", len(segments)),
		zap.Int("dimensions", ix.Dimensions()),
		zap.Duration("duration", duration))

	event := &eventstream.IndexRebuiltEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeIndexRebuilt,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Fingerprint:   fingerprint,
		EmbedderID:    e.embedder.Identity(),
		Documents:     len(docs),
		Segments:      len(segments),
		Dimensions:    ix.Dimensions(),
		DurationMs:    duration.Milliseconds(),
	}
	if err := e.publisher.PublishIndexRebuilt(ctx, event); err != nil {
		e.logger.Warn("publishing rebuild event", zap.Error(err))
	}

	return nil
}

// AnswerQuery runs the full query path: retrieve the top segments, assemble
// a bounded context, generate an answer. In test mode the answer carries the
// provenance of every segment used, exactly as assembled.
func (e *Engine) AnswerQuery(ctx context.Context, query string, testMode bool) (*Answer, error) {
	return e.AnswerQueryTopK(ctx, query, 0, testMode)
}

// AnswerQueryTopK is AnswerQuery with a per-call top-k override. A topK of
// zero falls back to the configured value.
func (e *Engine) AnswerQueryTopK(ctx context.Context, query string, topK int, testMode bool) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	if topK == 0 {
		topK = e.cfg.TopK
	}
	if topK == 0 {
		topK = DefaultTopK
	}

	results, err := e.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving segments: %w", err)
	}

	if e.cfg.MinScore > 0 {
		kept := results[:0]
		for _, res := range results {
			if res.Score >= e.cfg.MinScore {
				kept = append(kept, res)
			}
		}
		results = kept
	}

	contextText, used := e.assembler.Assemble(results)

	e.logger.Debug("context assembled",
		zap.String("query", utils.Truncate(query, 80)),
		zap.Int("retrieved", len(results)),
		zap.Int("used", len(used)),
		zap.Int("context_chars", len(contextText)))

	text, err := e.generator.Generate(ctx, query, contextText)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	ans := &Answer{Text: text}
	if testMode {
		ans.UsedSegments = used
	}
	return ans, nil
}

// Close releases the engine's collaborators and the current index.
func (e *Engine) Close() error {
	var errs []error

	e.handle.Swap(nil)
	errs = append(errs,
		e.embedder.Close(),
		e.generator.Close(),
		e.publisher.Close(),
		e.store.Close(),
	)

	return errors.Join(errs...)
}

func (e *Engine) swapIndex(ix vector.Index, docs []corpus.Document) {
	names := make(map[string]string, len(docs))
	for _, doc := range docs {
		names[doc.ID] = doc.Name
	}
	e.docNames.Store(&names)

	// The handle closes the replaced index once in-flight queries drain.
	e.handle.Swap(ix)
}

func (e *Engine) documentName(id string) string {
	names := e.docNames.Load()
	if names == nil {
		return ""
	}
	return (*names)[id]
}
