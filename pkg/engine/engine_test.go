package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saorihq/saori/pkg/chunker"
	"github.com/saorihq/saori/pkg/corpus"
	"github.com/saorihq/saori/pkg/corpus/memory"
	"github.com/saorihq/saori/pkg/engine"
	"github.com/saorihq/saori/pkg/eventstream"
	testutils "github.com/saorihq/saori/pkg/utils/test"
	"github.com/saorihq/saori/pkg/vector"
	vectorutils "github.com/saorihq/saori/pkg/vector/utils"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine Suite")
}

var _ = Describe("Engine", func() {
	var (
		ctx       context.Context
		store     *memory.Store
		embedder  *testutils.MockEmbedder
		generator *testutils.MockGenerator
		publisher *testutils.MockPublisher
		builder   vectorutils.Builder
		splitter  *chunker.Chunker
		cfg       engine.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memory.NewStore()
		embedder = testutils.NewMockEmbedder()
		generator = testutils.NewMockGenerator()
		publisher = testutils.NewMockPublisher()

		var err error
		builder, err = vectorutils.NewBuilder(&vectorutils.NewBuilderOpts{BackendType: "native"})
		Expect(err).NotTo(HaveOccurred())

		splitter, err = chunker.New(200, 0)
		Expect(err).NotTo(HaveOccurred())

		cfg = engine.Config{}

		embedder.Embeddings["alpha facts live here"] = []float32{1, 0, 0}
		embedder.Embeddings["beta facts live here"] = []float32{0, 1, 0}
		embedder.Embeddings["about alpha"] = []float32{0.95, 0.05, 0}
	})

	newEngine := func() *engine.Engine {
		eng, err := engine.New(&engine.Opts{
			Store:     store,
			Chunker:   splitter,
			Embedder:  embedder,
			Builder:   builder,
			Generator: generator,
			Publisher: publisher,
			Config:    cfg,
		})
		Expect(err).NotTo(HaveOccurred())
		return eng
	}

	seedCorpus := func(eng *engine.Engine) {
		_, err := eng.Ingest(ctx, "a.txt", "alpha facts live here")
		Expect(err).NotTo(HaveOccurred())
		_, err = eng.Ingest(ctx, "b.txt", "beta facts live here")
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("New", func() {
		It("requires every collaborator", func() {
			_, err := engine.New(&engine.Opts{
				Store:    store,
				Chunker:  splitter,
				Embedder: embedder,
				Builder:  builder,
				// Generator missing.
				Publisher: publisher,
			})
			Expect(err).To(MatchError(engine.ErrConfig))
		})

		It("rejects a negative top-k", func() {
			cfg.TopK = -1
			_, err := engine.New(&engine.Opts{
				Store:     store,
				Chunker:   splitter,
				Embedder:  embedder,
				Builder:   builder,
				Generator: generator,
				Publisher: publisher,
				Config:    cfg,
			})
			Expect(err).To(MatchError(engine.ErrConfig))
		})
	})

	Describe("Ingest", func() {
		It("stores the document and publishes an event", func() {
			eng := newEngine()
			doc, err := eng.Ingest(ctx, "a.txt", "alpha facts live here")
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.ID).NotTo(BeEmpty())

			got, err := store.Get(ctx, doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("a.txt"))

			Expect(publisher.DocumentIngested).To(HaveLen(1))
			event := publisher.DocumentIngested[0]
			Expect(event.EventType).To(Equal(eventstream.EventTypeDocumentIngested))
			Expect(event.DocumentID).To(Equal(doc.ID))
			Expect(event.Name).To(Equal("a.txt"))
			Expect(event.Chars).To(Equal(len("alpha facts live here")))
			Expect(event.EventID).NotTo(BeEmpty())
		})

		It("succeeds even when event publishing fails", func() {
			publisher.FailPublish = context.DeadlineExceeded
			eng := newEngine()

			_, err := eng.Ingest(ctx, "a.txt", "alpha facts live here")
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not touch the index", func() {
			eng := newEngine()
			seedCorpus(eng)

			_, err := eng.AnswerQuery(ctx, "about alpha", false)
			Expect(err).To(MatchError(vector.ErrEmptyIndex))
		})
	})

	Describe("ReprocessAll", func() {
		It("embeds every segment and publishes a rebuild event", func() {
			eng := newEngine()
			seedCorpus(eng)

			Expect(eng.ReprocessAll(ctx)).To(Succeed())
			Expect(embedder.BatchCalls).To(Equal(1))

			Expect(publisher.IndexRebuilt).To(HaveLen(1))
			event := publisher.IndexRebuilt[0]
			Expect(event.EventType).To(Equal(eventstream.EventTypeIndexRebuilt))
			Expect(event.Documents).To(Equal(2))
			Expect(event.Segments).To(Equal(2))
			Expect(event.Dimensions).To(Equal(3))
			Expect(event.EmbedderID).To(Equal("mock/embedder"))

			docs, err := store.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(event.Fingerprint).To(Equal(corpus.Fingerprint(docs, "mock/embedder")))
		})

		It("handles an empty corpus", func() {
			eng := newEngine()
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			_, err := eng.AnswerQuery(ctx, "anything", false)
			Expect(err).To(MatchError(vector.ErrEmptyIndex))
		})

		It("reflects a superseded document after rebuild", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			embedder.Embeddings["alpha facts, revised"] = []float32{1, 0, 0}
			_, err := eng.Ingest(ctx, "a.txt", "alpha facts, revised")
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			ans, err := eng.AnswerQuery(ctx, "about alpha", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(generator.LastContext).To(ContainSubstring("alpha facts, revised"))
			Expect(ans.UsedSegments).NotTo(BeEmpty())
		})
	})

	Describe("AnswerQuery", func() {
		It("rejects a blank query", func() {
			eng := newEngine()
			_, err := eng.AnswerQuery(ctx, "   \t\n", false)
			Expect(err).To(MatchError(engine.ErrEmptyQuery))
		})

		It("answers from the most similar segments", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			generator.Answer = "alpha is documented"
			ans, err := eng.AnswerQuery(ctx, "about alpha", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(ans.Text).To(Equal("alpha is documented"))
			Expect(ans.UsedSegments).To(BeNil())

			Expect(generator.LastQuery).To(Equal("about alpha"))
			Expect(generator.LastContext).To(ContainSubstring("(from a.txt)"))
			Expect(generator.LastContext).To(ContainSubstring("alpha facts live here"))
		})

		It("carries provenance in test mode, most similar first", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			ans, err := eng.AnswerQuery(ctx, "about alpha", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(ans.UsedSegments).To(HaveLen(2))

			docA := corpus.DocumentID("a.txt", "alpha facts live here")
			docB := corpus.DocumentID("b.txt", "beta facts live here")
			Expect(ans.UsedSegments[0].DocumentID).To(Equal(docA))
			Expect(ans.UsedSegments[1].DocumentID).To(Equal(docB))
			Expect(ans.UsedSegments[0].Score).To(BeNumerically(">", ans.UsedSegments[1].Score))
		})

		It("honors a per-call top-k override", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			ans, err := eng.AnswerQueryTopK(ctx, "about alpha", 1, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(ans.UsedSegments).To(HaveLen(1))
		})

		It("drops segments below the score floor", func() {
			cfg.MinScore = 0.9
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			ans, err := eng.AnswerQuery(ctx, "about alpha", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(ans.UsedSegments).To(HaveLen(1))
			Expect(generator.LastContext).NotTo(ContainSubstring("beta facts"))
		})

		It("propagates generation failures", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			generator.Fail = true
			_, err := eng.AnswerQuery(ctx, "about alpha", false)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Start with a snapshot", func() {
		var snapshotPath string

		BeforeEach(func() {
			tmpDir, err := os.MkdirTemp("", "engine-test-*")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.RemoveAll, tmpDir)
			snapshotPath = filepath.Join(tmpDir, "index.saoridx")
			cfg.SnapshotPath = snapshotPath
		})

		It("persists the index on rebuild and reuses it on the next start", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())
			Expect(snapshotPath).To(BeAnExistingFile())

			// Same corpus, fresh engine: the snapshot is current, so no
			// segment is re-embedded.
			embedder.BatchCalls = 0
			publisher.IndexRebuilt = nil

			eng2 := newEngine()
			Expect(eng2.Start(ctx)).To(Succeed())
			Expect(embedder.BatchCalls).To(Equal(0))
			Expect(publisher.IndexRebuilt).To(BeEmpty())

			ans, err := eng2.AnswerQuery(ctx, "about alpha", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(ans.UsedSegments).To(HaveLen(2))
		})

		It("rebuilds when the corpus changed since the snapshot", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			embedder.Embeddings["gamma facts live here"] = []float32{0, 0, 1}
			_, err := eng.Ingest(ctx, "c.txt", "gamma facts live here")
			Expect(err).NotTo(HaveOccurred())

			embedder.BatchCalls = 0
			publisher.IndexRebuilt = nil

			eng2 := newEngine()
			Expect(eng2.Start(ctx)).To(Succeed())
			Expect(embedder.BatchCalls).To(Equal(1))
			Expect(publisher.IndexRebuilt).To(HaveLen(1))
			Expect(publisher.IndexRebuilt[0].Documents).To(Equal(3))
		})

		It("rebuilds when no snapshot exists", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.Start(ctx)).To(Succeed())
			Expect(embedder.BatchCalls).To(Equal(1))
			Expect(snapshotPath).To(BeAnExistingFile())
		})

		It("treats a corrupt snapshot as absent and rebuilds", func() {
			Expect(os.WriteFile(snapshotPath, []byte("garbage"), 0o600)).To(Succeed())

			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.Start(ctx)).To(Succeed())
			Expect(embedder.BatchCalls).To(Equal(1))

			// The rebuild replaced the corrupt file with a valid one.
			embedder.BatchCalls = 0
			eng2 := newEngine()
			Expect(eng2.Start(ctx)).To(Succeed())
			Expect(embedder.BatchCalls).To(Equal(0))
		})
	})

	Describe("Documents", func() {
		It("lists the corpus ordered by name", func() {
			eng := newEngine()
			seedCorpus(eng)

			docs, err := eng.Documents(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].Name).To(Equal("a.txt"))
			Expect(docs[1].Name).To(Equal("b.txt"))
		})
	})

	Describe("Remove", func() {
		It("deletes the document from the corpus", func() {
			eng := newEngine()
			doc, err := eng.Ingest(ctx, "a.txt", "alpha facts live here")
			Expect(err).NotTo(HaveOccurred())

			Expect(eng.Remove(ctx, doc.ID)).To(Succeed())

			docs, err := eng.Documents(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})

		It("returns ErrNotFound for an unknown document", func() {
			eng := newEngine()
			Expect(eng.Remove(ctx, "missing")).To(MatchError(corpus.ErrNotFound))
		})

		It("stops drawing on the removed document after the next rebuild", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			docs, err := eng.Documents(ctx)
			Expect(err).NotTo(HaveOccurred())
			var alphaID string
			for _, doc := range docs {
				if doc.Name == "a.txt" {
					alphaID = doc.ID
				}
			}
			Expect(alphaID).NotTo(BeEmpty())

			Expect(eng.Remove(ctx, alphaID)).To(Succeed())
			Expect(eng.ReprocessAll(ctx)).To(Succeed())

			ans, err := eng.AnswerQueryTopK(ctx, "about alpha", 5, true)
			Expect(err).NotTo(HaveOccurred())
			for _, seg := range ans.UsedSegments {
				Expect(seg.DocumentID).NotTo(Equal(alphaID))
			}
		})
	})

	Describe("Close", func() {
		It("closes collaborators and the live index", func() {
			eng := newEngine()
			seedCorpus(eng)
			Expect(eng.ReprocessAll(ctx)).To(Succeed())
			Expect(eng.Close()).To(Succeed())
		})
	})
})
