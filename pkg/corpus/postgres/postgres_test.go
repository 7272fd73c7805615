package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saorihq/saori/pkg/corpus"
	"github.com/saorihq/saori/pkg/corpus/postgres"
)

func TestPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Postgres Store Suite")
}

// connStr returns the PostgreSQL connection string from the environment or
// skips the test.
func connStr() string {
	dsn := os.Getenv("SAORI_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("SAORI_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *postgres.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = postgres.NewStore(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)

		// Clean the table before each test for isolation.
		docs, err := store.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		for _, doc := range docs {
			Expect(store.Delete(ctx, doc.ID)).To(Succeed())
		}
	})

	It("round-trips a document", func() {
		doc := corpus.NewDocument("notes.txt", "some text")
		Expect(store.Put(ctx, doc)).To(Succeed())

		got, err := store.Get(ctx, doc.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(doc.ID))
		Expect(got.Name).To(Equal(doc.Name))
		Expect(got.Text).To(Equal(doc.Text))
		Expect(got.AddedAt).To(BeTemporally("~", doc.AddedAt, time.Millisecond))
	})

	It("returns ErrNotFound for an absent document", func() {
		_, err := store.Get(ctx, "missing")
		Expect(err).To(MatchError(corpus.ErrNotFound))
	})

	It("supersedes a document re-ingested under the same name", func() {
		old := corpus.NewDocument("notes.txt", "version one")
		Expect(store.Put(ctx, old)).To(Succeed())

		updated := corpus.NewDocument("notes.txt", "version two")
		Expect(store.Put(ctx, updated)).To(Succeed())

		_, err := store.Get(ctx, old.ID)
		Expect(err).To(MatchError(corpus.ErrNotFound))

		docs, err := store.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(1))
		Expect(docs[0].Text).To(Equal("version two"))
	})

	It("lists documents ordered by name", func() {
		Expect(store.Put(ctx, corpus.NewDocument("charlie.txt", "c"))).To(Succeed())
		Expect(store.Put(ctx, corpus.NewDocument("alpha.txt", "a"))).To(Succeed())
		Expect(store.Put(ctx, corpus.NewDocument("bravo.txt", "b"))).To(Succeed())

		docs, err := store.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(3))
		Expect(docs[0].Name).To(Equal("alpha.txt"))
		Expect(docs[1].Name).To(Equal("bravo.txt"))
		Expect(docs[2].Name).To(Equal("charlie.txt"))
	})

	It("deletes a document and tolerates deleting it again", func() {
		doc := corpus.NewDocument("notes.txt", "some text")
		Expect(store.Put(ctx, doc)).To(Succeed())

		Expect(store.Delete(ctx, doc.ID)).To(Succeed())
		_, err := store.Get(ctx, doc.ID)
		Expect(err).To(MatchError(corpus.ErrNotFound))

		Expect(store.Delete(ctx, doc.ID)).To(Succeed())
	})
})
