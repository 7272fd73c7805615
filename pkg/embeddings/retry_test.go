package embeddings_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saorihq/saori/pkg/embeddings"
)

func TestEmbeddings(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Embeddings Suite")
}

var _ = Describe("Backoff", func() {
	It("doubles per attempt", func() {
		Expect(embeddings.Backoff(0)).To(Equal(500 * time.Millisecond))
		Expect(embeddings.Backoff(1)).To(Equal(1 * time.Second))
		Expect(embeddings.Backoff(2)).To(Equal(2 * time.Second))
	})
})

var _ = Describe("SleepBackoff", func() {
	It("returns early when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := embeddings.SleepBackoff(ctx, 3)
		Expect(err).To(MatchError(context.Canceled))
		Expect(time.Since(start)).To(BeNumerically("<", embeddings.Backoff(3)))
	})

	It("waits out the delay otherwise", func() {
		start := time.Now()
		Expect(embeddings.SleepBackoff(context.Background(), 0)).To(Succeed())
		Expect(time.Since(start)).To(BeNumerically(">=", 500*time.Millisecond))
	})
})
