package corpus_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/saorihq/saori/pkg/corpus"
)

var _ = Describe("Watcher", func() {
	var (
		dir   string
		fired atomic.Int32
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		fired.Store(0)
	})

	start := func(debounce time.Duration) (context.CancelFunc, *corpus.Watcher) {
		w, err := corpus.NewWatcher(dir, debounce, func(context.Context) {
			fired.Add(1)
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			defer GinkgoRecover()
			err := w.Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
		}()
		return cancel, w
	}

	It("fails for a directory that does not exist", func() {
		_, err := corpus.NewWatcher(filepath.Join(dir, "missing"), 0, func(context.Context) {}, zap.NewNop())
		Expect(err).To(HaveOccurred())
	})

	It("fires once after a burst of document writes", func() {
		cancel, w := start(100 * time.Millisecond)
		defer w.Close()
		defer cancel()

		for i := range 3 {
			path := filepath.Join(dir, "doc.txt")
			Expect(os.WriteFile(path, []byte("content"), 0o600)).To(Succeed())
			if i < 2 {
				time.Sleep(20 * time.Millisecond)
			}
		}

		Eventually(fired.Load, "3s", "20ms").Should(Equal(int32(1)))
		Consistently(fired.Load, "300ms", "50ms").Should(Equal(int32(1)))
	})

	It("ignores files that are not documents", func() {
		cancel, w := start(50 * time.Millisecond)
		defer w.Close()
		defer cancel()

		Expect(os.WriteFile(filepath.Join(dir, "image.png"), []byte{0x89}, 0o600)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "notes.swp"), []byte("tmp"), 0o600)).To(Succeed())

		Consistently(fired.Load, "300ms", "50ms").Should(BeZero())
	})

	It("fires for markdown documents", func() {
		cancel, w := start(50 * time.Millisecond)
		defer w.Close()
		defer cancel()

		Expect(os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# doc"), 0o600)).To(Succeed())
		Eventually(fired.Load, "3s", "20ms").Should(Equal(int32(1)))
	})

	It("fires again for removals", func() {
		path := filepath.Join(dir, "doc.txt")
		Expect(os.WriteFile(path, []byte("content"), 0o600)).To(Succeed())

		cancel, w := start(50 * time.Millisecond)
		defer w.Close()
		defer cancel()

		Expect(os.Remove(path)).To(Succeed())
		Eventually(fired.Load, "3s", "20ms").Should(Equal(int32(1)))
	})
})
