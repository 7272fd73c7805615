package chunker_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saorihq/saori/pkg/chunker"
	"github.com/saorihq/saori/pkg/corpus"
)

func TestChunker(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Chunker Suite")
}

var _ = Describe("New", func() {
	It("rejects a non-positive chunk size", func() {
		_, err := chunker.New(0, 0)
		Expect(err).To(MatchError(chunker.ErrConfig))

		_, err = chunker.New(-10, 0)
		Expect(err).To(MatchError(chunker.ErrConfig))
	})

	It("rejects a negative overlap", func() {
		_, err := chunker.New(100, -1)
		Expect(err).To(MatchError(chunker.ErrConfig))
	})

	It("rejects an overlap equal to or larger than the chunk size", func() {
		_, err := chunker.New(100, 100)
		Expect(err).To(MatchError(chunker.ErrConfig))

		_, err = chunker.New(100, 150)
		Expect(err).To(MatchError(chunker.ErrConfig))
	})

	It("exposes the configured parameters", func() {
		c, err := chunker.New(4000, 400)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.ChunkSize()).To(Equal(4000))
		Expect(c.Overlap()).To(Equal(400))
	})
})

var _ = Describe("Split", func() {
	It("returns no segments for an empty document", func() {
		c, err := chunker.New(100, 0)
		Expect(err).NotTo(HaveOccurred())

		segs := c.Split(corpus.NewDocument("empty.txt", ""))
		Expect(segs).To(BeEmpty())
	})

	It("returns one segment for text shorter than the chunk size", func() {
		c, err := chunker.New(100, 20)
		Expect(err).NotTo(HaveOccurred())

		doc := corpus.NewDocument("short.txt", "hello world")
		segs := c.Split(doc)
		Expect(segs).To(HaveLen(1))
		Expect(segs[0].DocumentID).To(Equal(doc.ID))
		Expect(segs[0].Index).To(Equal(0))
		Expect(segs[0].Start).To(Equal(0))
		Expect(segs[0].End).To(Equal(len(doc.Text)))
		Expect(segs[0].Text).To(Equal(doc.Text))
	})

	It("windows text with no overlap, truncating the final segment", func() {
		c, err := chunker.New(100, 0)
		Expect(err).NotTo(HaveOccurred())

		doc := corpus.NewDocument("doc.txt", strings.Repeat("x", 250))
		segs := c.Split(doc)
		Expect(segs).To(HaveLen(3))

		Expect(segs[0].Start).To(Equal(0))
		Expect(segs[0].End).To(Equal(100))
		Expect(segs[1].Start).To(Equal(100))
		Expect(segs[1].End).To(Equal(200))
		Expect(segs[2].Start).To(Equal(200))
		Expect(segs[2].End).To(Equal(250))
		Expect(segs[2].Text).To(HaveLen(50))
	})

	It("advances by chunk size minus overlap", func() {
		c, err := chunker.New(100, 20)
		Expect(err).NotTo(HaveOccurred())

		text := strings.Repeat("abcde", 50) // 250 chars
		doc := corpus.NewDocument("doc.txt", text)
		segs := c.Split(doc)
		Expect(segs).To(HaveLen(3))

		Expect(segs[0].Start).To(Equal(0))
		Expect(segs[1].Start).To(Equal(80))
		Expect(segs[2].Start).To(Equal(160))
		Expect(segs[2].End).To(Equal(250))

		for i, seg := range segs {
			Expect(seg.Index).To(Equal(i))
			Expect(seg.Text).To(Equal(text[seg.Start:seg.End]))
		}
	})

	It("reconstructs the document when overlaps are removed", func() {
		c, err := chunker.New(100, 20)
		Expect(err).NotTo(HaveOccurred())

		text := strings.Repeat("0123456789", 41) + "tail" // 414 chars
		segs := c.Split(corpus.NewDocument("doc.txt", text))

		var b strings.Builder
		for i, seg := range segs {
			t := seg.Text
			if i > 0 {
				t = t[20:]
			}
			b.WriteString(t)
		}
		Expect(b.String()).To(Equal(text))
	})

	It("is deterministic for the same input and configuration", func() {
		c, err := chunker.New(50, 10)
		Expect(err).NotTo(HaveOccurred())

		doc := corpus.NewDocument("doc.txt", strings.Repeat("segmentable text ", 30))
		Expect(c.Split(doc)).To(Equal(c.Split(doc)))
	})

	It("windows by runes so multi-byte characters are never split", func() {
		c, err := chunker.New(5, 0)
		Expect(err).NotTo(HaveOccurred())

		text := strings.Repeat("é", 10)
		segs := c.Split(corpus.NewDocument("acentos.txt", text))
		Expect(segs).To(HaveLen(2))

		for _, seg := range segs {
			Expect(utf8.ValidString(seg.Text)).To(BeTrue())
			Expect(seg.Text).To(Equal("ééééé"))
		}
		Expect(segs[0].Start).To(Equal(0))
		Expect(segs[0].End).To(Equal(5))
		Expect(segs[1].Start).To(Equal(5))
		Expect(segs[1].End).To(Equal(10))
	})

	It("reconstructs mixed-width text when rune overlaps are removed", func() {
		c, err := chunker.New(7, 3)
		Expect(err).NotTo(HaveOccurred())

		text := strings.Repeat("não é óbvio ", 9)
		segs := c.Split(corpus.NewDocument("pt.txt", text))
		Expect(len(segs)).To(BeNumerically(">", 1))

		var b strings.Builder
		for i, seg := range segs {
			Expect(utf8.ValidString(seg.Text)).To(BeTrue())
			t := []rune(seg.Text)
			if i > 0 {
				t = t[3:]
			}
			b.WriteString(string(t))
		}
		Expect(b.String()).To(Equal(text))
	})

	It("never produces a segment longer than the chunk size", func() {
		c, err := chunker.New(33, 7)
		Expect(err).NotTo(HaveOccurred())

		segs := c.Split(corpus.NewDocument("doc.txt", strings.Repeat("y", 1000)))
		for _, seg := range segs {
			Expect(len(seg.Text)).To(BeNumerically("<=", 33))
		}
	})
})
