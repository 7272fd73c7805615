package eventstream_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saorihq/saori/pkg/eventstream"
	"github.com/saorihq/saori/pkg/eventstream/kafka"
	"github.com/saorihq/saori/pkg/eventstream/nop"
	eventstreamutils "github.com/saorihq/saori/pkg/eventstream/utils"
)

func TestEventStream(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Event Stream Suite")
}

var _ = Describe("nop publisher", func() {
	ctx := context.Background()

	It("accepts valid events", func() {
		p := nop.NewPublisher()
		Expect(p.PublishIndexRebuilt(ctx, &eventstream.IndexRebuiltEvent{})).To(Succeed())
		Expect(p.PublishDocumentIngested(ctx, &eventstream.DocumentIngestedEvent{})).To(Succeed())
		Expect(p.Close()).To(Succeed())
	})

	It("rejects nil events", func() {
		p := nop.NewPublisher()
		Expect(p.PublishIndexRebuilt(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(p.PublishDocumentIngested(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
	})
})

var _ = Describe("kafka publisher", func() {
	It("requires at least one broker", func() {
		_, err := kafka.NewPublisher(kafka.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("rejects nil events without touching the broker", func() {
		p, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}})
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		ctx := context.Background()
		Expect(p.PublishIndexRebuilt(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(p.PublishDocumentIngested(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
	})
})

var _ = Describe("NewPublisher", func() {
	It("defaults to the nop backend", func() {
		p, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{})
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&nop.Publisher{}))
	})

	It("builds the kafka backend", func() {
		p, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
			PublisherType: "kafka",
			Brokers:       []string{"localhost:9092"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		Expect(p.Close()).To(Succeed())
	})

	It("rejects unknown backends", func() {
		_, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
			PublisherType: "rabbitmq",
		})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("event payloads", func() {
	It("serializes the rebuild event with stable field names", func() {
		event := &eventstream.IndexRebuiltEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeIndexRebuilt,
			EventID:       "evt-1",
			EmittedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Fingerprint:   "fp",
			EmbedderID:    "openai/text-embedding-3-small",
			Documents:     2,
			Segments:      9,
			Dimensions:    1536,
			DurationMs:    112,
		}

		data, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var fields map[string]any
		Expect(json.Unmarshal(data, &fields)).To(Succeed())
		Expect(fields).To(HaveKeyWithValue("schema_version", float64(1)))
		Expect(fields).To(HaveKeyWithValue("event_type", "saori.index.rebuilt"))
		Expect(fields).To(HaveKeyWithValue("fingerprint", "fp"))
		Expect(fields).To(HaveKeyWithValue("duration_ms", float64(112)))
	})

	It("serializes the ingest event with stable field names", func() {
		event := &eventstream.DocumentIngestedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeDocumentIngested,
			EventID:       "evt-2",
			EmittedAt:     time.Now().UTC(),
			DocumentID:    "doc-1",
			Name:          "a.txt",
			Chars:         21,
		}

		data, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var fields map[string]any
		Expect(json.Unmarshal(data, &fields)).To(Succeed())
		Expect(fields).To(HaveKeyWithValue("event_type", "saori.document.ingested"))
		Expect(fields).To(HaveKeyWithValue("document_id", "doc-1"))
		Expect(fields).To(HaveKeyWithValue("chars", float64(21)))
	})
})
