// Package eventstreamutils is the eventstream utility package
package eventstreamutils

import (
	"fmt"

	"github.com/saorihq/saori/pkg/eventstream"
	"github.com/saorihq/saori/pkg/eventstream/kafka"
	"github.com/saorihq/saori/pkg/eventstream/nop"
)

type NewPublisherOpts struct {
	// PublisherType selects the backend: "nop" (default) or "kafka".
	PublisherType string

	// Brokers and Topic configure the Kafka backend; ignored otherwise.
	Brokers []string
	Topic   string
}

func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.PublisherType {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		return kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
		})
	default:
		return nil, fmt.Errorf("unsupported event publisher: %s", o.PublisherType)
	}
}
