package eventstream

import "context"

// Publisher publishes engine lifecycle events to an event stream backend.
type Publisher interface {
	PublishIndexRebuilt(ctx context.Context, event *IndexRebuiltEvent) error
	PublishDocumentIngested(ctx context.Context, event *DocumentIngestedEvent) error
	Close() error
}
