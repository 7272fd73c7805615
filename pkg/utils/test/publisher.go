package testutils

import (
	"context"

	"github.com/saorihq/saori/pkg/eventstream"
)

// MockPublisher is a test event publisher that records every published event.
type MockPublisher struct {
	IndexRebuilt     []*eventstream.IndexRebuiltEvent
	DocumentIngested []*eventstream.DocumentIngestedEvent

	// FailPublish causes both publish methods to return an error.
	FailPublish error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		IndexRebuilt:     make([]*eventstream.IndexRebuiltEvent, 0),
		DocumentIngested: make([]*eventstream.DocumentIngestedEvent, 0),
	}
}

func (m *MockPublisher) PublishIndexRebuilt(_ context.Context, event *eventstream.IndexRebuiltEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if m.FailPublish != nil {
		return m.FailPublish
	}
	m.IndexRebuilt = append(m.IndexRebuilt, event)
	return nil
}

func (m *MockPublisher) PublishDocumentIngested(_ context.Context, event *eventstream.DocumentIngestedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if m.FailPublish != nil {
		return m.FailPublish
	}
	m.DocumentIngested = append(m.DocumentIngested, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}
