// Package static provides a Generator that returns a fixed notice instead of
// calling a model. It stands in when no answer service is configured, so
// ingest and reprocess flows still work without credentials.
package static

import (
	"context"

	"github.com/saorihq/saori/pkg/answer"
)

// DefaultMessage is returned when no message is configured.
const DefaultMessage = "No answer service is configured. Set an API key to enable answer generation."

// Generator returns a fixed message for every query.
type Generator struct {
	message string
}

// NewGenerator creates a static generator. An empty message uses
// DefaultMessage.
func NewGenerator(message string) *Generator {
	if message == "" {
		message = DefaultMessage
	}
	return &Generator{message: message}
}

// Generate returns the configured message regardless of query or context.
func (g *Generator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.message, nil
}

// Close is a no-op.
func (g *Generator) Close() error {
	return nil
}

var _ answer.Generator = (*Generator)(nil)
