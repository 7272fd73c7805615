// Package answer defines the answer-generation collaborator: the component
// that turns a user question plus assembled document context into prose. The
// retrieval core treats it as external; only the interface and thin clients
// live here.
package answer

import (
	"context"
	"errors"
)

// ErrService is returned for answer service failures (transport, auth,
// non-2xx responses).
var ErrService = errors.New("answer service failed")

// SystemPrompt constrains the model to the supplied documents.
const SystemPrompt = `You are Saori, an assistant that answers ONLY from the documents provided.

IMPORTANT RULES:
1. Answer ONLY using information from the documents provided below.
2. If the documents do not contain the information needed, say "I don't have that information in the available documents." and point at the closest passage you found.
3. Do NOT use your general knowledge to fill gaps.
4. Be concise and direct.`

// Generator produces a natural-language answer from a query and its
// assembled document context.
type Generator interface {
	// Generate returns an answer to query grounded in contextText.
	Generate(ctx context.Context, query, contextText string) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}
