// Package ask provides shared question-answering types and logic for the
// retrieval engine. It is used by both the REST API endpoint and the MCP
// server tool.
package ask

import (
	"context"

	"go.uber.org/zap"

	"github.com/saorihq/saori/pkg/assembler"
	"github.com/saorihq/saori/pkg/engine"
)

// Engine is the slice of the answer engine the surfaces depend on.
type Engine interface {
	AnswerQueryTopK(ctx context.Context, query string, topK int, testMode bool) (*engine.Answer, error)
}

// Request represents the input arguments for an ask request.
type Request struct {
	Query string `json:"query"`

	// TopK overrides the configured number of retrieved segments. Zero
	// keeps the configured value.
	TopK int `json:"top_k,omitempty"`

	// TestMode includes the provenance of every segment used to answer.
	TestMode bool `json:"test_mode,omitempty"`
}

// Response represents the output of an ask operation.
type Response struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`

	// UsedSegments is present only when the request was in test mode.
	UsedSegments []assembler.Provenance `json:"used_segments,omitempty"`
}

// Ask answers a question over the ingested corpus through the given engine.
func Ask(ctx context.Context, req Request, eng Engine, logger *zap.Logger) (*Response, error) {
	logger.Debug("ask request",
		zap.Int("query_chars", len(req.Query)),
		zap.Int("topK", req.TopK),
		zap.Bool("testMode", req.TestMode),
	)

	ans, err := eng.AnswerQueryTopK(ctx, req.Query, req.TopK, req.TestMode)
	if err != nil {
		return nil, err
	}

	return &Response{
		Query:        req.Query,
		Answer:       ans.Text,
		UsedSegments: ans.UsedSegments,
	}, nil
}
