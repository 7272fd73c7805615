package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/saorihq/saori/api/ask"
)

var (
	askToolName    = "ask"
	askDescription = "Answer a question using only the ingested document corpus. Returns the generated answer; in test mode it also lists the document segments the answer was grounded in."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Query    string `json:"query" jsonschema:"the question to answer from the document corpus"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of segments to retrieve (default: 5)"`
	TestMode bool   `json:"test_mode,omitempty" jsonschema:"include the provenance of every segment used"`
}

// handleAsk processes an ask request.
func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, ask.Response, error) {
	logger := s.config.Logger

	resp, err := ask.Ask(ctx, ask.Request{
		Query:    input.Query,
		TopK:     input.TopK,
		TestMode: input.TestMode,
	}, s.config.Engine, logger)
	if err != nil {
		logger.Error("failed to answer query", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to answer query: %v", err)},
			},
		}, ask.Response{}, nil
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		logger.Error("failed to marshal ask output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize answer: %v", err)},
			},
		}, ask.Response{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, *resp, nil
}
