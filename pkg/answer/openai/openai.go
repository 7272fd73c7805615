// Package openai implements pkg/answer's Generator against OpenAI-compatible
// chat completions APIs.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/saorihq/saori/pkg/answer"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second

	temperature = 0.7
)

// Generator wraps an OpenAI-compatible chat completions API.
type Generator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// GeneratorConfig holds configuration for the OpenAI generator.
type GeneratorConfig struct {
	// BaseURL is the API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the bearer token. If empty, APIKeyEnv is consulted.
	APIKey string

	// APIKeyEnv names the environment variable holding the API key.
	// Defaults to "OPENAI_API_KEY".
	APIKeyEnv string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string

	// Timeout bounds a single request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewGenerator creates a generator backed by an OpenAI-compatible API.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		env := cfg.APIKeyEnv
		if env == "" {
			env = "OPENAI_API_KEY"
		}
		apiKey = os.Getenv(env)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", answer.ErrService)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Generator{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Generate answers query using only the supplied document context.
func (g *Generator) Generate(ctx context.Context, query, contextText string) (string, error) {
	system := answer.SystemPrompt + "\n\nDOCUMENTS:\n" + contextText

	jsonBody, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: query},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", answer.ErrService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", answer.ErrService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", answer.ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", answer.ErrService, resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", answer.ErrService, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", answer.ErrService)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

var _ answer.Generator = (*Generator)(nil)
