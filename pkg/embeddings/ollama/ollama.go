// Package ollama implements pkg/embeddings' Embedder client for Ollama's
// embedding APIs.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/saorihq/saori/pkg/embeddings"
)

const (
	// DefaultEmbeddingModel is the default model used for embeddings.
	DefaultEmbeddingModel = "nomic-embed-text"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultMaxBatchSize bounds how many texts are sent per request.
	DefaultMaxBatchSize = 32

	// DefaultTimeout bounds a single embed request. Local models can be
	// slow on first load.
	DefaultTimeout = 120 * time.Second
)

// Embedder wraps Ollama's embedding API.
type Embedder struct {
	baseURL     string
	model       string
	maxBatch    int
	maxAttempts int
	timeout     time.Duration
	httpClient  *http.Client

	// dims is the dimensionality established by the first successful
	// response; later vectors must match it. Atomic because one embedder
	// is shared between request-parallel queries and rebuilds.
	dims atomic.Int32
}

// EmbedderConfig holds configuration for the Ollama embedder.
type EmbedderConfig struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the embedding model to use (e.g., "nomic-embed-text",
	// "all-minilm"). Defaults to DefaultEmbeddingModel if empty.
	Model string

	// MaxBatchSize bounds texts per request. Defaults to DefaultMaxBatchSize.
	MaxBatchSize int

	// Timeout bounds a single request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// MaxAttempts bounds retries of transient failures.
	// Defaults to embeddings.DefaultMaxAttempts.
	MaxAttempts int
}

// embedRequest is the request body for Ollama's embedding API.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the response from Ollama's embedding API.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbedder creates a new embedder using Ollama's embedding API.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	maxBatch := cfg.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = embeddings.DefaultMaxAttempts
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Embedder{
		baseURL:     baseURL,
		model:       model,
		maxBatch:    maxBatch,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		httpClient:  &http.Client{},
	}, nil
}

// Identity returns the provider/model identifier folded into the corpus
// fingerprint.
func (e *Embedder) Identity() string {
	return "ollama/" + e.model
}

// Embed converts a single text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch converts texts into embeddings, one per input, in input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.maxBatch {
		end := start + e.maxBatch
		if end > len(texts) {
			end = len(texts)
		}

		vecs, err := e.embedOnce(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *Embedder) embedOnce(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := embeddings.SleepBackoff(ctx, attempt-1); err != nil {
				return nil, fmt.Errorf("%w: %v", embeddings.ErrService, err)
			}
		}

		vecs, retryable, err := e.doRequest(ctx, batch)
		if err == nil {
			return vecs, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (e *Embedder) doRequest(ctx context.Context, batch []string) ([][]float32, bool, error) {
	jsonBody, err := json.Marshal(embedRequest{Model: e.model, Input: batch})
	if err != nil {
		return nil, false, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrService, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, false, fmt.Errorf("%w: creating request: %v", embeddings.ErrService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: %v", embeddings.ErrService, ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, true, fmt.Errorf("%w: timeout after %s", embeddings.ErrService, e.timeout)
		}
		return nil, true, fmt.Errorf("%w: sending request: %v", embeddings.ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, fmt.Errorf("%w: ollama returned status %d: %s", embeddings.ErrService, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, false, fmt.Errorf("%w: decoding response: %v", embeddings.ErrService, err)
	}

	if len(embedResp.Embeddings) != len(batch) {
		return nil, false, fmt.Errorf("%w: got %d embeddings for %d inputs", embeddings.ErrService, len(embedResp.Embeddings), len(batch))
	}

	for i, v := range embedResp.Embeddings {
		e.dims.CompareAndSwap(0, int32(len(v)))
		if want := int(e.dims.Load()); len(v) != want {
			return nil, false, fmt.Errorf("%w: input %d has %d dimensions, want %d", embeddings.ErrDimension, i, len(v), want)
		}
	}

	return embedResp.Embeddings, false, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
