// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"
	"time"

	"github.com/saorihq/saori/pkg/embeddings"
	"github.com/saorihq/saori/pkg/embeddings/ollama"
	"github.com/saorihq/saori/pkg/embeddings/openai"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKeyEnv    string
	MaxBatchSize int
	Timeout      time.Duration
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "openai":
		return openai.NewEmbedder(openai.EmbedderConfig{
			BaseURL:      o.TargetURL,
			APIKeyEnv:    o.APIKeyEnv,
			Model:        o.Model,
			MaxBatchSize: o.MaxBatchSize,
			Timeout:      o.Timeout,
		})
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:      o.TargetURL,
			Model:        o.Model,
			MaxBatchSize: o.MaxBatchSize,
			Timeout:      o.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
