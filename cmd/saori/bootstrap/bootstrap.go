// Package bootstrap wires the answer engine from a loaded configuration.
// Every saori command that needs a running engine (serve, ask, ingest,
// reprocess) builds it here so the wiring cannot drift between commands.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/saorihq/saori/pkg/answer"
	answeropenai "github.com/saorihq/saori/pkg/answer/openai"
	"github.com/saorihq/saori/pkg/answer/static"
	"github.com/saorihq/saori/pkg/chunker"
	"github.com/saorihq/saori/pkg/config"
	"github.com/saorihq/saori/pkg/corpus"
	corpusmemory "github.com/saorihq/saori/pkg/corpus/memory"
	corpuspostgres "github.com/saorihq/saori/pkg/corpus/postgres"
	corpussqlite "github.com/saorihq/saori/pkg/corpus/sqlite"
	"github.com/saorihq/saori/pkg/dotdir"
	embeddingutils "github.com/saorihq/saori/pkg/embeddings/utils"
	"github.com/saorihq/saori/pkg/engine"
	eventstreamutils "github.com/saorihq/saori/pkg/eventstream/utils"
	vectorutils "github.com/saorihq/saori/pkg/vector/utils"
)

const (
	snapshotFile = "index.saoridx"
	corpusFile   = "corpus.db"
)

// BuildEngine constructs a ready-to-start engine from the configuration.
// The caller owns Close.
func BuildEngine(ctx context.Context, cfg *config.Config, configDir string, logger *zap.Logger) (*engine.Engine, error) {
	store, err := buildStore(ctx, cfg, configDir, logger)
	if err != nil {
		return nil, err
	}

	chk, err := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		APIKeyEnv:    cfg.Embedding.APIKeyEnv,
		MaxBatchSize: cfg.Embedding.MaxBatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring embedder: %w", err)
	}

	builder, err := vectorutils.NewBuilder(&vectorutils.NewBuilderOpts{
		BackendType: cfg.Index.Backend,
		DBPath:      cfg.Index.DBPath,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring vector backend: %w", err)
	}

	generator, err := buildGenerator(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("configuring answer generator: %w", err)
	}

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		PublisherType: cfg.Events.Publisher,
		Brokers:       cfg.Events.BrokerList(),
		Topic:         cfg.Events.Topic,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring event publisher: %w", err)
	}

	snapshotPath, err := resolveSnapshotPath(cfg, configDir)
	if err != nil {
		return nil, err
	}

	return engine.New(&engine.Opts{
		Store:     store,
		Chunker:   chk,
		Embedder:  embedder,
		Builder:   builder,
		Generator: generator,
		Publisher: publisher,
		Logger:    logger,
		Config: engine.Config{
			TopK:            cfg.Retrieval.TopK,
			MinScore:        float32(cfg.Retrieval.MinScore),
			MaxContextChars: cfg.Retrieval.MaxContextChars,
			SnapshotPath:    snapshotPath,
		},
	})
}

// buildGenerator creates the answer generator. Without an API key, answers
// degrade to a static notice; the retrieval side keeps working.
func buildGenerator(cfg *config.Config, logger *zap.Logger) (answer.Generator, error) {
	keyEnv := cfg.Answer.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	if os.Getenv(keyEnv) == "" {
		logger.Warn("no answer API key configured, using static answers",
			zap.String("env", keyEnv))
		return static.NewGenerator(""), nil
	}

	return answeropenai.NewGenerator(answeropenai.GeneratorConfig{
		BaseURL:   cfg.Answer.Target,
		APIKeyEnv: cfg.Answer.APIKeyEnv,
		Model:     cfg.Answer.Model,
	})
}

// buildStore creates the corpus store the configuration asks for.
func buildStore(ctx context.Context, cfg *config.Config, configDir string, logger *zap.Logger) (corpus.Store, error) {
	switch cfg.Corpus.Provider {
	case "memory":
		logger.Info("using in-memory corpus store")
		return corpusmemory.NewStore(), nil

	case "", "sqlite":
		path := cfg.Corpus.Target
		if path == "" {
			dir, err := dotdir.NewManager().Target(configDir)
			if err != nil {
				return nil, fmt.Errorf("resolving corpus path: %w", err)
			}
			path = filepath.Join(dir, corpusFile)
		}
		logger.Info("using SQLite corpus store", zap.String("path", path))
		return corpussqlite.NewStore(path)

	case "postgres":
		if cfg.Corpus.Target == "" {
			return nil, fmt.Errorf("corpus.target (postgres DSN) is required for the postgres provider")
		}
		logger.Info("using Postgres corpus store")
		return corpuspostgres.NewStore(ctx, cfg.Corpus.Target)

	default:
		return nil, fmt.Errorf("unsupported corpus provider: %s", cfg.Corpus.Provider)
	}
}

// resolveSnapshotPath defaults the snapshot into the .saori/ directory so a
// restart never re-embeds an unchanged corpus.
func resolveSnapshotPath(cfg *config.Config, configDir string) (string, error) {
	if cfg.Index.SnapshotPath != "" {
		return cfg.Index.SnapshotPath, nil
	}

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving snapshot path: %w", err)
	}
	if dir == "" {
		return "", nil
	}
	return filepath.Join(dir, snapshotFile), nil
}
