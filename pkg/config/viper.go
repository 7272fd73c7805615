package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/saorihq/saori/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the SAORI_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SAORI_API_LISTEN, SAORI_EMBEDDING_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: SAORI_API_LISTEN, SAORI_CORPUS_TARGET, etc.
	v.SetEnvPrefix("SAORI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Corpus
	v.SetDefault("corpus.provider", d.Corpus.Provider)
	v.SetDefault("corpus.target", d.Corpus.Target)

	// Chunking
	v.SetDefault("chunking.chunk_size", d.Chunking.ChunkSize)
	v.SetDefault("chunking.overlap", d.Chunking.Overlap)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.api_key_env", d.Embedding.APIKeyEnv)
	v.SetDefault("embedding.max_batch_size", d.Embedding.MaxBatchSize)

	// Index
	v.SetDefault("index.backend", d.Index.Backend)
	v.SetDefault("index.db_path", d.Index.DBPath)
	v.SetDefault("index.snapshot_path", d.Index.SnapshotPath)

	// Retrieval
	v.SetDefault("retrieval.top_k", d.Retrieval.TopK)
	v.SetDefault("retrieval.min_score", d.Retrieval.MinScore)
	v.SetDefault("retrieval.max_context_chars", d.Retrieval.MaxContextChars)

	// Answer
	v.SetDefault("answer.target", d.Answer.Target)
	v.SetDefault("answer.model", d.Answer.Model)
	v.SetDefault("answer.api_key_env", d.Answer.APIKeyEnv)

	// API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.enable_mcp", d.API.EnableMCP)

	// Events
	v.SetDefault("events.publisher", d.Events.Publisher)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Watcher
	v.SetDefault("watcher.dir", d.Watcher.Dir)
	v.SetDefault("watcher.debounce_ms", d.Watcher.DebounceMs)
}

// FromViper materializes a Config from the viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Corpus: CorpusConfig{
			Provider: v.GetString("corpus.provider"),
			Target:   v.GetString("corpus.target"),
		},
		Chunking: ChunkingConfig{
			ChunkSize: v.GetInt("chunking.chunk_size"),
			Overlap:   v.GetInt("chunking.overlap"),
		},
		Embedding: EmbeddingConfig{
			Provider:     v.GetString("embedding.provider"),
			Target:       v.GetString("embedding.target"),
			Model:        v.GetString("embedding.model"),
			APIKeyEnv:    v.GetString("embedding.api_key_env"),
			MaxBatchSize: v.GetInt("embedding.max_batch_size"),
		},
		Index: IndexConfig{
			Backend:      v.GetString("index.backend"),
			DBPath:       v.GetString("index.db_path"),
			SnapshotPath: v.GetString("index.snapshot_path"),
		},
		Retrieval: RetrievalConfig{
			TopK:            v.GetInt("retrieval.top_k"),
			MinScore:        v.GetFloat64("retrieval.min_score"),
			MaxContextChars: v.GetInt("retrieval.max_context_chars"),
		},
		Answer: AnswerConfig{
			Target:    v.GetString("answer.target"),
			Model:     v.GetString("answer.model"),
			APIKeyEnv: v.GetString("answer.api_key_env"),
		},
		API: APIConfig{
			Listen:    v.GetString("api.listen"),
			EnableMCP: v.GetBool("api.enable_mcp"),
		},
		Events: EventsConfig{
			Publisher: v.GetString("events.publisher"),
			Brokers:   v.GetString("events.brokers"),
			Topic:     v.GetString("events.topic"),
		},
		Watcher: WatcherConfig{
			Dir:        v.GetString("watcher.dir"),
			DebounceMs: v.GetInt("watcher.debounce_ms"),
		},
	}
}
