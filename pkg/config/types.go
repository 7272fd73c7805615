package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent saori configuration stored as config.toml
// in the .saori/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Corpus    CorpusConfig    `toml:"corpus"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Index     IndexConfig     `toml:"index"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Answer    AnswerConfig    `toml:"answer"`
	API       APIConfig       `toml:"api"`
	Events    EventsConfig    `toml:"events"`
	Watcher   WatcherConfig   `toml:"watcher"`
}

// CorpusConfig holds document store settings.
type CorpusConfig struct {
	// Provider selects the store backend: memory, sqlite or postgres.
	Provider string `toml:"provider,omitempty"`

	// Target is the sqlite path or postgres DSN. Ignored by memory.
	Target string `toml:"target,omitempty"`
}

// ChunkingConfig holds document segmentation settings.
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size,omitempty"`
	Overlap   int `toml:"overlap,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider     string `toml:"provider,omitempty"`
	Target       string `toml:"target,omitempty"`
	Model        string `toml:"model,omitempty"`
	APIKeyEnv    string `toml:"api_key_env,omitempty"`
	MaxBatchSize int    `toml:"max_batch_size,omitempty"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	// Backend selects the index strategy: native or sqlitevec.
	Backend string `toml:"backend,omitempty"`

	// DBPath is the sqlite-vec database path. Ignored by native.
	DBPath string `toml:"db_path,omitempty"`

	// SnapshotPath is where the index snapshot is persisted. Empty
	// disables persistence.
	SnapshotPath string `toml:"snapshot_path,omitempty"`
}

// RetrievalConfig holds query-path settings.
type RetrievalConfig struct {
	TopK            int     `toml:"top_k,omitempty"`
	MinScore        float64 `toml:"min_score,omitempty"`
	MaxContextChars int     `toml:"max_context_chars,omitempty"`
}

// AnswerConfig holds answer generation settings.
type AnswerConfig struct {
	Target    string `toml:"target,omitempty"`
	Model     string `toml:"model,omitempty"`
	APIKeyEnv string `toml:"api_key_env,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen    string `toml:"listen,omitempty"`
	EnableMCP bool   `toml:"enable_mcp,omitempty"`
}

// EventsConfig holds event publisher settings.
type EventsConfig struct {
	// Publisher selects the backend: nop or kafka.
	Publisher string `toml:"publisher,omitempty"`

	// Brokers is a comma-separated list of Kafka bootstrap addresses.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// WatcherConfig holds ingest directory watcher settings.
type WatcherConfig struct {
	// Dir is the directory watched for .txt/.md files in serve mode.
	// Empty disables the watcher.
	Dir string `toml:"dir,omitempty"`

	// DebounceMs coalesces bursts of file events before reprocessing.
	DebounceMs int `toml:"debounce_ms,omitempty"`
}

// BrokerList splits the comma-separated broker string into addresses.
func (e EventsConfig) BrokerList() []string {
	if e.Brokers == "" {
		return nil
	}
	parts := strings.Split(e.Brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"corpus.provider": {
		get: func(c *Config) string { return c.Corpus.Provider },
		set: func(c *Config, v string) error { c.Corpus.Provider = v; return nil },
	},
	"corpus.target": {
		get: func(c *Config) string { return c.Corpus.Target },
		set: func(c *Config, v string) error { c.Corpus.Target = v; return nil },
	},
	"chunking.chunk_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Chunking.ChunkSize) },
		set: func(c *Config, v string) error { return setInt(&c.Chunking.ChunkSize, v) },
	},
	"chunking.overlap": {
		get: func(c *Config) string { return strconv.Itoa(c.Chunking.Overlap) },
		set: func(c *Config, v string) error { return setInt(&c.Chunking.Overlap, v) },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.api_key_env": {
		get: func(c *Config) string { return c.Embedding.APIKeyEnv },
		set: func(c *Config, v string) error { c.Embedding.APIKeyEnv = v; return nil },
	},
	"embedding.max_batch_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Embedding.MaxBatchSize) },
		set: func(c *Config, v string) error { return setInt(&c.Embedding.MaxBatchSize, v) },
	},
	"index.backend": {
		get: func(c *Config) string { return c.Index.Backend },
		set: func(c *Config, v string) error { c.Index.Backend = v; return nil },
	},
	"index.db_path": {
		get: func(c *Config) string { return c.Index.DBPath },
		set: func(c *Config, v string) error { c.Index.DBPath = v; return nil },
	},
	"index.snapshot_path": {
		get: func(c *Config) string { return c.Index.SnapshotPath },
		set: func(c *Config, v string) error { c.Index.SnapshotPath = v; return nil },
	},
	"retrieval.top_k": {
		get: func(c *Config) string { return strconv.Itoa(c.Retrieval.TopK) },
		set: func(c *Config, v string) error { return setInt(&c.Retrieval.TopK, v) },
	},
	"retrieval.min_score": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Retrieval.MinScore, 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid float value %q: %w", v, err)
			}
			c.Retrieval.MinScore = f
			return nil
		},
	},
	"retrieval.max_context_chars": {
		get: func(c *Config) string { return strconv.Itoa(c.Retrieval.MaxContextChars) },
		set: func(c *Config, v string) error { return setInt(&c.Retrieval.MaxContextChars, v) },
	},
	"answer.target": {
		get: func(c *Config) string { return c.Answer.Target },
		set: func(c *Config, v string) error { c.Answer.Target = v; return nil },
	},
	"answer.model": {
		get: func(c *Config) string { return c.Answer.Model },
		set: func(c *Config, v string) error { c.Answer.Model = v; return nil },
	},
	"answer.api_key_env": {
		get: func(c *Config) string { return c.Answer.APIKeyEnv },
		set: func(c *Config, v string) error { c.Answer.APIKeyEnv = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.enable_mcp": {
		get: func(c *Config) string { return strconv.FormatBool(c.API.EnableMCP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid bool value %q: %w", v, err)
			}
			c.API.EnableMCP = b
			return nil
		},
	},
	"events.publisher": {
		get: func(c *Config) string { return c.Events.Publisher },
		set: func(c *Config, v string) error { c.Events.Publisher = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"watcher.dir": {
		get: func(c *Config) string { return c.Watcher.Dir },
		set: func(c *Config, v string) error { c.Watcher.Dir = v; return nil },
	},
	"watcher.debounce_ms": {
		get: func(c *Config) string { return strconv.Itoa(c.Watcher.DebounceMs) },
		set: func(c *Config, v string) error { return setInt(&c.Watcher.DebounceMs, v) },
	},
}

func setInt(target *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer value %q: %w", v, err)
	}
	*target = n
	return nil
}
