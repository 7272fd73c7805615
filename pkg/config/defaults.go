package config

const (
	defaultCorpusProvider = "sqlite"

	defaultChunkSize = 4000
	defaultOverlap   = 400

	defaultEmbeddingProvider  = "openai"
	defaultEmbeddingModel     = "text-embedding-3-small"
	defaultEmbeddingKeyEnv    = "OPENAI_API_KEY"
	defaultEmbeddingBatchSize = 64

	defaultIndexBackend = "native"

	defaultTopK            = 5
	defaultMaxContextChars = 12000

	defaultAnswerModel  = "gpt-4o-mini"
	defaultAnswerKeyEnv = "OPENAI_API_KEY"

	defaultAPIListen = ":8080"

	defaultEventsPublisher = "nop"
	defaultEventsTopic     = "saori.events"

	defaultWatcherDebounceMs = 2000
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Corpus: CorpusConfig{
			Provider: defaultCorpusProvider,
		},
		Chunking: ChunkingConfig{
			ChunkSize: defaultChunkSize,
			Overlap:   defaultOverlap,
		},
		Embedding: EmbeddingConfig{
			Provider:     defaultEmbeddingProvider,
			Model:        defaultEmbeddingModel,
			APIKeyEnv:    defaultEmbeddingKeyEnv,
			MaxBatchSize: defaultEmbeddingBatchSize,
		},
		Index: IndexConfig{
			Backend: defaultIndexBackend,
		},
		Retrieval: RetrievalConfig{
			TopK:            defaultTopK,
			MaxContextChars: defaultMaxContextChars,
		},
		Answer: AnswerConfig{
			Model:     defaultAnswerModel,
			APIKeyEnv: defaultAnswerKeyEnv,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Events: EventsConfig{
			Publisher: defaultEventsPublisher,
			Topic:     defaultEventsTopic,
		},
		Watcher: WatcherConfig{
			DebounceMs: defaultWatcherDebounceMs,
		},
	}
}
