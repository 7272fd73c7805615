package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/saorihq/saori/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .saori/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Always set targetPath when the directory exists so SaveConfig
	// can create or overwrite the file.
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the sorted list of all supported configuration key names.
func ValidConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// Get returns the string form of the value stored under key.
func (c *Config) Get(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	return info.get(c), nil
}

// Set parses value and stores it under key.
func (c *Config) Set(key, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	return info.set(c, value)
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// GetConfigValue loads the config and returns the string form of the value
// stored under key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Get(key)
}

// SetConfigValue loads the config, sets key to value, and saves it back.
func (c *Configer) SetConfigValue(key, value string) error {
	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	return c.SaveConfig(cfg)
}

// LoadConfig loads the configuration from config.toml in the target .saori/
// directory. If the file does not exist, returns NewDefaultConfig() so
// callers always receive a fully-populated Config with sane defaults. Fields
// explicitly set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Corpus.Provider == "" {
		cfg.Corpus.Provider = defaults.Corpus.Provider
	}

	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = defaults.Chunking.ChunkSize
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = defaults.Chunking.Overlap
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = defaults.Embedding.Provider
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaults.Embedding.Model
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = defaults.Embedding.APIKeyEnv
	}
	if cfg.Embedding.MaxBatchSize == 0 {
		cfg.Embedding.MaxBatchSize = defaults.Embedding.MaxBatchSize
	}

	if cfg.Index.Backend == "" {
		cfg.Index.Backend = defaults.Index.Backend
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = defaults.Retrieval.TopK
	}
	if cfg.Retrieval.MaxContextChars == 0 {
		cfg.Retrieval.MaxContextChars = defaults.Retrieval.MaxContextChars
	}

	if cfg.Answer.Model == "" {
		cfg.Answer.Model = defaults.Answer.Model
	}
	if cfg.Answer.APIKeyEnv == "" {
		cfg.Answer.APIKeyEnv = defaults.Answer.APIKeyEnv
	}

	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}

	if cfg.Events.Publisher == "" {
		cfg.Events.Publisher = defaults.Events.Publisher
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = defaults.Events.Topic
	}

	if cfg.Watcher.DebounceMs == 0 {
		cfg.Watcher.DebounceMs = defaults.Watcher.DebounceMs
	}
}

// SaveConfig persists the configuration to config.toml in the target .saori/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	if cfg.Version == 0 {
		cfg.Version = CurrentV
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config TOML: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
