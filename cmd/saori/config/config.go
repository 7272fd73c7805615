// Package configcmder provides the config command for managing persistent
// saori configuration stored in the .saori/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent saori configuration.

Configuration is stored as config.toml in the .saori/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  corpus.provider, corpus.target,
  chunking.chunk_size, chunking.overlap,
  embedding.provider, embedding.target, embedding.model,
  index.backend, index.db_path, index.snapshot_path,
  retrieval.top_k, retrieval.min_score, retrieval.max_context_chars,
  answer.target, answer.model,
  api.listen, api.enable_mcp,
  events.publisher, events.brokers, events.topic,
  watcher.dir, watcher.debounce_ms

Use subcommands to get, set, or list configuration values:
  saori config set <key> <value>    Set a configuration value
  saori config get <key>            Get a configuration value
  saori config list                 List all configuration values

Examples:
  saori config set embedding.provider ollama
  saori config set embedding.model nomic-embed-text
  saori config get retrieval.top_k
  saori config list`

const configShortDesc string = "Manage persistent saori configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
