// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saorihq/saori/api"
	"github.com/saorihq/saori/api/mcp"
	"github.com/saorihq/saori/cmd/saori/bootstrap"
	"github.com/saorihq/saori/pkg/config"
	"github.com/saorihq/saori/pkg/corpus"
	"github.com/saorihq/saori/pkg/engine"
	"github.com/saorihq/saori/pkg/logger"
)

type ServeCommander struct {
	listen       string
	corpusProv   string
	corpusTarget string
	indexBackend string
	snapshotPath string
	watchDir     string
	enableMCP    bool
	debug        bool

	configDir string
	cfg       *config.Config
	logger    *zap.Logger
}

const serveLongDesc string = `Run the Saori API server.

Serves the question-answering API over the ingested corpus:
  GET  /ping            Health check
  GET  /v1/answer       Answer a question (query, test_mode, k)
  POST /v1/reprocess    Rebuild the vector index
  GET  /v1/documents    List corpus documents

With --enable-mcp the MCP server is mounted at /mcp, exposing the ask tool
to MCP clients. With --watch-dir a directory of .txt/.md files is watched
and the index is rebuilt when they change.`

const serveShortDesc string = "Run the Saori API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagAPIListen,
				config.FlagCorpusProvider,
				config.FlagCorpusTarget,
				config.FlagIndexBackend,
				config.FlagSnapshotPath,
				config.FlagWatchDir,
				config.FlagEnableMCP,
			})

			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagCorpusProvider, &cmder.corpusProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagCorpusTarget, &cmder.corpusTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagIndexBackend, &cmder.indexBackend)
	config.AddStringFlag(cmd, config.Flags, config.FlagSnapshotPath, &cmder.snapshotPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagWatchDir, &cmder.watchDir)
	config.AddBoolFlag(cmd, config.Flags, config.FlagEnableMCP, &cmder.enableMCP)

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	eng, err := bootstrap.BuildEngine(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	// Bring up the index: reuse the persisted snapshot or rebuild.
	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}

	apiConfig := api.Config{
		ListenAddr: c.cfg.API.Listen,
	}
	apiServer := api.NewServer(apiConfig, eng, c.logger)

	if c.cfg.API.EnableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Engine: eng,
			Logger: c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
		apiServer.MountMCP(mcpServer.Handler())
		c.logger.Info("MCP server mounted", zap.String("path", "/mcp"))
	}

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	if c.cfg.Watcher.Dir != "" {
		watcher, err := corpus.NewWatcher(
			c.cfg.Watcher.Dir,
			time.Duration(c.cfg.Watcher.DebounceMs)*time.Millisecond,
			func(ctx context.Context) { c.reingest(ctx, eng) },
			c.logger,
		)
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}

		go func() {
			if err := watcher.Run(watchCtx); err != nil {
				errChan <- fmt.Errorf("watcher error: %w", err)
			}
		}()

		c.logger.Info("watching ingest directory",
			zap.String("dir", c.cfg.Watcher.Dir),
			zap.Int("debounce_ms", c.cfg.Watcher.DebounceMs),
		)
	}

	// Start API server in goroutine
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}

// reingest mirrors the watched directory into the corpus — new and changed
// files are loaded, documents whose files are gone are pruned — and rebuilds
// the index. Runs on the watcher's debounced change callback.
func (c *ServeCommander) reingest(ctx context.Context, eng *engine.Engine) {
	ingested, pruned, err := bootstrap.SyncDir(ctx, eng, c.cfg.Watcher.Dir)
	if err != nil {
		c.logger.Error("syncing watched directory", zap.Error(err))
		return
	}

	if err := eng.ReprocessAll(ctx); err != nil {
		c.logger.Error("reprocessing after watch event", zap.Error(err))
		return
	}

	c.logger.Info("watched directory reprocessed",
		zap.Int("documents", ingested),
		zap.Int("pruned", pruned))
}
