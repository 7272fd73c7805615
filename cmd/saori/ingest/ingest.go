// Package ingestcmder provides the ingest command for loading documents
// into the corpus.
package ingestcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saorihq/saori/cmd/saori/bootstrap"
	"github.com/saorihq/saori/pkg/cliui"
	"github.com/saorihq/saori/pkg/config"
	"github.com/saorihq/saori/pkg/logger"
)

type ingestCommander struct {
	paths       []string
	noReprocess bool
	debug       bool

	configDir string
	cfg       *config.Config
	logger    *zap.Logger
}

const ingestLongDesc string = `Load documents into the corpus.

Accepts .txt and .md files and directories (walked recursively). A document
with the same name as an existing one replaces it wholesale. After loading,
the vector index is rebuilt unless --no-reprocess is given.

Examples:
  saori ingest ./docs
  saori ingest notes.md runbook.txt
  saori ingest ./docs --no-reprocess`

const ingestShortDesc string = "Load documents into the corpus"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.paths = args

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&cmder.noReprocess, "no-reprocess", false, "Skip rebuilding the index after loading")

	return cmd
}

func (c *ingestCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	eng, err := bootstrap.BuildEngine(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	total := 0
	if err := cliui.Step(os.Stderr, "Loading documents", func() error {
		for _, path := range c.paths {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}

			if info.IsDir() {
				count, err := bootstrap.IngestDir(ctx, eng, path)
				if err != nil {
					return err
				}
				total += count
				continue
			}

			if err := bootstrap.IngestFile(ctx, eng, path); err != nil {
				return err
			}
			total++
		}
		return nil
	}); err != nil {
		return err
	}

	if total == 0 {
		fmt.Println("No .txt or .md files found.")
		return nil
	}

	if c.noReprocess {
		fmt.Printf("%s Loaded %d document(s). Run 'saori reprocess' to rebuild the index.\n", cliui.SuccessMark, total)
		return nil
	}

	if err := cliui.Step(os.Stderr, "Rebuilding index", func() error {
		return eng.ReprocessAll(ctx)
	}); err != nil {
		return fmt.Errorf("reprocessing: %w", err)
	}

	fmt.Printf("%s Loaded %d document(s) and rebuilt the index.\n", cliui.SuccessMark, total)
	return nil
}
