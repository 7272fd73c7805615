// Package reprocesscmder provides the reprocess command for rebuilding the
// vector index from the full corpus.
package reprocesscmder

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

type reprocessCommander struct {
	debug bool

	configDir string
	cfg       *config.Config
	logger    *zap.Logger
}

const reprocessLongDesc string = `Rebuild the vector index from the full corpus.

Every document is re-chunked and re-embedded, a fresh index is built and
swapped in, and the snapshot on disk is replaced. There is no incremental
mode: any corpus or embedding change requires a full rebuild.

Examples:
  saori reprocess`

const reprocessShortDesc string = "Rebuild the vector index"

func NewReprocessCmd() *cobra.Command {
	cmder := &reprocessCommander{}

	cmd := &cobra.Command{
		Use:   "reprocess",
		Short: reprocessShortDesc,
		Long:  reprocessLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	return cmd
}

func (c *reprocessCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	eng, err := bootstrap.BuildEngine(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := cliui.Step(os.Stderr, "Rebuilding index", func() error {
		return eng.ReprocessAll(ctx)
	}); err != nil {
		return fmt.Errorf("reprocessing: %w", err)
	}

	fmt.Printf("%s Index rebuilt.\n", cliui.SuccessMark)
	return nil
}
