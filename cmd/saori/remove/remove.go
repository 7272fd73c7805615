// Package removecmder provides the remove command for deleting documents
// from the corpus.
package removecmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saorihq/saori/cmd/saori/bootstrap"
	"github.com/saorihq/saori/pkg/cliui"
	"github.com/saorihq/saori/pkg/config"
	"github.com/saorihq/saori/pkg/corpus"
	"github.com/saorihq/saori/pkg/engine"
	"github.com/saorihq/saori/pkg/logger"
)

type removeCommander struct {
	target      string
	noReprocess bool
	debug       bool

	configDir string
	cfg       *config.Config
	logger    *zap.Logger
}

const removeLongDesc string = `Remove a document from the corpus.

The document is matched by name first (as listed by the API's
/v1/documents), then by ID. After removal the vector index is rebuilt
unless --no-reprocess is given; until the rebuild, answers may still draw
on the removed document's segments.

Examples:
  saori remove notes.md
  saori remove 3b7aa1f0c4… --no-reprocess`

const removeShortDesc string = "Remove a document from the corpus"

func NewRemoveCmd() *cobra.Command {
	cmder := &removeCommander{}

	cmd := &cobra.Command{
		Use:   "remove <name-or-id>",
		Short: removeShortDesc,
		Long:  removeLongDesc,
		Args:  cobra.ExactArgs(1),
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
			cmder.target = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&cmder.noReprocess, "no-reprocess", false, "Skip rebuilding the index after removal")

	return cmd
}

func (c *removeCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	eng, err := bootstrap.BuildEngine(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	id, err := resolveID(ctx, eng, c.target)
	if err != nil {
		return err
	}

	if err := eng.Remove(ctx, id); err != nil {
		if errors.Is(err, corpus.ErrNotFound) {
			return fmt.Errorf("no document named or identified by %q", c.target)
		}
		return fmt.Errorf("removing document: %w", err)
	}

	if c.noReprocess {
		fmt.Printf("%s Removed %s. Run 'saori reprocess' to rebuild the index.\n", cliui.SuccessMark, c.target)
		return nil
	}

	if err := cliui.Step(os.Stderr, "Rebuilding index", func() error {
		return eng.ReprocessAll(ctx)
	}); err != nil {
		return fmt.Errorf("reprocessing: %w", err)
	}

	fmt.Printf("%s Removed %s and rebuilt the index.\n", cliui.SuccessMark, c.target)
	return nil
}

// resolveID maps a document name to its ID, falling back to treating the
// argument as an ID when no name matches.
func resolveID(ctx context.Context, eng *engine.Engine, target string) (string, error) {
	docs, err := eng.Documents(ctx)
	if err != nil {
		return "", fmt.Errorf("listing documents: %w", err)
	}
	for _, doc := range docs {
		if doc.Name == target {
			return doc.ID, nil
		}
	}
	return target, nil
}
