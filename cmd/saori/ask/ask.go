// Package askcmder provides the ask command for one-shot question answering
// over the ingested corpus.
package askcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saorihq/saori/cmd/saori/bootstrap"
	"github.com/saorihq/saori/pkg/cliui"
	"github.com/saorihq/saori/pkg/config"
	"github.com/saorihq/saori/pkg/engine"
	"github.com/saorihq/saori/pkg/logger"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	rankStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	docStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type askCommander struct {
	query    string
	topK     int
	testMode bool
	debug    bool

	configDir string
	cfg       *config.Config
	logger    *zap.Logger
}

const askLongDesc string = `Answer a question using only the ingested documents.

Retrieves the most relevant document segments for the question, assembles
them into a bounded context, and generates an answer grounded in that
context. The index snapshot is reused when the corpus has not changed, so
repeat questions do not re-embed anything.

Use --test-mode to also print which document segments the answer was
grounded in, with their similarity scores.

Examples:
  saori ask "what does the refund policy say?"
  saori ask "how do I rotate credentials?" --top-k 8
  saori ask "who approves expenses?" --test-mode`

const askShortDesc string = "Answer a question from the corpus"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagTopK,
			})

			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddIntFlag(cmd, config.Flags, config.FlagTopK, &cmder.topK)
	cmd.Flags().BoolVarP(&cmder.testMode, "test-mode", "t", false, "Show the document segments the answer was grounded in")

	return cmd
}

func (c *askCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	eng, err := bootstrap.BuildEngine(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := cliui.Step(os.Stderr, "Preparing index", func() error {
		return eng.Start(ctx)
	}); err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}

	var ans *engine.Answer
	if err := cliui.Step(os.Stderr, "Answering", func() error {
		var askErr error
		ans, askErr = eng.AnswerQueryTopK(ctx, c.query, c.topK, c.testMode)
		return askErr
	}); err != nil {
		return err
	}

	rendered, err := cliui.RenderMarkdown(ans.Text)
	if err != nil {
		// Fall back to the raw answer when the terminal renderer is
		// unavailable.
		rendered = ans.Text + "\n"
	}
	fmt.Print(rendered)

	if c.testMode {
		c.printProvenance(ans)
	}

	return nil
}

// printProvenance lists the segments that made it into the prompt context,
// in inclusion order.
func (c *askCommander) printProvenance(ans *engine.Answer) {
	if len(ans.UsedSegments) == 0 {
		fmt.Printf("\n%s\n", dimStyle.Render("No document segments were used."))
		return
	}

	fmt.Printf("\n%s\n\n", headerStyle.Render("Grounded in:"))
	for i, seg := range ans.UsedSegments {
		fmt.Printf("  %s %s %s %s\n",
			rankStyle.Render(fmt.Sprintf("%d.", i+1)),
			docStyle.Render(seg.DocumentID),
			dimStyle.Render(fmt.Sprintf("segment %d", seg.SegmentIndex)),
			scoreStyle.Render(fmt.Sprintf("(score %.4f)", seg.Score)),
		)
	}
	fmt.Println()
}
