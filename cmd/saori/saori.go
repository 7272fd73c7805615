// Package saoricmder
package saoricmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/saorihq/saori/cmd/saori/ask"
	configcmder "github.com/saorihq/saori/cmd/saori/config"
	ingestcmder "github.com/saorihq/saori/cmd/saori/ingest"
	removecmder "github.com/saorihq/saori/cmd/saori/remove"
	reprocesscmder "github.com/saorihq/saori/cmd/saori/reprocess"
	servecmder "github.com/saorihq/saori/cmd/saori/serve"
)

const saoriLongDesc string = `Saori answers questions using only your own documents.

Ingest text files into a corpus, then ask questions:
  saori ingest ./docs        Load .txt/.md files into the corpus
  saori ask "a question"     Answer a question from the corpus
  saori serve                Run the HTTP API (and MCP) server
  saori remove notes.md      Remove a document from the corpus
  saori reprocess            Rebuild the vector index from scratch`

const saoriShortDesc string = "Saori - document-grounded question answering"

func NewSaoriCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saori",
		Short: saoriShortDesc,
		Long:  saoriLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .saori/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(removecmder.NewRemoveCmd())
	cmd.AddCommand(reprocesscmder.NewReprocessCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
