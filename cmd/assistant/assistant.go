// Package assistantcmder
package assistantcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/vendorahq/vendora-ai/cmd/assistant/config"
	seedcmder "github.com/vendorahq/vendora-ai/cmd/assistant/seed"
	servecmder "github.com/vendorahq/vendora-ai/cmd/assistant/serve"
	versioncmder "github.com/vendorahq/vendora-ai/cmd/version"
)

const assistantLongDesc string = `Vendora AI is the marketplace assistant and recommendation service.

Run services using:
  vendora-ai serve     Run the assistant API server
  vendora-ai seed      Load a product catalog CSV into the vector index
  vendora-ai config    Manage persistent configuration`

const assistantShortDesc string = "Vendora AI - Marketplace Assistant"

func NewAssistantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendora-ai",
		Short: assistantShortDesc,
		Long:  assistantLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Directory containing config.toml")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
