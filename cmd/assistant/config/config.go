// Package configcmder provides the config command for managing persistent
// vendora-ai configuration stored as config.toml.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent vendora-ai configuration.

Configuration is stored as config.toml in the --config directory and provides
default values for the serve and seed commands. Environment variables with
the VENDORA_ prefix always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen,
  vector_store.provider, vector_store.host, vector_store.port,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  llm.provider, llm.model, llm.api_key, llm.base_url,
  chat.history_limit, recommend.*, collections.*, events.*

Use subcommands to get, set, or list configuration values:
  vendora-ai config set <key> <value>    Set a configuration value
  vendora-ai config get <key>            Get a configuration value
  vendora-ai config list                 List all configuration values

Examples:
  vendora-ai config set embedding.model nomic-embed-text
  vendora-ai config set vector_store.host qdrant.internal
  vendora-ai config get llm.provider
  vendora-ai config list`

const configShortDesc string = "Manage persistent vendora-ai configuration"

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
