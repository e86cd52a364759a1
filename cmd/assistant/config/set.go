package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vendorahq/vendora-ai/pkg/cliui"
	"github.com/vendorahq/vendora-ai/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in config.toml under the --config
directory, creating the file when it does not exist. Keys use dotted
notation matching the TOML section structure.

Examples:
  vendora-ai config set llm.provider openai
  vendora-ai config set vector_store.host qdrant.internal
  vendora-ai config set embedding.dimensions 768`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			return runSet(args[0], args[1], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	path, err := config.SetConfigValue(configDir, key, value)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(path),
	)
	fmt.Printf("  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
