package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vendorahq/vendora-ai/pkg/config"
)

const listLongDesc string = `List all configuration values.

Displays all configuration keys and their effective values: defaults,
config.toml, and VENDORA_ environment overrides applied in that order.

Examples:
  vendora-ai config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			return runList(configDir)
		},
	}

	return cmd
}

func runList(configDir string) error {
	keys := config.ValidConfigKeys()

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range keys {
		if len(k) > maxLen {
			maxLen = len(k)
		}
	}

	printedHeader := false
	for _, key := range keys {
		value, target, err := config.GetConfigValue(configDir, key)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if !printedHeader {
			if target != "" {
				fmt.Printf("Using config file: %s\n\n", target)
			} else {
				fmt.Print("No config file found. Using default config.\n\n")
			}
			printedHeader = true
		}

		if value == "" {
			fmt.Printf("%-*s = <not set>\n", maxLen, key)
		} else {
			fmt.Printf("%-*s = %q\n", maxLen, key, value)
		}
	}

	return nil
}
