package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"richedit/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Print the default configuration",
	Long: `Print the default configuration as TOML.

  richedit init-config > ~/.config/richedit/config.toml`,
	Args: cobra.NoArgs,
	// No config is needed to print the defaults.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultTOML())
		return err
	},
}
