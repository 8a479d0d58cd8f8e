package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"okinoko_ido/config"
)

var forceConfig bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); err == nil && !forceConfig {
			return fmt.Errorf("%s exists, pass --force to overwrite", cfgPath)
		}
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgPath)
		return nil
	},
}

func init() {
	initConfigCmd.Flags().BoolVar(&forceConfig, "force", false, "overwrite an existing file")
}
