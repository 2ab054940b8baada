package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solarisin/core/cmd/qstream/internal/config"
	"github.com/solarisin/core/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `View and edit the qstream configuration file.

Examples:
  qstream config view
  qstream config set bench.writers 16
  qstream config set log.format json
  qstream config path`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return outputResult(cmd, cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save it",
	Long:  "Set a configuration value and save it.\n\nKeys:\n  " + strings.Join(config.Keys(), "\n  "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "%s = %s", args[0], args[1])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configViewCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
