package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solarisin/core/cmd/qstream/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("format") || queryExpr != "" {
			return outputResult(cmd, build.Get())
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, build.String())
		if IsVerbose() {
			fmt.Fprintf(out, "  go:     %s\n", build.Get().Go)
			if cfg, err := GetConfig(); err == nil {
				fmt.Fprintf(out, "  config: %s\n", cfg.Path())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
