package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solarisin/core/cmd/qstream/internal/config"
	"github.com/solarisin/core/pkg/cli"
	"github.com/solarisin/core/pkg/logx"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	formatOutput string
	outputFile   string
	queryExpr    string

	// Global configuration (loaded before every command)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "qstream",
	Short: "Exercise and inspect consume-and-purge byte streams",
	Long: `qstream - command line tools around QueueStream, a thread-safe
byte stream that discards data as soon as it is read.

Commands:
  pipe       Copy stdin to stdout through a QueueStream
  bench      Stress a QueueStream with concurrent writers and verify delivery
  config     View and edit the configuration file
  version    Show version information

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/qstream/config.yaml
  Linux:   ~/.config/qstream/config.yaml
  Windows: %AppData%/qstream/config.yaml

Set QSTREAM_CONFIG_DIR or pass --config to use another location.

Examples:
  # Benchmark 16 writers and print a table
  qstream bench --writers 16 --format table

  # Only print the throughput
  qstream bench -q .throughput

  # Copy a file in 64 KiB chunks
  qstream pipe --chunk-size 65536 < in.bin > out.bin`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $QSTREAM_CONFIG_DIR/config.yaml or the OS config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&formatOutput, "format", "", "output format: "+formatHelp()+" (default from config)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&queryExpr, "query", "q", "", "jq expression applied to structured output")
}

func formatHelp() string {
	var parts []string
	for _, f := range cli.Formats.Values() {
		d, _ := cli.Formats.Description(f)
		parts = append(parts, fmt.Sprintf("%s (%s)", f, d))
	}
	return strings.Join(parts, ", ")
}

func initConfig(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	globalConfig = cfg

	logCfg := cfg.Log
	if verbose {
		logCfg.Level = slog.LevelDebug.String()
	}
	logger, err := logx.New(cmd.ErrOrStderr(), logCfg)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	logger = logx.WithModuleVersion(logx.WithModule(logger), true)
	slog.SetDefault(logger.With("cmd", cmd.Name()))
	return nil
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("config not available")
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// outputResult writes a structured result using the global output flags,
// falling back to the configured default format.
func outputResult(cmd *cobra.Command, result any) error {
	format := formatOutput
	if format == "" && globalConfig != nil {
		format = globalConfig.Output
	}
	f, err := cli.ParseFormat(format)
	if err != nil {
		return err
	}
	opts := cli.OutputOptions{Format: f, File: outputFile, Query: queryExpr}
	if outputFile == "" {
		opts.Writer = cmd.OutOrStdout()
	}
	return cli.Output(result, opts)
}
