package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/solarisin/core/cmd/qstream/internal/bench"
	"github.com/solarisin/core/pkg/cli"
)

var (
	benchFile        string
	benchWriters     int
	benchWrites      int
	benchPayloadSize int
	benchReadSize    int
	benchSeed        uint64
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Stress a QueueStream with concurrent writers and verify delivery",
	Long: `Stress a QueueStream with concurrent writers and verify delivery.

Each of --writers goroutines appends --writes framed, checksummed payloads in
a shuffled order while a reader drains the stream --read-size bytes at a
time. The run fails unless every payload is delivered exactly once and
intact. Settings come from the config file, then --file (YAML or JSON),
then flags.

Examples:
  qstream bench --writers 16 --writes 10000
  qstream bench -f bench.yaml --format json
  qstream bench -q '{throughput, elapsed}'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		opts := cfg.Bench.Options()
		if benchFile != "" {
			if err := cli.LoadRequest(benchFile, &opts); err != nil {
				return err
			}
		}
		flags := cmd.Flags()
		if flags.Changed("writers") {
			opts.Writers = benchWriters
		}
		if flags.Changed("writes") {
			opts.Writes = benchWrites
		}
		if flags.Changed("payload-size") {
			opts.PayloadSize = benchPayloadSize
		}
		if flags.Changed("read-size") {
			opts.ReadSize = benchReadSize
		}
		if flags.Changed("seed") {
			opts.Seed = benchSeed
		}

		rep, err := bench.Run(cmd.Context(), opts, slog.Default())
		if err != nil {
			return err
		}
		cli.PrintVerbose(cmd.ErrOrStderr(), IsVerbose(), "run %s: %d payloads, %d reads (%d empty), max backlog %s",
			rep.ID, rep.Payloads, rep.Reads, rep.EmptyReads, cli.FormatBytes(rep.MaxBacklog))
		return outputResult(cmd, rep)
	},
}

func init() {
	benchCmd.Flags().StringVarP(&benchFile, "file", "f", "", "options file (YAML or JSON)")
	benchCmd.Flags().IntVar(&benchWriters, "writers", 0, "concurrent writer goroutines")
	benchCmd.Flags().IntVar(&benchWrites, "writes", 0, "payloads per writer")
	benchCmd.Flags().IntVar(&benchPayloadSize, "payload-size", 0, "body bytes per payload")
	benchCmd.Flags().IntVar(&benchReadSize, "read-size", 0, "bytes requested per read")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", 0, "seed for payload bodies and write order")
	rootCmd.AddCommand(benchCmd)
}
