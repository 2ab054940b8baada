package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/solarisin/core/pkg/buffer"
	"github.com/solarisin/core/pkg/cli"
	"github.com/solarisin/core/pkg/logx"
)

var pipeChunkSize int

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "Copy stdin to stdout through a QueueStream",
	Long: `Copy stdin to stdout through a QueueStream.

A producer goroutine reads stdin in chunks of --chunk-size bytes and appends
each chunk to the stream; the consumer drains the stream to stdout as data
arrives. Bytes are discarded from the stream as soon as they are written out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		size := cfg.Pipe.ChunkSize
		if cmd.Flags().Changed("chunk-size") {
			size = pipeChunkSize
		}
		if size <= 0 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}

		st, err := runPipe(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), size)
		log := logx.WithFunction(slog.Default())
		if err != nil {
			log.Error("pipe failed", "error", err, "bytes_in", st.BytesIn, "bytes_out", st.BytesOut)
			return err
		}
		log.Debug("pipe done",
			"bytes", cli.FormatBytes(st.BytesOut), "chunks", st.Chunks, "max_backlog", st.MaxBacklog)
		cli.PrintVerbose(cmd.ErrOrStderr(), IsVerbose(), "piped %s in %d chunks, max backlog %s",
			cli.FormatBytes(st.BytesOut), st.Chunks, cli.FormatBytes(st.MaxBacklog))
		return nil
	},
}

func init() {
	pipeCmd.Flags().IntVar(&pipeChunkSize, "chunk-size", 4096, "bytes read from stdin per write")
	rootCmd.AddCommand(pipeCmd)
}

type pipeStats struct {
	BytesIn    int64
	BytesOut   int64
	Chunks     int
	MaxBacklog int64
}

// runPipe copies in to out through a QueueStream until in reports io.EOF.
func runPipe(ctx context.Context, in io.Reader, out io.Writer, chunkSize int) (pipeStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		st      pipeStats
		bytesIn atomic.Int64
		chunks  atomic.Int64
		q       = buffer.NewQueueStream()
		notify  = make(chan struct{}, 1)
		done    = make(chan error, 1)
	)
	result := func(err error) (pipeStats, error) {
		st.BytesIn = bytesIn.Load()
		st.Chunks = int(chunks.Load())
		return st, err
	}

	go func() {
		buf := make([]byte, chunkSize)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				if werr := q.WriteRange(buf, 0, n); werr != nil {
					done <- werr
					return
				}
				bytesIn.Add(int64(n))
				chunks.Add(1)
				select {
				case notify <- struct{}{}:
				default:
				}
			}
			if errors.Is(err, io.EOF) {
				done <- nil
				return
			}
			if err != nil {
				done <- fmt.Errorf("read input: %w", err)
				return
			}
		}
	}()

	flush := func() error {
		st.MaxBacklog = max(st.MaxBacklog, q.Len())
		n, err := q.WriteTo(out)
		st.BytesOut += n
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return result(ctx.Err())
		case <-notify:
			if err := flush(); err != nil {
				return result(err)
			}
		case err := <-done:
			if err != nil {
				return result(err)
			}
			return result(flush())
		}
	}
}
