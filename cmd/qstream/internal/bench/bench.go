// Package bench drives a QueueStream with concurrent writers and a
// concurrent reader, and verifies that every payload is delivered exactly
// once and intact.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/solarisin/core/pkg/buffer"
	"github.com/solarisin/core/pkg/cli"
	"github.com/solarisin/core/pkg/logx"
	"github.com/solarisin/core/pkg/slicex"
)

// Options configures a run.
type Options struct {
	Writers     int    `json:"writers" yaml:"writers"`
	Writes      int    `json:"writes" yaml:"writes"`
	PayloadSize int    `json:"payload_size" yaml:"payload_size"`
	ReadSize    int    `json:"read_size" yaml:"read_size"`
	Seed        uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Validate checks that the options describe a runnable benchmark.
func (o Options) Validate() error {
	switch {
	case o.Writers <= 0 || o.Writers > 1<<16:
		return fmt.Errorf("bench: writers must be in [1, 65536], got %d", o.Writers)
	case o.Writes <= 0:
		return fmt.Errorf("bench: writes must be positive, got %d", o.Writes)
	case o.PayloadSize < 0 || o.PayloadSize > MaxBody:
		return fmt.Errorf("bench: payload size must be in [0, %d], got %d", MaxBody, o.PayloadSize)
	case o.ReadSize <= 0:
		return fmt.Errorf("bench: read size must be positive, got %d", o.ReadSize)
	}
	return nil
}

// Report summarizes a run.
type Report struct {
	ID         string  `json:"id" yaml:"id"`
	Options    Options `json:"options" yaml:"options"`
	Payloads   int     `json:"payloads" yaml:"payloads"`
	Bytes      int64   `json:"bytes" yaml:"bytes"`
	Reads      int64   `json:"reads" yaml:"reads"`
	EmptyReads int64   `json:"empty_reads" yaml:"empty_reads"`
	MaxBacklog int64   `json:"max_backlog" yaml:"max_backlog"`
	ElapsedMS  float64 `json:"elapsed_ms" yaml:"elapsed_ms"`
	Elapsed    string  `json:"elapsed" yaml:"elapsed"`
	Throughput string  `json:"throughput" yaml:"throughput"`
	Verified   bool    `json:"verified" yaml:"verified"`
}

// Run writes Writers*Writes frames into a fresh QueueStream from Writers
// goroutines while one reader drains it, then checks the delivered frames.
// Each writer sends its sequence numbers in a shuffled order. Run returns
// an error if any frame is lost, duplicated or corrupted, or if ctx is done
// before the stream is drained.
func Run(ctx context.Context, opts Options, log *slog.Logger) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	rep := &Report{ID: uuid.New().String(), Options: opts}
	log = log.With("run", rep.ID)
	logx.Here(log).Debug("bench start",
		"writers", opts.Writers, "writes", opts.Writes,
		"payload_size", opts.PayloadSize, "read_size", opts.ReadSize)

	q := buffer.NewQueueStream()
	v := newVerifier(opts)

	var (
		wg      sync.WaitGroup
		writing atomic.Int32
	)
	start := time.Now()
	writing.Store(int32(opts.Writers))
	for w := 0; w < opts.Writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			defer writing.Add(-1)
			writeAll(ctx, q, opts, w)
		}(w)
	}

	err := drain(ctx, q, opts.ReadSize, &writing, v, rep)
	wg.Wait()
	elapsed := time.Since(start)

	rep.ElapsedMS = float64(elapsed.Microseconds()) / 1000
	rep.Elapsed = cli.FormatDuration(elapsed)
	rep.Throughput = cli.FormatRate(rep.Bytes, elapsed)
	if err != nil {
		log.Warn("bench aborted", "error", err, "bytes", rep.Bytes)
		return rep, err
	}

	if err := v.finish(); err != nil {
		log.Error("bench verification failed", "error", err)
		return rep, err
	}
	rep.Payloads = v.delivered
	rep.Verified = true
	log.Info("bench done",
		"bytes", rep.Bytes, "payloads", rep.Payloads,
		"elapsed", rep.Elapsed, "throughput", rep.Throughput)
	return rep, nil
}

// Body returns the deterministic body of payload (writer, seq).
func Body(seed uint64, writer, seq, size int) []byte {
	r := rand.New(rand.NewPCG(seed^uint64(writer)<<32, uint64(seq)))
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(r.Uint32())
	}
	return b
}

func writeAll(ctx context.Context, q *buffer.QueueStream, opts Options, w int) {
	seqs := make([]int, opts.Writes)
	for i := range seqs {
		seqs[i] = i
	}
	slicex.Shuffle(rand.New(rand.NewPCG(opts.Seed, uint64(w))), seqs)

	frame := make([]byte, 0, FrameSize(opts.PayloadSize))
	for {
		seq, ok := slicex.PopFront(&seqs)
		if !ok || ctx.Err() != nil {
			return
		}
		frame = AppendFrame(frame[:0], Frame{Writer: w, Seq: seq, Body: Body(opts.Seed, w, seq, opts.PayloadSize)})
		// The stream copies the frame, so the buffer can be reused.
		q.Write(frame)
	}
}

func drain(ctx context.Context, q *buffer.QueueStream, readSize int, writing *atomic.Int32, v *verifier, rep *Report) error {
	buf := make([]byte, readSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.MaxBacklog = max(rep.MaxBacklog, q.Len())

		// Sample before reading so that a zero read after the last writer
		// finished really means the stream is drained.
		done := writing.Load() == 0
		n, err := q.ReadRange(buf, 0, readSize)
		if err != nil {
			return err
		}
		rep.Reads++
		if n == 0 {
			rep.EmptyReads++
			if done {
				return nil
			}
			runtime.Gosched()
			continue
		}
		rep.Bytes += int64(n)
		if err := v.feed(buf[:n]); err != nil {
			return err
		}
	}
}

// verifier reassembles frames from the delivered byte stream and tracks
// which (writer, seq) pairs have been seen.
type verifier struct {
	opts      Options
	seen      [][]bool
	acc       []byte
	delivered int
}

func newVerifier(opts Options) *verifier {
	v := &verifier{opts: opts, seen: make([][]bool, opts.Writers)}
	for w := range v.seen {
		v.seen[w] = make([]bool, opts.Writes)
	}
	return v
}

func (v *verifier) feed(p []byte) error {
	v.acc = append(v.acc, p...)
	off := 0
	for {
		f, n, err := DecodeFrame(v.acc[off:])
		if errors.Is(err, ErrShortFrame) {
			break
		}
		if err != nil {
			return err
		}
		off += n
		if err := v.check(f); err != nil {
			return err
		}
	}
	v.acc = append(v.acc[:0], v.acc[off:]...)
	return nil
}

func (v *verifier) check(f Frame) error {
	if f.Writer >= v.opts.Writers {
		return fmt.Errorf("bench: frame from unknown writer %d", f.Writer)
	}
	if f.Seq >= v.opts.Writes {
		return fmt.Errorf("bench: writer %d seq %d was never written", f.Writer, f.Seq)
	}
	if v.seen[f.Writer][f.Seq] {
		return fmt.Errorf("bench: writer %d seq %d delivered twice", f.Writer, f.Seq)
	}
	if want := Body(v.opts.Seed, f.Writer, f.Seq, v.opts.PayloadSize); string(f.Body) != string(want) {
		return fmt.Errorf("bench: writer %d seq %d body mismatch", f.Writer, f.Seq)
	}
	v.seen[f.Writer][f.Seq] = true
	v.delivered++
	return nil
}

func (v *verifier) finish() error {
	if len(v.acc) != 0 {
		return fmt.Errorf("bench: %d trailing bytes after last frame", len(v.acc))
	}
	for w, seen := range v.seen {
		missing := 0
		for _, ok := range seen {
			if !ok {
				missing++
			}
		}
		if missing != 0 {
			return fmt.Errorf("bench: writer %d: %d payloads never delivered", w, missing)
		}
	}
	return nil
}
