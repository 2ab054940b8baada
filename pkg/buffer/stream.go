package buffer

import (
	"errors"
	"fmt"
	"io"
)

var (
	_ Stream          = (*QueueStream)(nil)
	_ io.ReadWriter   = (*QueueStream)(nil)
	_ io.StringWriter = (*QueueStream)(nil)
	_ io.WriterTo     = (*QueueStream)(nil)
	_ io.Seeker       = (*QueueStream)(nil)
)

var (
	// ErrInvalidArgument is returned when a negative offset or count is passed
	// to a range operation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange is returned when offset+count exceeds the supplied slice.
	ErrOutOfRange = errors.New("out of range")

	// ErrUnsupported is returned by operations a stream does not support,
	// such as seeking or truncation. It matches errors.ErrUnsupported.
	ErrUnsupported = unsupportedError{}
)

type unsupportedError struct{}

func (unsupportedError) Error() string { return "unsupported operation" }

func (unsupportedError) Is(target error) bool { return target == errors.ErrUnsupported }

// Stream defines the sequential stream capability set: range reads and
// writes, capability flags and a derived length. All implementations are
// thread-safe.
type Stream interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	ReadRange(p []byte, offset, count int) (n int, err error)
	WriteRange(p []byte, offset, count int) error
	Flush() error

	CanRead() bool
	CanWrite() bool
	CanSeek() bool

	Len() int64
	Position() int64
	SetPosition(pos int64) error
	SetLength(n int64) error
	Seek(offset int64, whence int) (int64, error)
}

// checkRange validates a (p, offset, count) triple before any state is
// touched.
func checkRange(op string, p []byte, offset, count int) error {
	switch {
	case offset < 0:
		return &RangeError{Op: op, Arg: "offset", Value: offset, Err: ErrInvalidArgument}
	case count < 0:
		return &RangeError{Op: op, Arg: "count", Value: count, Err: ErrInvalidArgument}
	case len(p)-offset < count:
		return &RangeError{Op: op, Arg: "count", Value: count, Err: ErrOutOfRange}
	}
	return nil
}

// RangeError records a rejected range argument.
type RangeError struct {
	Op    string
	Arg   string
	Value int
	Err   error
}

func (e *RangeError) Error() string {
	if e.Err == ErrOutOfRange {
		return fmt.Sprintf("buffer: %s: %s %d exceeds available size: %v", e.Op, e.Arg, e.Value, e.Err)
	}
	return fmt.Sprintf("buffer: %s: %s %d must be non-negative: %v", e.Op, e.Arg, e.Value, e.Err)
}

func (e *RangeError) Unwrap() error { return e.Err }
