package buffer

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"unicode/utf8"
)

// QueueStream is an unbounded, append/consume byte stream. Every write is
// copied into its own chunk and appended to a FIFO; reads consume bytes from
// the head of the FIFO and discard them. Data that has been read is never
// retained.
//
// The FIFO is a two-lock linked queue: writers only take the tail lock and
// readers only take the head lock, so producers never wait for a consumer
// that is copying data out. Concurrent readers are serialized with respect
// to each other; no byte is ever delivered twice.
//
// No operation blocks. Read returns (0, nil) when the stream is empty, and
// the stream never reports io.EOF. Use WriteTo (or io.Copy, which calls it)
// to drain the currently buffered bytes.
//
// The zero value is an empty stream ready to use. A QueueStream must not be
// copied after first use.
type QueueStream struct {
	headMu sync.Mutex
	head   *chunk // sentinel; head.next is the oldest unread chunk

	tailMu sync.Mutex
	tail   *chunk

	once sync.Once
	size atomic.Int64
}

// chunk holds the payload of a single write call.
type chunk struct {
	data []byte
	off  int // bytes of data already delivered; guarded by headMu
	next atomic.Pointer[chunk]
}

// NewQueueStream returns an empty QueueStream.
func NewQueueStream() *QueueStream {
	q := &QueueStream{}
	q.lazyInit()
	return q
}

func (q *QueueStream) lazyInit() {
	q.once.Do(func() {
		sentinel := &chunk{}
		q.head = sentinel
		q.tail = sentinel
	})
}

// Write appends a copy of p to the stream as a single chunk.
//
// This method implements the io.Writer interface and always returns len(p)
// and a nil error.
func (q *QueueStream) Write(p []byte) (int, error) {
	q.enqueue(p)
	return len(p), nil
}

// WriteRange appends a copy of p[offset:offset+count] to the stream as a
// single chunk. Arguments are validated before the stream is modified;
// ErrInvalidArgument is returned for a negative offset or count and
// ErrOutOfRange when offset+count exceeds len(p).
func (q *QueueStream) WriteRange(p []byte, offset, count int) error {
	if err := checkRange("write", p, offset, count); err != nil {
		return err
	}
	q.enqueue(p[offset : offset+count])
	return nil
}

// WriteString appends the UTF-8 bytes of s as a single chunk.
func (q *QueueStream) WriteString(s string) (int, error) {
	q.enqueue([]byte(s))
	return len(s), nil
}

// WriteRunes encodes r as UTF-8 and appends the result as a single chunk.
// It returns the number of bytes written. Invalid runes are encoded as
// utf8.RuneError.
func (q *QueueStream) WriteRunes(r []rune) (int, error) {
	buf := make([]byte, 0, len(r))
	for _, c := range r {
		buf = utf8.AppendRune(buf, c)
	}
	q.push(buf)
	return len(buf), nil
}

// enqueue copies p so that no caller-owned memory is retained.
func (q *QueueStream) enqueue(p []byte) {
	if len(p) == 0 {
		return
	}
	q.push(append([]byte(nil), p...))
}

// push links data, which must be owned by the stream, at the tail.
func (q *QueueStream) push(data []byte) {
	if len(data) == 0 {
		return
	}
	q.lazyInit()
	c := &chunk{data: data}

	// Length is raised before the chunk becomes visible so that a
	// concurrent reader can never drive it below zero.
	q.size.Add(int64(len(data)))

	q.tailMu.Lock()
	q.tail.next.Store(c)
	q.tail = c
	q.tailMu.Unlock()
}

// Read reads up to len(p) bytes from the head of the stream and discards
// them. It returns the number of bytes read, which is 0 when the stream is
// empty. The error is always nil.
func (q *QueueStream) Read(p []byte) (int, error) {
	return q.consume(p, len(p)), nil
}

// ReadRange reads up to count bytes into p[offset:] and discards them from
// the stream. Fewer than count bytes are returned when the stream holds
// less. Arguments are validated as for WriteRange.
func (q *QueueStream) ReadRange(p []byte, offset, count int) (int, error) {
	if err := checkRange("read", p, offset, count); err != nil {
		return 0, err
	}
	return q.consume(p[offset:offset+count], count), nil
}

// Discard removes up to n bytes from the head of the stream without copying
// them and reports how many were removed.
func (q *QueueStream) Discard(n int) (int, error) {
	if n < 0 {
		return 0, &RangeError{Op: "discard", Arg: "n", Value: n, Err: ErrInvalidArgument}
	}
	return q.consume(nil, n), nil
}

// consume delivers up to n bytes into dst, or drops them when dst is nil.
func (q *QueueStream) consume(dst []byte, n int) int {
	if n == 0 {
		return 0
	}
	q.lazyInit()
	q.headMu.Lock()
	defer q.headMu.Unlock()

	total := 0
	for total < n {
		c := q.head.next.Load()
		if c == nil {
			break
		}
		k := min(len(c.data)-c.off, n-total)
		if dst != nil {
			copy(dst[total:], c.data[c.off:c.off+k])
		}
		c.off += k
		total += k
		if c.off == len(c.data) {
			q.popLocked(c)
		}
	}
	q.size.Add(-int64(total))
	return total
}

// popLocked drops the fully consumed chunk c, which becomes the new sentinel.
func (q *QueueStream) popLocked(c *chunk) {
	c.data = nil
	c.off = 0
	q.head = c
}

// WriteTo drains the bytes currently buffered into w, chunk by chunk, and
// returns the number of bytes written. Only bytes accepted by w are removed
// from the stream. It returns when the stream is empty or w fails.
//
// This method implements io.WriterTo, so io.Copy(w, q) terminates once the
// stream is drained instead of spinning on empty reads.
func (q *QueueStream) WriteTo(w io.Writer) (int64, error) {
	q.lazyInit()
	q.headMu.Lock()
	defer q.headMu.Unlock()

	var total int64
	for {
		c := q.head.next.Load()
		if c == nil {
			return total, nil
		}
		n, err := w.Write(c.data[c.off:])
		if n < 0 || n > len(c.data)-c.off {
			return total, fmt.Errorf("buffer: write to: invalid write count %d", n)
		}
		c.off += n
		total += int64(n)
		q.size.Add(-int64(n))
		if c.off == len(c.data) {
			q.popLocked(c)
		}
		if err != nil {
			return total, err
		}
		if c.data != nil {
			return total, io.ErrShortWrite
		}
	}
}

// Len returns the number of unread bytes in the stream. Under concurrent
// writes and reads the value is a snapshot.
func (q *QueueStream) Len() int64 {
	return q.size.Load()
}

// chunks returns the number of chunks currently queued.
func (q *QueueStream) chunks() int {
	q.lazyInit()
	q.headMu.Lock()
	defer q.headMu.Unlock()
	n := 0
	for c := q.head.next.Load(); c != nil; c = c.next.Load() {
		n++
	}
	return n
}

// Flush is a no-op; there is no underlying sink.
func (q *QueueStream) Flush() error { return nil }

// CanRead reports true.
func (q *QueueStream) CanRead() bool { return true }

// CanWrite reports true.
func (q *QueueStream) CanWrite() bool { return true }

// CanSeek reports false.
func (q *QueueStream) CanSeek() bool { return false }

// Position always returns 0: consumed data is purged, so unread data always
// starts at the front of the stream.
func (q *QueueStream) Position() int64 { return 0 }

// SetPosition always fails with ErrUnsupported.
func (q *QueueStream) SetPosition(pos int64) error {
	return fmt.Errorf("buffer: set position: queue stream is not seekable: %w", ErrUnsupported)
}

// Seek always fails with ErrUnsupported.
func (q *QueueStream) Seek(offset int64, whence int) (int64, error) {
	return 0, fmt.Errorf("buffer: seek: queue stream is not seekable: %w", ErrUnsupported)
}

// SetLength always fails with ErrUnsupported; the length is derived from the
// queued chunks.
func (q *QueueStream) SetLength(n int64) error {
	return fmt.Errorf("buffer: set length: queue stream length can not be changed: %w", ErrUnsupported)
}
