package buffer

import (
	"bytes"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

func TestQueueStream_WriteRead(t *testing.T) {
	q := NewQueueStream()

	n, err := q.Write([]byte{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n != 5 {
		t.Fatalf("Write returned %d, want 5", n)
	}
	if q.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", q.Len())
	}

	got := make([]byte, 10)
	n, err = q.Read(got)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if n != 5 {
		t.Fatalf("Read returned %d, want 5", n)
	}
	if !bytes.Equal(got[:n], []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("Read got %v, want [1,2,3,4,5]", got[:n])
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
}

func TestQueueStream_ZeroValue(t *testing.T) {
	var q QueueStream

	if _, err := q.WriteString("abc"); err != nil {
		t.Fatalf("WriteString error: %v", err)
	}
	got := make([]byte, 3)
	n, _ := q.Read(got)
	if string(got[:n]) != "abc" {
		t.Fatalf("Read got %q, want %q", got[:n], "abc")
	}
}

func TestQueueStream_PartialRead(t *testing.T) {
	q := NewQueueStream()
	if err := q.WriteRange([]byte{0x01, 0x02, 0x03}, 0, 3); err != nil {
		t.Fatalf("WriteRange error: %v", err)
	}

	buf := make([]byte, 5)
	n, err := q.ReadRange(buf, 0, 2)
	if err != nil {
		t.Fatalf("ReadRange error: %v", err)
	}
	if n != 2 || !bytes.Equal(buf[:n], []byte{0x01, 0x02}) {
		t.Fatalf("first read = %v, want [1 2]", buf[:n])
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
	if q.chunks() != 1 {
		t.Fatalf("chunks() = %d, want 1 (partially read chunk stays queued)", q.chunks())
	}

	n, err = q.ReadRange(buf, 0, 5)
	if err != nil {
		t.Fatalf("ReadRange error: %v", err)
	}
	if n != 1 || buf[0] != 0x03 {
		t.Fatalf("second read = %v, want [3]", buf[:n])
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
	if q.chunks() != 0 {
		t.Fatalf("chunks() = %d, want 0", q.chunks())
	}
}

func TestQueueStream_ReadRangeOffset(t *testing.T) {
	q := NewQueueStream()
	q.Write([]byte("hello"))

	buf := []byte("..........")
	n, err := q.ReadRange(buf, 3, 4)
	if err != nil {
		t.Fatalf("ReadRange error: %v", err)
	}
	if n != 4 {
		t.Fatalf("ReadRange returned %d, want 4", n)
	}
	if string(buf) != "...hell..." {
		t.Fatalf("buf = %q, want %q", buf, "...hell...")
	}
}

func TestQueueStream_WriteRangeOffset(t *testing.T) {
	q := NewQueueStream()
	if err := q.WriteRange([]byte("xxhelloxx"), 2, 5); err != nil {
		t.Fatalf("WriteRange error: %v", err)
	}
	if q.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", q.Len())
	}
	var out bytes.Buffer
	q.WriteTo(&out)
	if out.String() != "hello" {
		t.Fatalf("drained %q, want %q", out.String(), "hello")
	}
}

func TestQueueStream_EmptyRead(t *testing.T) {
	q := NewQueueStream()
	buf := make([]byte, 8)

	n, err := q.Read(buf)
	if err != nil {
		t.Fatalf("Read on empty stream error: %v", err)
	}
	if n != 0 {
		t.Fatalf("Read on empty stream returned %d, want 0", n)
	}

	n, err = q.ReadRange(buf, 0, 8)
	if err != nil || n != 0 {
		t.Fatalf("ReadRange on empty stream = (%d, %v), want (0, nil)", n, err)
	}
}

func TestQueueStream_ZeroLengthWrite(t *testing.T) {
	q := NewQueueStream()
	q.Write(nil)
	q.WriteString("")
	if err := q.WriteRange([]byte{1, 2}, 2, 0); err != nil {
		t.Fatalf("WriteRange error: %v", err)
	}
	if q.chunks() != 0 {
		t.Fatalf("chunks() = %d, want 0", q.chunks())
	}

	q.Write([]byte{9})
	buf := make([]byte, 4)
	n, _ := q.Read(buf)
	if n != 1 || buf[0] != 9 {
		t.Fatalf("Read = %v, want [9]", buf[:n])
	}
}

func TestQueueStream_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("a"),
		[]byte("bcd"),
		[]byte("efghijkl"),
		{0x00, 0xff},
		[]byte(strings.Repeat("z", 100)),
	}
	var want []byte
	for _, p := range payloads {
		want = append(want, p...)
	}

	for _, size := range []int{1, 2, 3, 7, 64, len(want), len(want) + 10} {
		q := NewQueueStream()
		for _, p := range payloads {
			q.Write(p)
		}

		var got []byte
		buf := make([]byte, size)
		for {
			n, err := q.Read(buf)
			if err != nil {
				t.Fatalf("size %d: Read error: %v", size, err)
			}
			if n == 0 {
				break
			}
			if n > size {
				t.Fatalf("size %d: Read returned %d bytes", size, n)
			}
			got = append(got, buf[:n]...)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("size %d: got %q, want %q", size, got, want)
		}
		if q.Len() != 0 {
			t.Fatalf("size %d: Len() = %d, want 0", size, q.Len())
		}
	}
}

func TestQueueStream_LengthInvariant(t *testing.T) {
	q := NewQueueStream()
	var written, read int64
	buf := make([]byte, 16)

	steps := []struct {
		write string
		read  int
	}{
		{"hello", 0},
		{"", 3},
		{"world!", 4},
		{"", 16},
		{"x", 1},
		{"", 1},
	}
	for i, s := range steps {
		if s.write != "" {
			n, _ := q.WriteString(s.write)
			written += int64(n)
		}
		if s.read > 0 {
			n, _ := q.ReadRange(buf, 0, s.read)
			read += int64(n)
		}
		if got, want := q.Len(), written-read; got != want {
			t.Fatalf("step %d: Len() = %d, want %d", i, got, want)
		}
	}
}

func TestQueueStream_CopiesCallerBuffer(t *testing.T) {
	q := NewQueueStream()
	p := []byte{1, 2, 3}
	q.Write(p)
	p[0], p[1], p[2] = 7, 7, 7

	got := make([]byte, 3)
	q.Read(got)
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("Read got %v, want [1 2 3]; stream aliased caller memory", got)
	}
}

func TestQueueStream_NoRedelivery(t *testing.T) {
	q := NewQueueStream()
	q.WriteString("abcdef")

	first := make([]byte, 3)
	q.Read(first)
	q.WriteString("ghi")

	rest := make([]byte, 16)
	n, _ := q.Read(rest)
	if string(rest[:n]) != "defghi" {
		t.Fatalf("second read = %q, want %q", rest[:n], "defghi")
	}
	if bytes.Contains(rest[:n], first) {
		t.Fatalf("second read re-delivered %q", first)
	}
}

func TestQueueStream_WriteRunes(t *testing.T) {
	q := NewQueueStream()
	n, err := q.WriteRunes([]rune("héllo, 世界"))
	if err != nil {
		t.Fatalf("WriteRunes error: %v", err)
	}
	want := "héllo, 世界"
	if n != len(want) {
		t.Fatalf("WriteRunes returned %d, want %d", n, len(want))
	}

	got := make([]byte, 64)
	n, _ = q.Read(got)
	if string(got[:n]) != want {
		t.Fatalf("Read got %q, want %q", got[:n], want)
	}
	if !utf8.Valid(got[:n]) {
		t.Fatalf("Read got invalid UTF-8")
	}
}

func TestQueueStream_Discard(t *testing.T) {
	q := NewQueueStream()
	q.WriteString("abc")
	q.WriteString("def")

	n, err := q.Discard(4)
	if err != nil {
		t.Fatalf("Discard error: %v", err)
	}
	if n != 4 {
		t.Fatalf("Discard returned %d, want 4", n)
	}
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}

	n, _ = q.Discard(100)
	if n != 2 {
		t.Fatalf("Discard returned %d, want 2", n)
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}

	if _, err := q.Discard(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Discard(-1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestQueueStream_WriteTo(t *testing.T) {
	q := NewQueueStream()
	q.WriteString("abc")
	q.WriteString("def")
	head := make([]byte, 1)
	q.Read(head)

	var out bytes.Buffer
	n, err := io.Copy(&out, q)
	if err != nil {
		t.Fatalf("io.Copy error: %v", err)
	}
	if n != 5 {
		t.Fatalf("io.Copy returned %d, want 5", n)
	}
	if out.String() != "bcdef" {
		t.Fatalf("io.Copy wrote %q, want %q", out.String(), "bcdef")
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
}

type limitedWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.limit {
		n := w.limit - w.buf.Len()
		w.buf.Write(p[:n])
		return n, errors.New("writer full")
	}
	return w.buf.Write(p)
}

func TestQueueStream_WriteToPartial(t *testing.T) {
	q := NewQueueStream()
	q.WriteString("abcd")
	q.WriteString("efgh")

	w := &limitedWriter{limit: 6}
	n, err := q.WriteTo(w)
	if err == nil {
		t.Fatal("WriteTo expected error from full writer")
	}
	if n != 6 {
		t.Fatalf("WriteTo returned %d, want 6", n)
	}
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}

	rest := make([]byte, 8)
	m, _ := q.Read(rest)
	if string(rest[:m]) != "gh" {
		t.Fatalf("remaining = %q, want %q", rest[:m], "gh")
	}
}

func TestQueueStream_ConcurrentWriters(t *testing.T) {
	const (
		writers = 8
		writes  = 200
	)
	q := NewQueueStream()

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				// Each payload is self-describing: writer, sequence, length.
				p := []byte{byte(w), byte(i), byte(i >> 8), byte(w ^ i)}
				if _, err := q.Write(p); err != nil {
					t.Errorf("Write error: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if q.Len() != writers*writes*4 {
		t.Fatalf("Len() = %d, want %d", q.Len(), writers*writes*4)
	}

	var got []byte
	buf := make([]byte, 13)
	for {
		n, _ := q.Read(buf)
		if n == 0 {
			break
		}
		got = append(got, buf[:n]...)
	}
	if len(got) != writers*writes*4 {
		t.Fatalf("drained %d bytes, want %d", len(got), writers*writes*4)
	}

	// Chunks are never split, so the output is a sequence of whole payloads
	// and each writer's payloads appear in its own program order.
	next := make([]int, writers)
	for i := 0; i < len(got); i += 4 {
		w, seq := int(got[i]), int(got[i+1])|int(got[i+2])<<8
		if w >= writers {
			t.Fatalf("payload %d: bad writer %d", i/4, w)
		}
		if got[i+3] != byte(w^seq) {
			t.Fatalf("payload %d: corrupted %v", i/4, got[i:i+4])
		}
		if seq != next[w] {
			t.Fatalf("writer %d: got seq %d, want %d", w, seq, next[w])
		}
		next[w]++
	}
}

func TestQueueStream_ConcurrentReadWrite(t *testing.T) {
	const (
		writers = 4
		writes  = 500
		readers = 3
	)
	q := NewQueueStream()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		received []byte
		done     = make(chan struct{})
	)

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 7)
			var local []byte
			for {
				n, _ := q.Read(buf)
				local = append(local, buf[:n]...)
				if n == 0 {
					select {
					case <-done:
						if q.Len() == 0 {
							mu.Lock()
							received = append(received, local...)
							mu.Unlock()
							return
						}
					default:
					}
				}
				if q.Len() < 0 {
					t.Errorf("Len() went negative: %d", q.Len())
				}
			}
		}()
	}

	var ww sync.WaitGroup
	for w := 0; w < writers; w++ {
		ww.Add(1)
		go func(w int) {
			defer ww.Done()
			for i := 0; i < writes; i++ {
				q.Write([]byte{byte(w), byte(i)})
			}
		}(w)
	}
	ww.Wait()
	close(done)
	wg.Wait()

	if len(received) != writers*writes*2 {
		t.Fatalf("received %d bytes, want %d", len(received), writers*writes*2)
	}

	// Every written byte is delivered exactly once.
	var want []byte
	for w := 0; w < writers; w++ {
		for i := 0; i < writes; i++ {
			want = append(want, byte(w), byte(i))
		}
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	sort.Slice(received, func(i, j int) bool { return received[i] < received[j] })
	if !bytes.Equal(received, want) {
		t.Fatal("received bytes differ from written bytes")
	}
}

func BenchmarkQueueStream_WriteRead(b *testing.B) {
	q := NewQueueStream()
	p := make([]byte, 512)
	buf := make([]byte, 512)
	b.SetBytes(int64(len(p)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		q.Write(p)
		q.Read(buf)
	}
}

func BenchmarkQueueStream_ParallelWrite(b *testing.B) {
	q := NewQueueStream()
	p := make([]byte, 64)
	b.SetBytes(int64(len(p)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q.Write(p)
		}
	})
}
