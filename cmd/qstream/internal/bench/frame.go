package bench

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Frame layout, big endian:
//
//	writer  uint16
//	seq     uint32
//	length  uint32
//	body    [length]byte
//	sum     uint64  xxhash of everything before it
const (
	headerSize = 2 + 4 + 4
	sumSize    = 8

	// MaxBody is the largest body a frame may carry.
	MaxBody = 1 << 24
)

// ErrShortFrame is returned by DecodeFrame when p does not yet hold a
// complete frame.
var ErrShortFrame = errors.New("bench: short frame")

// Frame is one payload written by a bench writer.
type Frame struct {
	Writer int
	Seq    int
	Body   []byte
}

// FrameSize returns the encoded size of a frame with a body of n bytes.
func FrameSize(n int) int { return headerSize + n + sumSize }

// AppendFrame appends the encoding of f to dst.
func AppendFrame(dst []byte, f Frame) []byte {
	start := len(dst)
	dst = binary.BigEndian.AppendUint16(dst, uint16(f.Writer))
	dst = binary.BigEndian.AppendUint32(dst, uint32(f.Seq))
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(f.Body)))
	dst = append(dst, f.Body...)
	return binary.BigEndian.AppendUint64(dst, xxhash.Sum64(dst[start:]))
}

// DecodeFrame decodes the frame at the start of p and returns it with the
// number of bytes consumed. The returned body aliases p.
func DecodeFrame(p []byte) (Frame, int, error) {
	if len(p) < headerSize {
		return Frame{}, 0, ErrShortFrame
	}
	n := int(binary.BigEndian.Uint32(p[6:10]))
	if n > MaxBody {
		return Frame{}, 0, fmt.Errorf("bench: corrupt frame length %d", n)
	}
	size := FrameSize(n)
	if len(p) < size {
		return Frame{}, 0, ErrShortFrame
	}
	want := binary.BigEndian.Uint64(p[size-sumSize : size])
	if got := xxhash.Sum64(p[:size-sumSize]); got != want {
		return Frame{}, 0, fmt.Errorf("bench: frame checksum mismatch: got %x, want %x", got, want)
	}
	return Frame{
		Writer: int(binary.BigEndian.Uint16(p[0:2])),
		Seq:    int(binary.BigEndian.Uint32(p[2:6])),
		Body:   p[headerSize : headerSize+n],
	}, size, nil
}
