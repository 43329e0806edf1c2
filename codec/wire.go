package codec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Reader consumes a fixed-layout big-endian message. The first failure is sticky:
// later reads return zero values and Err reports the original failure.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a reader over buf. buf is not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) take(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.err = fmt.Errorf("%s at offset %d: need %d bytes, have %d: %w",
			field, r.off, n, len(r.buf)-r.off, io.ErrUnexpectedEOF)
		return nil
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out
}

// Uint8 reads one byte.
func (r *Reader) Uint8(field string) uint8 {
	if b := r.take(1, field); b != nil {
		return b[0]
	}
	return 0
}

// Uint16 reads a big-endian uint16.
func (r *Reader) Uint16(field string) uint16 {
	if b := r.take(2, field); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

// Uint32 reads a big-endian uint32.
func (r *Reader) Uint32(field string) uint32 {
	if b := r.take(4, field); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

// Uint64 reads a big-endian uint64.
func (r *Reader) Uint64(field string) uint64 {
	if b := r.take(8, field); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

// Fixed copies len(dst) bytes into dst.
func (r *Reader) Fixed(field string, dst []byte) {
	if b := r.take(len(dst), field); b != nil {
		copy(dst, b)
	}
}

// Bytes returns the next n bytes. The result aliases the input buffer.
func (r *Reader) Bytes(field string, n int) []byte {
	return r.take(n, field)
}

// Rest returns every remaining byte.
func (r *Reader) Rest() []byte {
	if r.err != nil {
		return nil
	}
	out := r.buf[r.off:]
	r.off = len(r.buf)
	return out
}

// Read implements io.Reader, letting stream decoders consume from the same buffer.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.off == len(r.buf) && len(p) > 0 {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.off:])
	r.off += n
	return n, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Offset returns the number of consumed bytes.
func (r *Reader) Offset() int {
	return r.off
}

// Err returns the first failure.
func (r *Reader) Err() error {
	return r.err
}

// Done returns an error if reading failed or unread bytes remain.
func (r *Reader) Done() error {
	if r.err != nil {
		return r.err
	}
	if rem := r.Remaining(); rem != 0 {
		return fmt.Errorf("%d trailing bytes", rem)
	}
	return nil
}
