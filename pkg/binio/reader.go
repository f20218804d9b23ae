// ABOUTME: Byte-order aware reader over an io.ReadSeeker
// ABOUTME: Short reads surface as ErrTruncated instead of zero-filled values
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrTruncated is returned when the stream ends before a value is complete.
var ErrTruncated = errors.New("binio: unexpected end of stream")

// Reader reads fixed-width values from a seekable stream
type Reader struct {
	Order binary.ByteOrder

	rs  io.ReadSeeker
	buf [8]byte
}

// NewReader creates a reader using the given byte order
func NewReader(rs io.ReadSeeker, order binary.ByteOrder) *Reader {
	return &Reader{Order: order, rs: rs}
}

func (r *Reader) fill(n int) ([]byte, error) {
	b := r.buf[:n]
	if _, err := io.ReadFull(r.rs, b); err != nil {
		return nil, truncated(err)
	}
	return b, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

// U8 reads one byte
func (r *Reader) U8() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads an unsigned 16-bit value
func (r *Reader) U16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return r.Order.Uint16(b), nil
}

// I16 reads a signed 16-bit value
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U32 reads an unsigned 32-bit value
func (r *Reader) U32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return r.Order.Uint32(b), nil
}

// Tag reads a four-character code
func (r *Reader) Tag() ([4]byte, error) {
	var tag [4]byte
	b, err := r.fill(4)
	if err != nil {
		return tag, err
	}
	copy(tag[:], b)
	return tag, nil
}

// Bytes reads exactly n bytes into a new slice
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("binio: negative read length %d", n)
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r.rs, out); err != nil {
		return nil, truncated(err)
	}
	return out, nil
}

// Skip moves the cursor forward by n bytes
func (r *Reader) Skip(n int64) error {
	_, err := r.rs.Seek(n, io.SeekCurrent)
	return err
}

// Seek repositions the cursor
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	return r.rs.Seek(offset, whence)
}

// Pos returns the current absolute offset
func (r *Reader) Pos() (int64, error) {
	return r.rs.Seek(0, io.SeekCurrent)
}

// Len returns the total stream length, leaving the cursor where it was
func (r *Reader) Len() (int64, error) {
	cur, err := r.Pos()
	if err != nil {
		return 0, err
	}
	end, err := r.rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := r.rs.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}
