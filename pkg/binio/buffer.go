// ABOUTME: In-memory io.ReadWriteSeeker
// ABOUTME: Lets container writers backpatch without touching the filesystem
package binio

import (
	"errors"
	"io"
)

// ErrNegativePosition is returned when seeking before the start of a Buffer.
var ErrNegativePosition = errors.New("binio: negative position")

// Buffer is a growable in-memory stream supporting Read, Write and Seek.
// Writing past the end extends the buffer with zeros.
type Buffer struct {
	data []byte
	pos  int64
}

// NewBuffer wraps data; the buffer takes ownership of the slice
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Read implements io.Reader
func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Write implements io.Writer
func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		if end > int64(cap(b.data)) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			old := len(b.data)
			b.data = b.data[:end]
			clear(b.data[old:end])
		}
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

// Seek implements io.Seeker
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = b.pos + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	default:
		return 0, errors.New("binio: invalid whence")
	}
	if next < 0 {
		return 0, ErrNegativePosition
	}
	b.pos = next
	return next, nil
}

// Bytes returns the buffer contents
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes in the buffer
func (b *Buffer) Len() int {
	return len(b.data)
}
