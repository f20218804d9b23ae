// ABOUTME: Byte-order aware writer over an io.WriteSeeker
// ABOUTME: Keeps the first write error so call sites check once
package binio

import (
	"encoding/binary"
	"io"
)

// Writer writes fixed-width values to a seekable sink.
//
// The first error is retained and every later call becomes a no-op, so a
// run of header fields only needs a single Err check at the end.
type Writer struct {
	Order binary.ByteOrder

	ws  io.WriteSeeker
	buf [8]byte
	err error
}

// NewWriter creates a writer using the given byte order
func NewWriter(ws io.WriteSeeker, order binary.ByteOrder) *Writer {
	return &Writer{Order: order, ws: ws}
}

// Err returns the first error encountered
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.ws.Write(b)
}

// U8 writes one byte
func (w *Writer) U8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

// U16 writes an unsigned 16-bit value
func (w *Writer) U16(v uint16) {
	w.Order.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

// I16 writes a signed 16-bit value
func (w *Writer) I16(v int16) {
	w.U16(uint16(v))
}

// U32 writes an unsigned 32-bit value
func (w *Writer) U32(v uint32) {
	w.Order.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

// Tag writes a four-character code
func (w *Writer) Tag(tag [4]byte) {
	w.write(tag[:])
}

// Bytes writes a raw byte run
func (w *Writer) Bytes(b []byte) {
	w.write(b)
}

// Pad writes n zero bytes
func (w *Writer) Pad(n int) {
	if n <= 0 {
		return
	}
	w.write(make([]byte, n))
}

// AlignTo pads with zeros until the absolute offset is a multiple of n
func (w *Writer) AlignTo(n int64) {
	pos := w.Pos()
	if w.err != nil || n <= 0 {
		return
	}
	if rem := pos % n; rem != 0 {
		w.Pad(int(n - rem))
	}
}

// Pos returns the current absolute offset
func (w *Writer) Pos() int64 {
	if w.err != nil {
		return 0
	}
	pos, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		w.err = err
	}
	return pos
}

// Seek repositions the cursor
func (w *Writer) Seek(offset int64, whence int) int64 {
	if w.err != nil {
		return 0
	}
	pos, err := w.ws.Seek(offset, whence)
	if err != nil {
		w.err = err
	}
	return pos
}
