// ABOUTME: RIFF writer with deferred size patching
// ABOUTME: Tracks open chunks on a stack and backpatches sizes when they close
package riff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/binio"
)

// Writer emits a RIFF container. Chunks are opened with StartChunk or
// StartListChunk and closed with EndChunk in LIFO order. The RIFF chunk
// itself sits at the bottom of the stack from InitFile until CloseFile.
type Writer struct {
	w *binio.Writer

	// sizeOffsets holds the position of each open chunk's size field,
	// blockOffsets the start of its payload.
	sizeOffsets  []int64
	blockOffsets []int64
	base         int64
}

// NewWriter creates a writer emitting to ws from its current position
func NewWriter(ws io.WriteSeeker) *Writer {
	return &Writer{w: binio.NewWriter(ws, binary.LittleEndian)}
}

// Cursor exposes the little-endian cursor for writing payload bytes
func (w *Writer) Cursor() *binio.Writer {
	return w.w
}

// InitFile writes the RIFF header with a placeholder size
func (w *Writer) InitFile(form Tag) {
	w.base = w.w.Pos()
	w.open(TagRIFF)
	w.w.Tag(form)
}

func (w *Writer) open(tag Tag) {
	w.w.Tag(tag)
	w.sizeOffsets = append(w.sizeOffsets, w.w.Pos())
	w.w.U32(0)
	w.blockOffsets = append(w.blockOffsets, w.w.Pos())
}

// StartChunk opens a chunk. Its size is filled in by the matching EndChunk.
func (w *Writer) StartChunk(tag Tag) {
	w.open(tag)
}

// StartListChunk opens a LIST chunk of the given list type
func (w *Writer) StartListChunk(listType Tag) {
	w.open(TagLIST)
	w.w.Tag(listType)
}

// EndChunk closes the innermost open chunk, patching its size and padding
// odd payloads to an even length. It panics with ErrNoOpenChunk if only the
// RIFF chunk (or nothing) is open.
func (w *Writer) EndChunk() {
	if w.Depth() == 0 {
		panic(ErrNoOpenChunk)
	}
	w.close()
}

func (w *Writer) close() {
	n := len(w.sizeOffsets) - 1
	sizeAt, start := w.sizeOffsets[n], w.blockOffsets[n]
	w.sizeOffsets = w.sizeOffsets[:n]
	w.blockOffsets = w.blockOffsets[:n]

	end := w.w.Pos()
	size := end - start
	w.w.Seek(sizeAt, io.SeekStart)
	w.w.U32(uint32(size))
	w.w.Seek(end, io.SeekStart)
	if size%2 == 1 {
		w.w.U8(0)
	}
}

// CloseFile patches the RIFF size. Open chunks are an error.
func (w *Writer) CloseFile() error {
	if d := w.Depth(); d > 0 {
		return fmt.Errorf("%w: %d still open", ErrUnclosedChunk, d)
	}
	if len(w.sizeOffsets) == 0 {
		return fmt.Errorf("riff: CloseFile without InitFile")
	}
	w.close()
	return w.w.Err()
}

// Depth returns the number of open chunks below the RIFF chunk
func (w *Writer) Depth() int {
	return max(len(w.sizeOffsets)-1, 0)
}

// Offset returns the position relative to the innermost open payload
func (w *Writer) Offset() int64 {
	if len(w.blockOffsets) == 0 {
		return 0
	}
	return w.w.Pos() - w.blockOffsets[len(w.blockOffsets)-1]
}

// FileOffset returns the position relative to the start of the RIFF chunk
func (w *Writer) FileOffset() int64 {
	return w.w.Pos() - w.base
}

// Chunk writes one chunk whose payload is produced by fn. The chunk is
// closed even when fn fails or panics.
func (w *Writer) Chunk(tag Tag, fn func(bw *binio.Writer) error) (err error) {
	w.StartChunk(tag)
	defer w.finish(&err)
	if err := fn(w.w); err != nil {
		return fmt.Errorf("chunk %q: %w", tag.String(), err)
	}
	return nil
}

// List writes a LIST chunk whose children are produced by fn
func (w *Writer) List(listType Tag, fn func(w *Writer) error) (err error) {
	w.StartListChunk(listType)
	defer w.finish(&err)
	if err := fn(w); err != nil {
		return fmt.Errorf("list %q: %w", listType.String(), err)
	}
	return nil
}

func (w *Writer) finish(err *error) {
	w.EndChunk()
	if *err == nil {
		*err = w.w.Err()
	}
}
