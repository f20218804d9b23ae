// ABOUTME: RIFF container package
// ABOUTME: Chunk tree model, parser and backpatching writer
// Package riff reads and writes RIFF containers.
//
// Parse walks a stream once and builds an immutable tree of Chunk and
// ListChunk nodes recording each payload's absolute offset and size. File
// then gives positioned access to payloads without reading them eagerly.
//
// Writer emits chunks whose sizes are unknown up front. StartChunk writes a
// placeholder size which EndChunk patches once the payload is complete; the
// scoped Chunk and List helpers pair the two automatically:
//
//	w := riff.NewWriter(f)
//	w.InitFile(riff.NewTag("WAVE"))
//	err := w.Chunk(riff.NewTag("data"), func(bw *binio.Writer) error {
//		bw.Bytes(pcm)
//		return nil
//	})
//	err = w.CloseFile()
package riff

import "errors"

var (
	// ErrNotRIFF is returned when a stream does not start with a RIFF tag.
	ErrNotRIFF = errors.New("riff: not a RIFF stream")
	// ErrChunkBounds is returned when a chunk extends past its container.
	ErrChunkBounds = errors.New("riff: chunk extends past end of container")
	// ErrUnclosedChunk is returned by CloseFile while chunks are still open.
	ErrUnclosedChunk = errors.New("riff: unclosed chunk")
	// ErrNoOpenChunk is the panic value of EndChunk without a matching start.
	ErrNoOpenChunk = errors.New("riff: no open chunk")
)
