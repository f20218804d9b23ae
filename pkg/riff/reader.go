// ABOUTME: RIFF parser
// ABOUTME: Builds the chunk tree and gives positioned access to payloads
package riff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/binio"
)

const chunkHeaderSize = 8

// File is a parsed RIFF container. The chunk tree is fixed after Parse.
type File struct {
	Form Tag
	// Size is the declared RIFF size; parsing follows the stream length instead
	Size   uint32
	Chunks []Node

	r *binio.Reader
}

// Parse reads the container header and every chunk up to the end of r.
// A top-level chunk declaring size 0 is taken to extend to the end of the
// stream. LIST chunks are parsed recursively within their declared size.
func Parse(r io.ReadSeeker) (*File, error) {
	br := binio.NewReader(r, binary.LittleEndian)

	magic, err := br.Tag()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRIFF, err)
	}
	if Tag(magic) != TagRIFF {
		return nil, fmt.Errorf("%w: found %q", ErrNotRIFF, string(magic[:]))
	}

	f := &File{r: br}
	if f.Size, err = br.U32(); err != nil {
		return nil, fmt.Errorf("reading RIFF size: %w", err)
	}
	form, err := br.Tag()
	if err != nil {
		return nil, fmt.Errorf("reading form type: %w", err)
	}
	f.Form = form

	end, err := br.Len()
	if err != nil {
		return nil, err
	}
	if f.Chunks, err = parseChunks(br, end, true); err != nil {
		return nil, err
	}
	return f, nil
}

func parseChunks(br *binio.Reader, end int64, topLevel bool) ([]Node, error) {
	var nodes []Node
	for {
		pos, err := br.Pos()
		if err != nil {
			return nil, err
		}
		// Trailing bytes too short for a header are ignored.
		if end-pos < chunkHeaderSize {
			return nodes, nil
		}

		tag, err := br.Tag()
		if err != nil {
			return nil, err
		}
		size, err := br.U32()
		if err != nil {
			return nil, err
		}

		c := Chunk{Tag: tag, Position: pos + chunkHeaderSize, Size: size}
		if size == 0 && topLevel {
			c.Size = uint32(end - c.Position)
		}
		if c.End() > end {
			return nil, fmt.Errorf("%w: %s, container ends at %d", ErrChunkBounds, c, end)
		}

		if c.Tag == TagLIST && c.Size >= 4 {
			list := &ListChunk{Chunk: c}
			listType, err := br.Tag()
			if err != nil {
				return nil, err
			}
			list.ListType = listType
			if list.Chunks, err = parseChunks(br, c.End(), false); err != nil {
				return nil, fmt.Errorf("LIST %q: %w", list.ListType.String(), err)
			}
			nodes = append(nodes, list)
		} else {
			nodes = append(nodes, c)
		}

		next := c.End()
		if c.Size%2 == 1 && next < end {
			next++
		}
		if _, err := br.Seek(next, io.SeekStart); err != nil {
			return nil, err
		}
	}
}

// Find returns the first top-level chunk with the given tag. Later
// duplicates are not reachable through Find.
func (f *File) Find(tag Tag) (Chunk, bool) {
	return find(f.Chunks, tag)
}

// FindList returns the first top-level LIST chunk of the given list type
func (f *File) FindList(listType Tag) (*ListChunk, bool) {
	for _, n := range f.Chunks {
		if l, ok := n.(*ListChunk); ok && l.ListType == listType {
			return l, true
		}
	}
	return nil, false
}

// Open positions the underlying stream at the start of c's payload and
// returns a little-endian cursor over it.
func (f *File) Open(c Chunk) (*binio.Reader, error) {
	if _, err := f.r.Seek(c.Position, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to %s: %w", c, err)
	}
	return f.r, nil
}

// ReadAll returns the payload of c
func (f *File) ReadAll(c Chunk) ([]byte, error) {
	r, err := f.Open(c)
	if err != nil {
		return nil, err
	}
	data, err := r.Bytes(int(c.Size))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c, err)
	}
	return data, nil
}
