// ABOUTME: RIFF chunk tree types
// ABOUTME: Tags, sized chunks and list chunks with ordered children
package riff

import "fmt"

// Tag is a four-character chunk identifier
type Tag [4]byte

var (
	TagRIFF = NewTag("RIFF")
	TagLIST = NewTag("LIST")
)

// NewTag builds a tag from s, space padded or truncated to four bytes
func NewTag(s string) Tag {
	t := Tag{' ', ' ', ' ', ' '}
	copy(t[:], s)
	return t
}

func (t Tag) String() string {
	return string(t[:])
}

// Node is an entry in the chunk tree
type Node interface {
	Header() Chunk
}

// Chunk describes one chunk: its tag, the absolute offset of its payload
// and the payload length.
type Chunk struct {
	Tag      Tag
	Position int64
	Size     uint32
}

// Header returns the chunk itself
func (c Chunk) Header() Chunk {
	return c
}

// End returns the absolute offset just past the payload
func (c Chunk) End() int64 {
	return c.Position + int64(c.Size)
}

func (c Chunk) String() string {
	return fmt.Sprintf("%q @%d (%d bytes)", c.Tag.String(), c.Position, c.Size)
}

// ListChunk is a LIST chunk. Its Position and Size cover the list type tag
// and the children.
type ListChunk struct {
	Chunk
	ListType Tag
	Chunks   []Node
}

// Header returns the LIST chunk header
func (l *ListChunk) Header() Chunk {
	return l.Chunk
}

// Find returns the first direct child with the given tag
func (l *ListChunk) Find(tag Tag) (Chunk, bool) {
	return find(l.Chunks, tag)
}

func find(nodes []Node, tag Tag) (Chunk, bool) {
	for _, n := range nodes {
		if h := n.Header(); h.Tag == tag {
			return h, true
		}
	}
	return Chunk{}, false
}

// Walk visits nodes depth first, passing each node's nesting depth
func Walk(nodes []Node, fn func(n Node, depth int)) {
	walk(nodes, 0, fn)
}

func walk(nodes []Node, depth int, fn func(n Node, depth int)) {
	for _, n := range nodes {
		fn(n, depth)
		if l, ok := n.(*ListChunk); ok {
			walk(l.Chunks, depth+1, fn)
		}
	}
}
