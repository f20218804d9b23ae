// ABOUTME: Loop-aware streaming of decoded audio to an Output
// ABOUTME: Wraps from loop end to loop start a fixed or unbounded number of times
package output

import (
	"context"
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
)

// DefaultChunkFrames is the number of frames handed to the output per write
const DefaultChunkFrames = 1024

// Position describes playback progress after a write
type Position struct {
	// Sample is the next frame to be played
	Sample int
	// Total is the clip length in frames
	Total int
	// Loops is the number of completed jumps back to the loop start
	Loops int
}

// Looper streams an interleaved PCM16 clip to an Output
type Looper struct {
	out      Output
	samples  []int16
	channels int
	loop     *audio.Loop
	loops    int

	// ChunkFrames is the write size in frames
	ChunkFrames int
	// OnPosition, when set, is called after every write
	OnPosition func(Position)
}

// NewLooper decodes a and prepares it for playback on out. loops is the
// number of times playback jumps back to the loop start: 0 plays the clip
// once, -1 repeats forever. Clips without a loop always play once.
func NewLooper(out Output, a *audio.Audio, loops int) (*Looper, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if len(a.Channels) == 0 {
		return nil, errors.New("no channels to play")
	}

	samples, err := a.Interleave()
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}

	return &Looper{
		out:         out,
		samples:     samples,
		channels:    len(a.Channels),
		loop:        a.Loop,
		loops:       loops,
		ChunkFrames: DefaultChunkFrames,
	}, nil
}

// Frames returns the clip length in frames
func (l *Looper) Frames() int {
	return len(l.samples) / l.channels
}

// Play writes the clip to the output until it ends or ctx is cancelled.
// The output must already be open.
func (l *Looper) Play(ctx context.Context) error {
	total := l.Frames()
	chunk := l.ChunkFrames
	if chunk <= 0 {
		chunk = DefaultChunkFrames
	}

	pos, played := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		limit := total
		looping := l.loop != nil && (l.loops < 0 || played < l.loops)
		if looping {
			limit = l.loop.End + 1
		}

		end := min(pos+chunk, limit)
		if end > pos {
			if err := l.out.Write(l.samples[pos*l.channels : end*l.channels]); err != nil {
				return fmt.Errorf("write failed: %w", err)
			}
			pos = end
		}

		if pos >= limit {
			if !looping {
				l.report(Position{Sample: pos, Total: total, Loops: played})
				return nil
			}
			pos = l.loop.Start
			played++
		}
		l.report(Position{Sample: pos, Total: total, Loops: played})
	}
}

func (l *Looper) report(p Position) {
	if l.OnPosition != nil {
		l.OnPosition(p)
	}
}
