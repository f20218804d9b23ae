// ABOUTME: Whole-audio decoding on top of the streaming decoders
// ABOUTME: Expands DSP-ADPCM channels a run of frames at a time into PCM16
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dspadpcm"
)

// DefaultChunkFrames is the number of DSP-ADPCM frames handed to the decoder per call
const DefaultChunkFrames = 1024

// ToPCM16 returns a copy of a with every channel as PCM16. DSP-ADPCM channels
// are fed through a DSPADPCMDecoder chunkFrames frames at a time; other
// encodings are widened directly.
func ToPCM16(a *audio.Audio, chunkFrames int) (*audio.Audio, error) {
	if chunkFrames <= 0 {
		chunkFrames = DefaultChunkFrames
	}

	out := &audio.Audio{SampleRate: a.SampleRate, Loop: a.Loop}
	for i, c := range a.Channels {
		var samples []int16
		var err error
		if enc, ok := c.(*audio.DSPADPCM); ok {
			samples, err = decodeChannel(enc, a.SampleRate, chunkFrames)
		} else {
			samples, err = c.PCM16()
		}
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		out.Channels = append(out.Channels, &audio.PCM16{Samples: samples})
	}
	return out, nil
}

func decodeChannel(c *audio.DSPADPCM, rate, chunkFrames int) ([]int16, error) {
	if c.Samples == 0 {
		return []int16{}, nil
	}
	format := audio.Format{Codec: audio.CodecDSPADPCM, SampleRate: rate, Channels: 1, BitDepth: 4}
	dec, err := NewDSPADPCM(format, c.Context, c.Samples)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	step := dspadpcm.FrameCountToByteCount(chunkFrames)
	samples := make([]int16, 0, c.Samples)
	for off := 0; off < len(c.Data) && len(samples) < c.Samples; off += step {
		part, err := dec.Decode(c.Data[off:min(off+step, len(c.Data))])
		if err != nil {
			return nil, err
		}
		samples = append(samples, part...)
	}
	if len(samples) < c.Samples {
		return nil, fmt.Errorf("%w: %d of %d samples", dspadpcm.ErrTruncated, len(samples), c.Samples)
	}
	return samples, nil
}
