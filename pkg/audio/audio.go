// ABOUTME: Multi-channel audio container
// ABOUTME: Sample rate, loop points and channels with encoding conversions
package audio

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dspadpcm"
)

// ErrChannelMismatch is returned when channels disagree on length or encoding.
var ErrChannelMismatch = errors.New("audio: channels differ in length or encoding")

// Loop marks a looping region. Both ends are inclusive sample indices.
type Loop struct {
	Start int
	End   int
}

// Audio is a set of equally long channels sharing a sample rate
type Audio struct {
	SampleRate int
	Loop       *Loop
	Channels   []Channel
}

// SampleCount returns the per-channel sample count
func (a *Audio) SampleCount() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return a.Channels[0].SampleCount()
}

// Encoding returns the encoding shared by all channels
func (a *Audio) Encoding() Encoding {
	if len(a.Channels) == 0 {
		return EncodingPCM16
	}
	return a.Channels[0].Encoding()
}

// Format describes the audio as a stream format
func (a *Audio) Format() Format {
	f := Format{Codec: CodecPCM, SampleRate: a.SampleRate, Channels: len(a.Channels), BitDepth: 16}
	switch a.Encoding() {
	case EncodingPCM8:
		f.BitDepth = 8
	case EncodingDSPADPCM:
		f.Codec = CodecDSPADPCM
		f.BitDepth = 4
	}
	return f
}

// Validate checks that every channel has the same encoding and length and
// that the loop lies inside the samples.
func (a *Audio) Validate() error {
	if len(a.Channels) == 0 {
		return fmt.Errorf("audio: no channels")
	}
	for i, c := range a.Channels[1:] {
		if c.Encoding() != a.Encoding() || c.SampleCount() != a.SampleCount() {
			return fmt.Errorf("%w: channel %d is %s with %d samples", ErrChannelMismatch,
				i+1, c.Encoding(), c.SampleCount())
		}
	}
	if l := a.Loop; l != nil {
		if l.Start < 0 || l.Start > l.End || l.End >= a.SampleCount() {
			return fmt.Errorf("%w: loop %d-%d with %d samples", dspadpcm.ErrInvalidLoop,
				l.Start, l.End, a.SampleCount())
		}
	}
	return nil
}

// ToPCM16 returns a copy with every channel decoded to 16-bit PCM
func (a *Audio) ToPCM16() (*Audio, error) {
	out := &Audio{SampleRate: a.SampleRate, Loop: a.Loop}
	for i, c := range a.Channels {
		samples, err := c.PCM16()
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		out.Channels = append(out.Channels, &PCM16{Samples: samples})
	}
	return out, nil
}

// ToDSPADPCM returns a copy with every channel encoded as DSP-ADPCM using
// coefficients derived per channel. Coefficient overflow is tolerated: the
// clamped table is used.
func (a *Audio) ToDSPADPCM(settings dspadpcm.CoefficientSettings) (*Audio, error) {
	loopStart := -1
	if a.Loop != nil {
		loopStart = a.Loop.Start
	}

	out := &Audio{SampleRate: a.SampleRate, Loop: a.Loop}
	for i, c := range a.Channels {
		if enc, ok := c.(*DSPADPCM); ok {
			out.Channels = append(out.Channels, enc)
			continue
		}

		samples, err := c.PCM16()
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		coefs, err := dspadpcm.CalculateCoefficients(samples, settings)
		if err != nil && !errors.Is(err, dspadpcm.ErrCoefficientOverflow) {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		data, ctx, err := dspadpcm.Encode(samples, dspadpcm.Context{Coefs: coefs}, loopStart)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		out.Channels = append(out.Channels, &DSPADPCM{Data: data, Context: ctx, Samples: len(samples)})
	}
	return out, nil
}

// Interleave decodes every channel and returns frames of one sample per channel
func (a *Audio) Interleave() ([]int16, error) {
	pcm, err := a.ToPCM16()
	if err != nil {
		return nil, err
	}
	n := a.SampleCount()
	chans := len(pcm.Channels)
	out := make([]int16, n*chans)
	for ch, c := range pcm.Channels {
		samples := c.(*PCM16).Samples
		for i := 0; i < n && i < len(samples); i++ {
			out[i*chans+ch] = samples[i]
		}
	}
	return out, nil
}

// FromInterleaved splits interleaved 16-bit frames into PCM16 channels
func FromInterleaved(samples []int16, channels, sampleRate int) *Audio {
	a := &Audio{SampleRate: sampleRate}
	if channels <= 0 {
		return a
	}
	n := len(samples) / channels
	for ch := 0; ch < channels; ch++ {
		out := make([]int16, n)
		for i := range out {
			out[i] = samples[i*channels+ch]
		}
		a.Channels = append(a.Channels, &PCM16{Samples: out})
	}
	return a
}
