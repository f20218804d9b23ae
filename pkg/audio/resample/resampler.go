// ABOUTME: Linear resampler for 16-bit PCM
// ABOUTME: Streaming interleaved conversion plus whole-buffer helpers with loop scaling
package resample

import (
	"fmt"
	"math"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate
func (r *Resampler) Resample(input []int16, output []int16) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0
	for outIdx < outputFrames {
		inputIdx := int(r.position)

		// The last input frame has no successor to interpolate towards
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := r.position - float64(inputIdx)
		for ch := 0; ch < r.channels; ch++ {
			s1 := input[inputIdx*r.channels+ch]
			s2 := input[(inputIdx+1)*r.channels+ch]
			output[outIdx*r.channels+ch] = lerp(s1, s2, frac)
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional part for the next chunk
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// InputSamplesNeeded calculates how many input samples are needed to produce output samples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames) * r.ratio)
	return inputFrames * r.channels
}

func lerp(a, b int16, frac float64) int16 {
	v := float64(a)*(1-frac) + float64(b)*frac
	return int16(math.Round(v))
}

// ScaleIndex maps a sample index at inputRate to the same instant at outputRate
func ScaleIndex(index, inputRate, outputRate int) int {
	return int(int64(index) * int64(outputRate) / int64(inputRate))
}

// Channel resamples one complete mono channel. The output holds
// ScaleIndex(len(samples), inputRate, outputRate) samples; positions past the
// last input sample repeat it.
func Channel(samples []int16, inputRate, outputRate int) []int16 {
	if len(samples) == 0 || inputRate == outputRate {
		return append([]int16(nil), samples...)
	}

	n := ScaleIndex(len(samples), inputRate, outputRate)
	out := make([]int16, n)
	written := New(inputRate, outputRate, 1).Resample(samples, out)

	last := samples[len(samples)-1]
	for i := written; i < n; i++ {
		out[i] = last
	}
	return out
}

// Audio converts every channel of a to rate and scales the loop points to
// match. Encoded channels are decoded first, so the result is always PCM16.
func Audio(a *audio.Audio, rate int) (*audio.Audio, error) {
	if rate <= 0 || a.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d -> %d", a.SampleRate, rate)
	}

	pcm, err := a.ToPCM16()
	if err != nil {
		return nil, err
	}
	if a.SampleRate == rate {
		return pcm, nil
	}

	out := &audio.Audio{SampleRate: rate}
	for _, ch := range pcm.Channels {
		samples := ch.(*audio.PCM16).Samples
		out.Channels = append(out.Channels, &audio.PCM16{Samples: Channel(samples, a.SampleRate, rate)})
	}

	if count := out.SampleCount(); a.Loop != nil && count > 0 {
		start := ScaleIndex(a.Loop.Start, a.SampleRate, rate)
		end := ScaleIndex(a.Loop.End+1, a.SampleRate, rate) - 1
		end = min(max(end, start), count-1)
		start = min(start, end)
		out.Loop = &audio.Loop{Start: start, End: end}
	}
	return out, nil
}
