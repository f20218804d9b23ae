// ABOUTME: DSP-ADPCM decoder
// ABOUTME: Expands packed nibble frames into PCM16 using the context's history
package dspadpcm

import (
	"fmt"
)

// Decoded samples are clamped to [ClampMin, ClampMax]. The lower bound is
// -32678, not -32768, to stay bit-exact with existing decoder output.
const (
	ClampMin = -32678
	ClampMax = 32767
)

var nibbleToSigned = [16]int{0, 1, 2, 3, 4, 5, 6, 7, -8, -7, -6, -5, -4, -3, -2, -1}

func clampDecoded(v int) int16 {
	if v < ClampMin {
		return ClampMin
	}
	if v > ClampMax {
		return ClampMax
	}
	return int16(v)
}

// Decode expands sampleCount samples from src starting at the beginning of a
// frame. ctx supplies the coefficients and incoming history; the returned
// context carries the history after the last decoded sample so a following
// call can continue the stream. ctx itself is not modified.
func Decode(src []byte, ctx Context, sampleCount int) ([]int16, Context, error) {
	if sampleCount < 0 {
		return nil, ctx, fmt.Errorf("dspadpcm: negative sample count %d", sampleCount)
	}

	need := SampleCountToByteCount(sampleCount)
	if len(src) < need {
		return nil, ctx, fmt.Errorf("%w: %d samples need %d bytes, have %d",
			ErrTruncated, sampleCount, need, len(src))
	}

	out := make([]int16, sampleCount)
	hist1 := int(ctx.Yn1)
	hist2 := int(ctx.Yn2)
	predScale := ctx.PredScale

	pos := 0
	produced := 0
	for produced < sampleCount {
		header := src[pos]
		pos++
		predScale = uint16(header)

		scale := 1 << (header & 0xF)
		pair := ctx.Coefs[(header>>4)&0x7]
		coef1 := int(pair[0])
		coef2 := int(pair[1])

		for b := 0; b < 7 && produced < sampleCount; b++ {
			packed := src[pos]
			pos++

			for _, nibble := range [2]byte{packed >> 4, packed & 0xF} {
				if produced == sampleCount {
					break
				}
				v := ((nibbleToSigned[nibble]*scale)<<11 + 1024 + coef1*hist1 + coef2*hist2) >> 11
				sample := clampDecoded(v)

				hist2 = hist1
				hist1 = int(sample)
				out[produced] = sample
				produced++
			}
		}
	}

	next := ctx
	next.Yn1 = int16(hist1)
	next.Yn2 = int16(hist2)
	next.PredScale = predScale
	return out, next, nil
}

// DecodeFrom decodes sampleCount samples beginning at startSample, which must
// be frame aligned. history is the predictor state just before startSample,
// for example ctx.LoopHistory() when resuming at a loop point.
func DecodeFrom(src []byte, ctx Context, history History, startSample, sampleCount int) ([]int16, Context, error) {
	if startSample < 0 || startSample%SamplesPerFrame != 0 {
		return nil, ctx, fmt.Errorf("dspadpcm: start sample %d is not frame aligned", startSample)
	}
	offset := SampleCountToByteCount(startSample)
	if offset > len(src) {
		return nil, ctx, fmt.Errorf("%w: start sample %d beyond %d bytes", ErrTruncated, startSample, len(src))
	}
	return Decode(src[offset:], ctx.WithHistory(history), sampleCount)
}
