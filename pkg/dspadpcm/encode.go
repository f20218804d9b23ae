// ABOUTME: DSP-ADPCM encoder
// ABOUTME: Per-frame coefficient and scale search plus loop history capture
package dspadpcm

import (
	"fmt"
	"math"
)

func clamp16(v int) int {
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}
	return v
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// encodeFrame quantizes count samples held in pcm[2:2+count]. pcm[0] and
// pcm[1] hold the two previous decoded samples (yn2, yn1). Every coefficient
// pair is tried and the one with the smallest squared error wins. On return
// pcm[2:2+count] holds the samples a decoder will reconstruct.
func encodeFrame(pcm *[16]int, count int, coefs *Coefficients) [BytesPerFrame]byte {
	var inSamples [8][16]int
	var outSamples [8][SamplesPerFrame]int
	var scale [8]int
	var distAccum [8]float64

	for i := 0; i < 8; i++ {
		coef1 := int(coefs[i][0])
		coef2 := int(coefs[i][1])

		inSamples[i][0] = pcm[0]
		inSamples[i][1] = pcm[1]

		// Largest prediction error against the unquantized input picks the starting scale.
		distance := 0
		for s := 0; s < count; s++ {
			predicted := (pcm[s]*coef2 + pcm[s+1]*coef1) / 2048
			inSamples[i][s+2] = predicted
			residual := clamp16(pcm[s+2] - predicted)
			if iabs(residual) > iabs(distance) {
				distance = residual
			}
		}

		for scale[i] = 0; scale[i] <= 12 && (distance > 7 || distance < -8); scale[i], distance = scale[i]+1, distance/2 {
		}
		if scale[i] <= 1 {
			scale[i] = -1
		} else {
			scale[i] -= 2
		}

		for {
			scale[i]++
			distAccum[i] = 0
			overshoot := 0

			for s := 0; s < count; s++ {
				predicted := inSamples[i][s]*coef2 + inSamples[i][s+1]*coef1
				delta := pcm[s+2]<<11 - predicted

				var q int
				if delta > 0 {
					q = int(float64(delta)/float64(int(1)<<scale[i])/2048 + 0.4999999)
				} else {
					q = int(float64(delta)/float64(int(1)<<scale[i])/2048 - 0.4999999)
				}

				if q < -8 {
					if overshoot < -8-q {
						overshoot = -8 - q
					}
					q = -8
				} else if q > 7 {
					if overshoot < q-7 {
						overshoot = q - 7
					}
					q = 7
				}
				outSamples[i][s] = q

				decoded := clamp16((predicted + (q*(1<<scale[i]))<<11 + 1024) >> 11)
				inSamples[i][s+2] = decoded

				diff := float64(pcm[s+2] - decoded)
				distAccum[i] += diff * diff
			}

			for x := overshoot + 8; x > 256; x >>= 1 {
				scale[i]++
				if scale[i] >= 12 {
					scale[i] = 11
				}
			}

			if scale[i] >= 12 || overshoot <= 1 {
				break
			}
		}
	}

	best := 0
	minDist := math.MaxFloat64
	for i := 0; i < 8; i++ {
		if distAccum[i] < minDist {
			minDist = distAccum[i]
			best = i
		}
	}

	for s := 0; s < count; s++ {
		pcm[s+2] = inSamples[best][s+2]
	}

	var frame [BytesPerFrame]byte
	frame[0] = byte(best<<4 | scale[best]&0xF)
	for s := count; s < SamplesPerFrame; s++ {
		outSamples[best][s] = 0
	}
	for y := 0; y < 7; y++ {
		frame[y+1] = byte(outSamples[best][y*2]<<4 | outSamples[best][y*2+1]&0xF)
	}
	return frame
}

// encodeFrames encodes samples frame by frame starting from hist and returns
// the packed frames (whole frames, zero padded), the frame headers and the
// history after the last sample.
func encodeFrames(samples []int16, coefs *Coefficients, hist History) ([]byte, []byte, History) {
	frames := FrameCount(len(samples))
	out := make([]byte, frames*BytesPerFrame)
	headers := make([]byte, frames)

	var pcm [16]int
	pcm[0] = int(hist.Yn2)
	pcm[1] = int(hist.Yn1)

	for f := 0; f < frames; f++ {
		start := f * SamplesPerFrame
		count := min(SamplesPerFrame, len(samples)-start)
		for s := 0; s < SamplesPerFrame; s++ {
			if s < count {
				pcm[s+2] = int(samples[start+s])
			} else {
				pcm[s+2] = 0
			}
		}

		frame := encodeFrame(&pcm, count, coefs)
		copy(out[f*BytesPerFrame:], frame[:])
		headers[f] = frame[0]

		pcm[0], pcm[1] = pcm[count], pcm[count+1]
	}

	return out, headers, History{Yn1: int16(pcm[1]), Yn2: int16(pcm[0])}
}

// Encode compresses samples with the coefficients in ctx, starting from the
// history in ctx.Yn1/Yn2 (zero for a fresh stream). The result is exactly
// SampleCountToByteCount(len(samples)) bytes.
//
// The returned context keeps the starting history a decoder needs, records
// the first frame header as PredScale and, when loopStart >= 0, captures the
// loop-point state: LoopYn1 = samples[loopStart-1], LoopYn2 =
// samples[loopStart-2] and LoopPredScale from the frame holding loopStart.
// A negative loopStart means the stream does not loop.
func Encode(samples []int16, ctx Context, loopStart int) ([]byte, Context, error) {
	if loopStart > len(samples) {
		return nil, ctx, fmt.Errorf("%w: %d > %d samples", ErrInvalidLoop, loopStart, len(samples))
	}

	frames, headers, _ := encodeFrames(samples, &ctx.Coefs, ctx.History())

	out := ctx
	out.Gain = 0
	out.PredScale = 0
	if len(headers) > 0 {
		out.PredScale = uint16(headers[0])
	}
	out.LoopPredScale, out.LoopYn1, out.LoopYn2 = 0, 0, 0
	if loopStart >= 0 {
		captureLoop(&out, samples, headers, loopStart, 0)
	}

	return frames[:SampleCountToByteCount(len(samples))], out, nil
}

// captureLoop stores the loop-point history for a loop starting at the
// absolute sample loopStart. headers belong to frames starting at firstSample.
func captureLoop(ctx *Context, samples []int16, headers []byte, loopStart, firstSample int) {
	if loopStart > 0 {
		ctx.LoopYn1 = samples[loopStart-1]
	}
	if loopStart > 1 {
		ctx.LoopYn2 = samples[loopStart-2]
	}
	if frame := (loopStart - firstSample) / SamplesPerFrame; frame >= 0 && frame < len(headers) {
		ctx.LoopPredScale = uint16(headers[frame])
	}
}

// EncodeAuto derives coefficients from samples with the default settings and
// encodes them. A coefficient overflow is not fatal: the clamped table is used
// and the returned error wraps ErrCoefficientOverflow alongside valid output.
func EncodeAuto(samples []int16, loopStart int) ([]byte, Context, error) {
	coefs, coefErr := CalculateCoefficients(samples, DefaultCoefficientSettings())
	data, ctx, err := Encode(samples, Context{Coefs: coefs}, loopStart)
	if err != nil {
		return nil, ctx, err
	}
	return data, ctx, coefErr
}
