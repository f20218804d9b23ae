// ABOUTME: Block-wise DSP-ADPCM encoding
// ABOUTME: Per-block contexts and merging them back into one stream context
package dspadpcm

import (
	"fmt"
)

// Block is one independently addressable segment of an encoded stream
type Block struct {
	Data        []byte
	SampleCount int
	// Context holds the history entering the block. Loop fields are set
	// only on the block containing the loop start.
	Context Context
}

// EncodeBlocks encodes samples as consecutive blocks of samplesPerBlock
// samples (the last may be shorter). History carries across block
// boundaries, so concatenating the block data yields the same bytes as a
// single Encode call. loopStart is a global sample index, negative for none.
func EncodeBlocks(samples []int16, coefs Coefficients, samplesPerBlock, loopStart int) ([]Block, error) {
	if samplesPerBlock <= 0 || samplesPerBlock%SamplesPerFrame != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBlockSize, samplesPerBlock)
	}
	if loopStart > len(samples) {
		return nil, fmt.Errorf("%w: %d > %d samples", ErrInvalidLoop, loopStart, len(samples))
	}

	var blocks []Block
	ctx := Context{Coefs: coefs}
	for start := 0; start < len(samples); start += samplesPerBlock {
		end := min(start+samplesPerBlock, len(samples))
		chunk := samples[start:end]

		frames, headers, hist := encodeFrames(chunk, &coefs, ctx.History())

		block := Block{
			Data:        frames[:SampleCountToByteCount(len(chunk))],
			SampleCount: len(chunk),
			Context:     ctx,
		}
		block.Context.PredScale = uint16(headers[0])
		if loopStart >= start && loopStart < end {
			captureLoop(&block.Context, samples, headers, loopStart, start)
		}
		blocks = append(blocks, block)

		ctx = ctx.WithHistory(hist)
	}
	return blocks, nil
}

// MergeContext builds the stream context for a set of blocks: coefficients
// and start history come from the first block, loop state from the block
// holding loopStart. The loop block counts as unset only when LoopPredScale,
// LoopYn1 and LoopYn2 are all zero; block 0's loop state is used then. A
// silent loop point still carries its frame header in LoopPredScale, so it is
// kept unless that header is zero as well.
func MergeContext(blocks []Block, loopStart, samplesPerBlock int) Context {
	if len(blocks) == 0 {
		return Context{}
	}

	merged := blocks[0].Context
	if loopStart < 0 || samplesPerBlock <= 0 {
		return merged
	}

	idx := loopStart / samplesPerBlock
	if idx >= len(blocks) {
		idx = 0
	}
	src := blocks[idx].Context
	if src.LoopPredScale == 0 && src.LoopYn1 == 0 && src.LoopYn2 == 0 {
		src = blocks[0].Context
	}

	merged.LoopPredScale = src.LoopPredScale
	merged.LoopYn1 = src.LoopYn1
	merged.LoopYn2 = src.LoopYn2
	return merged
}
