// ABOUTME: DSP-ADPCM frame geometry conversions
// ABOUTME: Sample, nibble and byte counts for 8-byte / 14-sample frames
package dspadpcm

const (
	// BytesPerFrame is the encoded size of one frame including its header byte
	BytesPerFrame = 8
	// SamplesPerFrame is the number of decoded samples in a full frame
	SamplesPerFrame = 14
	// NibblesPerFrame counts the header byte as two nibbles
	NibblesPerFrame = 16
)

// NibbleCountToSampleCount converts a nibble count (header nibbles included) to samples
func NibbleCountToSampleCount(nibbles int) int {
	frames := nibbles / NibblesPerFrame
	extra := nibbles % NibblesPerFrame
	extraSamples := 0
	if extra >= 2 {
		extraSamples = extra - 2
	}
	return SamplesPerFrame*frames + extraSamples
}

// SampleCountToNibbleCount converts a sample count to nibbles (header nibbles included)
func SampleCountToNibbleCount(samples int) int {
	frames := samples / SamplesPerFrame
	extra := samples % SamplesPerFrame
	extraNibbles := 0
	if extra != 0 {
		extraNibbles = extra + 2
	}
	return NibblesPerFrame*frames + extraNibbles
}

// NibbleToSample maps a nibble address to the sample it encodes.
// Header nibble addresses map to the first sample of their frame.
func NibbleToSample(nibble int) int {
	frames := nibble / NibblesPerFrame
	extra := nibble % NibblesPerFrame
	if extra < 2 {
		extra = 2
	}
	return SamplesPerFrame*frames + extra - 2
}

// SampleToNibble maps a sample index to its nibble address
func SampleToNibble(sample int) int {
	frames := sample / SamplesPerFrame
	extra := sample % SamplesPerFrame
	return NibblesPerFrame*frames + extra + 2
}

// ByteCountToSampleCount returns the number of samples held in a byte count
func ByteCountToSampleCount(bytes int) int {
	return NibbleCountToSampleCount(bytes * 2)
}

// SampleCountToByteCount returns the bytes needed for a sample count, rounded up
func SampleCountToByteCount(samples int) int {
	return (SampleCountToNibbleCount(samples) + 1) / 2
}

// FrameCount returns the number of frames needed for a sample count
func FrameCount(samples int) int {
	return (samples + SamplesPerFrame - 1) / SamplesPerFrame
}

// FrameCountToByteCount returns the encoded size of whole frames
func FrameCountToByteCount(frames int) int {
	return frames * BytesPerFrame
}

// PaddedByteCount returns the bytes for a sample count padded to whole frames
func PaddedByteCount(samples int) int {
	return FrameCountToByteCount(FrameCount(samples))
}
