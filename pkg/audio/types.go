// ABOUTME: Audio type definitions
// ABOUTME: Stream format description and sample width conversions
package audio

// Codec names used in Format.Codec
const (
	// CodecPCM is 8-bit unsigned or 16-bit little-endian integer PCM
	CodecPCM = "pcm"
	// CodecDSPADPCM is mono 4-bit DSP-ADPCM in 8-byte frames
	CodecDSPADPCM = "dspadpcm"
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// SampleToInt16 reduces a sample of the given bit depth to 16 bits
func SampleToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	case bitDepth < 16:
		return int16(sample << (16 - bitDepth))
	}
	return int16(sample)
}

// SampleFromInt16 widens a 16-bit sample to the given bit depth
func SampleFromInt16(sample int16, bitDepth int) int32 {
	switch {
	case bitDepth > 16:
		return int32(sample) << (bitDepth - 16)
	case bitDepth < 16:
		return int32(sample) >> (16 - bitDepth)
	}
	return int32(sample)
}

// PCM8ToPCM16 widens a signed 8-bit sample
func PCM8ToPCM16(sample int8) int16 {
	return int16(sample) << 8
}

// PCM16ToPCM8 keeps the high byte of a 16-bit sample
func PCM16ToPCM8(sample int16) int8 {
	return int8(sample >> 8)
}
