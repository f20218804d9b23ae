// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 8-bit unsigned and 16-bit little-endian PCM to int16 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
)

// PCMDecoder decodes PCM audio
type PCMDecoder struct {
	bitDepth int
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != audio.CodecPCM {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}

	if format.BitDepth != 8 && format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 8, 16)", format.BitDepth)
	}

	return &PCMDecoder{
		bitDepth: format.BitDepth,
	}, nil
}

// Decode converts PCM bytes to int16 samples
func (d *PCMDecoder) Decode(data []byte) ([]int16, error) {
	if d.bitDepth == 8 {
		// 8-bit PCM is unsigned with a 0x80 midpoint
		samples := make([]int16, len(data))
		for i, b := range data {
			samples[i] = audio.PCM8ToPCM16(int8(b ^ 0x80))
		}
		return samples, nil
	}

	numSamples := len(data) / 2
	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples, nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
