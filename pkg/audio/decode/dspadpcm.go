// ABOUTME: DSP-ADPCM streaming decoder
// ABOUTME: Decodes successive frame runs of one channel, carrying history between calls
package decode

import (
	"fmt"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dspadpcm"
)

// DSPADPCMDecoder decodes one DSP-ADPCM channel incrementally
type DSPADPCMDecoder struct {
	ctx       dspadpcm.Context
	remaining int
}

// NewDSPADPCM creates a decoder starting from ctx. sampleCount bounds the
// total output so trailing padding nibbles are dropped; 0 or less means
// every nibble is decoded.
func NewDSPADPCM(format audio.Format, ctx dspadpcm.Context, sampleCount int) (Decoder, error) {
	if format.Codec != audio.CodecDSPADPCM {
		return nil, fmt.Errorf("invalid codec for DSP-ADPCM decoder: %s", format.Codec)
	}
	if format.Channels != 1 {
		return nil, fmt.Errorf("unsupported channel count: %d (DSP-ADPCM streams are mono)", format.Channels)
	}
	if sampleCount <= 0 {
		sampleCount = -1
	}
	return &DSPADPCMDecoder{ctx: ctx, remaining: sampleCount}, nil
}

// Decode expands data, which must start on a frame boundary. Every call but
// the last must hold whole frames.
func (d *DSPADPCMDecoder) Decode(data []byte) ([]int16, error) {
	n := dspadpcm.ByteCountToSampleCount(len(data))
	if d.remaining >= 0 {
		n = min(n, d.remaining)
	}

	samples, next, err := dspadpcm.Decode(data, d.ctx, n)
	if err != nil {
		return nil, err
	}
	d.ctx = next
	if d.remaining >= 0 {
		d.remaining -= n
	}
	return samples, nil
}

// Context returns the predictor state after the last decoded sample
func (d *DSPADPCMDecoder) Context() dspadpcm.Context {
	return d.ctx
}

// Close releases resources
func (d *DSPADPCMDecoder) Close() error {
	return nil
}
