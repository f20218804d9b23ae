// ABOUTME: Per-channel sample storage
// ABOUTME: Closed set of encodings a channel can hold
package audio

import (
	"fmt"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dspadpcm"
)

// Encoding identifies how a channel stores its samples
type Encoding int

const (
	EncodingPCM8 Encoding = iota
	EncodingPCM16
	EncodingDSPADPCM
)

func (e Encoding) String() string {
	switch e {
	case EncodingPCM8:
		return "PCM8"
	case EncodingPCM16:
		return "PCM16"
	case EncodingDSPADPCM:
		return "DSP-ADPCM"
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// Channel is one channel of samples. The set of implementations is closed:
// PCM8, PCM16 and DSPADPCM.
type Channel interface {
	Encoding() Encoding
	SampleCount() int
	// PCM16 returns the samples as signed 16-bit PCM
	PCM16() ([]int16, error)

	channel()
}

// PCM8 holds signed 8-bit samples
type PCM8 struct {
	Samples []int8
}

func (c *PCM8) Encoding() Encoding { return EncodingPCM8 }
func (c *PCM8) SampleCount() int   { return len(c.Samples) }
func (c *PCM8) channel()           {}

func (c *PCM8) PCM16() ([]int16, error) {
	out := make([]int16, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = PCM8ToPCM16(s)
	}
	return out, nil
}

// PCM16 holds signed 16-bit samples
type PCM16 struct {
	Samples []int16
}

func (c *PCM16) Encoding() Encoding      { return EncodingPCM16 }
func (c *PCM16) SampleCount() int        { return len(c.Samples) }
func (c *PCM16) PCM16() ([]int16, error) { return c.Samples, nil }
func (c *PCM16) channel()                {}

// DSPADPCM holds encoded frames and the context needed to decode them from
// the start of the stream.
type DSPADPCM struct {
	Data    []byte
	Context dspadpcm.Context
	Samples int
}

func (c *DSPADPCM) Encoding() Encoding { return EncodingDSPADPCM }
func (c *DSPADPCM) SampleCount() int   { return c.Samples }
func (c *DSPADPCM) channel()           {}

func (c *DSPADPCM) PCM16() ([]int16, error) {
	samples, _, err := dspadpcm.Decode(c.Data, c.Context, c.Samples)
	return samples, err
}
