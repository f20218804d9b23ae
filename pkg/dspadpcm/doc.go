// ABOUTME: GameCube/Wii DSP-ADPCM codec package
// ABOUTME: Frame math, predictor context, decoder, encoder and coefficient search
// Package dspadpcm implements the 4-bit DSP-ADPCM codec used by GameCube and
// Wii audio.
//
// A frame is 8 bytes: one header byte (high nibble selects one of eight
// coefficient pairs, low nibble is the scale exponent) followed by 7 bytes
// holding 14 signed 4-bit residuals, high nibble first. Length and offset
// arithmetic goes through the conversions in math.go so the read and write
// paths agree.
//
// Predictor state is carried in a Context value. Decode returns the advanced
// context instead of mutating its argument, so a stream is resumed by passing
// the returned context to the next call.
//
// Example:
//
//	coefs, err := dspadpcm.CalculateCoefficients(pcm, dspadpcm.DefaultCoefficientSettings())
//	data, ctx, err := dspadpcm.Encode(pcm, dspadpcm.Context{Coefs: coefs}, loopStart)
//	samples, _, err := dspadpcm.Decode(data, ctx, len(pcm))
package dspadpcm

import "errors"

var (
	// ErrTruncated is returned when encoded data is too short for the requested samples.
	ErrTruncated = errors.New("dspadpcm: truncated frame data")
	// ErrInvalidLoop is returned for a loop start outside the sample range.
	ErrInvalidLoop = errors.New("dspadpcm: loop start out of range")
	// ErrCoefficientOverflow is returned when derived coefficients had to be clamped to 16 bits.
	ErrCoefficientOverflow = errors.New("dspadpcm: coefficient overflow")
	// ErrBlockSize is returned when a block size is not a positive whole number of frames.
	ErrBlockSize = errors.New("dspadpcm: block size must be a positive multiple of 14 samples")
)
