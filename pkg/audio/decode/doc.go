// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for PCM and DSP-ADPCM
// Package decode provides streaming audio decoders.
//
// Supports: PCM (8-bit and 16-bit), DSP-ADPCM
//
// All decoders implement the Decoder interface and output int16 samples.
//
// Example:
//
//	decoder, err := decode.NewDSPADPCM(format, ctx, sampleCount)
//	samples, err := decoder.Decode(frames)
package decode
