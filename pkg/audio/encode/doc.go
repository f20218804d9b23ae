// ABOUTME: Audio encoder package for encoding PCM to various formats
// ABOUTME: Provides the Encoder interface and the PCM implementation
// Package encode provides streaming audio encoders.
//
// Supports: PCM (8-bit and 16-bit)
//
// DSP-ADPCM is encoded a whole channel at a time through
// audio.Audio.ToDSPADPCM, since coefficients are derived from every sample.
//
// Example:
//
//	encoder, err := encode.NewPCM(format)
//	data, err := encoder.Encode(samples)
package encode
