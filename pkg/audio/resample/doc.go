// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts 16-bit audio between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling. Resampler works on
// interleaved streams chunk by chunk; Audio converts a whole clip and
// moves its loop points along with it.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	outputSize := r.Resample(inputSamples, outputSamples)
//
//	clip, err := resample.Audio(a, 32000)
package resample
