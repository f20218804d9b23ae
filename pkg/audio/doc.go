// ABOUTME: Audio fundamentals package
// ABOUTME: Format, multi-channel Audio and the closed set of channel encodings
// Package audio provides the in-memory representation shared by the
// container and codec packages.
//
// An Audio value holds a sample rate, an optional loop and one Channel per
// output channel. A Channel is exactly one of:
//   - *PCM8: signed 8-bit samples
//   - *PCM16: signed 16-bit samples
//   - *DSPADPCM: encoded frames plus their dspadpcm.Context
//
// Example:
//
//	a := audio.FromInterleaved(frames, 2, 32000)
//	a.Loop = &audio.Loop{Start: 0, End: a.SampleCount() - 1}
//	enc, err := a.ToDSPADPCM(dspadpcm.DefaultCoefficientSettings())
package audio
