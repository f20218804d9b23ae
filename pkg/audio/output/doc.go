// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface, oto implementation and loop-aware streaming
// Package output provides audio playback interfaces.
//
// Oto is the only device backend. Looper streams a decoded clip to any
// Output, jumping from the loop end back to the loop start.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(32000, 2)
//	looper, err := output.NewLooper(out, clip, -1)
//	err = looper.Play(ctx)
package output
