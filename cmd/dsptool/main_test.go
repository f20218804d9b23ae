// ABOUTME: Tests for dsptool subcommands
// ABOUTME: Runs encode, decode and info against temporary files
package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dsp"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dspadpcm"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/wave"
)

func writeTestWAV(t *testing.T, dir string, samples int, loop *audio.Loop) string {
	t.Helper()

	pcm := make([]int16, samples)
	for i := range pcm {
		pcm[i] = int16((i%64 - 32) * 500)
	}
	a := &audio.Audio{SampleRate: 22050, Loop: loop, Channels: []audio.Channel{&audio.PCM16{Samples: pcm}}}
	w, err := wave.FromAudio(a, 16)
	if err != nil {
		t.Fatalf("FromAudio failed: %v", err)
	}

	path := filepath.Join(dir, "in.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	defer f.Close()
	if err := wave.Write(f, w); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return path
}

func readDSP(t *testing.T, path string) *dsp.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()
	d, err := dsp.Read(f)
	if err != nil {
		t.Fatalf("dsp.Read failed: %v", err)
	}
	return d
}

func TestEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	in := writeTestWAV(t, dir, 448, nil)
	encoded := filepath.Join(dir, "out.dsp")

	if err := runEncode([]string{"-loop-start", "14", in, encoded}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	d := readDSP(t, encoded)
	if d.SampleRate != 22050 || d.SampleCount != 448 || len(d.Channels) != 1 {
		t.Fatalf("unexpected header %d Hz %d samples %d channels", d.SampleRate, d.SampleCount, len(d.Channels))
	}
	if d.Loop == nil || d.Loop.Start != 14 || d.Loop.End != 447 {
		t.Fatalf("expected loop 14-447, got %v", d.Loop)
	}

	decoded := filepath.Join(dir, "out.wav")
	if err := runDecode([]string{"-bits", "8", encoded, decoded}); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	f, err := os.Open(decoded)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()
	w, err := wave.Read(f)
	if err != nil {
		t.Fatalf("wave.Read failed: %v", err)
	}
	if w.BitsPerSample != 8 || w.SampleCount() != 448 {
		t.Errorf("unexpected wave %d-bit %d samples", w.BitsPerSample, w.SampleCount())
	}
	if w.Loop == nil || w.Loop.Start != 14 || w.Loop.End != 447 {
		t.Errorf("expected loop to survive decode, got %v", w.Loop)
	}
}

func TestEncodeKeepsSourceLoopAndResamples(t *testing.T) {
	dir := t.TempDir()
	in := writeTestWAV(t, dir, 280, &audio.Loop{Start: 28, End: 139})
	encoded := filepath.Join(dir, "out.dsp")

	if err := runEncode([]string{"-rate", "44100", "-block-frames", "2", in, encoded}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	d := readDSP(t, encoded)
	if d.SampleRate != 44100 || d.SampleCount != 560 {
		t.Errorf("expected 560 samples at 44100Hz, got %d at %d", d.SampleCount, d.SampleRate)
	}
	if d.Loop == nil || d.Loop.Start != 56 || d.Loop.End != 279 {
		t.Errorf("expected scaled loop 56-279, got %v", d.Loop)
	}
}

func TestEncodeArguments(t *testing.T) {
	dir := t.TempDir()
	in := writeTestWAV(t, dir, 28, nil)

	if err := runEncode([]string{in}); err == nil {
		t.Error("expected error with a single path")
	}
	if err := runEncode([]string{"-block-frames", "-1", in, filepath.Join(dir, "x.dsp")}); err == nil {
		t.Error("expected error for negative block frames")
	}
	err := runEncode([]string{"-loop-start", "40", in, filepath.Join(dir, "y.dsp")})
	if !errors.Is(err, dspadpcm.ErrInvalidLoop) {
		t.Errorf("expected ErrInvalidLoop, got %v", err)
	}
	if err := runEncode([]string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
}

func TestApplyLoop(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		existing   *audio.Loop
		expected   *audio.Loop
		wantErr    bool
	}{
		{"keep source loop", -1, -1, &audio.Loop{Start: 1, End: 2}, &audio.Loop{Start: 1, End: 2}, false},
		{"no loop", -1, -1, nil, nil, false},
		{"start only", 3, -1, nil, &audio.Loop{Start: 3, End: 9}, false},
		{"start and end", 3, 5, nil, &audio.Loop{Start: 3, End: 5}, false},
		{"end without start", -1, 5, nil, nil, true},
		{"end past samples", 0, 10, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &audio.Audio{SampleRate: 8000, Loop: tt.existing, Channels: []audio.Channel{&audio.PCM16{Samples: make([]int16, 10)}}}
			err := applyLoop(a, tt.start, tt.end)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (a.Loop == nil) != (tt.expected == nil) || (a.Loop != nil && *a.Loop != *tt.expected) {
				t.Errorf("expected loop %v, got %v", tt.expected, a.Loop)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	in := writeTestWAV(t, dir, 56, &audio.Loop{Start: 0, End: 55})

	var buf bytes.Buffer
	if err := runInfo([]string{in}, &buf); err != nil {
		t.Fatalf("info failed: %v", err)
	}
	for _, want := range []string{"RIFF WAVE", `"fmt "`, `"smpl"`, `"data"`, "16-bit 22050Hz 1 channels, 56 samples", "loop: 0-55"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in WAV info:\n%s", want, buf.String())
		}
	}

	encoded := filepath.Join(dir, "out.dsp")
	if err := runEncode([]string{in, encoded}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	buf.Reset()
	if err := runInfo([]string{encoded}, &buf); err != nil {
		t.Fatalf("info failed: %v", err)
	}
	for _, want := range []string{"DSP-ADPCM 22050Hz 1 channels, 56 samples", "loop: 0-55", "channel 0: 32 bytes", "coefs:"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in DSP info:\n%s", want, buf.String())
		}
	}
}

func TestDescribeLoop(t *testing.T) {
	if describeLoop(nil) != "none" {
		t.Error("expected none for nil loop")
	}
	if got := describeLoop(&audio.Loop{Start: 2, End: 9}); got != "2-9" {
		t.Errorf("expected 2-9, got %s", got)
	}
}
