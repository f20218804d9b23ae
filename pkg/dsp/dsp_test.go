// ABOUTME: Tests for the DSP file reader and writer
// ABOUTME: Header layout, multi-channel interleave and loop addresses
package dsp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/binio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dspadpcm"
)

func tone(n int, period float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(9000 * math.Sin(2*math.Pi*float64(i)/period))
	}
	return out
}

func encodeFile(t *testing.T, channels, n, blockFrames int, loop *audio.Loop) *File {
	t.Helper()
	a := &audio.Audio{SampleRate: 32000, Loop: loop}
	for ch := 0; ch < channels; ch++ {
		a.Channels = append(a.Channels, &audio.PCM16{Samples: tone(n, 40+float64(ch)*7)})
	}
	f, err := FromAudio(a, blockFrames)
	if err != nil {
		t.Fatalf("FromAudio failed: %v", err)
	}
	return f
}

func writeFile(t *testing.T, f *File) []byte {
	t.Helper()
	buf := binio.NewBuffer(nil)
	if err := Write(buf, f); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return buf.Bytes()
}

func TestHeaderLayout(t *testing.T) {
	f := encodeFile(t, 1, 100, 0, &audio.Loop{Start: 20, End: 99})
	data := writeFile(t, f)

	if len(data) != HeaderSize+dspadpcm.FrameCount(100)*8 {
		t.Fatalf("unexpected file size %d", len(data))
	}

	be := binary.BigEndian
	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"sample count", be.Uint32(data[0x00:]), 100},
		{"nibble count", be.Uint32(data[0x04:]), uint32(dspadpcm.SampleCountToNibbleCount(100))},
		{"sample rate", be.Uint32(data[0x08:]), 32000},
		{"loop flag", uint32(be.Uint16(data[0x0C:])), 1},
		{"format", uint32(be.Uint16(data[0x0E:])), 0},
		{"loop start", be.Uint32(data[0x10:]), uint32(dspadpcm.SampleToNibble(20))},
		{"loop end", be.Uint32(data[0x14:]), uint32(dspadpcm.SampleToNibble(99))},
		{"address", be.Uint32(data[0x18:]), 2},
		{"channels", uint32(be.Uint16(data[0x4A:])), 1},
		{"pred scale", uint32(be.Uint16(data[0x1C+0x22:])), uint32(f.Channels[0].Context.PredScale)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		channels    int
		samples     int
		blockFrames int
		loop        *audio.Loop
	}{
		{"mono", 1, 100, 0, nil},
		{"mono looped", 1, 300, 0, &audio.Loop{Start: 42, End: 299}},
		{"stereo blocked", 2, 150, 2, &audio.Loop{Start: 14, End: 140}},
		{"stereo sequential", 2, 50, 0, nil},
		{"three channels", 3, 29, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := encodeFile(t, tt.channels, tt.samples, tt.blockFrames, tt.loop)
			got, err := Read(bytes.NewReader(writeFile(t, f)))
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}

			if got.SampleCount != tt.samples || got.SampleRate != 32000 || len(got.Channels) != tt.channels {
				t.Fatalf("unexpected stream %d samples %d Hz %d channels",
					got.SampleCount, got.SampleRate, len(got.Channels))
			}
			if got.BlockFrames != tt.blockFrames {
				t.Errorf("expected block frames %d, got %d", tt.blockFrames, got.BlockFrames)
			}
			if (got.Loop == nil) != (tt.loop == nil) || (tt.loop != nil && *got.Loop != *tt.loop) {
				t.Errorf("expected loop %v, got %v", tt.loop, got.Loop)
			}

			for ch := range f.Channels {
				if got.Channels[ch].Context != f.Channels[ch].Context {
					t.Errorf("channel %d context changed", ch)
				}
				want := make([]byte, dspadpcm.FrameCount(tt.samples)*8)
				copy(want, f.Channels[ch].Data)
				if !bytes.Equal(got.Channels[ch].Data, want) {
					t.Errorf("channel %d data changed", ch)
				}
			}
		})
	}
}

func TestBlockInterleave(t *testing.T) {
	f := encodeFile(t, 2, 70, 2, nil)
	data := writeFile(t, f)[2*HeaderSize:]

	left, right := f.Channels[0].Data, f.Channels[1].Data
	if !bytes.Equal(data[0:16], left[0:16]) {
		t.Errorf("first block is not channel 0")
	}
	if !bytes.Equal(data[16:32], right[0:16]) {
		t.Errorf("second block is not channel 1")
	}
	if !bytes.Equal(data[32:48], left[16:32]) {
		t.Errorf("third block is not channel 0")
	}
	// 5 frames per channel: the final block holds one frame each
	if !bytes.Equal(data[64:72], left[32:40]) || !bytes.Equal(data[72:80], right[32:40]) {
		t.Errorf("short final block misplaced")
	}
}

func TestReadUnpaddedData(t *testing.T) {
	f := encodeFile(t, 1, 15, 0, nil)
	data := writeFile(t, f)
	trimmed := data[:HeaderSize+dspadpcm.SampleCountToByteCount(15)]

	got, err := Read(bytes.NewReader(trimmed))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got.Channels[0].Data) != 16 {
		t.Errorf("expected data padded to 16 bytes, got %d", len(got.Channels[0].Data))
	}

	if _, err := Read(bytes.NewReader(trimmed[:len(trimmed)-1])); !errors.Is(err, binio.ErrTruncated) {
		t.Errorf("expected truncation error, got %v", err)
	}
}

func TestReadRejects(t *testing.T) {
	f := encodeFile(t, 1, 28, 0, &audio.Loop{Start: 0, End: 27})
	good := writeFile(t, f)

	tests := []struct {
		name    string
		mutate  func(b []byte)
		wantErr error
	}{
		{"format", func(b []byte) { b[0x0F] = 1 }, ErrUnsupportedFormat},
		{"loop past end", func(b []byte) { binary.BigEndian.PutUint32(b[0x14:], 0x100) }, ErrInvalidHeader},
		{"channels", func(b []byte) { binary.BigEndian.PutUint16(b[0x4A:], 200) }, ErrInvalidHeader},
		{"sample count past data", func(b []byte) { binary.BigEndian.PutUint32(b[0x00:], 0xFFFFFFF0) }, binio.ErrTruncated},
		{"channel count past data", func(b []byte) { binary.BigEndian.PutUint16(b[0x4A:], 2) }, binio.ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bytes.Clone(good)
			tt.mutate(b)
			if _, err := Read(bytes.NewReader(b)); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := Read(bytes.NewReader(good[:0x30])); !errors.Is(err, binio.ErrTruncated) {
		t.Errorf("expected truncated header error, got %v", err)
	}
}

func TestZeroChannelCountMeansMono(t *testing.T) {
	f := encodeFile(t, 1, 28, 0, nil)
	b := writeFile(t, f)
	binary.BigEndian.PutUint16(b[0x4A:], 0)

	got, err := Read(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got.Channels) != 1 {
		t.Errorf("expected 1 channel, got %d", len(got.Channels))
	}
}

func TestToAudioDecodes(t *testing.T) {
	f := encodeFile(t, 2, 140, 4, nil)
	a := f.ToAudio()
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	pcm, err := a.ToPCM16()
	if err != nil {
		t.Fatalf("ToPCM16 failed: %v", err)
	}
	if pcm.SampleCount() != 140 || len(pcm.Channels) != 2 {
		t.Errorf("unexpected decoded audio: %d samples, %d channels", pcm.SampleCount(), len(pcm.Channels))
	}
}
