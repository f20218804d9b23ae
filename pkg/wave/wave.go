// ABOUTME: RIFF WAVE reader and writer
// ABOUTME: PCM fmt, smpl loop and data chunks on top of pkg/riff
// Package wave reads and writes 8- and 16-bit PCM WAVE files, including the
// first loop of a smpl chunk.
package wave

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/encode"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/binio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/riff"
)

var (
	// ErrMissingChunk is returned when fmt or data is absent.
	ErrMissingChunk = errors.New("wave: missing required chunk")
	// ErrUnsupportedFormat is returned for anything but 8/16-bit integer PCM.
	ErrUnsupportedFormat = errors.New("wave: unsupported format")
)

const formatPCM = 1

// Minimum payload sizes. A smpl chunk carries its header, then 24 bytes per
// loop; only the first loop is read.
const (
	fmtSize        = 16
	smplHeaderSize = 36
	smplLoopSize   = 24
)

var (
	tagWAVE = riff.NewTag("WAVE")
	tagFmt  = riff.NewTag("fmt ")
	tagSmpl = riff.NewTag("smpl")
	tagData = riff.NewTag("data")
)

// Wave is a decoded WAVE file. Data holds the interleaved payload as stored:
// unsigned bytes for 8-bit files, little-endian int16 for 16-bit files.
type Wave struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Loop          *audio.Loop
	Data          []byte
}

func (w *Wave) blockAlign() int {
	return w.Channels * w.BitsPerSample / 8
}

func (w *Wave) format() audio.Format {
	return audio.Format{
		Codec:      audio.CodecPCM,
		SampleRate: w.SampleRate,
		Channels:   w.Channels,
		BitDepth:   w.BitsPerSample,
	}
}

// SampleCount returns the number of sample frames in Data
func (w *Wave) SampleCount() int {
	if w.blockAlign() == 0 {
		return 0
	}
	return len(w.Data) / w.blockAlign()
}

// Read parses a WAVE file. Byte rate and block align fields are ignored and
// recomputed from the channel count and sample width.
func Read(r io.ReadSeeker) (*Wave, error) {
	f, err := riff.Parse(r)
	if err != nil {
		return nil, err
	}
	if f.Form != tagWAVE {
		return nil, fmt.Errorf("%w: form %q", ErrUnsupportedFormat, f.Form.String())
	}

	fmtChunk, ok := f.Find(tagFmt)
	if !ok {
		return nil, fmt.Errorf("%w: fmt", ErrMissingChunk)
	}
	dataChunk, ok := f.Find(tagData)
	if !ok {
		return nil, fmt.Errorf("%w: data", ErrMissingChunk)
	}

	w := &Wave{}
	if err := w.readFormat(f, fmtChunk); err != nil {
		return nil, err
	}

	if smpl, ok := f.Find(tagSmpl); ok {
		if w.Loop, err = readLoop(f, smpl); err != nil {
			return nil, err
		}
	}

	size := int(dataChunk.Size)
	size -= size % w.blockAlign()
	br, err := f.Open(dataChunk)
	if err != nil {
		return nil, err
	}
	if w.Data, err = br.Bytes(size); err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	return w, nil
}

func (w *Wave) readFormat(f *riff.File, c riff.Chunk) error {
	if c.Size < fmtSize {
		return fmt.Errorf("%w: fmt chunk is %d bytes", binio.ErrTruncated, c.Size)
	}
	br, err := f.Open(c)
	if err != nil {
		return err
	}

	format, err := br.U16()
	if err != nil {
		return fmt.Errorf("reading fmt: %w", err)
	}
	if format != formatPCM {
		return fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, format)
	}

	channels, err := br.U16()
	if err != nil {
		return fmt.Errorf("reading fmt: %w", err)
	}
	rate, err := br.U32()
	if err != nil {
		return fmt.Errorf("reading fmt: %w", err)
	}
	// byte rate and block align
	if err := br.Skip(6); err != nil {
		return err
	}
	bits, err := br.U16()
	if err != nil {
		return fmt.Errorf("reading fmt: %w", err)
	}

	if bits != 8 && bits != 16 {
		return fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, bits)
	}
	if channels == 0 {
		return fmt.Errorf("%w: zero channels", ErrUnsupportedFormat)
	}

	w.Channels = int(channels)
	w.SampleRate = int(rate)
	w.BitsPerSample = int(bits)
	return nil
}

func readLoop(f *riff.File, c riff.Chunk) (*audio.Loop, error) {
	if c.Size < smplHeaderSize {
		return nil, fmt.Errorf("%w: smpl chunk is %d bytes", binio.ErrTruncated, c.Size)
	}
	br, err := f.Open(c)
	if err != nil {
		return nil, err
	}

	// manufacturer through SMPTE offset
	if err := br.Skip(7 * 4); err != nil {
		return nil, err
	}
	count, err := br.U32()
	if err != nil {
		return nil, fmt.Errorf("reading smpl: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	if c.Size < smplHeaderSize+smplLoopSize {
		return nil, fmt.Errorf("%w: smpl chunk is %d bytes with %d loops", binio.ErrTruncated, c.Size, count)
	}

	// sampler data, cue point id, loop type
	if err := br.Skip(3 * 4); err != nil {
		return nil, err
	}
	start, err := br.U32()
	if err != nil {
		return nil, fmt.Errorf("reading smpl loop: %w", err)
	}
	end, err := br.U32()
	if err != nil {
		return nil, fmt.Errorf("reading smpl loop: %w", err)
	}
	return &audio.Loop{Start: int(start), End: int(end)}, nil
}

// Write emits w as a WAVE file with fmt, an optional smpl and data chunks
func Write(ws io.WriteSeeker, w *Wave) error {
	if w.BitsPerSample != 8 && w.BitsPerSample != 16 {
		return fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, w.BitsPerSample)
	}

	rw := riff.NewWriter(ws)
	rw.InitFile(tagWAVE)

	err := rw.Chunk(tagFmt, func(bw *binio.Writer) error {
		bw.U16(formatPCM)
		bw.U16(uint16(w.Channels))
		bw.U32(uint32(w.SampleRate))
		bw.U32(uint32(w.SampleRate * w.blockAlign()))
		bw.U16(uint16(w.blockAlign()))
		bw.U16(uint16(w.BitsPerSample))
		return nil
	})
	if err != nil {
		return err
	}

	if w.Loop != nil {
		err := rw.Chunk(tagSmpl, func(bw *binio.Writer) error {
			bw.U32(0) // manufacturer
			bw.U32(0) // product
			period := uint32(0)
			if w.SampleRate > 0 {
				period = uint32(1_000_000_000 / w.SampleRate)
			}
			bw.U32(period)
			bw.U32(60) // MIDI unity note
			bw.U32(0)  // pitch fraction
			bw.U32(0)  // SMPTE format
			bw.U32(0)  // SMPTE offset
			bw.U32(1)  // loop count
			bw.U32(0)  // sampler data
			bw.U32(0)  // cue point id
			bw.U32(0)  // forward loop
			bw.U32(uint32(w.Loop.Start))
			bw.U32(uint32(w.Loop.End))
			bw.U32(0) // fraction
			bw.U32(0) // play count, infinite
			return nil
		})
		if err != nil {
			return err
		}
	}

	err = rw.Chunk(tagData, func(bw *binio.Writer) error {
		bw.Bytes(w.Data)
		return nil
	})
	if err != nil {
		return err
	}
	return rw.CloseFile()
}

// ToAudio splits the interleaved data into one channel per WAVE channel.
// 8-bit files yield PCM8 channels, 16-bit files PCM16.
func (w *Wave) ToAudio() (*audio.Audio, error) {
	dec, err := decode.NewPCM(w.format())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer dec.Close()

	frames, err := dec.Decode(w.Data[:w.SampleCount()*w.blockAlign()])
	if err != nil {
		return nil, err
	}
	a := audio.FromInterleaved(frames, w.Channels, w.SampleRate)
	a.Loop = w.Loop
	if w.BitsPerSample != 8 {
		return a, nil
	}

	for ch, c := range a.Channels {
		wide := c.(*audio.PCM16).Samples
		samples := make([]int8, len(wide))
		for i, s := range wide {
			samples[i] = audio.PCM16ToPCM8(s)
		}
		a.Channels[ch] = &audio.PCM8{Samples: samples}
	}
	return a, nil
}

// FromAudio interleaves a into a Wave of the given sample width. Channels
// of other encodings are decoded first.
func FromAudio(a *audio.Audio, bits int) (*Wave, error) {
	if bits != 8 && bits != 16 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, bits)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	w := &Wave{SampleRate: a.SampleRate, Channels: len(a.Channels), BitsPerSample: bits, Loop: a.Loop}
	enc, err := encode.NewPCM(w.format())
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	frames, err := a.Interleave()
	if err != nil {
		return nil, err
	}
	if w.Data, err = enc.Encode(frames); err != nil {
		return nil, err
	}
	return w, nil
}
