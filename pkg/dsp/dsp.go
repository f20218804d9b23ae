// ABOUTME: Nintendo DSP file reader and writer
// ABOUTME: Big-endian 0x60-byte channel headers followed by block-interleaved frames
// Package dsp reads and writes standalone DSP-ADPCM files.
//
// Every channel has a 0x60-byte big-endian header holding the stream
// geometry and its dspadpcm.Context. Channel data follows all headers,
// interleaved in blocks of BlockFrames frames per channel. A single channel
// is stored contiguously.
package dsp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/binio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dspadpcm"
)

var (
	// ErrInvalidHeader is returned for headers that describe an impossible stream.
	ErrInvalidHeader = errors.New("dsp: invalid header")
	// ErrUnsupportedFormat is returned when the format field is not ADPCM (0).
	ErrUnsupportedFormat = errors.New("dsp: unsupported format")
)

const (
	// HeaderSize is the size of one channel header
	HeaderSize = 0x60
	// MaxChannels bounds the channel count accepted on read
	MaxChannels = 16

	formatADPCM    = 0
	initialAddress = 2
)

// Channel is one channel's context and encoded frames
type Channel struct {
	Context dspadpcm.Context
	Data    []byte
}

// File is a decoded DSP file
type File struct {
	SampleRate  int
	SampleCount int
	Loop        *audio.Loop
	// BlockFrames is the interleave unit in frames; 0 stores channels back to back
	BlockFrames int
	Channels    []Channel
}

type header struct {
	sampleCount uint32
	nibbleCount uint32
	sampleRate  uint32
	loopFlag    uint16
	format      uint16
	loopStart   uint32
	loopEnd     uint32
	address     uint32
}

func readHeader(br *binio.Reader) (header, error) {
	var h header
	var err error
	if h.sampleCount, err = br.U32(); err != nil {
		return h, err
	}
	if h.nibbleCount, err = br.U32(); err != nil {
		return h, err
	}
	if h.sampleRate, err = br.U32(); err != nil {
		return h, err
	}
	if h.loopFlag, err = br.U16(); err != nil {
		return h, err
	}
	if h.format, err = br.U16(); err != nil {
		return h, err
	}
	if h.loopStart, err = br.U32(); err != nil {
		return h, err
	}
	if h.loopEnd, err = br.U32(); err != nil {
		return h, err
	}
	h.address, err = br.U32()
	return h, err
}

func (h header) write(bw *binio.Writer) {
	bw.U32(h.sampleCount)
	bw.U32(h.nibbleCount)
	bw.U32(h.sampleRate)
	bw.U16(h.loopFlag)
	bw.U16(h.format)
	bw.U32(h.loopStart)
	bw.U32(h.loopEnd)
	bw.U32(h.address)
}

// Read parses a DSP file from r
func Read(r io.ReadSeeker) (*File, error) {
	br := binio.NewReader(r, binary.BigEndian)
	base, err := br.Pos()
	if err != nil {
		return nil, err
	}

	h, err := readHeader(br)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if h.format != formatADPCM {
		return nil, fmt.Errorf("%w: format %d", ErrUnsupportedFormat, h.format)
	}

	first, err := dspadpcm.ReadContext(br)
	if err != nil {
		return nil, fmt.Errorf("reading context: %w", err)
	}
	channels, err := br.U16()
	if err != nil {
		return nil, fmt.Errorf("reading channel count: %w", err)
	}
	blockFrames, err := br.U16()
	if err != nil {
		return nil, fmt.Errorf("reading block size: %w", err)
	}
	if channels == 0 {
		channels = 1
	}
	if channels > MaxChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidHeader, channels)
	}

	f := &File{
		SampleRate:  int(h.sampleRate),
		SampleCount: int(h.sampleCount),
		BlockFrames: int(blockFrames),
		Channels:    make([]Channel, channels),
	}
	f.Channels[0].Context = first

	if h.loopFlag != 0 {
		loop := &audio.Loop{
			Start: dspadpcm.NibbleToSample(int(h.loopStart)),
			End:   dspadpcm.NibbleToSample(int(h.loopEnd)),
		}
		if loop.Start > loop.End || loop.End >= f.SampleCount {
			return nil, fmt.Errorf("%w: loop %d-%d with %d samples", ErrInvalidHeader,
				loop.Start, loop.End, f.SampleCount)
		}
		f.Loop = loop
	}

	for ch := 1; ch < int(channels); ch++ {
		// Extra channel headers repeat the stream fields before their context.
		if _, err := br.Seek(base+int64(ch*HeaderSize)+0x1C, io.SeekStart); err != nil {
			return nil, err
		}
		if f.Channels[ch].Context, err = dspadpcm.ReadContext(br); err != nil {
			return nil, fmt.Errorf("reading channel %d context: %w", ch, err)
		}
	}

	if _, err := br.Seek(base+int64(channels)*HeaderSize, io.SeekStart); err != nil {
		return nil, err
	}
	if err := f.readData(br); err != nil {
		return nil, err
	}
	return f, nil
}

// channelBytes is the stored size of one channel, padded to whole frames
func (f *File) channelBytes() int {
	return dspadpcm.PaddedByteCount(f.SampleCount)
}

func (f *File) blockBytes() int {
	if f.BlockFrames <= 0 || len(f.Channels) == 1 {
		return f.channelBytes()
	}
	return dspadpcm.FrameCountToByteCount(f.BlockFrames)
}

func (f *File) readData(br *binio.Reader) error {
	total := f.channelBytes()
	block := f.blockBytes()

	end, err := br.Len()
	if err != nil {
		return err
	}
	pos, err := br.Pos()
	if err != nil {
		return err
	}
	// the last channel may stop short of a whole frame
	minimum := int64(total)*int64(len(f.Channels)-1) + int64(dspadpcm.SampleCountToByteCount(f.SampleCount))
	if minimum > end-pos {
		return fmt.Errorf("%w: %d channels of %d samples need %d bytes, have %d",
			binio.ErrTruncated, len(f.Channels), f.SampleCount, minimum, end-pos)
	}

	for ch := range f.Channels {
		f.Channels[ch].Data = make([]byte, 0, total)
	}
	last := len(f.Channels) - 1

	for off := 0; off < total; off += block {
		n := min(block, total-off)
		for ch := range f.Channels {
			want := n
			if off+n == total && ch == last {
				// Some writers stop after the last used byte instead of a whole frame.
				pos, err := br.Pos()
				if err != nil {
					return err
				}
				need := dspadpcm.SampleCountToByteCount(f.SampleCount) - off
				want = max(min(n, int(end-pos)), need)
			}

			b, err := br.Bytes(want)
			if err != nil {
				return fmt.Errorf("reading channel %d data at %d: %w", ch, off, err)
			}
			f.Channels[ch].Data = append(f.Channels[ch].Data, b...)
			if want < n {
				f.Channels[ch].Data = append(f.Channels[ch].Data, make([]byte, n-want)...)
			}
		}
	}
	return nil
}

// Write emits f. Channel data shorter than the whole-frame size is zero padded.
func Write(ws io.WriteSeeker, f *File) error {
	if len(f.Channels) == 0 || len(f.Channels) > MaxChannels {
		return fmt.Errorf("%w: %d channels", ErrInvalidHeader, len(f.Channels))
	}

	h := header{
		sampleCount: uint32(f.SampleCount),
		nibbleCount: uint32(dspadpcm.SampleCountToNibbleCount(f.SampleCount)),
		sampleRate:  uint32(f.SampleRate),
		format:      formatADPCM,
		address:     initialAddress,
	}
	if f.Loop != nil {
		if f.Loop.Start < 0 || f.Loop.Start > f.Loop.End || f.Loop.End >= f.SampleCount {
			return fmt.Errorf("%w: loop %d-%d with %d samples", ErrInvalidHeader,
				f.Loop.Start, f.Loop.End, f.SampleCount)
		}
		h.loopFlag = 1
		h.loopStart = uint32(dspadpcm.SampleToNibble(f.Loop.Start))
		h.loopEnd = uint32(dspadpcm.SampleToNibble(f.Loop.End))
	}

	bw := binio.NewWriter(ws, binary.BigEndian)
	for ch, c := range f.Channels {
		h.write(bw)
		if err := c.Context.Write(bw); err != nil {
			return fmt.Errorf("writing channel %d context: %w", ch, err)
		}
		if ch == 0 {
			bw.U16(uint16(len(f.Channels)))
			bw.U16(uint16(f.BlockFrames))
		}
		bw.AlignTo(HeaderSize)
	}

	total := f.channelBytes()
	block := f.blockBytes()
	padded := make([][]byte, len(f.Channels))
	for ch, c := range f.Channels {
		if len(c.Data) > total {
			return fmt.Errorf("%w: channel %d holds %d bytes, expected at most %d",
				ErrInvalidHeader, ch, len(c.Data), total)
		}
		padded[ch] = make([]byte, total)
		copy(padded[ch], c.Data)
	}

	for off := 0; off < total; off += block {
		end := min(off+block, total)
		for ch := range padded {
			bw.Bytes(padded[ch][off:end])
		}
	}
	return bw.Err()
}

// ToAudio exposes the channels as DSP-ADPCM audio channels
func (f *File) ToAudio() *audio.Audio {
	a := &audio.Audio{SampleRate: f.SampleRate, Loop: f.Loop}
	for _, c := range f.Channels {
		a.Channels = append(a.Channels, &audio.DSPADPCM{
			Data:    c.Data,
			Context: c.Context,
			Samples: f.SampleCount,
		})
	}
	return a
}

// FromAudio builds a File from a, encoding PCM channels with default
// coefficient settings first.
func FromAudio(a *audio.Audio, blockFrames int) (*File, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	enc, err := a.ToDSPADPCM(dspadpcm.DefaultCoefficientSettings())
	if err != nil {
		return nil, err
	}

	f := &File{
		SampleRate:  enc.SampleRate,
		SampleCount: enc.SampleCount(),
		Loop:        enc.Loop,
		BlockFrames: blockFrames,
	}
	for _, c := range enc.Channels {
		d := c.(*audio.DSPADPCM)
		f.Channels = append(f.Channels, Channel{Context: d.Context, Data: d.Data})
	}
	return f, nil
}
