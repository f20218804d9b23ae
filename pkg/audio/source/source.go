// ABOUTME: Audio file sources
// ABOUTME: Loads WAV, MP3, FLAC and DSP files into audio.Audio by extension
// Package source loads whole audio files into memory.
//
// WAV files go through pkg/wave first; layouts it rejects (24/32-bit and
// other widths) are decoded with go-audio/wav and reduced to 16 bits. MP3
// and FLAC are decoded with go-mp3 and mewkiz/flac. DSP files keep their
// encoded channels.
package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dsp"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/wave"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedExtension is returned for file types Open cannot load.
var ErrUnsupportedExtension = errors.New("source: unsupported file extension")

// Extensions lists the file extensions Open accepts
var Extensions = []string{".wav", ".mp3", ".flac", ".dsp"}

// Open loads the file at path, choosing a decoder by extension
func Open(path string) (*audio.Audio, error) {
	ext := strings.ToLower(filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	switch ext {
	case ".wav":
		return ReadWAV(f)
	case ".mp3":
		return ReadMP3(f)
	case ".flac":
		return ReadFLAC(f)
	case ".dsp":
		return ReadDSP(f)
	}
	return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedExtension, ext, strings.Join(Extensions, ", "))
}

// ReadWAV loads a WAVE stream
func ReadWAV(r io.ReadSeeker) (*audio.Audio, error) {
	w, err := wave.Read(r)
	if err == nil {
		return w.ToAudio()
	}
	if !errors.Is(err, wave.ErrUnsupportedFormat) {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: WAV format tag %d", wave.ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}
	return fromIntBuffer(buf, int(dec.BitDepth)), nil
}

// ReadMP3 decodes an MP3 stream. go-mp3 always produces stereo.
func ReadMP3(r io.Reader) (*audio.Audio, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	// Convert little-endian int16 bytes to samples
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: decoder.SampleRate()},
		Data:           make([]int, len(raw)/2),
		SourceBitDepth: 16,
	}
	for i := range buf.Data {
		buf.Data[i] = int(int16(binary.LittleEndian.Uint16(raw[i*2:])))
	}
	return fromIntBuffer(buf, 16), nil
}

// ReadFLAC decodes a FLAC stream, reducing samples to 16 bits
func ReadFLAC(r io.Reader) (*audio.Audio, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: int(info.SampleRate)},
		SourceBitDepth: int(info.BitsPerSample),
	}

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac decode error: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				buf.Data = append(buf.Data, int(frame.Subframes[ch].Samples[i]))
			}
		}
	}
	return fromIntBuffer(buf, int(info.BitsPerSample)), nil
}

// ReadDSP loads a DSP file, keeping its channels encoded
func ReadDSP(r io.ReadSeeker) (*audio.Audio, error) {
	f, err := dsp.Read(r)
	if err != nil {
		return nil, err
	}
	return f.ToAudio(), nil
}

// fromIntBuffer splits an interleaved go-audio buffer into PCM16 channels
func fromIntBuffer(buf *goaudio.IntBuffer, bitDepth int) *audio.Audio {
	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	frames := make([]int16, len(buf.Data)/channels*channels)
	for i := range frames {
		frames[i] = audio.SampleToInt16(int32(buf.Data[i]), bitDepth)
	}
	return audio.FromInterleaved(frames, channels, buf.Format.SampleRate)
}
