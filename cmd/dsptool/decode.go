// ABOUTME: dsptool decode subcommand
// ABOUTME: Writes any supported input as an 8 or 16-bit WAV file with loop points
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/source"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/wave"
)

func runDecode(args []string) error {
	fs, logOpts := newFlagSet("decode")
	bits := fs.Int("bits", 16, "Output bit depth (8 or 16)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("expected input and output paths")
	}

	closeLog, err := setupLogging(logOpts, false)
	if err != nil {
		return err
	}
	defer closeLog()

	in, out := fs.Arg(0), fs.Arg(1)

	a, err := source.Open(in)
	if err != nil {
		return err
	}
	debugf("Read %s: %s %dHz %d channels", in, a.Encoding(), a.SampleRate, len(a.Channels))

	pcm, err := decode.ToPCM16(a, decode.DefaultChunkFrames)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	w, err := wave.FromAudio(pcm, *bits)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := wave.Write(f, w); err != nil {
		f.Close()
		return fmt.Errorf("write failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("Decoded %s -> %s (%d-bit, %d samples, loop %s)",
		in, out, w.BitsPerSample, w.SampleCount(), describeLoop(w.Loop))
	return nil
}
