// ABOUTME: dsptool encode subcommand
// ABOUTME: Converts WAV, MP3, FLAC or DSP input into a DSP-ADPCM file
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/resample"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/source"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dsp"
)

func runEncode(args []string) error {
	fs, logOpts := newFlagSet("encode")
	loopStart := fs.Int("loop-start", -1, "Loop start sample (default: keep the source loop)")
	loopEnd := fs.Int("loop-end", -1, "Inclusive loop end sample (default: last sample)")
	rate := fs.Int("rate", 0, "Resample to this rate before encoding (default: keep)")
	blockFrames := fs.Int("block-frames", 0, "Channel interleave in frames (0 stores channels back to back)")
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
	if *blockFrames < 0 {
		return fmt.Errorf("invalid -block-frames %d", *blockFrames)
	}

	a, err := source.Open(in)
	if err != nil {
		return err
	}
	debugf("Read %s: %s %dHz %d channels, %d samples", in, a.Encoding(), a.SampleRate, len(a.Channels), a.SampleCount())

	if err := applyLoop(a, *loopStart, *loopEnd); err != nil {
		return err
	}

	if *rate > 0 && *rate != a.SampleRate {
		debugf("Resampling %dHz -> %dHz", a.SampleRate, *rate)
		if a, err = resample.Audio(a, *rate); err != nil {
			return err
		}
	}

	file, err := dsp.FromAudio(a, *blockFrames)
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := dsp.Write(f, file); err != nil {
		f.Close()
		return fmt.Errorf("write failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("Encoded %s -> %s (%d channels, %d samples at %dHz, loop %s)",
		in, out, len(file.Channels), file.SampleCount, file.SampleRate, describeLoop(file.Loop))
	return nil
}

// applyLoop overrides the loop of a from the command line. A negative start
// keeps whatever loop the source carried; a negative end means the last
// sample.
func applyLoop(a *audio.Audio, start, end int) error {
	if start < 0 {
		if end >= 0 {
			return errors.New("-loop-end requires -loop-start")
		}
		return nil
	}

	if end < 0 {
		end = a.SampleCount() - 1
	}
	a.Loop = &audio.Loop{Start: start, End: end}
	return a.Validate()
}

func describeLoop(l *audio.Loop) string {
	if l == nil {
		return "none"
	}
	return fmt.Sprintf("%d-%d", l.Start, l.End)
}
