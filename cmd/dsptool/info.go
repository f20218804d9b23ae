// ABOUTME: dsptool info subcommand
// ABOUTME: Prints the RIFF chunk tree of WAV files and the header of DSP files
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/source"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/dsp"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/riff"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/wave"
)

func runInfo(args []string, out io.Writer) error {
	fs, logOpts := newFlagSet("info")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected one file")
	}

	closeLog, err := setupLogging(logOpts, false)
	if err != nil {
		return err
	}
	defer closeLog()

	path := fs.Arg(0)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return printWAVInfo(path, out)
	case ".dsp":
		return printDSPInfo(path, out)
	default:
		return printSourceInfo(path, out)
	}
}

func printWAVInfo(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rf, err := riff.Parse(f)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "RIFF %s (declared size %d)\n", rf.Form, rf.Size)
	riff.Walk(rf.Chunks, func(n riff.Node, depth int) {
		indent := strings.Repeat("  ", depth+1)
		if l, ok := n.(*riff.ListChunk); ok {
			fmt.Fprintf(out, "%sLIST %s @%d (%d bytes)\n", indent, l.ListType, l.Position, l.Size)
			return
		}
		fmt.Fprintf(out, "%s%s\n", indent, n.Header())
	})

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	w, err := wave.Read(f)
	if err != nil {
		fmt.Fprintf(out, "wave: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "format: %d-bit %dHz %d channels, %d samples\n",
		w.BitsPerSample, w.SampleRate, w.Channels, w.SampleCount())
	fmt.Fprintf(out, "loop: %s\n", describeLoop(w.Loop))
	return nil
}

func printDSPInfo(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d, err := dsp.Read(f)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "DSP-ADPCM %dHz %d channels, %d samples\n", d.SampleRate, len(d.Channels), d.SampleCount)
	fmt.Fprintf(out, "loop: %s\n", describeLoop(d.Loop))
	fmt.Fprintf(out, "block frames: %d\n", d.BlockFrames)
	for i, c := range d.Channels {
		ctx := c.Context
		fmt.Fprintf(out, "channel %d: %d bytes\n", i, len(c.Data))
		fmt.Fprintf(out, "  coefs: %v\n", ctx.Coefs.Flat())
		fmt.Fprintf(out, "  gain %d  ps 0x%02x  yn1 %d  yn2 %d\n", ctx.Gain, ctx.PredScale, ctx.Yn1, ctx.Yn2)
		fmt.Fprintf(out, "  loop ps 0x%02x  loop yn1 %d  loop yn2 %d\n", ctx.LoopPredScale, ctx.LoopYn1, ctx.LoopYn2)
	}
	return nil
}

func printSourceInfo(path string, out io.Writer) error {
	a, err := source.Open(path)
	if err != nil {
		return err
	}
	format := a.Format()
	fmt.Fprintf(out, "%s %d-bit %dHz %d channels, %d samples\n",
		a.Encoding(), format.BitDepth, a.SampleRate, len(a.Channels), a.SampleCount())
	fmt.Fprintf(out, "loop: %s\n", describeLoop(a.Loop))
	return nil
}
