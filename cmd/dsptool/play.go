// ABOUTME: dsptool play subcommand
// ABOUTME: Streams a file to the audio device with loop repeats and an optional TUI
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/dspadpcm-go/internal/ui"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/output"
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/audio/source"
)

// statusInterval limits how often playback position reaches the TUI
const statusInterval = 100 * time.Millisecond

func runPlay(args []string) error {
	fs, logOpts := newFlagSet("play")
	loops := fs.Int("loops", 0, "Times to jump back to the loop start (-1 repeats forever)")
	noTUI := fs.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected one file")
	}

	useTUI := !*noTUI
	closeLog, err := setupLogging(logOpts, useTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	path := fs.Arg(0)
	a, err := source.Open(path)
	if err != nil {
		return err
	}
	log.Printf("Playing %s: %s %dHz %d channels, loop %s",
		path, a.Encoding(), a.SampleRate, len(a.Channels), describeLoop(a.Loop))

	pcm, err := decode.ToPCM16(a, decode.DefaultChunkFrames)
	if err != nil {
		return err
	}

	out := output.NewOto()
	if err := out.Open(a.SampleRate, len(a.Channels)); err != nil {
		return err
	}
	defer out.Close()

	looper, err := output.NewLooper(out, pcm, *loops)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !useTUI {
		looper.OnPosition = logProgress()
		err := looper.Play(ctx)
		if errors.Is(err, context.Canceled) {
			log.Printf("Shutdown signal received")
			return nil
		}
		if err == nil {
			log.Printf("Playback finished")
		}
		return err
	}

	return playWithTUI(ctx, path, a, *loops, looper, out)
}

// logProgress returns a position callback that logs each completed loop
func logProgress() func(output.Position) {
	last := 0
	return func(p output.Position) {
		if p.Loops != last {
			last = p.Loops
			log.Printf("Loop %d", p.Loops)
		}
		debugf("Position %d/%d", p.Sample, p.Total)
	}
}

func playWithTUI(ctx context.Context, path string, a *audio.Audio, loops int, looper *output.Looper, out *output.Oto) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	volumeCtrl := ui.NewVolumeControl()
	prog := ui.NewProgram(volumeCtrl)

	status := ui.StatusMsg{
		File:       path,
		Encoding:   a.Encoding().String(),
		SampleRate: a.SampleRate,
		Channels:   len(a.Channels),
		LoopLimit:  &loops,
		State:      "playing",
	}
	if a.Loop != nil {
		status.Loop = &[2]int{a.Loop.Start, a.Loop.End}
	}

	var lastSent time.Time
	looper.OnPosition = func(p output.Position) {
		if time.Since(lastSent) < statusInterval && p.Sample < p.Total {
			return
		}
		lastSent = time.Now()
		prog.Send(ui.StatusMsg{Position: p.Sample, Total: p.Total, Loops: p.Loops})
	}

	go handleVolumeControl(ctx, out, volumeCtrl, cancel)

	done := make(chan error, 1)
	go func() {
		prog.Send(status)
		err := looper.Play(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		done <- err
		prog.Send(ui.DoneMsg{Err: err})
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("TUI error: %w", err)
	}

	// The UI may exit before playback does when the user quits
	cancel()
	err := <-done
	log.Printf("Player stopped")
	return err
}

// handleVolumeControl applies volume changes from the TUI until ctx ends
func handleVolumeControl(ctx context.Context, out output.Volume, volumeCtrl *ui.VolumeControl, quit func()) {
	for {
		select {
		case vol := <-volumeCtrl.Changes:
			log.Printf("Volume change: %d%%, muted=%v", vol.Volume, vol.Muted)
			out.SetVolume(vol.Volume)
			out.SetMuted(vol.Muted)
		case <-volumeCtrl.Quit:
			log.Printf("Received quit signal from TUI")
			quit()
			return
		case <-ctx.Done():
			return
		}
	}
}
