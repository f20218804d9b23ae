// ABOUTME: Entry point for dsptool
// ABOUTME: Dispatches the encode, decode, info and play subcommands
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Resonate-Protocol/dspadpcm-go/internal/version"
)

const usageText = `usage: dsptool <command> [flags] <args>

commands:
  encode  [-loop-start N -loop-end N -rate HZ -block-frames N] in.{wav,mp3,flac,dsp} out.dsp
  decode  [-bits 8|16] in.{dsp,wav,mp3,flac} out.wav
  info    file.{wav,dsp,mp3,flac}
  play    [-loops N -no-tui] file.{wav,dsp,mp3,flac}
  version

every command accepts -log-file PATH and -v
`

var verbose bool

// debugf logs only when -v is set
func debugf(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// logOptions are the flags every subcommand shares
type logOptions struct {
	logFile string
	verbose bool
}

func newFlagSet(name string) (*flag.FlagSet, *logOptions) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	opts := &logOptions{}
	fs.StringVar(&opts.logFile, "log-file", "", "Also write logs to this file")
	fs.BoolVar(&opts.verbose, "v", false, "Enable verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage of dsptool %s:\n", name)
		fs.PrintDefaults()
	}
	return fs, opts
}

// setupLogging routes log output to stdout and, when requested, a log file.
// With quiet set only the file receives output. The returned function closes
// the file.
func setupLogging(opts *logOptions, quiet bool) (func(), error) {
	verbose = opts.verbose
	log.SetFlags(log.LstdFlags)

	if opts.logFile == "" {
		if quiet {
			log.SetOutput(io.Discard)
		} else {
			log.SetOutput(os.Stdout)
		}
		return func() {}, nil
	}

	f, err := os.OpenFile(opts.logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	if quiet {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	return func() { _ = f.Close() }, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "encode":
		err = runEncode(args)
	case "decode":
		err = runDecode(args)
	case "info":
		err = runInfo(args, os.Stdout)
	case "play":
		err = runPlay(args)
	case "version", "-version", "--version":
		fmt.Println(version.String())
		return
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usageText)
		os.Exit(2)
	}

	if err == flag.ErrHelp {
		return
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}
