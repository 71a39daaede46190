// Command glitchfx runs the glitch effect chain offline or live.
//
// Usage:
//
//	glitchfx <command> [flags]
//
// Commands:
//
//	render   process a WAV file and write the result
//	play     play a WAV loop or test synth live through the chain
//	params   print the parameter table
//	analyze  print level and spectrum figures of a WAV file
//
// Examples:
//
//	glitchfx render -in loop.wav -out crushed.wav -set bc_enabled=1 -set bc_bit_depth=4 -set bc_mix=1
//	glitchfx render -in loop.wav -out chaos.wav -chaos -seed 7 -report
//	glitchfx play -tone 220 -wave saw -set wf_enabled=1 -set wf_mix=0.6
//	glitchfx params -preset > default.json
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type command struct {
	name    string
	summary string
	run     func(args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"render", "process a WAV file and write the result", runRender},
	{"play", "play a WAV loop or test synth live through the chain", runPlay},
	{"params", "print the parameter table", runParams},
	{"analyze", "print level and spectrum figures of a WAV file", runAnalyze},
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return flag.ErrHelp
	}

	for _, c := range commands {
		if c.name == args[0] {
			return c.run(args[1:], stdout, stderr)
		}
	}

	switch args[0] {
	case "-h", "-help", "--help", "help":
		usage(stderr)
		return flag.ErrHelp
	}

	return fmt.Errorf("unknown command %q (run glitchfx -help)", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: glitchfx <command> [flags]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun glitchfx <command> -h for command flags.\n")
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: glitchfx %s [flags]\n\nFlags:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func newLogger(stderr io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(stderr)
	l.SetLevel(logrus.WarnLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
