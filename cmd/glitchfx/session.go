package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/params"
	"github.com/cwbudde/algo-glitch/internal/engine"
)

// chainFlags are the flags render and play share.
type chainFlags struct {
	block      int
	sets       setFlags
	preset     string
	state      string
	savePreset string
	saveState  string
	chaos      bool
	seed       int64
	verbose    bool
}

func (f *chainFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.block, "block", core.DefaultBlockSize, "processing block size in samples")
	fs.Var(&f.sets, "set", "set a parameter, id=value (repeatable; see glitchfx params)")
	fs.StringVar(&f.preset, "preset", "", "load parameter values from a JSON preset")
	fs.StringVar(&f.state, "state", "", "load chain state (switches, order, gain) from XML")
	fs.StringVar(&f.savePreset, "save-preset", "", "write the final parameter values as JSON")
	fs.StringVar(&f.saveState, "save-state", "", "write the final chain state as XML")
	fs.BoolVar(&f.chaos, "chaos", false, "enable chaos mode")
	fs.Int64Var(&f.seed, "seed", 0, "seed for the randomized modules (default: fixed per module)")
	fs.BoolVar(&f.verbose, "v", false, "verbose logging")
}

func flagPassed(fs *flag.FlagSet, name string) bool {
	passed := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

// build creates an engine and applies preset, state, -set and -chaos in
// that order.
func (f *chainFlags) build(fs *flag.FlagSet, logger logrus.FieldLogger) (*engine.Engine, error) {
	opts := []engine.Option{engine.WithLogger(logger)}
	if flagPassed(fs, "seed") {
		opts = append(opts, engine.WithSeed(f.seed))
	}

	e, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}

	if f.preset != "" {
		if err := withFile(f.preset, func(file *os.File) error { return e.LoadPreset(file) }); err != nil {
			return nil, err
		}
	}

	if f.state != "" {
		if err := withFile(f.state, func(file *os.File) error { return e.LoadState(file) }); err != nil {
			return nil, err
		}
	}

	if err := f.sets.apply(e); err != nil {
		return nil, err
	}

	if f.chaos {
		if err := e.SetParameter(params.GlobalChaosMode, 1); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// save writes -save-preset and -save-state outputs.
func (f *chainFlags) save(e *engine.Engine) error {
	if f.savePreset != "" {
		if err := createFile(f.savePreset, func(file *os.File) error { return e.SavePreset(file) }); err != nil {
			return err
		}
	}

	if f.saveState != "" {
		if err := createFile(f.saveState, func(file *os.File) error { return e.SaveState(file) }); err != nil {
			return err
		}
	}

	return nil
}

func withFile(path string, fn func(*os.File) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := fn(file); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func createFile(path string, fn func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := fn(file); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	return file.Close()
}
