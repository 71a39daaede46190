package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/cwbudde/algo-glitch/dsp/effectchain"
	"github.com/cwbudde/algo-glitch/dsp/params"
	"github.com/cwbudde/algo-glitch/internal/engine"
)

const keyCtrlC = 0x03

// Controller is the part of the engine the key map drives. It only writes
// the parameter registry.
type Controller interface {
	ToggleParameter(id string) (bool, error)
	ResetParameters()
}

// HandleKey applies one key press:
//
//	1-6  toggle the module at that chain position
//	c    toggle chaos mode
//	r    reset all parameters
//	q    quit (also Ctrl-C)
//
// It returns a status line for the user and whether to quit.
func HandleKey(c Controller, key byte) (status string, quit bool) {
	switch {
	case key >= '1' && int(key-'1') < len(engine.ModuleToggles):
		i := int(key - '1')
		return toggle(c, engine.ModuleToggles[i], effectchain.DefaultLineup[i]), false
	case key == 'c':
		return toggle(c, params.GlobalChaosMode, "Chaos"), false
	case key == 'r':
		c.ResetParameters()
		return "Parameters reset", false
	case key == 'q' || key == keyCtrlC:
		return "", true
	default:
		return "", false
	}
}

func toggle(c Controller, id, label string) string {
	on, err := c.ToggleParameter(id)
	if err != nil {
		return err.Error()
	}
	if on {
		return label + " on"
	}
	return label + " off"
}

// ReadKeys calls fn for every byte read from r until fn returns false,
// r is exhausted or ctx is cancelled. The pending Read is abandoned on
// cancellation.
func ReadKeys(ctx context.Context, r io.Reader, fn func(key byte) bool) error {
	keys := make(chan byte)
	errc := make(chan error, 1)

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key := <-keys:
			if !fn(key) {
				return nil
			}
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("playback: read keys: %w", err)
		}
	}
}

// RawMode puts f into raw mode when it is a terminal and returns a
// function restoring the previous state. For non-terminals it does
// nothing.
func RawMode(f *os.File) (restore func() error, err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() error { return nil }, nil
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("playback: raw mode: %w", err)
	}

	return func() error { return term.Restore(fd, old) }, nil
}
