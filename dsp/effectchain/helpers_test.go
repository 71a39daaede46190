package effectchain

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-glitch/dsp/effects"
)

func dummyFactory(_ Context) (effects.Effect, error) {
	return effects.NewBitCrusher()
}

// quietLogger discards chain log output during tests.
func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// crusher returns an enabled 2-bit bit crusher.
func crusher(t *testing.T) *effects.BitCrusher {
	t.Helper()

	fx, err := effects.NewBitCrusher(effects.WithBitCrusherBitDepth(2))
	if err != nil {
		t.Fatalf("NewBitCrusher() error = %v", err)
	}

	fx.SetEnabled(true)

	return fx
}

// flanger returns an enabled fully wet flanger with feedback.
func flanger(t *testing.T) *effects.WeirdFlanger {
	t.Helper()

	fx, err := effects.NewWeirdFlanger(effects.WithFlangerFeedback(0.5), effects.WithFlangerDepth(0.3))
	if err != nil {
		t.Fatalf("NewWeirdFlanger() error = %v", err)
	}

	fx.SetEnabled(true)

	return fx
}

// newTestChain returns a prepared chain holding the given modules.
func newTestChain(t *testing.T, fx ...effects.Effect) *Chain {
	t.Helper()

	c := New(WithLogger(quietLogger()))
	for _, f := range fx {
		c.AddEffect(f)
	}

	c.PrepareToPlay(44100, 256)

	if !c.Prepared() {
		t.Fatal("PrepareToPlay left chain unprepared")
	}

	return c
}
