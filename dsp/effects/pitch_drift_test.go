package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-glitch/dsp/params"
	"github.com/cwbudde/algo-glitch/internal/testutil"
)

func newPreparedPitchDrift(t *testing.T, sampleRate float64, opts ...PitchDriftOption) *PitchDrift {
	t.Helper()

	pd, err := NewPitchDrift(opts...)
	if err != nil {
		t.Fatalf("NewPitchDrift() error = %v", err)
	}
	pd.Prepare(sampleRate, 256)
	if !pd.Prepared() {
		t.Fatal("Prepare() left pitch drift unprepared")
	}
	return pd
}

func TestPitchDriftZeroAmountIsPureDelay(t *testing.T) {
	pd := newPreparedPitchDrift(t, 1000, WithPitchDriftAmount(0))

	in := testutil.DeterministicNoise(7, 1, 200)
	buf := testutil.Planar(in, in)
	pd.Process(buf)

	want := make([]float64, len(in))
	for i := 20; i < len(in); i++ {
		want[i] = in[i-20]
	}
	testutil.RequireSliceNearlyEqual(t, buf[0], want, 1e-9)
	testutil.RequireSliceNearlyEqual(t, buf[1], want, 1e-9)
}

func TestPitchDriftDelaySweep(t *testing.T) {
	pd := newPreparedPitchDrift(t, 1000, WithPitchDriftAmount(1200))

	pd.lfoPhase = 0.25
	if got := pd.CurrentDelay(); math.Abs(got-10) > 1e-9 {
		t.Fatalf("delay at +1 octave = %v, want 10", got)
	}
	pd.lfoPhase = 0.75
	if got := pd.CurrentDelay(); math.Abs(got-40) > 1e-9 {
		t.Fatalf("delay at -1 octave = %v, want 40", got)
	}
	pd.lfoPhase = 0
	if got := pd.CurrentDelay(); math.Abs(got-20) > 1e-9 {
		t.Fatalf("delay at rest = %v, want 20", got)
	}
}

func TestPitchDriftDelayStaysInLine(t *testing.T) {
	pd := newPreparedPitchDrift(t, 44100, WithPitchDriftAmount(1200), WithPitchDriftSpeed(10))

	for block := 0; block < 50; block++ {
		d := pd.CurrentDelay()
		if d < 1 || d > pd.maxDelay {
			t.Fatalf("delay %v outside [1, %v]", d, pd.maxDelay)
		}
		buf := testutil.StereoSine(440, 44100, 1, 256)
		pd.Process(buf)
		testutil.RequireBlockFinite(t, buf)
		if pd.lfoPhase < 0 || pd.lfoPhase >= 1 {
			t.Fatalf("LFO phase %v escaped [0, 1)", pd.lfoPhase)
		}
	}
}

func TestPitchDriftMixZeroIsDry(t *testing.T) {
	pd := newPreparedPitchDrift(t, 48000, WithPitchDriftAmount(600), WithPitchDriftMix(0))
	in := testutil.StereoSine(330, 48000, 0.7, 512)
	buf := testutil.CloneBlock(in)

	pd.Process(buf)
	testutil.RequireBlockNearlyEqual(t, buf, in, 0)
}

func TestPitchDriftParameterRouting(t *testing.T) {
	pd := newPreparedPitchDrift(t, 48000)

	pd.SetParameterValue(params.PitchDriftEnabled, 1)
	pd.SetParameterValue(params.PitchDriftAmount, 5000)
	pd.SetParameterValue(params.PitchDriftSpeed, 0)
	pd.SetParameterValue(params.PitchDriftMix, 0.3)
	pd.SetParameterValue(params.WeirdFlangerRate, 3)

	if !pd.Enabled() || pd.Amount() != 1200 || pd.Speed() != 0.01 || pd.Mix() != 0.3 {
		t.Fatalf("routing: enabled=%v amount=%v speed=%v mix=%v", pd.Enabled(), pd.Amount(), pd.Speed(), pd.Mix())
	}
	if _, err := NewPitchDrift(WithPitchDriftSpeed(11)); err == nil {
		t.Fatal("expected speed validation error")
	}
}

func TestPitchDriftResetClearsHistory(t *testing.T) {
	pd := newPreparedPitchDrift(t, 1000)
	pd.Process(testutil.StereoSine(50, 1000, 1, 100))

	pd.Reset()
	buf := testutil.Planar(make([]float64, 10), make([]float64, 10))
	pd.Process(buf)
	for _, ch := range buf {
		for i, v := range ch {
			if v != 0 {
				t.Fatalf("sample %d = %v after Reset, want silence", i, v)
			}
		}
	}
}
