package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-glitch/dsp/params"
	"github.com/cwbudde/algo-glitch/internal/testutil"
)

func newPreparedFlanger(t *testing.T, sampleRate float64, opts ...WeirdFlangerOption) *WeirdFlanger {
	t.Helper()

	wf, err := NewWeirdFlanger(opts...)
	if err != nil {
		t.Fatalf("NewWeirdFlanger() error = %v", err)
	}
	wf.Prepare(sampleRate, 256)
	if !wf.Prepared() {
		t.Fatal("Prepare() left flanger unprepared")
	}
	return wf
}

func TestWeirdFlangerZeroDepthIsMinimumDelay(t *testing.T) {
	// 0.5 ms at 10 kHz is 5 samples.
	wf := newPreparedFlanger(t, 10000, WithFlangerDepth(0))

	in := testutil.DeterministicNoise(12, 1, 100)
	buf := testutil.Planar(in)
	wf.Process(buf)

	want := make([]float64, len(in))
	for i := 5; i < len(in); i++ {
		want[i] = in[i-5]
	}
	testutil.RequireSliceNearlyEqual(t, buf[0], want, 1e-9)
}

func TestWeirdFlangerFeedbackEchoes(t *testing.T) {
	wf := newPreparedFlanger(t, 10000, WithFlangerDepth(0), WithFlangerFeedback(0.5))

	buf := testutil.Planar(testutil.Impulse(30, 0))
	wf.Process(buf)

	// The stored feedback is the previous output, so echoes land every
	// delay+1 samples at half the level.
	want := make([]float64, 30)
	want[5], want[11], want[17], want[23], want[29] = 1, 0.5, 0.25, 0.125, 0.0625
	testutil.RequireSliceNearlyEqual(t, buf[0], want, 1e-9)
}

func TestWeirdFlangerDelaySweep(t *testing.T) {
	wf := newPreparedFlanger(t, 48000, WithFlangerDepth(1))

	wf.lfoPhase = 0.25
	if got := wf.CurrentDelay(); math.Abs(got-480) > 1e-6 {
		t.Fatalf("delay at LFO peak = %v, want 480", got)
	}
	wf.lfoPhase = 0.75
	if got := wf.CurrentDelay(); math.Abs(got-24) > 1e-6 {
		t.Fatalf("delay at LFO trough = %v, want 24", got)
	}

	wf.SetDepth(0.5)
	wf.lfoPhase = 0.25
	if got := wf.CurrentDelay(); math.Abs(got-252) > 1e-6 {
		t.Fatalf("half-depth delay = %v, want 252", got)
	}
}

func TestWeirdFlangerStaysFinite(t *testing.T) {
	wf := newPreparedFlanger(t, 44100, WithFlangerRate(20), WithFlangerDepth(1), WithFlangerFeedback(-0.9))

	for block := 0; block < 100; block++ {
		buf := testutil.StereoSine(440, 44100, 1, 256)
		wf.Process(buf)
		testutil.RequireBlockFinite(t, buf)
	}
}

func TestWeirdFlangerMixZeroIsDry(t *testing.T) {
	wf := newPreparedFlanger(t, 44100, WithFlangerFeedback(0.7), WithFlangerMix(0))
	in := testutil.StereoSine(440, 44100, 0.5, 256)
	buf := testutil.CloneBlock(in)

	wf.Process(buf)
	testutil.RequireBlockNearlyEqual(t, buf, in, 0)
}

func TestWeirdFlangerParameterRouting(t *testing.T) {
	wf := newPreparedFlanger(t, 44100)

	wf.SetParameterValue(params.WeirdFlangerEnabled, 0.9)
	wf.SetParameterValue(params.WeirdFlangerRate, 50)
	wf.SetParameterValue(params.WeirdFlangerDepth, -1)
	wf.SetParameterValue(params.WeirdFlangerFeedback, -3)
	wf.SetParameterValue(params.WeirdFlangerMix, 0.4)
	wf.SetParameterValue(params.GlobalChaosMode, 1)

	if !wf.Enabled() || wf.Rate() != 20 || wf.Depth() != 0 || wf.Feedback() != -1 || wf.Mix() != 0.4 {
		t.Fatalf("routing: enabled=%v rate=%v depth=%v feedback=%v mix=%v",
			wf.Enabled(), wf.Rate(), wf.Depth(), wf.Feedback(), wf.Mix())
	}
	if _, err := NewWeirdFlanger(WithFlangerFeedback(1.5)); err == nil {
		t.Fatal("expected feedback validation error")
	}
}
