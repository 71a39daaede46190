package effects

import (
	"testing"

	"github.com/cwbudde/algo-glitch/dsp/mix"
	"github.com/cwbudde/algo-glitch/dsp/params"
	"github.com/cwbudde/algo-glitch/internal/testutil"
)

func newPreparedReverseSlice(t *testing.T, opts ...ReverseSliceOption) *ReverseSlice {
	t.Helper()

	rs, err := NewReverseSlice(opts...)
	if err != nil {
		t.Fatalf("NewReverseSlice() error = %v", err)
	}
	rs.Prepare(1000, 64)
	if !rs.Prepared() {
		t.Fatal("Prepare() left reverse slice unprepared")
	}
	return rs
}

// runBlocks feeds in through rs in blocks of size n and returns channel 0.
func runBlocks(rs *ReverseSlice, in []float64, n int) []float64 {
	out := make([]float64, 0, len(in))
	for start := 0; start < len(in); start += n {
		end := min(start+n, len(in))
		block := testutil.Planar(in[start:end], in[start:end])
		rs.Process(block)
		out = append(out, block[0]...)
	}
	return out
}

func TestReverseTwiceIsIdentity(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 64} {
		in := testutil.DeterministicNoise(int64(n), 1, n)
		buf := append([]float64(nil), in...)

		Reverse(buf)
		if n > 1 && buf[0] != in[n-1] {
			t.Fatalf("n=%d: Reverse did not move the last sample first", n)
		}
		Reverse(buf)
		testutil.RequireSliceNearlyEqual(t, buf, in, 0)
	}
}

func TestReverseSliceForwardPlaybackDelaysBySlice(t *testing.T) {
	rs := newPreparedReverseSlice(t, WithReverseInterval(50), WithReverseChance(0), WithReverseMix(1))
	if rs.IntervalSamples() != 50 {
		t.Fatalf("IntervalSamples() = %d, want 50", rs.IntervalSamples())
	}

	in := testutil.Ramp(1, 1, 400)
	out := runBlocks(rs, in, 25)

	for i, v := range out {
		want := in[i]
		if i >= 49 {
			want = in[i-49]
		}
		if v != want {
			t.Fatalf("sample %d: got %v, want %v", i, v, want)
		}
	}
}

func TestReverseSliceKeepsChannelsApart(t *testing.T) {
	rs := newPreparedReverseSlice(t, WithReverseInterval(50), WithReverseChance(0), WithReverseMix(1))

	left := testutil.Ramp(1, 1, 300)
	right := testutil.Ramp(-1, -2, 300)
	var outL, outR []float64
	for start := 0; start < len(left); start += 32 {
		end := min(start+32, len(left))
		block := testutil.Planar(left[start:end], right[start:end])
		rs.Process(block)
		outL = append(outL, block[0]...)
		outR = append(outR, block[1]...)
	}

	for i := 49; i < len(left); i++ {
		if outL[i] != left[i-49] || outR[i] != right[i-49] {
			t.Fatalf("sample %d: got (%v, %v), want (%v, %v)", i, outL[i], outR[i], left[i-49], right[i-49])
		}
	}
}

func TestReverseSliceReversesWithCrossfade(t *testing.T) {
	rs := newPreparedReverseSlice(t, WithReverseInterval(50), WithReverseChance(1), WithReverseMix(1))

	in := testutil.Ramp(1, 1, 100)
	out := runBlocks(rs, in, 32)

	want := append([]float64(nil), in[:50]...)
	Reverse(want)
	mix.SliceCrossfade(want, mix.CrossfadeSamples)

	testutil.RequireSliceNearlyEqual(t, out[:49], in[:49], 0)
	testutil.RequireSliceNearlyEqual(t, out[49:99], want, 1e-12)
}

func TestReverseSlicePendingSwapKeepsAlignment(t *testing.T) {
	rs := newPreparedReverseSlice(t, WithReverseInterval(100), WithReverseChance(0), WithReverseMix(1))

	in := testutil.Ramp(1, 1, 400)
	out := runBlocks(rs, in[:100], 20)

	// The next slice finishes while the first still plays and waits in the
	// pending buffer.
	rs.SetParameterValue(params.ReverseSliceInterval, 50)
	out = append(out, runBlocks(rs, in[100:], 20)...)

	for i := 99; i < len(out); i++ {
		if out[i] != in[i-99] {
			t.Fatalf("sample %d: got %v, want %v", i, out[i], in[i-99])
		}
	}
}

func TestReverseSliceMixZeroIsDry(t *testing.T) {
	rs := newPreparedReverseSlice(t, WithReverseInterval(50), WithReverseChance(1))
	in := testutil.DeterministicNoise(4, 1, 500)

	out := runBlocks(rs, in, 64)
	testutil.RequireSliceNearlyEqual(t, out, in, 0)
}

func TestReverseSliceSeedIsReproducible(t *testing.T) {
	in := testutil.DeterministicNoise(8, 1, 2000)

	rs1 := newPreparedReverseSlice(t, WithReverseInterval(50), WithReverseMix(1), WithReverseSeed(42))
	rs2 := newPreparedReverseSlice(t, WithReverseInterval(50), WithReverseMix(1), WithReverseSeed(42))
	testutil.RequireSliceNearlyEqual(t, runBlocks(rs1, in, 64), runBlocks(rs2, in, 64), 0)

	rs1.Reset()
	first := runBlocks(rs1, in, 64)
	rs1.Reset()
	testutil.RequireSliceNearlyEqual(t, runBlocks(rs1, in, 64), first, 0)
}

func TestReverseSliceIntervalClamp(t *testing.T) {
	rs, err := NewReverseSlice()
	if err != nil {
		t.Fatalf("NewReverseSlice() error = %v", err)
	}
	rs.Prepare(96000, 512)

	rs.SetInterval(5000)
	if rs.Interval() != maxReverseIntervalMs {
		t.Fatalf("Interval() = %v, want %v", rs.Interval(), maxReverseIntervalMs)
	}
	if rs.IntervalSamples() != MaxReverseSliceSamples {
		t.Fatalf("IntervalSamples() = %d, want cap %d", rs.IntervalSamples(), MaxReverseSliceSamples)
	}

	rs.SetChance(-1)
	if rs.Chance() != 0 {
		t.Fatalf("Chance() = %v, want 0", rs.Chance())
	}
	if _, err := NewReverseSlice(WithReverseInterval(10)); err == nil {
		t.Fatal("expected interval validation error")
	}
}
