package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/effects"
	"github.com/cwbudde/algo-glitch/dsp/params"
	"github.com/cwbudde/algo-glitch/internal/testutil"
	"github.com/cwbudde/algo-glitch/measure/analysis"
)

func newPrepared(t *testing.T, sampleRate float64, opts ...Option) *Engine {
	t.Helper()

	e, err := New(append([]Option{WithSeed(3)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = e.Prepare(core.ApplyProcessorOptions(core.WithSampleRate(sampleRate), core.WithBlockSize(256)))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	return e
}

func mustSet(t *testing.T, e *Engine, id string, v float64) {
	t.Helper()

	if err := e.SetParameter(id, v); err != nil {
		t.Fatalf("SetParameter(%s) error = %v", id, err)
	}
}

func TestEngineOptionErrors(t *testing.T) {
	t.Parallel()

	if _, err := New(WithChaosPollInterval(0)); err == nil {
		t.Fatal("expected error for zero poll interval")
	}

	if _, err := New(WithParams(nil)); err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestEnginePrepareRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := e.Prepare(core.ProcessorConfig{SampleRate: 44100, BlockSize: 0, Channels: 2}); err == nil {
		t.Fatal("expected error for zero block size")
	}

	in := testutil.StereoSine(440, 44100, 0.5, 64)
	buf := testutil.CloneBlock(in)
	e.ProcessBlock(buf)
	testutil.RequireBlockNearlyEqual(t, buf, in, 0)
}

func TestEnginePreparePushesRegistry(t *testing.T) {
	t.Parallel()

	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	mustSet(t, e, params.BitCrusherEnabled, 1)
	mustSet(t, e, params.BitCrusherBitDepth, 2)
	mustSet(t, e, params.BitCrusherMix, 1)

	if err := e.Prepare(core.DefaultProcessorConfig()); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if !e.Chain().EffectByName(effects.NameBitCrusher).Enabled() {
		t.Fatal("Prepare did not push bc_enabled")
	}

	buf := testutil.StereoSine(440, 44100, 0.9, 256)
	e.ProcessBlock(buf)

	if !analysis.OnGrid(buf[0], 2) || !analysis.OnGrid(buf[1], 2) {
		t.Fatal("output is off the 2-bit grid")
	}
}

func TestEngineProcessBlockPushesChanges(t *testing.T) {
	t.Parallel()

	e := newPrepared(t, 44100)
	in := testutil.StereoSine(440, 44100, 0.5, 256)

	buf := testutil.CloneBlock(in)
	e.ProcessBlock(buf)
	testutil.RequireBlockNearlyEqual(t, buf, in, 0)

	mustSet(t, e, params.GlobalOutputGain, 0.5)

	buf = testutil.CloneBlock(in)
	e.ProcessBlock(buf)

	for i := range buf[0] {
		if buf[0][i] != in[0][i]*0.5 {
			t.Fatalf("sample %d = %v, want %v", i, buf[0][i], in[0][i]*0.5)
		}
	}

	if e.Chain().GlobalGain() != 0.5 {
		t.Fatalf("GlobalGain() = %v", e.Chain().GlobalGain())
	}
}

func TestEnginePollChaos(t *testing.T) {
	t.Parallel()

	e := newPrepared(t, 1000)
	mustSet(t, e, params.GlobalChaosMode, 1)
	mustSet(t, e, params.ChaosSpeed, 10)
	mustSet(t, e, params.ChaosIntensity, 100)

	if e.PollChaos() {
		t.Fatal("PollChaos() before any audio reported a trigger")
	}

	for range 3 {
		e.ProcessBlock(testutil.StereoSine(100, 1000, 0.5, 256))
	}

	if !e.PollChaos() {
		t.Fatal("PollChaos() missed a pending trigger")
	}

	if e.PollChaos() {
		t.Fatal("coalesced triggers should randomize once")
	}

	changed := 0
	e.Params().Each(func(def params.Definition, v float64) {
		if effects.Randomizable(def.ID) && v != def.Default {
			changed++
		}
	})

	if changed == 0 {
		t.Fatal("full-intensity chaos left every parameter at its default")
	}

	if v, _ := e.Params().Value(params.GlobalOutputGain); v != 1 {
		t.Fatalf("chaos touched the output gain: %v", v)
	}

	if v, _ := e.Params().Value(params.GlobalChaosMode); v != 1 {
		t.Fatalf("chaos touched its own switch: %v", v)
	}
}

func TestEngineRunChaos(t *testing.T) {
	t.Parallel()

	e := newPrepared(t, 1000, WithChaosPollInterval(time.Millisecond))
	mustSet(t, e, params.GlobalChaosMode, 1)
	mustSet(t, e, params.ChaosSpeed, 10)
	e.ProcessBlock(testutil.StereoSine(100, 1000, 0.5, 256))

	chaos := e.Chain().EffectByName(effects.NameChaosController).(*effects.ChaosController)
	if !chaos.Pending() {
		t.Fatal("expected a pending trigger")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- e.RunChaos(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for chaos.Pending() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("RunChaos() error = %v, want context.Canceled", err)
	}

	if chaos.Pending() {
		t.Fatal("RunChaos did not consume the trigger")
	}
}

// Run with -race: the audio side pushes chaos settings into the
// controller while the control side randomizes with them.
func TestEngineChaosAcrossGoroutines(t *testing.T) {
	t.Parallel()

	e := newPrepared(t, 1000)
	mustSet(t, e, params.GlobalChaosMode, 1)
	mustSet(t, e, params.ChaosSpeed, 10)

	stop := make(chan struct{})
	done := make(chan int)

	go func() {
		polls := 0
		for {
			select {
			case <-stop:
				done <- polls
				return
			default:
				if e.PollChaos() {
					polls++
				}
			}
		}
	}()

	for i := range 200 {
		mustSet(t, e, params.ChaosIntensity, float64(i%100))
		mustSet(t, e, params.ChaosSpeed, float64(1+i%10))
		block := testutil.StereoSine(100, 1000, 0.5, 256)
		e.ProcessBlock(block)
		testutil.RequireBlockFinite(t, block)
	}

	chaos := e.Chain().EffectByName(effects.NameChaosController).(*effects.ChaosController)
	deadline := time.Now().Add(2 * time.Second)
	for chaos.Pending() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	close(stop)
	if polls := <-done; polls == 0 {
		t.Fatal("control goroutine never consumed a trigger")
	}
}

func TestEngineToggleParameter(t *testing.T) {
	t.Parallel()

	e := newPrepared(t, 44100)

	for _, id := range ModuleToggles {
		on, err := e.ToggleParameter(id)
		if err != nil || !on {
			t.Fatalf("ToggleParameter(%s) = %v, %v", id, on, err)
		}

		on, err = e.ToggleParameter(id)
		if err != nil || on {
			t.Fatalf("second ToggleParameter(%s) = %v, %v", id, on, err)
		}
	}

	if _, err := e.ToggleParameter("nope"); !errors.Is(err, params.ErrUnknownParameter) {
		t.Fatalf("ToggleParameter(nope) error = %v", err)
	}

	if err := e.SetParameter("nope", 1); !errors.Is(err, params.ErrUnknownParameter) {
		t.Fatalf("SetParameter(nope) error = %v", err)
	}
}

func TestEngineLoadStateSyncsRegistry(t *testing.T) {
	t.Parallel()

	e := newPrepared(t, 44100)

	doc := `<EffectChainState GlobalGain="0.5">
  <Effects>
    <Effect Index="0" Name="BitCrusher" Enabled="true"/>
    <Effect Index="5" Name="WeirdFlanger" Enabled="true"/>
  </Effects>
  <ProcessingOrder><Index value="5"/><Index value="0"/></ProcessingOrder>
</EffectChainState>`

	if err := e.LoadState(strings.NewReader(doc)); err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	e.ProcessBlock(testutil.StereoSine(440, 44100, 0.5, 256))

	if !e.Chain().Effect(0).Enabled() || !e.Chain().Effect(5).Enabled() {
		t.Fatal("parameter push undid the loaded switches")
	}

	if e.Chain().GlobalGain() != 0.5 {
		t.Fatalf("GlobalGain() = %v, want 0.5", e.Chain().GlobalGain())
	}

	if v, _ := e.Params().Value(params.WeirdFlangerEnabled); v != 1 {
		t.Fatalf("wf_enabled = %v, want 1", v)
	}

	if got := e.Chain().ProcessingOrder(); len(got) != 2 || got[0] != 5 {
		t.Fatalf("ProcessingOrder() = %v", got)
	}
}

func TestEnginePresetRoundTrip(t *testing.T) {
	t.Parallel()

	src := newPrepared(t, 44100)
	mustSet(t, src, params.PitchDriftAmount, 300)
	mustSet(t, src, params.SliceRearrangeSliceCount, 8)

	var buf bytes.Buffer
	if err := src.SavePreset(&buf); err != nil {
		t.Fatalf("SavePreset() error = %v", err)
	}

	dst := newPrepared(t, 44100)
	if err := dst.LoadPreset(&buf); err != nil {
		t.Fatalf("LoadPreset() error = %v", err)
	}

	dst.ProcessBlock(testutil.StereoSine(440, 44100, 0.5, 256))

	pd := dst.Chain().EffectByName(effects.NamePitchDrift).(*effects.PitchDrift)
	if pd.Amount() != 300 {
		t.Fatalf("PitchDrift amount = %v, want 300", pd.Amount())
	}

	dst.ResetParameters()

	if v, _ := dst.Params().Value(params.PitchDriftAmount); v != 0 {
		t.Fatalf("ResetParameters left pd_amount = %v", v)
	}

	if err := dst.LoadPreset(strings.NewReader("{")); err == nil {
		t.Fatal("expected decode error")
	}
}
