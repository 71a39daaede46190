package effects

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/params"
)

const (
	defaultChaosSpeed     = 4.0
	defaultChaosIntensity = 1.0
	defaultChaosSeed      = 1
	minChaosSpeed         = 0.01
	maxChaosSpeed         = 10.0
)

// ParameterSet is the control-side view of the parameter registry that
// ChaosController randomizes.
type ParameterSet interface {
	Each(fn func(def params.Definition, value float64))
	Set(id string, value float64) error
}

// ChaosControllerOption mutates chaos controller construction parameters.
type ChaosControllerOption func(*chaosControllerConfig) error

type chaosControllerConfig struct {
	speed     float64
	intensity float64
	seed      int64
}

// WithChaosSpeed sets how often randomization is requested, in Hz in
// [0.01, 10].
func WithChaosSpeed(hz float64) ChaosControllerOption {
	return func(cfg *chaosControllerConfig) error {
		if hz < minChaosSpeed || hz > maxChaosSpeed || math.IsNaN(hz) {
			return fmt.Errorf("chaos speed must be in [%g, %g]: %f", minChaosSpeed, maxChaosSpeed, hz)
		}
		cfg.speed = hz
		return nil
	}
}

// WithChaosIntensity sets the per-parameter change probability in [0, 1].
func WithChaosIntensity(intensity float64) ChaosControllerOption {
	return func(cfg *chaosControllerConfig) error {
		if intensity < 0 || intensity > 1 || math.IsNaN(intensity) {
			return fmt.Errorf("chaos intensity must be in [0, 1]: %f", intensity)
		}
		cfg.intensity = intensity
		return nil
	}
}

// WithChaosSeed sets the RNG seed used by RandomizeParameters.
func WithChaosSeed(seed int64) ChaosControllerOption {
	return func(cfg *chaosControllerConfig) error {
		cfg.seed = seed
		return nil
	}
}

// ChaosController leaves audio untouched. While enabled, Process counts
// samples and raises a trigger flag every sampleRate/Speed samples. A
// control goroutine polls ConsumeTrigger and calls RandomizeParameters;
// the audio path never touches the parameter set. Speed and intensity are
// atomics: the audio side sets them and the control side reads them.
type ChaosController struct {
	base

	speedBits     atomic.Uint64
	intensityBits atomic.Uint64
	seed          int64
	rng           *rand.Rand

	counter  int
	interval int
	trigger  atomic.Bool
}

// NewChaosController creates a disabled chaos controller with optional
// configuration overrides.
func NewChaosController(opts ...ChaosControllerOption) (*ChaosController, error) {
	cfg := chaosControllerConfig{
		speed:     defaultChaosSpeed,
		intensity: defaultChaosIntensity,
		seed:      defaultChaosSeed,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	cc := &ChaosController{
		seed: cfg.seed,
		rng:  rand.New(rand.NewSource(cfg.seed)),
	}
	cc.speedBits.Store(math.Float64bits(cfg.speed))
	cc.intensityBits.Store(math.Float64bits(cfg.intensity))
	return cc, nil
}

// Name returns "ChaosController".
func (cc *ChaosController) Name() string { return NameChaosController }

// Prepare computes the trigger interval for the sample rate.
func (cc *ChaosController) Prepare(sampleRate float64, maxBlockSize int) {
	if !cc.prepareBase(sampleRate, maxBlockSize) {
		return
	}
	cc.updateInterval()
	cc.Reset()
}

// Reset restarts the sample counter and drops a pending trigger.
func (cc *ChaosController) Reset() {
	cc.counter = 0
	cc.trigger.Store(false)
}

// SetParameterValue routes global_chaos_mode and chaos_* ids. The
// intensity arrives in percent.
func (cc *ChaosController) SetParameterValue(id string, value float64) {
	switch id {
	case params.GlobalChaosMode:
		was := cc.Enabled()
		cc.SetEnabled(params.IsOn(value))
		if was && !cc.Enabled() {
			cc.Reset()
		}
	case params.ChaosSpeed:
		cc.SetSpeed(value)
	case params.ChaosIntensity:
		cc.SetIntensity(value / 100)
	}
}

// SetSpeed sets the trigger rate in Hz, clamped to [0.01, 10].
func (cc *ChaosController) SetSpeed(hz float64) {
	if math.IsNaN(hz) {
		return
	}
	cc.speedBits.Store(math.Float64bits(core.Clamp(hz, minChaosSpeed, maxChaosSpeed)))
	cc.updateInterval()
}

// SetIntensity sets the change probability, clamped to [0, 1].
func (cc *ChaosController) SetIntensity(intensity float64) {
	if math.IsNaN(intensity) {
		return
	}
	cc.intensityBits.Store(math.Float64bits(core.Clamp(intensity, 0, 1)))
}

// SetRandomSeed sets the RNG seed for reproducible randomization.
func (cc *ChaosController) SetRandomSeed(seed int64) {
	cc.seed = seed
	cc.rng.Seed(seed)
}

// Speed returns the trigger rate in Hz.
func (cc *ChaosController) Speed() float64 { return math.Float64frombits(cc.speedBits.Load()) }

// Intensity returns the change probability in [0, 1].
func (cc *ChaosController) Intensity() float64 {
	return math.Float64frombits(cc.intensityBits.Load())
}

// Interval returns the number of samples between triggers.
func (cc *ChaosController) Interval() int { return cc.interval }

// Process advances the trigger counter by the block length. The buffer is
// not modified.
func (cc *ChaosController) Process(buf [][]float64) {
	if !cc.prepared || !cc.Enabled() {
		return
	}
	_, frames := blockShape(buf)

	for i := 0; i < frames; i++ {
		cc.counter++
		if cc.counter >= cc.interval {
			cc.trigger.Store(true)
			cc.counter = 0
			cc.updateInterval()
		}
	}
}

// Pending reports whether a randomization has been requested.
func (cc *ChaosController) Pending() bool { return cc.trigger.Load() }

// ConsumeTrigger clears the trigger flag and reports whether it was set.
// Any number of triggers raised since the last call collapse into one.
func (cc *ChaosController) ConsumeTrigger() bool { return cc.trigger.Swap(false) }

// RandomizeParameters gives every parameter except the chaos controls and
// the output gain a uniformly random value within its range, each with
// probability Intensity. It returns the number of parameters changed and
// must only be called from the control side.
func (cc *ChaosController) RandomizeParameters(ps ParameterSet) int {
	if ps == nil {
		return 0
	}

	type change struct {
		id    string
		value float64
	}
	intensity := cc.Intensity()
	var changes []change
	ps.Each(func(def params.Definition, _ float64) {
		if !Randomizable(def.ID) {
			return
		}
		if cc.rng.Float64() < intensity {
			v := def.Min + cc.rng.Float64()*(def.Max-def.Min)
			changes = append(changes, change{def.ID, v})
		}
	})

	n := 0
	for _, c := range changes {
		if err := ps.Set(c.id, c.value); err == nil {
			n++
		}
	}
	return n
}

// Randomizable reports whether chaos may change the parameter id.
func Randomizable(id string) bool {
	switch id {
	case params.GlobalChaosMode, params.ChaosSpeed, params.ChaosIntensity, params.GlobalOutputGain:
		return false
	}
	return true
}

func (cc *ChaosController) updateInterval() {
	if cc.sampleRate <= 0 {
		return
	}
	cc.interval = max(1, int(cc.sampleRate/cc.Speed()))
}
