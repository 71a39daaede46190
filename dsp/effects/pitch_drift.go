package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/delay"
	"github.com/cwbudde/algo-glitch/dsp/mix"
	"github.com/cwbudde/algo-glitch/dsp/params"
)

const (
	defaultPitchDriftAmount = 0.0
	defaultPitchDriftSpeed  = 1.0
	defaultPitchDriftMix    = 1.0
	maxPitchDriftAmount     = 1200.0
	minPitchDriftSpeed      = 0.01
	maxPitchDriftSpeed      = 10.0

	// pitchDriftBaseDelayMs is the resting delay. One octave of deviation
	// halves or doubles it, so the line holds twice the base delay.
	pitchDriftBaseDelayMs = 20.0
	pitchDriftLineMs      = 2 * pitchDriftBaseDelayMs
)

// PitchDriftOption mutates pitch drift construction parameters.
type PitchDriftOption func(*pitchDriftConfig) error

type pitchDriftConfig struct {
	amount float64
	speed  float64
	mix    float64
}

// WithPitchDriftAmount sets the peak deviation in cents in [0, 1200].
func WithPitchDriftAmount(cents float64) PitchDriftOption {
	return func(cfg *pitchDriftConfig) error {
		if cents < 0 || cents > maxPitchDriftAmount || math.IsNaN(cents) {
			return fmt.Errorf("pitch drift amount must be in [0, %g]: %f", maxPitchDriftAmount, cents)
		}
		cfg.amount = cents
		return nil
	}
}

// WithPitchDriftSpeed sets the LFO rate in Hz in [0.01, 10].
func WithPitchDriftSpeed(hz float64) PitchDriftOption {
	return func(cfg *pitchDriftConfig) error {
		if hz < minPitchDriftSpeed || hz > maxPitchDriftSpeed || math.IsNaN(hz) {
			return fmt.Errorf("pitch drift speed must be in [%g, %g]: %f", minPitchDriftSpeed, maxPitchDriftSpeed, hz)
		}
		cfg.speed = hz
		return nil
	}
}

// WithPitchDriftMix sets the dry/wet mix in [0, 1].
func WithPitchDriftMix(mix float64) PitchDriftOption {
	return func(cfg *pitchDriftConfig) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("pitch drift mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// PitchDrift is a Doppler-style pitch wobble. A sine LFO sweeps the pitch
// ratio between 2^(-amount/1200) and 2^(amount/1200), and the read delay
// follows baseDelay/ratio.
type PitchDrift struct {
	base

	amount float64
	speed  float64

	lines       [core.MaxChannels]*delay.Line
	baseDelay   float64
	maxDelay    float64
	lfoPhase    float64
	lfoPhaseInc float64
}

// NewPitchDrift creates a disabled pitch drift with optional configuration
// overrides.
func NewPitchDrift(opts ...PitchDriftOption) (*PitchDrift, error) {
	cfg := pitchDriftConfig{
		amount: defaultPitchDriftAmount,
		speed:  defaultPitchDriftSpeed,
		mix:    defaultPitchDriftMix,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	pd := &PitchDrift{amount: cfg.amount, speed: cfg.speed}
	pd.SetMix(cfg.mix)
	return pd, nil
}

// Name returns "PitchDrift".
func (pd *PitchDrift) Name() string { return NamePitchDrift }

// Prepare sizes one delay line per channel for the prepared sample rate.
func (pd *PitchDrift) Prepare(sampleRate float64, maxBlockSize int) {
	if !pd.prepareBase(sampleRate, maxBlockSize) {
		return
	}

	size := int(math.Ceil(pitchDriftLineMs*0.001*sampleRate)) + 2
	for ch := range pd.lines {
		if pd.lines[ch] == nil || pd.lines[ch].Len() != size {
			line, err := delay.New(size)
			if err != nil {
				pd.prepared = false
				return
			}
			pd.lines[ch] = line
		}
	}
	pd.baseDelay = pitchDriftBaseDelayMs * 0.001 * sampleRate
	pd.maxDelay = float64(size - 2)
	pd.updateLFO()
	pd.Reset()
}

// Reset clears the delay lines and rewinds the LFO.
func (pd *PitchDrift) Reset() {
	for _, line := range pd.lines {
		if line != nil {
			line.Reset()
		}
	}
	pd.lfoPhase = 0
}

// SetParameterValue routes pd_* ids; anything else is ignored.
func (pd *PitchDrift) SetParameterValue(id string, value float64) {
	switch id {
	case params.PitchDriftEnabled:
		pd.SetEnabled(params.IsOn(value))
	case params.PitchDriftAmount:
		pd.SetAmount(value)
	case params.PitchDriftSpeed:
		pd.SetSpeed(value)
	case params.PitchDriftMix:
		pd.SetMix(value)
	}
}

// SetAmount sets the peak deviation in cents, clamped to [0, 1200].
func (pd *PitchDrift) SetAmount(cents float64) {
	if math.IsNaN(cents) {
		return
	}
	pd.amount = core.Clamp(cents, 0, maxPitchDriftAmount)
}

// SetSpeed sets the LFO rate in Hz, clamped to [0.01, 10].
func (pd *PitchDrift) SetSpeed(hz float64) {
	if math.IsNaN(hz) {
		return
	}
	pd.speed = core.Clamp(hz, minPitchDriftSpeed, maxPitchDriftSpeed)
	pd.updateLFO()
}

// Amount returns the peak deviation in cents.
func (pd *PitchDrift) Amount() float64 { return pd.amount }

// Speed returns the LFO rate in Hz.
func (pd *PitchDrift) Speed() float64 { return pd.speed }

// CurrentDelay returns the delay in samples the next sample will be read
// at.
func (pd *PitchDrift) CurrentDelay() float64 {
	lfo := 0.5 + 0.5*math.Sin(2*math.Pi*pd.lfoPhase)
	ratio := core.CentsToRatio(core.ToBipolar(lfo) * pd.amount)
	return core.Clamp(pd.baseDelay/ratio, 1, pd.maxDelay)
}

// Process drifts every channel of buf in place.
func (pd *PitchDrift) Process(buf [][]float64) {
	if !pd.prepared {
		return
	}
	channels, frames := blockShape(buf)
	channels = min(channels, len(pd.lines))
	amount := pd.Mix()

	for i := 0; i < frames; i++ {
		d := pd.CurrentDelay()
		for ch := 0; ch < channels; ch++ {
			in := buf[ch][i]
			line := pd.lines[ch]
			line.Write(in)
			buf[ch][i] = mix.DryWet(in, line.ReadFractional(d), amount)
		}

		pd.lfoPhase += pd.lfoPhaseInc
		if pd.lfoPhase >= 1 {
			pd.lfoPhase -= 1
		}
	}
}

func (pd *PitchDrift) updateLFO() {
	if pd.sampleRate > 0 {
		pd.lfoPhaseInc = pd.speed / pd.sampleRate
	}
}
