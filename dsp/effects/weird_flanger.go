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
	defaultFlangerRate     = 1.0
	defaultFlangerDepth    = 0.8
	defaultFlangerFeedback = 0.0
	defaultFlangerMix      = 1.0
	minFlangerRate         = 0.01
	maxFlangerRate         = 20.0

	flangerMinDelayMs = 0.5
	flangerMaxDelayMs = 10.0
)

// WeirdFlangerOption mutates flanger construction parameters.
type WeirdFlangerOption func(*weirdFlangerConfig) error

type weirdFlangerConfig struct {
	rate     float64
	depth    float64
	feedback float64
	mix      float64
}

// WithFlangerRate sets the LFO rate in Hz in [0.01, 20].
func WithFlangerRate(hz float64) WeirdFlangerOption {
	return func(cfg *weirdFlangerConfig) error {
		if hz < minFlangerRate || hz > maxFlangerRate || math.IsNaN(hz) {
			return fmt.Errorf("flanger rate must be in [%g, %g]: %f", minFlangerRate, maxFlangerRate, hz)
		}
		cfg.rate = hz
		return nil
	}
}

// WithFlangerDepth sets the sweep depth in [0, 1].
func WithFlangerDepth(depth float64) WeirdFlangerOption {
	return func(cfg *weirdFlangerConfig) error {
		if depth < 0 || depth > 1 || math.IsNaN(depth) {
			return fmt.Errorf("flanger depth must be in [0, 1]: %f", depth)
		}
		cfg.depth = depth
		return nil
	}
}

// WithFlangerFeedback sets the feedback gain in [-1, 1].
func WithFlangerFeedback(feedback float64) WeirdFlangerOption {
	return func(cfg *weirdFlangerConfig) error {
		if feedback < -1 || feedback > 1 || math.IsNaN(feedback) {
			return fmt.Errorf("flanger feedback must be in [-1, 1]: %f", feedback)
		}
		cfg.feedback = feedback
		return nil
	}
}

// WithFlangerMix sets the dry/wet mix in [0, 1].
func WithFlangerMix(mix float64) WeirdFlangerOption {
	return func(cfg *weirdFlangerConfig) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("flanger mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// WeirdFlanger is a short modulated delay with feedback. A sine LFO sweeps
// the delay from 0.5 ms up to 0.5 ms + 9.5 ms*depth.
//
// A single feedback sample is shared by all channels: each channel feeds
// the next with the value it just read. Stereo input therefore bleeds
// between channels once feedback is non-zero.
type WeirdFlanger struct {
	base

	rate     float64
	depth    float64
	feedback float64

	lines        [core.MaxChannels]*delay.Line
	minDelay     float64
	maxDelay     float64
	lastFeedback float64
	lfoPhase     float64
	lfoPhaseInc  float64
}

// NewWeirdFlanger creates a disabled flanger with optional configuration
// overrides.
func NewWeirdFlanger(opts ...WeirdFlangerOption) (*WeirdFlanger, error) {
	cfg := weirdFlangerConfig{
		rate:     defaultFlangerRate,
		depth:    defaultFlangerDepth,
		feedback: defaultFlangerFeedback,
		mix:      defaultFlangerMix,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	wf := &WeirdFlanger{rate: cfg.rate, depth: cfg.depth, feedback: cfg.feedback}
	wf.SetMix(cfg.mix)
	return wf, nil
}

// Name returns "WeirdFlanger".
func (wf *WeirdFlanger) Name() string { return NameWeirdFlanger }

// Prepare sizes the per-channel delay lines for 10 ms plus two
// interpolation taps.
func (wf *WeirdFlanger) Prepare(sampleRate float64, maxBlockSize int) {
	if !wf.prepareBase(sampleRate, maxBlockSize) {
		return
	}

	size := int(math.Ceil(flangerMaxDelayMs*0.001*sampleRate)) + 2
	for ch := range wf.lines {
		if wf.lines[ch] == nil || wf.lines[ch].Len() != size {
			line, err := delay.New(size)
			if err != nil {
				wf.prepared = false
				return
			}
			wf.lines[ch] = line
		}
	}
	wf.minDelay = flangerMinDelayMs * 0.001 * sampleRate
	wf.maxDelay = flangerMaxDelayMs * 0.001 * sampleRate
	wf.updateLFO()
	wf.Reset()
}

// Reset clears the delay lines, the feedback sample and the LFO phase.
func (wf *WeirdFlanger) Reset() {
	for _, line := range wf.lines {
		if line != nil {
			line.Reset()
		}
	}
	wf.lastFeedback = 0
	wf.lfoPhase = 0
}

// SetParameterValue routes wf_* ids; anything else is ignored.
func (wf *WeirdFlanger) SetParameterValue(id string, value float64) {
	switch id {
	case params.WeirdFlangerEnabled:
		wf.SetEnabled(params.IsOn(value))
	case params.WeirdFlangerRate:
		wf.SetRate(value)
	case params.WeirdFlangerDepth:
		wf.SetDepth(value)
	case params.WeirdFlangerFeedback:
		wf.SetFeedback(value)
	case params.WeirdFlangerMix:
		wf.SetMix(value)
	}
}

// SetRate sets the LFO rate in Hz, clamped to [0.01, 20].
func (wf *WeirdFlanger) SetRate(hz float64) {
	if math.IsNaN(hz) {
		return
	}
	wf.rate = core.Clamp(hz, minFlangerRate, maxFlangerRate)
	wf.updateLFO()
}

// SetDepth sets the sweep depth, clamped to [0, 1].
func (wf *WeirdFlanger) SetDepth(depth float64) {
	if math.IsNaN(depth) {
		return
	}
	wf.depth = core.Clamp(depth, 0, 1)
}

// SetFeedback sets the feedback gain, clamped to [-1, 1].
func (wf *WeirdFlanger) SetFeedback(feedback float64) {
	if math.IsNaN(feedback) {
		return
	}
	wf.feedback = core.Clamp(feedback, -1, 1)
}

// Rate returns the LFO rate in Hz.
func (wf *WeirdFlanger) Rate() float64 { return wf.rate }

// Depth returns the sweep depth.
func (wf *WeirdFlanger) Depth() float64 { return wf.depth }

// Feedback returns the feedback gain.
func (wf *WeirdFlanger) Feedback() float64 { return wf.feedback }

// CurrentDelay returns the delay in samples the next sample will be read
// at.
func (wf *WeirdFlanger) CurrentDelay() float64 {
	lfo := 0.5 + 0.5*math.Sin(2*math.Pi*wf.lfoPhase)
	return wf.minDelay + (wf.maxDelay-wf.minDelay)*lfo*wf.depth
}

// Process flanges every channel of buf in place.
func (wf *WeirdFlanger) Process(buf [][]float64) {
	if !wf.prepared {
		return
	}
	channels, frames := blockShape(buf)
	channels = min(channels, len(wf.lines))
	amount := wf.Mix()

	for i := 0; i < frames; i++ {
		d := wf.CurrentDelay()
		for ch := 0; ch < channels; ch++ {
			in := buf[ch][i]
			line := wf.lines[ch]
			line.Write(in + wf.lastFeedback*wf.feedback)
			delayed := line.ReadFractional(d)
			wf.lastFeedback = delayed
			buf[ch][i] = mix.DryWet(in, delayed, amount)
		}

		wf.lfoPhase += wf.lfoPhaseInc
		if wf.lfoPhase >= 1 {
			wf.lfoPhase -= 1
		}
	}
}

func (wf *WeirdFlanger) updateLFO() {
	if wf.sampleRate > 0 {
		wf.lfoPhaseInc = wf.rate / wf.sampleRate
	}
}
