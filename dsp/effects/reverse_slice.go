package effects

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-glitch/dsp/buffer"
	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/mix"
	"github.com/cwbudde/algo-glitch/dsp/params"
)

const (
	// MaxReverseSliceSamples bounds the slice buffers independent of the
	// sample rate.
	MaxReverseSliceSamples = 48000

	defaultReverseIntervalMs = 200.0
	defaultReverseChance     = 0.5
	defaultReverseSeed       = 1
	minReverseIntervalMs     = 50.0
	maxReverseIntervalMs     = 1000.0
)

// ReverseSliceOption mutates reverse slice construction parameters.
type ReverseSliceOption func(*reverseSliceConfig) error

type reverseSliceConfig struct {
	intervalMs float64
	chance     float64
	mix        float64
	seed       int64
}

// WithReverseInterval sets the slice length in milliseconds in [50, 1000].
func WithReverseInterval(ms float64) ReverseSliceOption {
	return func(cfg *reverseSliceConfig) error {
		if ms < minReverseIntervalMs || ms > maxReverseIntervalMs || math.IsNaN(ms) {
			return fmt.Errorf("reverse slice interval must be in [%g, %g]: %f",
				minReverseIntervalMs, maxReverseIntervalMs, ms)
		}
		cfg.intervalMs = ms
		return nil
	}
}

// WithReverseChance sets the probability in [0, 1] that a slice is
// reversed.
func WithReverseChance(chance float64) ReverseSliceOption {
	return func(cfg *reverseSliceConfig) error {
		if chance < 0 || chance > 1 || math.IsNaN(chance) {
			return fmt.Errorf("reverse slice chance must be in [0, 1]: %f", chance)
		}
		cfg.chance = chance
		return nil
	}
}

// WithReverseMix sets the dry/wet mix in [0, 1].
func WithReverseMix(mix float64) ReverseSliceOption {
	return func(cfg *reverseSliceConfig) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("reverse slice mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// WithReverseSeed sets the RNG seed used for reverse decisions.
func WithReverseSeed(seed int64) ReverseSliceOption {
	return func(cfg *reverseSliceConfig) error {
		cfg.seed = seed
		return nil
	}
}

// ReverseSlice cuts the input into fixed-length slices and plays each one
// back one slice later, reversed with probability Chance. Three buffers of
// MaxReverseSliceSamples frames take part: one accumulates the next slice,
// one plays, and one holds a finished slice until the playing one ends.
type ReverseSlice struct {
	base

	intervalMs float64
	chance     float64
	seed       int64
	rng        *rand.Rand

	intervalSamples int

	accum      buffer.Buffer
	playing    buffer.Buffer
	pending    buffer.Buffer
	accumLen   int
	playingLen int
	pendingLen int

	isPlaying    bool
	pendingReady bool
	playhead     int
}

// NewReverseSlice creates a disabled reverse slicer with optional
// configuration overrides.
func NewReverseSlice(opts ...ReverseSliceOption) (*ReverseSlice, error) {
	cfg := reverseSliceConfig{
		intervalMs: defaultReverseIntervalMs,
		chance:     defaultReverseChance,
		seed:       defaultReverseSeed,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	rs := &ReverseSlice{
		intervalMs: cfg.intervalMs,
		chance:     cfg.chance,
		seed:       cfg.seed,
		rng:        rand.New(rand.NewSource(cfg.seed)),
	}
	rs.SetMix(cfg.mix)
	return rs, nil
}

// Name returns "ReverseSlice".
func (rs *ReverseSlice) Name() string { return NameReverseSlice }

// Prepare allocates the three slice buffers.
func (rs *ReverseSlice) Prepare(sampleRate float64, maxBlockSize int) {
	if !rs.prepareBase(sampleRate, maxBlockSize) {
		return
	}
	rs.accum.Resize(core.MaxChannels, MaxReverseSliceSamples)
	rs.playing.Resize(core.MaxChannels, MaxReverseSliceSamples)
	rs.pending.Resize(core.MaxChannels, MaxReverseSliceSamples)
	rs.updateInterval()
	rs.Reset()
}

// Reset clears all slices and rewinds the RNG.
func (rs *ReverseSlice) Reset() {
	rs.accum.Zero()
	rs.playing.Zero()
	rs.pending.Zero()
	rs.accumLen = 0
	rs.playingLen = 0
	rs.pendingLen = 0
	rs.isPlaying = false
	rs.pendingReady = false
	rs.playhead = 0
	rs.rng.Seed(rs.seed)
}

// SetRandomSeed sets the RNG seed for reproducible reverse decisions.
func (rs *ReverseSlice) SetRandomSeed(seed int64) {
	rs.seed = seed
	rs.rng.Seed(seed)
}

// SetParameterValue routes rs_* ids; anything else is ignored.
func (rs *ReverseSlice) SetParameterValue(id string, value float64) {
	switch id {
	case params.ReverseSliceEnabled:
		rs.SetEnabled(params.IsOn(value))
	case params.ReverseSliceInterval:
		rs.SetInterval(value)
	case params.ReverseSliceChance:
		rs.SetChance(value)
	case params.ReverseSliceMix:
		rs.SetMix(value)
	}
}

// SetInterval sets the slice length in milliseconds, clamped to
// [50, 1000]. The length in samples is further capped at
// MaxReverseSliceSamples.
func (rs *ReverseSlice) SetInterval(ms float64) {
	if math.IsNaN(ms) {
		return
	}
	rs.intervalMs = core.Clamp(ms, minReverseIntervalMs, maxReverseIntervalMs)
	rs.updateInterval()
}

// SetChance sets the reverse probability, clamped to [0, 1].
func (rs *ReverseSlice) SetChance(chance float64) {
	if math.IsNaN(chance) {
		return
	}
	rs.chance = core.Clamp(chance, 0, 1)
}

// Interval returns the slice length in milliseconds.
func (rs *ReverseSlice) Interval() float64 { return rs.intervalMs }

// IntervalSamples returns the slice length in samples.
func (rs *ReverseSlice) IntervalSamples() int { return rs.intervalSamples }

// Chance returns the reverse probability.
func (rs *ReverseSlice) Chance() float64 { return rs.chance }

// Process accumulates buf into the next slice and replaces it with the mix
// of dry input and the slice at the play head. Without a playing slice the
// wet signal equals the dry one.
func (rs *ReverseSlice) Process(buf [][]float64) {
	if !rs.prepared {
		return
	}
	channels, frames := blockShape(buf)
	channels = min(channels, core.MaxChannels)
	amount := rs.Mix()

	accum := rs.accum.Data()
	for i := 0; i < frames; i++ {
		if rs.accumLen < rs.intervalSamples {
			for ch := 0; ch < channels; ch++ {
				accum[ch][rs.accumLen] = buf[ch][i]
			}
			rs.accumLen++
		}
		if rs.accumLen >= rs.intervalSamples {
			rs.finishSlice(channels)
		}

		if rs.isPlaying {
			playing := rs.playing.Data()
			for ch := 0; ch < channels; ch++ {
				buf[ch][i] = mix.DryWet(buf[ch][i], playing[ch][rs.playhead], amount)
			}
			rs.advancePlayhead()
		}
	}
}

// finishSlice moves the accumulated slice into the playing buffer, or into
// the pending one while another slice plays.
func (rs *ReverseSlice) finishSlice(channels int) {
	n := rs.accumLen
	target := &rs.playing
	if rs.isPlaying {
		target = &rs.pending
		rs.pendingReady = true
		rs.pendingLen = n
	} else {
		rs.playingLen = n
	}

	dst := target.Data()
	accum := rs.accum.Data()
	reverse := rs.rng.Float64() < rs.chance
	for ch := 0; ch < channels; ch++ {
		slice := dst[ch][:n]
		copy(slice, accum[ch][:n])
		if reverse {
			Reverse(slice)
			mix.SliceCrossfade(slice, mix.CrossfadeSamples)
		}
	}

	rs.accumLen = 0
	for ch := range accum {
		clear(accum[ch][:n])
	}

	if !rs.isPlaying {
		rs.isPlaying = true
		rs.playhead = 0
	}
}

func (rs *ReverseSlice) advancePlayhead() {
	rs.playhead++
	if rs.playhead < rs.playingLen {
		return
	}

	rs.isPlaying = false
	rs.playhead = 0
	if !rs.pendingReady {
		return
	}

	// Swap contents so both buffers keep their backing arrays.
	n := max(rs.playingLen, rs.pendingLen)
	playing, pending := rs.playing.Data(), rs.pending.Data()
	for ch := range playing {
		a, b := playing[ch][:n], pending[ch][:n]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
	rs.playingLen, rs.pendingLen = rs.pendingLen, rs.playingLen
	rs.pendingReady = false
	rs.isPlaying = true
}

func (rs *ReverseSlice) updateInterval() {
	if rs.sampleRate <= 0 {
		return
	}
	n := int(rs.intervalMs / 1000 * rs.sampleRate)
	rs.intervalSamples = core.ClampInt(n, 1, MaxReverseSliceSamples)
	// A shorter interval finishes the slice being accumulated right away.
	rs.accumLen = min(rs.accumLen, rs.intervalSamples)
}

// Reverse reverses buf in place.
func Reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
