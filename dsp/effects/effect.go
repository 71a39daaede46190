package effects

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/mix"
)

// Module names as reported by Effect.Name.
const (
	NameBitCrusher      = "BitCrusher"
	NameBufferStutter   = "BufferStutter"
	NamePitchDrift      = "PitchDrift"
	NameReverseSlice    = "ReverseSlice"
	NameSliceRearrange  = "SliceRearrange"
	NameWeirdFlanger    = "WeirdFlanger"
	NameChaosController = "ChaosController"
)

// Effect is the uniform lifecycle every glitch module implements. The set
// of implementations is closed: only this package can satisfy it.
//
// Prepare, Reset and the parameter setters run on the control side and must
// not overlap Process. Enabled and Mix are atomics and may be changed from
// any goroutine at any time. Process never allocates, locks or blocks,
// except to grow scratch buffers when a host exceeds the prepared block
// size.
type Effect interface {
	Name() string
	Prepare(sampleRate float64, maxBlockSize int)
	Process(buf [][]float64)
	Reset()
	SetParameterValue(id string, value float64)

	Enabled() bool
	SetEnabled(enabled bool)
	Mix() float64
	SetMix(mix float64)

	state() *base
}

// base carries the state shared by every module: the atomic enabled flag
// and dry/wet amount plus the prepared host settings.
type base struct {
	enabled atomic.Bool
	mixBits atomic.Uint64

	sampleRate   float64
	maxBlockSize int
	prepared     bool
}

func (b *base) state() *base { return b }

// Enabled reports whether the chain runs this module.
func (b *base) Enabled() bool { return b.enabled.Load() }

// SetEnabled switches the module on or off.
func (b *base) SetEnabled(enabled bool) { b.enabled.Store(enabled) }

// Mix returns the dry/wet amount in [0, 1].
func (b *base) Mix() float64 { return math.Float64frombits(b.mixBits.Load()) }

// SetMix sets the dry/wet amount, clamped to [0, 1]. NaN is ignored.
func (b *base) SetMix(v float64) {
	if math.IsNaN(v) {
		return
	}
	b.mixBits.Store(math.Float64bits(core.Clamp(v, 0, 1)))
}

// SampleRate returns the prepared sample rate, or 0 before Prepare.
func (b *base) SampleRate() float64 { return b.sampleRate }

// Prepared reports whether a valid Prepare call has been made.
func (b *base) Prepared() bool { return b.prepared }

// prepareBase validates and stores host settings. It returns false and leaves the module untouched on invalid input.
func (b *base) prepareBase(sampleRate float64, maxBlockSize int) bool {
	if !core.ValidPrepare(sampleRate, maxBlockSize) {
		return false
	}
	b.sampleRate = sampleRate
	b.maxBlockSize = maxBlockSize
	b.prepared = true
	return true
}

// blendWet mixes the wet signal in wet into buf, where buf still holds the
// dry input. An amount of 0 leaves buf untouched.
func blendWet(buf, wet [][]float64, frames int, amount float64) {
	if amount <= 0 {
		return
	}
	for ch := range buf {
		w := wet[ch][:frames]
		mix.Block(w, buf[ch], amount)
		copy(buf[ch], w)
	}
}

// blockShape returns channel count and block length, or zeros for an
// empty block.
func blockShape(buf [][]float64) (channels, frames int) {
	if len(buf) == 0 {
		return 0, 0
	}
	return len(buf), len(buf[0])
}
