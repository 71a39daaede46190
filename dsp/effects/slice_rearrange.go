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
	// MaxSliceCount is the largest number of slices a block is cut into.
	MaxSliceCount = 16
	// MinSliceCount is the smallest number of slices a block is cut into.
	MinSliceCount = 2

	defaultSliceCount   = 4
	defaultSliceSeed    = 1
	defaultSliceShuffle = 0.0
)

// SliceRearrangeOption mutates slice rearrange construction parameters.
type SliceRearrangeOption func(*sliceRearrangeConfig) error

type sliceRearrangeConfig struct {
	count     int
	randomize float64
	mix       float64
	seed      int64
}

// WithSliceCount sets the number of slices per block in [2, 16].
func WithSliceCount(count int) SliceRearrangeOption {
	return func(cfg *sliceRearrangeConfig) error {
		if count < MinSliceCount || count > MaxSliceCount {
			return fmt.Errorf("slice count must be in [%d, %d]: %d", MinSliceCount, MaxSliceCount, count)
		}
		cfg.count = count
		return nil
	}
}

// WithSliceRandomize sets the randomize amount in [0, 1].
func WithSliceRandomize(amount float64) SliceRearrangeOption {
	return func(cfg *sliceRearrangeConfig) error {
		if amount < 0 || amount > 1 || math.IsNaN(amount) {
			return fmt.Errorf("slice randomize amount must be in [0, 1]: %f", amount)
		}
		cfg.randomize = amount
		return nil
	}
}

// WithSliceMix sets the dry/wet mix in [0, 1].
func WithSliceMix(mix float64) SliceRearrangeOption {
	return func(cfg *sliceRearrangeConfig) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("slice rearrange mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// WithSliceSeed sets the RNG seed used for shuffling.
func WithSliceSeed(seed int64) SliceRearrangeOption {
	return func(cfg *sliceRearrangeConfig) error {
		cfg.seed = seed
		return nil
	}
}

// SliceRearrange cuts every block into Count near-equal slices and writes
// them back in a new order, fading each slice's edges to hide the splice.
//
// Any randomize amount above zero reshuffles the whole order every block;
// zero keeps the original order. The amount does not scale how far slices
// move.
type SliceRearrange struct {
	base

	count     int
	randomize float64
	seed      int64
	rng       *rand.Rand

	order [MaxSliceCount]int
	wet   buffer.Buffer
}

// NewSliceRearrange creates a disabled slice rearranger with optional
// configuration overrides.
func NewSliceRearrange(opts ...SliceRearrangeOption) (*SliceRearrange, error) {
	cfg := sliceRearrangeConfig{
		count:     defaultSliceCount,
		randomize: defaultSliceShuffle,
		seed:      defaultSliceSeed,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	sr := &SliceRearrange{
		count:     cfg.count,
		randomize: cfg.randomize,
		seed:      cfg.seed,
		rng:       rand.New(rand.NewSource(cfg.seed)),
	}
	sr.SetMix(cfg.mix)
	sr.resetOrder()
	return sr, nil
}

// Name returns "SliceRearrange".
func (sr *SliceRearrange) Name() string { return NameSliceRearrange }

// Prepare sizes the wet scratch buffer.
func (sr *SliceRearrange) Prepare(sampleRate float64, maxBlockSize int) {
	if !sr.prepareBase(sampleRate, maxBlockSize) {
		return
	}
	sr.wet.Resize(core.MaxChannels, maxBlockSize)
	sr.Reset()
}

// Reset restores the identity order and rewinds the RNG.
func (sr *SliceRearrange) Reset() {
	sr.wet.Zero()
	sr.rng.Seed(sr.seed)
	sr.resetOrder()
}

// SetRandomSeed sets the RNG seed for reproducible shuffles.
func (sr *SliceRearrange) SetRandomSeed(seed int64) {
	sr.seed = seed
	sr.rng.Seed(seed)
}

// SetParameterValue routes sr_* ids; anything else is ignored.
func (sr *SliceRearrange) SetParameterValue(id string, value float64) {
	switch id {
	case params.SliceRearrangeEnabled:
		sr.SetEnabled(params.IsOn(value))
	case params.SliceRearrangeSliceCount:
		if !math.IsNaN(value) {
			sr.SetCount(int(core.Clamp(value, MinSliceCount, MaxSliceCount)))
		}
	case params.SliceRearrangeRandomize:
		sr.SetRandomize(value)
	case params.SliceRearrangeMix:
		sr.SetMix(value)
	}
}

// SetCount sets the slices per block, clamped to [2, 16], and restores the
// identity order.
func (sr *SliceRearrange) SetCount(count int) {
	sr.count = core.ClampInt(count, MinSliceCount, MaxSliceCount)
	sr.resetOrder()
}

// SetRandomize sets the randomize amount, clamped to [0, 1].
func (sr *SliceRearrange) SetRandomize(amount float64) {
	if math.IsNaN(amount) {
		return
	}
	sr.randomize = core.Clamp(amount, 0, 1)
}

// Count returns the slices per block.
func (sr *SliceRearrange) Count() int { return sr.count }

// Randomize returns the randomize amount.
func (sr *SliceRearrange) Randomize() float64 { return sr.randomize }

// Order returns the slice order used for the most recent block.
func (sr *SliceRearrange) Order() []int {
	return append([]int(nil), sr.order[:sr.count]...)
}

// Process rearranges the slices of buf in place.
func (sr *SliceRearrange) Process(buf [][]float64) {
	if !sr.prepared {
		return
	}
	channels, frames := blockShape(buf)
	if frames == 0 {
		return
	}

	if sr.randomize > 0 {
		sr.shuffle()
	}

	if !sr.wet.Fits(channels, frames) {
		sr.wet.Resize(max(channels, core.MaxChannels), frames)
	}
	wet := sr.wet.Data()

	for ch := 0; ch < channels; ch++ {
		out := 0
		for _, src := range sr.order[:sr.count] {
			start, n := SliceBounds(frames, sr.count, src)
			if n == 0 {
				continue
			}
			slice := wet[ch][out : out+n]
			copy(slice, buf[ch][start:start+n])
			mix.SliceCrossfade(slice, mix.CrossfadeSamples)
			out += n
		}
	}

	blendWet(buf, wet, frames, sr.Mix())
}

func (sr *SliceRearrange) resetOrder() {
	for i := range sr.order {
		sr.order[i] = i
	}
}

// shuffle draws a fresh uniform permutation of the first count slots.
func (sr *SliceRearrange) shuffle() {
	sr.resetOrder()
	for i := sr.count - 1; i > 0; i-- {
		j := sr.rng.Intn(i + 1)
		sr.order[i], sr.order[j] = sr.order[j], sr.order[i]
	}
}

// SliceBounds returns the start and length of slice i when n samples are
// cut into count near-equal slices. The first n%count slices carry one
// extra sample.
func SliceBounds(n, count, i int) (start, length int) {
	if n <= 0 || count <= 0 || i < 0 || i >= count {
		return 0, 0
	}
	per, rem := n/count, n%count
	length = per
	if i < rem {
		length++
	}
	start = i*per + min(i, rem)
	return start, length
}
