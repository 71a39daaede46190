package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/mix"
	"github.com/cwbudde/algo-glitch/dsp/params"
)

const (
	defaultBitCrusherBitDepth   = 16.0
	defaultBitCrusherDownsample = 1
	defaultBitCrusherMix        = 1.0
	minBitCrusherBitDepth       = 1.0
	maxBitCrusherBitDepth       = 16.0
	maxBitCrusherDownsample     = 64
)

// BitCrusherOption mutates bit crusher construction parameters.
type BitCrusherOption func(*bitCrusherConfig) error

type bitCrusherConfig struct {
	bitDepth   float64
	downsample int
	mix        float64
}

func defaultBitCrusherConfig() bitCrusherConfig {
	return bitCrusherConfig{
		bitDepth:   defaultBitCrusherBitDepth,
		downsample: defaultBitCrusherDownsample,
		mix:        defaultBitCrusherMix,
	}
}

// WithBitCrusherBitDepth sets the target bit depth for quantization.
// Range: [1, 16]. 16 bits leaves the signal untouched.
func WithBitCrusherBitDepth(bitDepth float64) BitCrusherOption {
	return func(cfg *bitCrusherConfig) error {
		if bitDepth < minBitCrusherBitDepth || bitDepth > maxBitCrusherBitDepth ||
			math.IsNaN(bitDepth) || math.IsInf(bitDepth, 0) {
			return fmt.Errorf("bit crusher bit depth must be in [%g, %g]: %f",
				minBitCrusherBitDepth, maxBitCrusherBitDepth, bitDepth)
		}
		cfg.bitDepth = bitDepth
		return nil
	}
}

// WithBitCrusherDownsample sets the sample rate reduction factor.
// A value of 1 means no downsampling; 4 means every 4th sample is held.
// Range: [1, 64].
func WithBitCrusherDownsample(factor int) BitCrusherOption {
	return func(cfg *bitCrusherConfig) error {
		if factor < 1 || factor > maxBitCrusherDownsample {
			return fmt.Errorf("bit crusher downsample factor must be in [1, %d]: %d",
				maxBitCrusherDownsample, factor)
		}
		cfg.downsample = factor
		return nil
	}
}

// WithBitCrusherMix sets the dry/wet mix in [0, 1].
func WithBitCrusherMix(mix float64) BitCrusherOption {
	return func(cfg *bitCrusherConfig) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) || math.IsInf(mix, 0) {
			return fmt.Errorf("bit crusher mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// BitCrusher reduces bit depth and effective sample rate.
//
//   - Quantization: every captured sample is floored onto a grid of
//     2^BitDepth steps per unit, floor(x*2^bits)/2^bits. At 16 bits the
//     sample passes through unchanged.
//
//   - Downsampling: a zero-order hold keeps each captured sample for
//     Downsample consecutive samples. The hold counter runs across
//     channels and restarts whenever a setting changes.
type BitCrusher struct {
	base

	bitDepth   float64
	downsample int

	quantLevels float64

	holdCounter int
	holdValue   float64
}

// NewBitCrusher creates a disabled bit crusher with optional configuration
// overrides.
func NewBitCrusher(opts ...BitCrusherOption) (*BitCrusher, error) {
	cfg := defaultBitCrusherConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	bc := &BitCrusher{
		bitDepth:   cfg.bitDepth,
		downsample: cfg.downsample,
	}
	bc.SetMix(cfg.mix)
	bc.updateQuantLevels()
	return bc, nil
}

// Name returns "BitCrusher".
func (bc *BitCrusher) Name() string { return NameBitCrusher }

// Prepare records the sample rate and clears the hold state. Invalid host
// settings leave the module unprepared.
func (bc *BitCrusher) Prepare(sampleRate float64, maxBlockSize int) {
	if !bc.prepareBase(sampleRate, maxBlockSize) {
		return
	}
	bc.Reset()
}

// Reset clears the sample-and-hold state.
func (bc *BitCrusher) Reset() {
	bc.holdCounter = 0
	bc.holdValue = 0
}

// SetParameterValue routes bc_* ids; anything else is ignored.
func (bc *BitCrusher) SetParameterValue(id string, value float64) {
	switch id {
	case params.BitCrusherEnabled:
		bc.SetEnabled(params.IsOn(value))
	case params.BitCrusherBitDepth:
		bc.SetBitDepth(value)
	case params.BitCrusherSampleRateDiv:
		bc.SetDownsample(value)
	case params.BitCrusherMix:
		bc.SetMix(value)
	}
}

// SetBitDepth sets the quantization depth, clamped to [1, 16].
func (bc *BitCrusher) SetBitDepth(bitDepth float64) {
	if math.IsNaN(bitDepth) {
		return
	}
	bitDepth = core.Clamp(bitDepth, minBitCrusherBitDepth, maxBitCrusherBitDepth)
	if bitDepth == bc.bitDepth {
		return
	}
	bc.bitDepth = bitDepth
	bc.updateQuantLevels()
	bc.holdCounter = 0
}

// SetDownsample sets the hold factor, truncated and clamped to [1, 64].
func (bc *BitCrusher) SetDownsample(factor float64) {
	if math.IsNaN(factor) {
		return
	}
	n := int(core.Clamp(factor, 1, maxBitCrusherDownsample))
	if n == bc.downsample {
		return
	}
	bc.downsample = n
	bc.holdCounter = 0
}

// ProcessSample processes one sample through the bit crusher.
func (bc *BitCrusher) ProcessSample(input float64) float64 {
	if bc.holdCounter == 0 {
		bc.holdValue = bc.quantize(input)
	}
	bc.holdCounter++
	if bc.holdCounter >= bc.downsample {
		bc.holdCounter = 0
	}

	return mix.DryWet(input, bc.holdValue, bc.Mix())
}

// ProcessInPlace applies the bit crusher to one channel in place.
func (bc *BitCrusher) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = bc.ProcessSample(buf[i])
	}
}

// Process crushes every channel of buf in place.
func (bc *BitCrusher) Process(buf [][]float64) {
	if !bc.prepared {
		return
	}
	for _, ch := range buf {
		bc.ProcessInPlace(ch)
	}
}

// BitDepth returns the quantization bit depth.
func (bc *BitCrusher) BitDepth() float64 { return bc.bitDepth }

// Downsample returns the downsample factor.
func (bc *BitCrusher) Downsample() int { return bc.downsample }

func (bc *BitCrusher) updateQuantLevels() {
	bc.quantLevels = math.Exp2(bc.bitDepth)
}

func (bc *BitCrusher) quantize(sample float64) float64 {
	if bc.bitDepth >= maxBitCrusherBitDepth {
		return sample
	}
	return math.Floor(sample*bc.quantLevels) / bc.quantLevels
}
