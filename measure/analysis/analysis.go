// Package analysis measures rendered glitch output: level, quantization
// grid, dominant partial and the share of energy outside it.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"slices"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/window"
)

const (
	defaultFFTSize = 8192
	maxFFTSize     = 1 << 20

	// captureBins is the half-width around the dominant bin treated as
	// part of the partial by the distortion ratio.
	captureBins = 2
)

// ErrEmptySignal is returned for zero-length input.
var ErrEmptySignal = errors.New("analysis: empty signal")

// Config holds analysis parameters. The zero value analyzes with a
// rectangular window; DefaultConfig selects Hann.
type Config struct {
	SampleRate float64
	FFTSize    int
	Window     window.Type
}

// DefaultConfig returns a Hann-windowed 8192-point configuration at
// 44.1 kHz.
func DefaultConfig() Config {
	return Config{
		SampleRate: core.DefaultSampleRate,
		FFTSize:    defaultFFTSize,
		Window:     window.TypeHann,
	}
}

// Report holds the measurements of one channel.
type Report struct {
	Frames int
	Finite bool

	Peak   float64
	RMS    float64
	PeakDB float64
	RMSDB  float64

	// DistinctLevels counts the distinct sample values, which is bounded
	// by 2^(bits+1) + 1 for a bit-crushed signal.
	DistinctLevels int

	DominantFreq  float64
	DominantLevel float64

	// Distortion is the magnitude outside the dominant partial relative
	// to the partial, summed like THD+N.
	Distortion float64
}

// Analyzer performs spectral analysis with a reusable FFT plan.
type Analyzer struct {
	cfg    Config
	plan   *algofft.Plan[complex128]
	coeffs []float64
	in     []complex128
	out    []complex128
	re, im []float64
	mag    []float64
}

// NewAnalyzer creates an analyzer for cfg.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("analysis: fft plan: %w", err)
	}

	bins := cfg.FFTSize/2 + 1

	return &Analyzer{
		cfg:  cfg,
		plan: plan,
		in:   make([]complex128, cfg.FFTSize),
		out:  make([]complex128, cfg.FFTSize),
		re:   make([]float64, bins),
		im:   make([]float64, bins),
		mag:  make([]float64, bins),
	}, nil
}

// Config returns the normalized configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze is a one-shot analysis of signal.
func Analyze(signal []float64, cfg Config) (Report, error) {
	a, err := NewAnalyzer(cfg)
	if err != nil {
		return Report{}, err
	}

	return a.Analyze(signal)
}

// AnalyzeChannels analyzes every channel of a planar block.
func AnalyzeChannels(buf [][]float64, cfg Config) ([]Report, error) {
	a, err := NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(buf))
	for ch, data := range buf {
		r, err := a.Analyze(data)
		if err != nil {
			return nil, fmt.Errorf("analysis: channel %d: %w", ch, err)
		}

		reports = append(reports, r)
	}

	return reports, nil
}

// Analyze measures signal. Level statistics cover the whole signal; the
// spectrum covers its first FFTSize samples.
func (a *Analyzer) Analyze(signal []float64) (Report, error) {
	if len(signal) == 0 {
		return Report{}, ErrEmptySignal
	}

	r := Report{
		Frames:         len(signal),
		Finite:         allFinite(signal),
		DistinctLevels: DistinctLevels(signal),
	}

	if !r.Finite {
		return r, nil
	}

	r.Peak = core.Peak(signal)
	r.RMS = core.RMS(signal)
	r.PeakDB = core.GainToDecibels(r.Peak)
	r.RMSDB = core.GainToDecibels(r.RMS)

	mag, err := a.Spectrum(signal)
	if err != nil {
		return r, err
	}

	bin := dominantBin(mag)
	if bin < 1 {
		return r, nil
	}

	binHz := a.cfg.SampleRate / float64(a.cfg.FFTSize)
	r.DominantFreq = float64(bin) * binHz
	r.DominantLevel = mag[bin]

	if r.DominantLevel > 0 {
		rest := 0.0
		for i := 1; i < len(mag); i++ {
			if i < bin-captureBins || i > bin+captureBins {
				rest += mag[i] * mag[i]
			}
		}

		r.Distortion = math.Sqrt(rest) / r.DominantLevel
	}

	return r, nil
}

// Spectrum returns the amplitude spectrum of the first FFTSize samples
// of signal, bins 0 through Nyquist. A full-scale sinusoid centred on a
// bin reads 1. The returned slice is reused by the next call.
func (a *Analyzer) Spectrum(signal []float64) ([]float64, error) {
	n := min(len(signal), a.cfg.FFTSize)
	if n == 0 {
		return nil, ErrEmptySignal
	}

	if len(a.coeffs) != n {
		a.coeffs = window.Generate(a.cfg.Window, n, window.WithPeriodic())
	}

	clear(a.in)
	for i := 0; i < n; i++ {
		a.in[i] = complex(signal[i]*a.coeffs[i], 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("analysis: fft: %w", err)
	}

	for i := range a.re {
		a.re[i] = real(a.out[i])
		a.im[i] = imag(a.out[i])
	}

	vecmath.Magnitude(a.mag, a.re, a.im)

	scale := 2 / (float64(n) * window.CoherentGain(a.coeffs))
	vecmath.ScaleBlockInPlace(a.mag, scale)

	return a.mag, nil
}

// DistinctLevels counts the distinct values in signal.
func DistinctLevels(signal []float64) int {
	if len(signal) == 0 {
		return 0
	}

	sorted := slices.Clone(signal)
	slices.Sort(sorted)

	return len(slices.Compact(sorted))
}

// OnGrid reports whether every sample is a multiple of 2^-bits.
func OnGrid(signal []float64, bits int) bool {
	scale := math.Exp2(float64(bits))
	for _, x := range signal {
		v := x * scale
		if v != math.Trunc(v) {
			return false
		}
	}

	return true
}

func normalizeConfig(cfg Config) (Config, error) {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) {
		cfg.SampleRate = core.DefaultSampleRate
	}

	if cfg.FFTSize <= 0 {
		cfg.FFTSize = defaultFFTSize
	}

	if cfg.FFTSize < 2 || cfg.FFTSize > maxFFTSize || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return cfg, fmt.Errorf("analysis: fft size must be a power of two in [2, %d]: %d", maxFFTSize, cfg.FFTSize)
	}

	return cfg, nil
}

func dominantBin(mag []float64) int {
	best, bestBin := 0.0, 0
	for i := 1; i < len(mag); i++ {
		if mag[i] > best {
			best, bestBin = mag[i], i
		}
	}

	return bestBin
}

func allFinite(signal []float64) bool {
	for _, x := range signal {
		if !core.IsFinite(x) {
			return false
		}
	}

	return true
}
