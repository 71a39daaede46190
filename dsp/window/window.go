// Package window provides the raised-cosine window functions used for
// grain shaping and spectral analysis.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

// String returns the window name.
func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "Rectangular"
	case TypeHann:
		return "Hann"
	case TypeHamming:
		return "Hamming"
	case TypeBlackman:
		return "Blackman"
	default:
		return "Unknown"
	}
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// At evaluates window t at sample n of a symmetric window of the given size.
// Out-of-range n returns 0; a size of 1 returns 1.
func At(t Type, n, size int) float64 {
	if size <= 0 || n < 0 || n >= size {
		return 0
	}
	if size == 1 {
		return 1
	}
	return eval(t, float64(n)/float64(size-1))
}

// Hann evaluates the Hann window at sample n of size.
func Hann(n, size int) float64 { return At(TypeHann, n, size) }

// Hamming evaluates the Hamming window at sample n of size.
func Hamming(n, size int) float64 { return At(TypeHamming, n, size) }

// Blackman evaluates the Blackman window at sample n of size.
func Blackman(n, size int) float64 { return At(TypeBlackman, n, size) }

// Generate returns length coefficients of window t.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}

	denom := float64(length - 1)
	if cfg.periodic {
		denom = float64(length)
	}
	for i := range out {
		out[i] = eval(t, float64(i)/denom)
	}
	return out
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}
	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// CoherentGain returns the mean of the coefficients, the amplitude scale a
// windowed sinusoid picks up.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	return vecmath.Sum(coeffs) / float64(len(coeffs))
}

// eval evaluates the window at normalized position x in [0, 1].
func eval(t Type, x float64) float64 {
	phase := 2 * math.Pi * x
	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(phase)
	case TypeHamming:
		return 0.54 - 0.46*math.Cos(phase)
	case TypeBlackman:
		return 0.42 - 0.5*math.Cos(phase) + 0.08*math.Cos(2*phase)
	default:
		return 1
	}
}
