package core

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// CopyInto copies src into dst and returns the number of copied elements.
func CopyInto(dst, src []float64) int {
	n := min(len(dst), len(src))
	copy(dst[:n], src[:n])
	return n
}

// Peak returns the largest absolute sample value in buf.
func Peak(buf []float64) float64 {
	return vecmath.MaxAbs(buf)
}

// RMS returns the root-mean-square level of buf, or 0 for an empty slice.
func RMS(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	return math.Sqrt(vecmath.DotProduct(buf, buf) / float64(len(buf)))
}
