package core

import "math"

// SoftClip passes x unchanged inside [-threshold, threshold] and bends the
// excess into a knee that approaches threshold+1. A non-positive threshold
// is treated as 1.
func SoftClip(x, threshold float64) float64 {
	if threshold <= 0 {
		threshold = 1
	}

	switch {
	case x > threshold:
		over := x - threshold
		return threshold + over/(1+over)
	case x < -threshold:
		under := x + threshold
		return -threshold + under/(1+math.Abs(under))
	default:
		return x
	}
}

// HardClip limits x to [-threshold, threshold]. A non-positive threshold
// is treated as 1.
func HardClip(x, threshold float64) float64 {
	if threshold <= 0 {
		threshold = 1
	}

	return Clamp(x, -threshold, threshold)
}

// CubicDistortion returns x - amount*x³/3. The curve is not bounded, so
// callers keep x within [-1, 1] or clip afterwards.
func CubicDistortion(x, amount float64) float64 {
	return x - amount*x*x*x/3
}
