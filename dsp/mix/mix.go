// Package mix provides dry/wet blending and anti-click fade ramps shared by
// the glitch effects.
package mix

import "github.com/cwbudde/algo-vecmath"

// DryWet blends one dry and one wet sample.
// amount: 0 = 100% dry, 1 = 100% wet.
func DryWet(dry, wet, amount float64) float64 {
	return dry*(1-amount) + wet*amount
}

// Block blends dry into dst in place, where dst holds the wet signal on
// entry. An amount of 0 restores dry exactly and 1 leaves the wet signal
// untouched. Only the common prefix of dst and dry is processed.
func Block(dst, dry []float64, amount float64) {
	n := min(len(dst), len(dry))
	dst, dry = dst[:n], dry[:n]

	switch {
	case amount <= 0:
		copy(dst, dry)
	case amount >= 1:
		return
	default:
		// dst*a + dry*(1-a) == (dst*a/(1-a) + dry) * (1-a)
		dryGain := 1 - amount
		vecmath.ScaleBlockInPlace(dst, amount/dryGain)
		vecmath.AddMulBlock(dst, dst, dry, dryGain)
	}
}
