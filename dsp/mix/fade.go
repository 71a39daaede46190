package mix

// CrossfadeSamples is the length of the anti-click ramp applied at slice
// boundaries (about 0.7 ms at 44.1 kHz).
const CrossfadeSamples = 32

// FadeIn applies a linear 0→1 ramp over the first n samples of buf.
func FadeIn(buf []float64, n int) {
	if n <= 0 {
		return
	}
	end := min(n, len(buf))
	for i := 0; i < end; i++ {
		buf[i] *= float64(i) / float64(n)
	}
}

// FadeOut applies a linear ramp towards 0 over the last n samples of buf.
// The final sample keeps a gain of 1/n.
func FadeOut(buf []float64, n int) {
	if n <= 0 {
		return
	}
	end := len(buf)
	start := max(0, end-n)
	for i := start; i < end; i++ {
		buf[i] *= float64(end-i) / float64(n)
	}
}

// FadeLength returns the crossfade length used for a slice of sliceLen
// samples: n, shortened so the fade-in and fade-out never overlap.
func FadeLength(sliceLen, n int) int {
	return max(0, min(n, sliceLen/2))
}

// SliceCrossfade fades both ends of a slice so it can be spliced next to
// unrelated material without a click.
func SliceCrossfade(buf []float64, n int) {
	n = FadeLength(len(buf), n)
	if n == 0 {
		return
	}
	FadeIn(buf, n)
	FadeOut(buf, n)
}
