package buffer

// Interleave writes planar src into dst as frame-interleaved samples
// (L R L R ...) and returns the number of frames written.
func Interleave(dst []float32, src [][]float64) int {
	channels := len(src)
	if channels == 0 {
		return 0
	}
	frames := min(len(src[0]), len(dst)/channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			dst[i*channels+ch] = float32(src[ch][i])
		}
	}
	return frames
}

// Deinterleave splits frame-interleaved src into planar dst and returns the
// number of frames read.
func Deinterleave(dst [][]float64, src []float32) int {
	channels := len(dst)
	if channels == 0 {
		return 0
	}
	frames := min(len(dst[0]), len(src)/channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			dst[ch][i] = float64(src[i*channels+ch])
		}
	}
	return frames
}
