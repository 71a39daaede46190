package interp

// Linear interpolates from a to b by t in [0, 1].
func Linear(a, b, t float64) float64 {
	return a + t*(b-a)
}
