package core

import "math"

const (
	midiA4Note = 69.0
	midiA4Hz   = 440.0
)

// MIDIToHz converts a (possibly fractional) MIDI note number to Hz.
func MIDIToHz(note float64) float64 {
	return midiA4Hz * math.Exp2((note-midiA4Note)/12)
}

// HzToMIDI converts a frequency in Hz to a fractional MIDI note number.
// Non-positive frequencies return NaN.
func HzToMIDI(hz float64) float64 {
	if hz <= 0 {
		return math.NaN()
	}

	return midiA4Note + 12*math.Log2(hz/midiA4Hz)
}

// CentsToRatio converts a pitch offset in cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return math.Exp2(cents / 1200)
}

// MsToSamples converts milliseconds to a rounded sample count.
func MsToSamples(ms, sampleRate float64) int {
	return int(math.Round(ms * 0.001 * sampleRate))
}

// SamplesToMs converts a sample count to milliseconds.
func SamplesToMs(samples int, sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}

	return float64(samples) * 1000 / sampleRate
}

// AngularFrequency returns the per-sample angular increment for hz.
func AngularFrequency(hz, sampleRate float64) float64 {
	return 2 * math.Pi * hz / sampleRate
}

// MapRange linearly maps value from [inMin, inMax] to [outMin, outMax].
// A degenerate input range maps everything to outMin.
func MapRange(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}

	return outMin + (value-inMin)*(outMax-outMin)/(inMax-inMin)
}

// Skew applies a power curve to a normalized value in [0, 1]. Factors
// below 1 spend more of the range on small values.
func Skew(normalized, factor float64) float64 {
	normalized = Clamp(normalized, 0, 1)
	if factor <= 0 || factor == 1 {
		return normalized
	}

	return math.Pow(normalized, 1/factor)
}

// ToBipolar maps [0, 1] to [-1, 1].
func ToBipolar(unipolar float64) float64 {
	return unipolar*2 - 1
}

// ToUnipolar maps [-1, 1] to [0, 1].
func ToUnipolar(bipolar float64) float64 {
	return (bipolar + 1) * 0.5
}
