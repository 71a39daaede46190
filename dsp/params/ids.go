// Package params defines the glitch processor's parameter set: the string
// ids every module routes on, the definition table with ranges and
// defaults, and an atomic registry shared by the control and audio
// goroutines.
package params

// Global parameter ids.
const (
	GlobalOutputGain = "global_output_gain"
	GlobalChaosMode  = "global_chaos_mode"
)

// BitCrusher parameter ids.
const (
	BitCrusherEnabled       = "bc_enabled"
	BitCrusherBitDepth      = "bc_bit_depth"
	BitCrusherSampleRateDiv = "bc_samplerate_div"
	BitCrusherMix           = "bc_mix"
)

// BufferStutter parameter ids.
const (
	BufferStutterEnabled = "st_enabled"
	BufferStutterRate    = "st_rate"
	BufferStutterLength  = "st_length"
	BufferStutterMix     = "st_mix"
)

// PitchDrift parameter ids.
const (
	PitchDriftEnabled = "pd_enabled"
	PitchDriftAmount  = "pd_amount"
	PitchDriftSpeed   = "pd_speed"
	PitchDriftMix     = "pd_mix"
)

// ReverseSlice parameter ids.
const (
	ReverseSliceEnabled  = "rs_enabled"
	ReverseSliceInterval = "rs_interval"
	ReverseSliceChance   = "rs_chance"
	ReverseSliceMix      = "rs_mix"
)

// SliceRearrange parameter ids.
const (
	SliceRearrangeEnabled    = "sr_enabled"
	SliceRearrangeSliceCount = "sr_slice_count"
	SliceRearrangeRandomize  = "sr_randomize"
	SliceRearrangeMix        = "sr_mix"
)

// WeirdFlanger parameter ids.
const (
	WeirdFlangerEnabled  = "wf_enabled"
	WeirdFlangerRate     = "wf_rate"
	WeirdFlangerDepth    = "wf_depth"
	WeirdFlangerFeedback = "wf_feedback"
	WeirdFlangerMix      = "wf_mix"
)

// ChaosController parameter ids. The controller is switched on by
// GlobalChaosMode rather than an enabled flag of its own.
const (
	ChaosSpeed     = "chaos_speed"
	ChaosIntensity = "chaos_intensity"
)

// IsOn interprets a boolean parameter value.
func IsOn(value float64) bool {
	return value > 0.5
}
