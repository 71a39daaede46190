package params

// Layout returns the full parameter table in display order.
func Layout() []Definition {
	return []Definition{
		Float(GlobalOutputGain, "Output Gain", "", 0, 2, 0.01, 1),
		Bool(GlobalChaosMode, "Chaos Mode", false),

		Bool(BitCrusherEnabled, "Bitcrusher Enabled", false),
		Float(BitCrusherBitDepth, "Bit Depth", "bits", 1, 16, 1, 16),
		Float(BitCrusherSampleRateDiv, "Sample Rate Divisor", "", 1, 64, 1, 1),
		Float(BitCrusherMix, "Bitcrusher Mix", "", 0, 1, 0.01, 0),

		Bool(BufferStutterEnabled, "Stutter Enabled", false),
		Float(BufferStutterRate, "Stutter Rate", "divisions", 1, 16, 1, 4),
		Float(BufferStutterLength, "Stutter Length", "ms", 10, 500, 1, 100).WithSkew(0.5),
		Float(BufferStutterMix, "Stutter Mix", "", 0, 1, 0.01, 0),

		Bool(PitchDriftEnabled, "Pitch Drift Enabled", false),
		Float(PitchDriftAmount, "Drift Amount", "cents", 0, 1200, 1, 0),
		Float(PitchDriftSpeed, "Drift Speed", "Hz", 0.01, 10, 0.01, 1).WithSkew(0.5),
		Float(PitchDriftMix, "Pitch Drift Mix", "", 0, 1, 0.01, 0),

		Bool(ReverseSliceEnabled, "Reverse Slice Enabled", false),
		Float(ReverseSliceInterval, "Slice Interval", "ms", 50, 1000, 10, 200).WithSkew(0.5),
		Float(ReverseSliceChance, "Reverse Chance", "", 0, 1, 0.01, 0.5),
		Float(ReverseSliceMix, "Reverse Slice Mix", "", 0, 1, 0.01, 0),

		Bool(SliceRearrangeEnabled, "Rearrange Enabled", false),
		Float(SliceRearrangeSliceCount, "Slice Count", "slices", 2, 16, 1, 4),
		Float(SliceRearrangeRandomize, "Randomize Amount", "", 0, 1, 0.01, 0),
		Float(SliceRearrangeMix, "Rearrange Mix", "", 0, 1, 0.01, 0),

		Bool(WeirdFlangerEnabled, "Flanger Enabled", false),
		Float(WeirdFlangerRate, "Flanger Rate", "Hz", 0.01, 20, 0.01, 1).WithSkew(0.5),
		Float(WeirdFlangerDepth, "Flanger Depth", "", 0, 1, 0.01, 0.8),
		Float(WeirdFlangerFeedback, "Flanger Feedback", "", -1, 1, 0.01, 0),
		Float(WeirdFlangerMix, "Flanger Mix", "", 0, 1, 0.01, 0),

		Float(ChaosSpeed, "Chaos Speed", "Hz", 0.01, 10, 0.01, 4).WithSkew(0.5),
		Float(ChaosIntensity, "Chaos Intensity", "%", 0, 100, 1, 100),
	}
}
