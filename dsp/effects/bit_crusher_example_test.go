package effects_test

import (
	"fmt"

	"github.com/cwbudde/algo-glitch/dsp/effects"
)

func ExampleBitCrusher_ProcessInPlace() {
	bc, err := effects.NewBitCrusher(
		effects.WithBitCrusherBitDepth(2),
		effects.WithBitCrusherDownsample(2),
		effects.WithBitCrusherMix(1),
	)
	if err != nil {
		fmt.Println("error")
		return
	}
	bc.Prepare(48000, 64)

	buf := []float64{0.6, 0.9, -0.3, 0.1}
	bc.ProcessInPlace(buf)

	fmt.Println(buf)
	// Output:
	// [0.5 0.5 -0.5 -0.5]
}
