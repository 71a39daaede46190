package effectchain_test

import (
	"fmt"

	"github.com/cwbudde/algo-glitch/dsp/effectchain"
	"github.com/cwbudde/algo-glitch/dsp/params"
)

func ExampleChain_SetProcessingOrder() {
	c, err := effectchain.NewDefault(effectchain.DefaultContext())
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(c.SetProcessingOrder([]int{5, 0}))
	fmt.Println(c.ProcessingOrder())
	fmt.Println(c.SetProcessingOrder([]int{0, 0}))
	fmt.Println(c.ProcessingOrder())
	// Output:
	// true
	// [5 0]
	// false
	// [0 1 2 3 4 5 6]
}

func ExampleChain_Process() {
	c, err := effectchain.NewDefault(effectchain.DefaultContext())
	if err != nil {
		fmt.Println(err)
		return
	}

	c.SetParameterValue(params.BitCrusherEnabled, 1)
	c.SetParameterValue(params.BitCrusherBitDepth, 2)
	c.SetParameterValue(params.GlobalOutputGain, 2)

	buf := [][]float64{{0.6, 0.1, -0.3}, {0.2, 0.9, -0.9}}
	c.Process(buf)

	fmt.Println(buf[0])
	fmt.Println(buf[1])
	// Output:
	// [1 0 -1]
	// [0 1.5 -2]
}
