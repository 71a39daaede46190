package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-glitch/dsp/buffer"
)

func ExampleBuffer() {
	b := buffer.New(2, 4)
	copy(b.Channel(0), []float64{1, 2, 3, 4})

	b.Resize(2, 6)

	fmt.Println(b.Channel(0))
	fmt.Println(b.Channels(), b.Frames())

	// Output:
	// [1 2 3 4 0 0]
	// 2 6
}

func ExampleInterleave() {
	planar := [][]float64{{1, 2}, {-1, -2}}
	out := make([]float32, 4)
	n := buffer.Interleave(out, planar)

	fmt.Println(n, out)

	// Output:
	// 2 [1 -1 2 -2]
}
