package effectchain

import "github.com/cwbudde/algo-vecmath"

// Process runs buf through the chain in place. The input is copied to the
// working buffer, every enabled module runs on it in processing order, and
// the result is written back scaled by the global gain. Disabled modules
// are skipped.
func (c *Chain) Process(buf [][]float64) {
	if len(buf) == 0 || len(buf[0]) == 0 {
		return
	}

	c.work.CopyFrom(buf)
	work := c.work.Data()

	for _, idx := range c.order {
		fx := c.effects[idx]
		if fx.Enabled() {
			fx.Process(work)
		}
	}

	gain := c.GlobalGain()
	for ch := range buf {
		vecmath.ScaleBlock(buf[ch], work[ch], gain)
	}
}
