package effectchain

import "github.com/cwbudde/algo-glitch/dsp/core"

// Context provides the host settings effect modules are prepared with.
type Context struct {
	SampleRate   float64
	MaxBlockSize int
}

// DefaultContext returns the 44.1 kHz / 512 sample context.
func DefaultContext() Context {
	return Context{SampleRate: core.DefaultSampleRate, MaxBlockSize: core.DefaultBlockSize}
}

// Valid reports whether ctx is inside the host limits.
func (ctx Context) Valid() bool {
	return core.ValidPrepare(ctx.SampleRate, ctx.MaxBlockSize)
}
