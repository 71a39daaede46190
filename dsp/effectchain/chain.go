package effectchain

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-glitch/dsp/buffer"
	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/effects"
	"github.com/cwbudde/algo-glitch/dsp/params"
)

// ErrUnknownEffect is returned when a module name is not registered.
var ErrUnknownEffect = errors.New("unknown effect type")

const (
	minGlobalGain = 0.0
	maxGlobalGain = 2.0
)

// Option configures a Chain.
type Option func(*Chain)

// WithRegistry sets the registry AddByName builds modules from.
func WithRegistry(r *Registry) Option {
	return func(c *Chain) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithLogger sets the logger for control-path events. Process never logs.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Chain) {
		if l != nil {
			c.logger = l
		}
	}
}

// Chain owns an ordered list of effect modules, a processing order over
// their indices and a global output gain.
//
// Structural calls (AddEffect, RemoveEffect, SetProcessingOrder,
// PrepareToPlay, LoadState, ...) must not overlap Process. Parameter
// updates follow the rules of the individual modules.
type Chain struct {
	ctx      Context
	prepared bool

	registry *Registry
	logger   logrus.FieldLogger

	effects []effects.Effect
	order   []int

	gainBits atomic.Uint64

	work buffer.Buffer
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// New creates an empty chain with unity gain. Without WithLogger the
// chain logs nowhere.
func New(opts ...Option) *Chain {
	c := &Chain{
		registry: DefaultRegistry(),
		logger:   discardLogger(),
	}
	c.gainBits.Store(math.Float64bits(1))

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Context returns the settings of the last successful PrepareToPlay.
func (c *Chain) Context() Context {
	return c.ctx
}

// Prepared reports whether PrepareToPlay has succeeded.
func (c *Chain) Prepared() bool {
	return c.prepared
}

// AddEffect appends fx and resets the processing order to identity. If the
// chain is prepared, fx is prepared immediately.
func (c *Chain) AddEffect(fx effects.Effect) {
	if fx == nil {
		return
	}

	if c.prepared {
		fx.Prepare(c.ctx.SampleRate, c.ctx.MaxBlockSize)
	}

	c.effects = append(c.effects, fx)
	c.resetOrder()

	c.logger.WithFields(logrus.Fields{
		"function": "Chain.AddEffect",
		"effect":   fx.Name(),
		"index":    len(c.effects) - 1,
	}).Debug("Effect added")
}

// AddByName builds a module from the registry and appends it.
func (c *Chain) AddByName(name string) error {
	fx, err := c.registry.Build(name, c.ctx)
	if err != nil {
		return fmt.Errorf("effectchain: add %q: %w", name, err)
	}

	c.AddEffect(fx)

	return nil
}

// RemoveEffect removes the module at index. Out-of-range indices are
// ignored.
func (c *Chain) RemoveEffect(index int) {
	if index < 0 || index >= len(c.effects) {
		return
	}

	name := c.effects[index].Name()
	c.effects = append(c.effects[:index], c.effects[index+1:]...)
	c.resetOrder()

	c.logger.WithFields(logrus.Fields{
		"function": "Chain.RemoveEffect",
		"effect":   name,
		"index":    index,
	}).Debug("Effect removed")
}

// ClearEffects removes every module.
func (c *Chain) ClearEffects() {
	c.effects = nil
	c.resetOrder()
}

// NumEffects returns the number of modules.
func (c *Chain) NumEffects() int {
	return len(c.effects)
}

// Effect returns the module at index, or nil.
func (c *Chain) Effect(index int) effects.Effect {
	if index < 0 || index >= len(c.effects) {
		return nil
	}

	return c.effects[index]
}

// EffectByName returns the first module called name, or nil.
func (c *Chain) EffectByName(name string) effects.Effect {
	for _, fx := range c.effects {
		if fx.Name() == name {
			return fx
		}
	}

	return nil
}

// FindEffect returns the index of the first module called name, or -1.
func (c *Chain) FindEffect(name string) int {
	for i, fx := range c.effects {
		if fx.Name() == name {
			return i
		}
	}

	return -1
}

// EffectName returns the name of the module at index, or "" when index is
// out of range.
func (c *Chain) EffectName(index int) string {
	if fx := c.Effect(index); fx != nil {
		return fx.Name()
	}

	return ""
}

// SetEffectEnabled switches the module at index on or off. Out-of-range
// indices are ignored.
func (c *Chain) SetEffectEnabled(index int, enabled bool) {
	if fx := c.Effect(index); fx != nil {
		fx.SetEnabled(enabled)
	}
}

// IsEffectEnabled reports whether the module at index is enabled. It is
// false for out-of-range indices.
func (c *Chain) IsEffectEnabled(index int) bool {
	fx := c.Effect(index)
	return fx != nil && fx.Enabled()
}

// BypassEffect is the inverse of SetEffectEnabled: a bypassed module is a
// disabled one.
func (c *Chain) BypassEffect(index int, bypass bool) {
	c.SetEffectEnabled(index, !bypass)
}

// IsEffectBypassed reports whether the module at index is disabled. It is
// false for out-of-range indices.
func (c *Chain) IsEffectBypassed(index int) bool {
	fx := c.Effect(index)
	return fx != nil && !fx.Enabled()
}

// Effects returns a copy of the module list.
func (c *Chain) Effects() []effects.Effect {
	return append([]effects.Effect(nil), c.effects...)
}

// SetProcessingOrder sets the order modules run in. Any permutation of a
// subset of the current indices is accepted; an out-of-range or repeated
// index reverts to identity order. It reports whether order was accepted.
func (c *Chain) SetProcessingOrder(order []int) bool {
	if !validOrder(order, len(c.effects)) {
		c.logger.WithFields(logrus.Fields{
			"function": "Chain.SetProcessingOrder",
			"order":    order,
			"effects":  len(c.effects),
		}).Warn("Invalid processing order, falling back to identity")
		c.resetOrder()

		return false
	}

	c.order = append(c.order[:0], order...)

	return true
}

// ProcessingOrder returns a copy of the current processing order.
func (c *Chain) ProcessingOrder() []int {
	return append([]int(nil), c.order...)
}

// SetParameterValue routes a parameter update. The output gain stays in
// the chain, chaos mode goes only to the chaos controller and every other
// id is broadcast to all modules.
func (c *Chain) SetParameterValue(id string, value float64) {
	switch id {
	case params.GlobalOutputGain:
		c.SetGlobalGain(value)
	case params.GlobalChaosMode:
		if fx := c.EffectByName(effects.NameChaosController); fx != nil {
			fx.SetParameterValue(id, value)
		}
	default:
		for _, fx := range c.effects {
			fx.SetParameterValue(id, value)
		}
	}
}

// SetGlobalGain sets the output gain, clamped to [0, 2]. NaN is ignored.
func (c *Chain) SetGlobalGain(gain float64) {
	if math.IsNaN(gain) {
		return
	}

	c.gainBits.Store(math.Float64bits(core.Clamp(gain, minGlobalGain, maxGlobalGain)))
}

// GlobalGain returns the output gain.
func (c *Chain) GlobalGain() float64 {
	return math.Float64frombits(c.gainBits.Load())
}

// PrepareToPlay prepares every module and sizes the working buffer.
// Invalid settings are logged and leave the chain as it was.
func (c *Chain) PrepareToPlay(sampleRate float64, maxBlockSize int) {
	ctx := Context{SampleRate: sampleRate, MaxBlockSize: maxBlockSize}
	if !ctx.Valid() {
		c.logger.WithFields(logrus.Fields{
			"function":       "Chain.PrepareToPlay",
			"sample_rate":    sampleRate,
			"max_block_size": maxBlockSize,
		}).Warn("Rejected host configuration")

		return
	}

	c.ctx = ctx
	c.prepared = true
	c.work.Resize(core.MaxChannels, maxBlockSize)

	for _, fx := range c.effects {
		fx.Prepare(sampleRate, maxBlockSize)
	}

	c.logger.WithFields(logrus.Fields{
		"function":       "Chain.PrepareToPlay",
		"sample_rate":    sampleRate,
		"max_block_size": maxBlockSize,
		"effects":        len(c.effects),
	}).Info("Effect chain prepared")
}

// ReleaseResources resets every module and frees the working buffer.
func (c *Chain) ReleaseResources() {
	c.Reset()
	c.work.Release()
}

// Reset clears the transient state of every module.
func (c *Chain) Reset() {
	for _, fx := range c.effects {
		fx.Reset()
	}
}

func (c *Chain) resetOrder() {
	c.order = c.order[:0]
	for i := range c.effects {
		c.order = append(c.order, i)
	}
}

func validOrder(order []int, n int) bool {
	seen := make(map[int]struct{}, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= n {
			return false
		}

		if _, dup := seen[idx]; dup {
			return false
		}

		seen[idx] = struct{}{}
	}

	return true
}
