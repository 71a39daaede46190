// Package engine hosts the glitch chain: it owns the parameter registry,
// pushes changed values into the chain at the start of every block and
// runs the chaos poller on the control side.
package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/effectchain"
	"github.com/cwbudde/algo-glitch/dsp/effects"
	"github.com/cwbudde/algo-glitch/dsp/params"
)

// DefaultChaosPollInterval is how often RunChaos checks for a pending
// chaos trigger (30 Hz).
const DefaultChaosPollInterval = time.Second / 30

// ModuleToggles lists the enabled parameter of each toggleable module in
// chain order.
var ModuleToggles = []string{
	params.BitCrusherEnabled,
	params.BufferStutterEnabled,
	params.PitchDriftEnabled,
	params.ReverseSliceEnabled,
	params.SliceRearrangeEnabled,
	params.WeirdFlangerEnabled,
}

// Engine connects a parameter registry to an effect chain.
//
// ProcessBlock runs on the audio goroutine. Prepare, the session calls
// and RunChaos run on control goroutines; parameter writes go through
// the registry and reach the chain at the next block.
type Engine struct {
	params *params.Registry
	chain  *effectchain.Chain
	chaos  *effects.ChaosController
	cursor *params.Cursor
	push   func(id string, value float64)

	pollInterval time.Duration
	logger       logrus.FieldLogger

	cfg      core.ProcessorConfig
	prepared bool
}

// New builds an engine around a default chain and registry.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	var regOpts []effectchain.RegistryOption
	if cfg.hasSeed {
		regOpts = append(regOpts, effectchain.WithSeed(cfg.seed))
	}

	chain, err := effectchain.NewDefault(effectchain.Context{},
		effectchain.WithLogger(cfg.logger),
		effectchain.WithRegistry(effectchain.DefaultRegistry(regOpts...)),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: build chain: %w", err)
	}

	chaos, ok := chain.EffectByName(effects.NameChaosController).(*effects.ChaosController)
	if !ok {
		return nil, fmt.Errorf("engine: %w: %s", effectchain.ErrUnknownEffect, effects.NameChaosController)
	}

	reg := cfg.params
	if reg == nil {
		reg = params.Default()
	}

	return &Engine{
		push:         chain.SetParameterValue,
		params:       reg,
		chain:        chain,
		chaos:        chaos,
		cursor:       reg.NewCursor(),
		pollInterval: cfg.pollInterval,
		logger:       cfg.logger,
	}, nil
}

// Params returns the parameter registry.
func (e *Engine) Params() *params.Registry {
	return e.params
}

// Chain returns the effect chain.
func (e *Engine) Chain() *effectchain.Chain {
	return e.chain
}

// Config returns the settings of the last successful Prepare.
func (e *Engine) Config() core.ProcessorConfig {
	return e.cfg
}

// Prepare validates host settings, prepares the chain and pushes every
// parameter value into it.
func (e *Engine) Prepare(cfg core.ProcessorConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("engine: prepare: %w", err)
	}

	e.chain.PrepareToPlay(cfg.SampleRate, cfg.BlockSize)
	e.cursor = e.params.NewCursor()
	e.pushChanged()

	e.cfg = cfg
	e.prepared = true

	e.logger.WithFields(logrus.Fields{
		"function":    "Engine.Prepare",
		"sample_rate": cfg.SampleRate,
		"block_size":  cfg.BlockSize,
		"channels":    cfg.Channels,
	}).Info("Engine prepared")

	return nil
}

// ProcessBlock pushes parameter changes into the chain and processes buf
// in place. Before Prepare it leaves buf untouched.
func (e *Engine) ProcessBlock(buf [][]float64) {
	if !e.prepared {
		return
	}

	e.pushChanged()
	e.chain.Process(buf)
}

// PollChaos consumes a pending chaos trigger and randomizes the registry.
// It reports whether a trigger was consumed.
func (e *Engine) PollChaos() bool {
	if !e.chaos.ConsumeTrigger() {
		return false
	}

	n := e.chaos.RandomizeParameters(e.params)

	e.logger.WithFields(logrus.Fields{
		"function": "Engine.PollChaos",
		"changed":  n,
	}).Debug("Chaos randomized parameters")

	return true
}

// RunChaos polls for chaos triggers until ctx is cancelled.
func (e *Engine) RunChaos(ctx context.Context) error {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.PollChaos()
		}
	}
}

// SetParameter stores a real value in the registry.
func (e *Engine) SetParameter(id string, value float64) error {
	if err := e.params.Set(id, value); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	return nil
}

// ToggleParameter flips a switch parameter and returns its new state.
func (e *Engine) ToggleParameter(id string) (bool, error) {
	v, ok := e.params.Value(id)
	if !ok {
		return false, fmt.Errorf("engine: %w: %s", params.ErrUnknownParameter, id)
	}

	on := !params.IsOn(v)

	next := 0.0
	if on {
		next = 1
	}

	if err := e.params.Set(id, next); err != nil {
		return false, fmt.Errorf("engine: %w", err)
	}

	return on, nil
}

// ResetParameters restores every parameter default.
func (e *Engine) ResetParameters() {
	e.params.ResetToDefaults()
}

// SavePreset writes the registry values as JSON.
func (e *Engine) SavePreset(w io.Writer) error {
	return e.params.Save(w)
}

// LoadPreset reads registry values written by SavePreset.
func (e *Engine) LoadPreset(r io.Reader) error {
	if err := e.params.Load(r); err != nil {
		return err
	}

	e.logger.WithField("function", "Engine.LoadPreset").Info("Preset loaded")

	return nil
}

// SaveState writes the chain state as XML.
func (e *Engine) SaveState(w io.Writer) error {
	return e.chain.SaveState(w)
}

// LoadState restores chain state written by SaveState. The output gain
// and module switches it carries are written back to the registry so the
// next parameter push does not undo them.
func (e *Engine) LoadState(r io.Reader) error {
	if err := e.chain.LoadState(r); err != nil {
		return err
	}

	if err := e.params.Set(params.GlobalOutputGain, e.chain.GlobalGain()); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	for i, id := range ModuleToggles {
		fx := e.chain.Effect(i)
		if fx == nil {
			continue
		}

		v := 0.0
		if fx.Enabled() {
			v = 1
		}

		if err := e.params.Set(id, v); err != nil {
			return fmt.Errorf("engine: %w", err)
		}
	}

	e.logger.WithFields(logrus.Fields{
		"function": "Engine.LoadState",
		"order":    e.chain.ProcessingOrder(),
	}).Info("Chain state loaded")

	return nil
}

func (e *Engine) pushChanged() {
	e.params.Changed(e.cursor, e.push)
}
