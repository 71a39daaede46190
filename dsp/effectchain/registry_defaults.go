package effectchain

import "github.com/cwbudde/algo-glitch/dsp/effects"

// DefaultLineup is the module order of a default chain.
var DefaultLineup = []string{
	effects.NameBitCrusher,
	effects.NameBufferStutter,
	effects.NamePitchDrift,
	effects.NameReverseSlice,
	effects.NameSliceRearrange,
	effects.NameWeirdFlanger,
	effects.NameChaosController,
}

type registryConfig struct {
	seed    int64
	hasSeed bool
}

// RegistryOption configures the default registry.
type RegistryOption func(*registryConfig)

// WithSeed seeds every randomized module built by the registry.
func WithSeed(seed int64) RegistryOption {
	return func(c *registryConfig) {
		c.seed = seed
		c.hasSeed = true
	}
}

// DefaultRegistry returns a Registry pre-populated with all glitch modules.
//
//nolint:funlen
func DefaultRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	r := NewRegistry()

	r.MustRegister(effects.NameBitCrusher, func(_ Context) (effects.Effect, error) {
		return effects.NewBitCrusher()
	})
	r.MustRegister(effects.NameBufferStutter, func(_ Context) (effects.Effect, error) {
		return effects.NewBufferStutter()
	})
	r.MustRegister(effects.NamePitchDrift, func(_ Context) (effects.Effect, error) {
		return effects.NewPitchDrift()
	})
	r.MustRegister(effects.NameReverseSlice, func(_ Context) (effects.Effect, error) {
		var opts []effects.ReverseSliceOption
		if cfg.hasSeed {
			opts = append(opts, effects.WithReverseSeed(cfg.seed))
		}

		return effects.NewReverseSlice(opts...)
	})
	r.MustRegister(effects.NameSliceRearrange, func(_ Context) (effects.Effect, error) {
		var opts []effects.SliceRearrangeOption
		if cfg.hasSeed {
			opts = append(opts, effects.WithSliceSeed(cfg.seed))
		}

		return effects.NewSliceRearrange(opts...)
	})
	r.MustRegister(effects.NameWeirdFlanger, func(_ Context) (effects.Effect, error) {
		return effects.NewWeirdFlanger()
	})
	r.MustRegister(effects.NameChaosController, func(_ Context) (effects.Effect, error) {
		var opts []effects.ChaosControllerOption
		if cfg.hasSeed {
			opts = append(opts, effects.WithChaosSeed(cfg.seed))
		}

		return effects.NewChaosController(opts...)
	})

	return r
}

// NewDefault builds a chain holding DefaultLineup, prepared for ctx when
// ctx is valid.
func NewDefault(ctx Context, opts ...Option) (*Chain, error) {
	c := New(opts...)
	for _, name := range DefaultLineup {
		if err := c.AddByName(name); err != nil {
			return nil, err
		}
	}

	if ctx.Valid() {
		c.PrepareToPlay(ctx.SampleRate, ctx.MaxBlockSize)
	}

	return c, nil
}
