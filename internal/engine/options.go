package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-glitch/dsp/params"
)

// Option configures an Engine.
type Option func(*config) error

type config struct {
	params       *params.Registry
	logger       logrus.FieldLogger
	pollInterval time.Duration
	seed         int64
	hasSeed      bool
}

func defaultConfig() config {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return config{
		logger:       l,
		pollInterval: DefaultChaosPollInterval,
	}
}

// WithParams uses reg instead of a fresh default registry.
func WithParams(reg *params.Registry) Option {
	return func(cfg *config) error {
		if reg == nil {
			return fmt.Errorf("engine: parameter registry must not be nil")
		}
		cfg.params = reg
		return nil
	}
}

// WithLogger sets the logger for the engine and its chain.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *config) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// WithChaosPollInterval sets how often RunChaos checks for triggers.
func WithChaosPollInterval(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return fmt.Errorf("engine: chaos poll interval must be > 0: %s", d)
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithSeed seeds every randomized module.
func WithSeed(seed int64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		cfg.hasSeed = true
		return nil
	}
}
