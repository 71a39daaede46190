package core

import (
	"fmt"
	"math"
)

// Host limits accepted by Prepare-style calls.
const (
	MaxSampleRate     = 384000.0
	MaxBlockSize      = 8192
	MaxChannels       = 2
	DefaultSampleRate = 44100.0
	DefaultBlockSize  = 512
)

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	Channels   int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the stereo 44.1 kHz / 512 configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
		Channels:   MaxChannels,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithChannels sets the channel count.
func WithChannels(channels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if channels > 0 {
			cfg.Channels = channels
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ValidPrepare reports whether sampleRate and maxBlockSize are inside the
// host limits.
func ValidPrepare(sampleRate float64, maxBlockSize int) bool {
	return sampleRate > 0 && sampleRate <= MaxSampleRate && !math.IsNaN(sampleRate) &&
		maxBlockSize > 0 && maxBlockSize <= MaxBlockSize
}

// Validate checks cfg against the host limits.
func (cfg ProcessorConfig) Validate() error {
	if cfg.SampleRate <= 0 || cfg.SampleRate > MaxSampleRate || math.IsNaN(cfg.SampleRate) {
		return fmt.Errorf("sample rate must be in (0, %g]: %f", MaxSampleRate, cfg.SampleRate)
	}
	if cfg.BlockSize <= 0 || cfg.BlockSize > MaxBlockSize {
		return fmt.Errorf("block size must be in [1, %d]: %d", MaxBlockSize, cfg.BlockSize)
	}
	if cfg.Channels <= 0 || cfg.Channels > MaxChannels {
		return fmt.Errorf("channel count must be in [1, %d]: %d", MaxChannels, cfg.Channels)
	}
	return nil
}
