package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-glitch/dsp/buffer"
	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/delay"
	"github.com/cwbudde/algo-glitch/dsp/mix"
	"github.com/cwbudde/algo-glitch/dsp/params"
)

const (
	// MaxStutterSlices is the fixed capacity of the stutter slice pool.
	MaxStutterSlices = 8

	defaultStutterRate           = 4.0
	defaultStutterLengthMs       = 100.0
	defaultStutterCaptureSeconds = 2.0
	minStutterRate               = 1.0
	maxStutterRate               = 16.0
	minStutterLengthMs           = 10.0
	maxStutterLengthMs           = 500.0
	minStutterCaptureSeconds     = 0.1
	maxStutterCaptureSeconds     = 10.0
	stutterFadeDivisor           = 4
)

// BufferStutterOption mutates stutter construction parameters.
type BufferStutterOption func(*bufferStutterConfig) error

type bufferStutterConfig struct {
	rate           float64
	lengthMs       float64
	captureSeconds float64
	mix            float64
}

func defaultBufferStutterConfig() bufferStutterConfig {
	return bufferStutterConfig{
		rate:           defaultStutterRate,
		lengthMs:       defaultStutterLengthMs,
		captureSeconds: defaultStutterCaptureSeconds,
		mix:            0,
	}
}

// WithStutterRate sets the number of slice triggers per second in [1, 16].
func WithStutterRate(rate float64) BufferStutterOption {
	return func(cfg *bufferStutterConfig) error {
		if rate < minStutterRate || rate > maxStutterRate || math.IsNaN(rate) {
			return fmt.Errorf("stutter rate must be in [%g, %g]: %f", minStutterRate, maxStutterRate, rate)
		}
		cfg.rate = rate
		return nil
	}
}

// WithStutterLength sets the slice length in milliseconds in [10, 500].
func WithStutterLength(ms float64) BufferStutterOption {
	return func(cfg *bufferStutterConfig) error {
		if ms < minStutterLengthMs || ms > maxStutterLengthMs || math.IsNaN(ms) {
			return fmt.Errorf("stutter length must be in [%g, %g]: %f", minStutterLengthMs, maxStutterLengthMs, ms)
		}
		cfg.lengthMs = ms
		return nil
	}
}

// WithStutterCaptureSeconds sets the capture history length in seconds in
// [0.1, 10].
func WithStutterCaptureSeconds(seconds float64) BufferStutterOption {
	return func(cfg *bufferStutterConfig) error {
		if seconds < minStutterCaptureSeconds || seconds > maxStutterCaptureSeconds || math.IsNaN(seconds) {
			return fmt.Errorf("stutter capture length must be in [%g, %g]: %f",
				minStutterCaptureSeconds, maxStutterCaptureSeconds, seconds)
		}
		cfg.captureSeconds = seconds
		return nil
	}
}

// WithStutterMix sets the dry/wet mix in [0, 1].
func WithStutterMix(mix float64) BufferStutterOption {
	return func(cfg *bufferStutterConfig) error {
		if mix < 0 || mix > 1 || math.IsNaN(mix) {
			return fmt.Errorf("stutter mix must be in [0, 1]: %f", mix)
		}
		cfg.mix = mix
		return nil
	}
}

// stutterSlice is one replay of a run of the capture buffer.
type stutterSlice struct {
	start    int
	length   int
	position int
	fade     int
	gain     float64
	active   bool
}

// BufferStutter records a mono sum of the input into a circular capture
// buffer and periodically replays its most recent history as short slices.
// Up to MaxStutterSlices slices play at once; triggers arriving while the
// pool is full are dropped.
type BufferStutter struct {
	base

	rate           float64
	lengthMs       float64
	captureSeconds float64

	capture *delay.Line

	triggerPhase    float64
	triggerInterval float64
	sliceLength     int

	pool   [MaxStutterSlices]stutterSlice
	active int

	wet buffer.Buffer
}

// NewBufferStutter creates a disabled stutter with optional configuration
// overrides.
func NewBufferStutter(opts ...BufferStutterOption) (*BufferStutter, error) {
	cfg := defaultBufferStutterConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	bs := &BufferStutter{
		rate:           cfg.rate,
		lengthMs:       cfg.lengthMs,
		captureSeconds: cfg.captureSeconds,
	}
	bs.SetMix(cfg.mix)
	return bs, nil
}

// Name returns "BufferStutter".
func (bs *BufferStutter) Name() string { return NameBufferStutter }

// Prepare allocates the capture history and wet scratch buffer.
func (bs *BufferStutter) Prepare(sampleRate float64, maxBlockSize int) {
	size := int(sampleRate * bs.captureSeconds)
	if size <= 0 || !bs.prepareBase(sampleRate, maxBlockSize) {
		return
	}

	if bs.capture == nil || bs.capture.Len() != size {
		line, err := delay.New(size)
		if err != nil {
			return
		}
		bs.capture = line
	}
	bs.wet.Resize(core.MaxChannels, maxBlockSize)
	bs.updateTiming()
	bs.Reset()
}

// Reset clears the capture history and drops every playing slice.
func (bs *BufferStutter) Reset() {
	if bs.capture != nil {
		bs.capture.Reset()
	}
	bs.triggerPhase = 0
	for i := range bs.pool {
		bs.pool[i] = stutterSlice{}
	}
	bs.active = 0
}

// SetParameterValue routes st_* ids; anything else is ignored.
func (bs *BufferStutter) SetParameterValue(id string, value float64) {
	switch id {
	case params.BufferStutterEnabled:
		bs.SetEnabled(params.IsOn(value))
	case params.BufferStutterRate:
		bs.SetRate(value)
	case params.BufferStutterLength:
		bs.SetLength(value)
	case params.BufferStutterMix:
		bs.SetMix(value)
	}
}

// SetRate sets the triggers per second, clamped to [1, 16].
func (bs *BufferStutter) SetRate(rate float64) {
	if math.IsNaN(rate) {
		return
	}
	bs.rate = core.Clamp(rate, minStutterRate, maxStutterRate)
	bs.updateTiming()
}

// SetLength sets the slice length in milliseconds, clamped to [10, 500].
func (bs *BufferStutter) SetLength(ms float64) {
	if math.IsNaN(ms) {
		return
	}
	bs.lengthMs = core.Clamp(ms, minStutterLengthMs, maxStutterLengthMs)
	bs.updateTiming()
}

// Rate returns the trigger rate in Hz.
func (bs *BufferStutter) Rate() float64 { return bs.rate }

// Length returns the slice length in milliseconds.
func (bs *BufferStutter) Length() float64 { return bs.lengthMs }

// ActiveSlices returns the number of slices currently playing.
func (bs *BufferStutter) ActiveSlices() int { return bs.active }

// Process records buf and replaces it with the mix of dry input and the
// sum of all playing slices. Every channel receives the same wet signal.
func (bs *BufferStutter) Process(buf [][]float64) {
	if !bs.prepared {
		return
	}
	channels, frames := blockShape(buf)
	if frames == 0 {
		return
	}

	if !bs.wet.Fits(channels, frames) {
		bs.wet.Resize(max(channels, core.MaxChannels), frames)
	}
	wet := bs.wet.Data()
	inv := 1 / float64(channels)

	for i := 0; i < frames; i++ {
		var mono float64
		for ch := 0; ch < channels; ch++ {
			mono += buf[ch][i]
		}
		bs.capture.Write(mono * inv)

		bs.triggerPhase++
		if bs.triggerPhase >= bs.triggerInterval {
			bs.triggerSlice()
			bs.triggerPhase -= bs.triggerInterval
		}

		out := bs.advanceSlices()
		for ch := 0; ch < channels; ch++ {
			wet[ch][i] = out
		}
	}

	blendWet(buf, wet, frames, bs.Mix())
}

// triggerSlice claims a free pool slot for the most recent slice of
// history. A full pool drops the trigger.
func (bs *BufferStutter) triggerSlice() {
	if bs.active >= MaxStutterSlices {
		return
	}

	size := bs.capture.Len()
	length := core.ClampInt(bs.sliceLength, 1, size)
	bs.pool[bs.active] = stutterSlice{
		start:  (bs.capture.WritePos() - length + size) % size,
		length: length,
		fade:   min(mix.CrossfadeSamples, length/stutterFadeDivisor),
		gain:   1,
		active: true,
	}
	bs.active++
}

// advanceSlices returns the summed output of every active slice for one
// sample, then compacts the pool so active slices occupy the leading
// slots.
func (bs *BufferStutter) advanceSlices() float64 {
	var sum float64

	for i := 0; i < bs.active; i++ {
		s := &bs.pool[i]
		if !s.active {
			continue
		}

		fadeGain := 1.0
		if s.fade > 0 {
			switch {
			case s.position < s.fade:
				fadeGain = float64(s.position) / float64(s.fade)
			case s.position >= s.length-s.fade:
				fadeGain = float64(s.length-s.position) / float64(s.fade)
			}
		}
		sum += bs.capture.ReadAt(float64(s.start+s.position)) * s.gain * fadeGain

		s.position++
		if s.position >= s.length {
			s.active = false
		}
	}

	n := 0
	for i := 0; i < bs.active; i++ {
		if bs.pool[i].active {
			if n != i {
				bs.pool[n] = bs.pool[i]
			}
			n++
		}
	}
	for i := n; i < bs.active; i++ {
		bs.pool[i].active = false
	}
	bs.active = n

	return sum
}

func (bs *BufferStutter) updateTiming() {
	if bs.sampleRate <= 0 {
		return
	}
	bs.triggerInterval = math.Max(1, bs.sampleRate/bs.rate)
	bs.sliceLength = max(1, int(bs.lengthMs/1000*bs.sampleRate))
}
