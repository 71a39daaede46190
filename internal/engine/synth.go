package engine

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-glitch/dsp/core"
)

const (
	stepCount       = 16
	maxVoices       = 64
	minDecaySeconds = 0.01
	droneLevel      = 0.5
)

// Waveform defines oscillator shape for synth voices.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSaw
	WaveSquare
)

// ParseWaveform maps a name to a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	switch name {
	case "", "sine":
		return WaveSine, nil
	case "triangle":
		return WaveTriangle, nil
	case "saw":
		return WaveSaw, nil
	case "square":
		return WaveSquare, nil
	default:
		return WaveSine, fmt.Errorf("engine: unknown waveform %q", name)
	}
}

// Synth is a test signal source: either a steady drone or a 16-step
// plucked pattern. Glitch modules need material with transients to be
// audible, which the pattern provides.
type Synth struct {
	sampleRate float64
	waveform   Waveform

	droneHz    float64
	dronePhase float64

	tempoBPM    float64
	decaySec    float64
	steps       [stepCount]float64
	currentStep int
	untilNext   float64
	voices      []voice
}

type voice struct {
	phase       float64
	phaseStep   float64
	ageSamples  int
	decaySample int
}

// SynthOption configures a Synth.
type SynthOption func(*Synth) error

// WithWaveform sets the oscillator shape.
func WithWaveform(w Waveform) SynthOption {
	return func(s *Synth) error {
		if w < WaveSine || w > WaveSquare {
			return fmt.Errorf("engine: invalid waveform %d", w)
		}
		s.waveform = w
		return nil
	}
}

// WithDrone replaces the pattern with a steady tone at hz.
func WithDrone(hz float64) SynthOption {
	return func(s *Synth) error {
		if hz <= 0 || hz >= s.sampleRate/2 {
			return fmt.Errorf("engine: drone frequency must be in (0, %g): %f", s.sampleRate/2, hz)
		}
		s.droneHz = hz
		return nil
	}
}

// WithTempo sets the pattern tempo in BPM; steps are sixteenth notes.
func WithTempo(bpm float64) SynthOption {
	return func(s *Synth) error {
		if bpm <= 0 || bpm > 400 {
			return fmt.Errorf("engine: tempo must be in (0, 400]: %f", bpm)
		}
		s.tempoBPM = bpm
		return nil
	}
}

// WithDecay sets the pluck decay time in seconds.
func WithDecay(seconds float64) SynthOption {
	return func(s *Synth) error {
		s.decaySec = max(seconds, minDecaySeconds)
		return nil
	}
}

// NewSynth creates a synth for sampleRate.
func NewSynth(sampleRate float64, opts ...SynthOption) (*Synth, error) {
	if sampleRate <= 0 || sampleRate > core.MaxSampleRate {
		return nil, fmt.Errorf("engine: sample rate must be in (0, %g]: %f", core.MaxSampleRate, sampleRate)
	}

	s := &Synth{
		sampleRate: sampleRate,
		tempoBPM:   110,
		decaySec:   0.2,
		voices:     make([]voice, 0, maxVoices),
	}
	for i := range s.steps {
		if i%2 == 0 {
			s.steps[i] = defaultStepFreq(i / 2)
		}
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Render fills every channel of buf with the same mono signal.
func (s *Synth) Render(buf [][]float64) {
	if len(buf) == 0 {
		return
	}

	out := buf[0]
	for i := range out {
		out[i] = s.nextSample()
	}

	for ch := 1; ch < len(buf); ch++ {
		copy(buf[ch], out)
	}
}

func (s *Synth) nextSample() float64 {
	if s.droneHz > 0 {
		x := droneLevel * waveSample(s.waveform, s.dronePhase)
		s.dronePhase = wrapPhase(s.dronePhase + core.AngularFrequency(s.droneHz, s.sampleRate))

		return x
	}

	s.untilNext--
	for s.untilNext <= 0 {
		s.trigger(s.steps[s.currentStep])
		s.currentStep = (s.currentStep + 1) % stepCount
		s.untilNext += s.sampleRate * 60 / s.tempoBPM / 4
	}

	return s.sumVoices()
}

func (s *Synth) trigger(freqHz float64) {
	if freqHz <= 0 {
		return
	}

	if len(s.voices) >= maxVoices {
		copy(s.voices, s.voices[1:])
		s.voices = s.voices[:maxVoices-1]
	}

	s.voices = append(s.voices, voice{
		phaseStep:   core.AngularFrequency(freqHz, s.sampleRate),
		decaySample: max(1, int(s.decaySec*s.sampleRate)),
	})
}

func (s *Synth) sumVoices() float64 {
	attack := max(1, int(0.005*s.sampleRate))

	sum := 0.0
	write := 0
	for _, v := range s.voices {
		if v.ageSamples >= v.decaySample {
			continue
		}

		sum += envelope(v.ageSamples, attack, v.decaySample) * waveSample(s.waveform, v.phase)

		v.phase = wrapPhase(v.phase + v.phaseStep)
		v.ageSamples++
		s.voices[write] = v
		write++
	}
	s.voices = s.voices[:write]

	return sum
}

func wrapPhase(phase float64) float64 {
	if phase > math.Pi {
		phase -= 2 * math.Pi
	}
	return phase
}

func envelope(age, attack, decay int) float64 {
	const start = 0.0001
	const peak = 0.22
	const end = 0.0001

	if age < attack {
		t := float64(age) / float64(attack)
		return start * math.Pow(peak/start, t)
	}
	if decay <= attack {
		return end
	}
	t := float64(age-attack) / float64(decay-attack)
	return peak * math.Pow(end/peak, t)
}

func defaultStepFreq(i int) float64 {
	defaults := [...]float64{130.81, 164.81, 196, 220, 261.63, 329.63, 392, 440}
	return defaults[i%len(defaults)]
}

func waveSample(w Waveform, phase float64) float64 {
	switch w {
	case WaveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case WaveSaw:
		return phase / math.Pi
	case WaveSquare:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}
