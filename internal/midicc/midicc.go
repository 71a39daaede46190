// Package midicc maps MIDI control change messages onto glitch
// parameters.
package midicc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/cwbudde/algo-glitch/dsp/params"
)

const (
	// AnyChannel matches control changes on every MIDI channel.
	AnyChannel = -1

	// FirstDefaultCC is the controller number of the first parameter in
	// the default map.
	FirstDefaultCC = 20

	maxCCValue = 127
)

// Target receives parameter updates in the [0, 1] host range.
type Target interface {
	SetNormalized(id string, normalized float64) error
}

// Binding assigns one controller to one parameter.
type Binding struct {
	Controller uint8
	Param      string
}

// DefaultBindings maps CC 20 upward onto the parameter layout in order.
func DefaultBindings() []Binding {
	defs := params.Layout()
	out := make([]Binding, 0, len(defs))
	for i, d := range defs {
		out = append(out, Binding{Controller: uint8(FirstDefaultCC + i), Param: d.ID})
	}
	return out
}

// ParseBinding parses "cc=param", for example "74=wf_rate".
func ParseBinding(s string) (Binding, error) {
	cc, id, ok := strings.Cut(s, "=")
	cc, id = strings.TrimSpace(cc), strings.TrimSpace(id)
	if !ok || id == "" {
		return Binding{}, fmt.Errorf("midicc: binding %q: want cc=param", s)
	}

	n, err := strconv.ParseUint(cc, 10, 8)
	if err != nil || n > maxCCValue {
		return Binding{}, fmt.Errorf("midicc: binding %q: controller must be in [0, %d]", s, maxCCValue)
	}

	return Binding{Controller: uint8(n), Param: id}, nil
}

// Option configures a Mapper.
type Option func(*Mapper) error

// WithBindings replaces the default map. Later bindings for the same
// controller win.
func WithBindings(bindings ...Binding) Option {
	return func(m *Mapper) error {
		m.bindings = map[uint8]string{}
		for _, b := range bindings {
			if b.Controller > maxCCValue {
				return fmt.Errorf("midicc: controller must be in [0, %d]: %d", maxCCValue, b.Controller)
			}
			m.bindings[b.Controller] = b.Param
		}
		return nil
	}
}

// WithChannel restricts the mapper to one zero-based MIDI channel.
func WithChannel(channel int) Option {
	return func(m *Mapper) error {
		if channel != AnyChannel && (channel < 0 || channel > 15) {
			return fmt.Errorf("midicc: channel must be in [0, 15] or AnyChannel: %d", channel)
		}
		m.channel = channel
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Mapper) error {
		if l != nil {
			m.logger = l
		}
		return nil
	}
}

// Mapper translates control changes into Target updates.
type Mapper struct {
	target   Target
	bindings map[uint8]string
	channel  int
	logger   logrus.FieldLogger
}

// NewMapper creates a mapper writing to target.
func NewMapper(target Target, opts ...Option) (*Mapper, error) {
	if target == nil {
		return nil, fmt.Errorf("midicc: target must not be nil")
	}

	l := logrus.New()
	l.SetOutput(io.Discard)

	m := &Mapper{target: target, channel: AnyChannel, logger: l}
	if err := WithBindings(DefaultBindings()...)(m); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Param returns the parameter bound to controller.
func (m *Mapper) Param(controller uint8) (string, bool) {
	id, ok := m.bindings[controller]
	return id, ok
}

// Handle applies msg if it is a bound control change and reports whether
// it was applied.
func (m *Mapper) Handle(msg midi.Message) bool {
	var channel, controller, value uint8
	if !msg.GetControlChange(&channel, &controller, &value) {
		return false
	}

	if m.channel != AnyChannel && int(channel) != m.channel {
		return false
	}

	id, ok := m.bindings[controller]
	if !ok {
		return false
	}

	if err := m.target.SetNormalized(id, float64(value)/maxCCValue); err != nil {
		m.logger.WithFields(logrus.Fields{
			"function":   "Mapper.Handle",
			"controller": controller,
			"param":      id,
		}).WithError(err).Warn("Dropping control change")

		return false
	}

	return true
}

// Listen opens in and feeds its messages to Handle until stop is called.
func (m *Mapper) Listen(in drivers.In) (stop func(), err error) {
	stop, err = midi.ListenTo(in, func(msg midi.Message, _ int32) {
		m.Handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("midicc: listen on %s: %w", in, err)
	}

	m.logger.WithFields(logrus.Fields{
		"function": "Mapper.Listen",
		"port":     in.String(),
	}).Info("Listening for MIDI control changes")

	return stop, nil
}

// OpenInPort finds an input port by number or by (partial) name.
func OpenInPort(name string) (drivers.In, error) {
	if n, err := strconv.Atoi(name); err == nil {
		in, err := midi.InPort(n)
		if err != nil {
			return nil, fmt.Errorf("midicc: input port %d: %w", n, err)
		}
		return in, nil
	}

	in, err := midi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("midicc: input port %q: %w", name, err)
	}
	return in, nil
}

// InPorts lists the available input port names.
func InPorts() []string {
	ports := midi.GetInPorts()
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

// Close shuts down the registered MIDI driver.
func Close() {
	midi.CloseDriver()
}
