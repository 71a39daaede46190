package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-glitch/internal/engine"
	"github.com/cwbudde/algo-glitch/internal/midicc"
)

type assignment struct {
	id    string
	value float64
}

// setFlags collects repeated -set id=value flags.
type setFlags []assignment

func (s *setFlags) String() string {
	parts := make([]string, 0, len(*s))
	for _, a := range *s {
		parts = append(parts, fmt.Sprintf("%s=%g", a.id, a.value))
	}
	return strings.Join(parts, ",")
}

func (s *setFlags) Set(v string) error {
	id, raw, ok := strings.Cut(v, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return fmt.Errorf("want id=value, got %q", v)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", id, err)
	}

	*s = append(*s, assignment{id: id, value: value})
	return nil
}

func (s setFlags) apply(e *engine.Engine) error {
	for _, a := range s {
		if err := e.SetParameter(a.id, a.value); err != nil {
			return err
		}
	}
	return nil
}

// ccFlags collects repeated -cc controller=param flags.
type ccFlags []midicc.Binding

func (c *ccFlags) String() string {
	parts := make([]string, 0, len(*c))
	for _, b := range *c {
		parts = append(parts, fmt.Sprintf("%d=%s", b.Controller, b.Param))
	}
	return strings.Join(parts, ",")
}

func (c *ccFlags) Set(v string) error {
	b, err := midicc.ParseBinding(v)
	if err != nil {
		return err
	}
	*c = append(*c, b)
	return nil
}
