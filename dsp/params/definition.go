package params

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-glitch/dsp/core"
)

// Kind distinguishes continuous from switch parameters.
type Kind int

const (
	KindFloat Kind = iota
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindBool {
		return "bool"
	}
	return "float"
}

// Definition describes one tunable. Values are always expressed in real
// units (Hz, ms, cents, ...); Normalize and Denormalize convert to the
// [0, 1] host range, honouring Skew.
type Definition struct {
	ID      string
	Name    string
	Unit    string
	Kind    Kind
	Min     float64
	Max     float64
	Step    float64
	Skew    float64
	Default float64
}

// Float returns a continuous definition with skew 1.
func Float(id, name, unit string, minVal, maxVal, step, def float64) Definition {
	return Definition{ID: id, Name: name, Unit: unit, Kind: KindFloat,
		Min: minVal, Max: maxVal, Step: step, Skew: 1, Default: def}
}

// Bool returns a switch definition.
func Bool(id, name string, def bool) Definition {
	d := Definition{ID: id, Name: name, Kind: KindBool, Min: 0, Max: 1, Step: 1, Skew: 1}
	if def {
		d.Default = 1
	}
	return d
}

// WithSkew returns a copy of d using skew factor s for normalization.
func (d Definition) WithSkew(s float64) Definition {
	d.Skew = s
	return d
}

// Validate reports malformed definitions.
func (d Definition) Validate() error {
	if d.ID == "" {
		return errors.New("empty parameter id")
	}
	if !core.IsFinite(d.Min) || !core.IsFinite(d.Max) || d.Min > d.Max {
		return fmt.Errorf("parameter %q: invalid range [%g, %g]", d.ID, d.Min, d.Max)
	}
	if d.Step < 0 || !core.IsFinite(d.Step) {
		return fmt.Errorf("parameter %q: step must be >= 0: %g", d.ID, d.Step)
	}
	if d.Skew < 0 || !core.IsFinite(d.Skew) {
		return fmt.Errorf("parameter %q: skew must be >= 0: %g", d.ID, d.Skew)
	}
	if d.Default < d.Min || d.Default > d.Max {
		return fmt.Errorf("parameter %q: default %g outside [%g, %g]", d.ID, d.Default, d.Min, d.Max)
	}
	return nil
}

// Clamp forces v into the definition's range and onto its step grid.
// NaN maps to the default; bool parameters collapse to 0 or 1.
func (d Definition) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return d.Default
	}
	if d.Kind == KindBool {
		if IsOn(v) {
			return 1
		}
		return 0
	}

	v = core.Clamp(v, d.Min, d.Max)
	if d.Step > 0 {
		v = d.Min + math.Round((v-d.Min)/d.Step)*d.Step
		v = core.Clamp(v, d.Min, d.Max)
	}
	return v
}

// Normalize maps a real value to [0, 1].
func (d Definition) Normalize(v float64) float64 {
	if d.Max == d.Min {
		return 0
	}
	p := core.Clamp((v-d.Min)/(d.Max-d.Min), 0, 1)
	if d.Skew > 0 && d.Skew != 1 {
		p = math.Pow(p, d.Skew)
	}
	return p
}

// Denormalize maps n in [0, 1] to a clamped, step-snapped real value.
func (d Definition) Denormalize(n float64) float64 {
	p := core.Skew(n, d.Skew)
	return d.Clamp(d.Min + p*(d.Max-d.Min))
}
