package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
)

// ErrUnknownParameter is returned for ids that are not registered.
var ErrUnknownParameter = errors.New("unknown parameter")

type slot struct {
	bits atomic.Uint64
	gen  atomic.Uint64
}

// Registry holds the current value of every parameter. The set of
// parameters is fixed at construction; values are atomics, so one control
// goroutine may Set while the audio goroutine reads.
type Registry struct {
	defs  []Definition
	index map[string]int
	slots []slot
}

// New builds a registry from defs, with every value at its default.
func New(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs:  make([]Definition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
		slots: make([]slot, len(defs)),
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.index[d.ID]; exists {
			return nil, fmt.Errorf("duplicate parameter id: %s", d.ID)
		}
		r.index[d.ID] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	r.ResetToDefaults()
	return r, nil
}

// Default returns a registry holding Layout().
func Default() *Registry {
	r, err := New(Layout()...)
	if err != nil {
		panic("params: default layout: " + err.Error())
	}
	return r
}

// Len returns the number of parameters.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Definitions returns a copy of the definitions in registration order.
func (r *Registry) Definitions() []Definition {
	return append([]Definition(nil), r.defs...)
}

// Definition looks up one definition.
func (r *Registry) Definition(id string) (Definition, bool) {
	i, ok := r.index[id]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Value returns the current real value of id.
func (r *Registry) Value(id string) (float64, bool) {
	i, ok := r.index[id]
	if !ok {
		return 0, false
	}
	return r.load(i), true
}

// Normalized returns the current value of id mapped to [0, 1].
func (r *Registry) Normalized(id string) (float64, bool) {
	i, ok := r.index[id]
	if !ok {
		return 0, false
	}
	return r.defs[i].Normalize(r.load(i)), true
}

// Set stores a real value, clamped and snapped to the definition.
func (r *Registry) Set(id string, value float64) error {
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, id)
	}
	r.store(i, r.defs[i].Clamp(value))
	return nil
}

// SetNormalized stores a value given in the [0, 1] host range.
func (r *Registry) SetNormalized(id string, normalized float64) error {
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, id)
	}
	r.store(i, r.defs[i].Denormalize(normalized))
	return nil
}

// ResetToDefaults restores every parameter to its default value.
func (r *Registry) ResetToDefaults() {
	for i, d := range r.defs {
		r.store(i, d.Default)
	}
}

// Each calls fn with every definition and its current value, in
// registration order.
func (r *Registry) Each(fn func(def Definition, value float64)) {
	for i := range r.defs {
		fn(r.defs[i], r.load(i))
	}
}

// Cursor remembers which value generations a consumer has already seen.
type Cursor struct {
	seen []uint64
}

// NewCursor returns a cursor for which every parameter counts as changed.
func (r *Registry) NewCursor() *Cursor {
	return &Cursor{seen: make([]uint64, len(r.defs))}
}

// Changed calls fn for every parameter whose value was stored since the
// cursor last saw it. It does not allocate.
func (r *Registry) Changed(c *Cursor, fn func(id string, value float64)) {
	n := min(len(c.seen), len(r.slots))
	for i := 0; i < n; i++ {
		gen := r.slots[i].gen.Load()
		if gen == c.seen[i] {
			continue
		}
		c.seen[i] = gen
		fn(r.defs[i].ID, r.load(i))
	}
}

// Save writes the current values as a JSON object keyed by id.
func (r *Registry) Save(w io.Writer) error {
	values := make(map[string]float64, len(r.defs))
	for i, d := range r.defs {
		values[d.ID] = r.load(i)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(values); err != nil {
		return fmt.Errorf("params: save: %w", err)
	}
	return nil
}

// Load reads a JSON object written by Save. Unknown ids are skipped so
// presets survive parameters being retired.
func (r *Registry) Load(rd io.Reader) error {
	var values map[string]float64
	if err := json.NewDecoder(rd).Decode(&values); err != nil {
		return fmt.Errorf("params: load: %w", err)
	}
	for id, v := range values {
		if i, ok := r.index[id]; ok {
			r.store(i, r.defs[i].Clamp(v))
		}
	}
	return nil
}

func (r *Registry) load(i int) float64 {
	return math.Float64frombits(r.slots[i].bits.Load())
}

func (r *Registry) store(i int, v float64) {
	r.slots[i].bits.Store(math.Float64bits(v))
	r.slots[i].gen.Add(1)
}
