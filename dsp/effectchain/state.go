package effectchain

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// State is the persisted form of a chain: output gain, per-module enabled
// flags and the processing order. Module parameters are persisted by the
// parameter registry, not here.
type State struct {
	XMLName    xml.Name      `xml:"EffectChainState"`
	GlobalGain float64       `xml:"GlobalGain,attr"`
	Effects    []EffectState `xml:"Effects>Effect"`
	Order      []OrderIndex  `xml:"ProcessingOrder>Index"`
}

// EffectState records one module slot.
type EffectState struct {
	Index   int    `xml:"Index,attr"`
	Name    string `xml:"Name,attr"`
	Enabled bool   `xml:"Enabled,attr"`
}

// OrderIndex is one entry of the processing order.
type OrderIndex struct {
	Value int `xml:"value,attr"`
}

// State captures the chain's current state.
func (c *Chain) State() State {
	s := State{GlobalGain: c.GlobalGain()}

	for i, fx := range c.effects {
		s.Effects = append(s.Effects, EffectState{Index: i, Name: fx.Name(), Enabled: fx.Enabled()})
	}

	for _, idx := range c.order {
		s.Order = append(s.Order, OrderIndex{Value: idx})
	}

	return s
}

// ApplyState restores gain, enabled flags and order from s. Entries whose
// index is out of range or whose name does not match the module at that
// index are skipped.
func (c *Chain) ApplyState(s State) {
	c.SetGlobalGain(s.GlobalGain)

	for _, es := range s.Effects {
		fx := c.Effect(es.Index)
		if fx == nil || fx.Name() != es.Name {
			c.logger.WithFields(logrus.Fields{
				"function": "Chain.ApplyState",
				"index":    es.Index,
				"name":     es.Name,
			}).Warn("Skipping state for unknown effect slot")

			continue
		}

		fx.SetEnabled(es.Enabled)
	}

	if s.Order != nil {
		order := make([]int, len(s.Order))
		for i, o := range s.Order {
			order[i] = o.Value
		}

		c.SetProcessingOrder(order)
	}
}

// SaveState writes the chain state as XML.
func (c *Chain) SaveState(w io.Writer) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	if err := enc.Encode(c.State()); err != nil {
		return fmt.Errorf("effectchain: encode state: %w", err)
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("effectchain: encode state: %w", err)
	}

	return nil
}

// LoadState reads XML written by SaveState and applies it. A missing
// GlobalGain attribute restores unity gain.
func (c *Chain) LoadState(r io.Reader) error {
	s := State{GlobalGain: 1}
	if err := xml.NewDecoder(r).Decode(&s); err != nil {
		return fmt.Errorf("effectchain: decode state: %w", err)
	}

	c.ApplyState(s)

	return nil
}
