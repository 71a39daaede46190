// Package effectchain runs glitch modules in series.
//
// A Chain holds modules in insertion order and processes them in a
// separately settable processing order, which may name any subset of the
// modules in any order. Parameter updates are routed by id: the output
// gain stays in the chain, chaos mode goes to the chaos controller and
// everything else is broadcast. Chain state (gain, enabled flags, order)
// round-trips through XML with SaveState and LoadState.
package effectchain
