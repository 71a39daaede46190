// Package interp provides interpolation primitives used by delay-based DSP blocks.
//
// Available methods:
//
//   - [Linear]: 2-point linear interpolation
package interp
