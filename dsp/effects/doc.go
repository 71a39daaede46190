// Package effects provides the glitch modules run by an effect chain.
//
// Modules in this package:
//   - BitCrusher: bit-depth quantization and sample-and-hold downsampling.
//   - BufferStutter: replays short slices of recent history from a fixed pool.
//   - PitchDrift: LFO-modulated delay producing a Doppler pitch wobble.
//   - ReverseSlice: plays fixed-length slices back, some of them reversed.
//   - SliceRearrange: reorders near-equal slices inside every block.
//   - WeirdFlanger: short modulated delay with shared mono feedback.
//   - ChaosController: requests periodic parameter randomization.
//
// Every module implements Effect. Blocks are planar [][]float64 with at
// most two channels. Process never allocates once Prepare has sized the
// scratch buffers, unless a host sends a block larger than announced.
package effects
