package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-glitch/dsp/interp"
)

// Line is a fixed-capacity circular delay line. The write cursor always
// stays in [0, Len()). Delays are measured from the most recently written
// sample, so a delay of 0 returns the last Write.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// WritePos returns the index the next Write will store to.
func (d *Line) WritePos() int {
	return d.writePos
}

// Write writes one sample and advances the cursor.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	return d.buffer[wrap(d.writePos-1-delay, size)]
}

// ReadAt reads the buffer at an absolute fractional index. The index wraps
// around the capacity and is interpolated linearly between the two
// neighbouring taps.
func (d *Line) ReadAt(index float64) float64 {
	size := len(d.buffer)
	if size == 0 || math.IsNaN(index) || math.IsInf(index, 0) {
		return 0
	}

	base := math.Floor(index)
	frac := index - base
	i0 := wrap(int(base), size)
	i1 := i0 + 1
	if i1 == size {
		i1 = 0
	}
	return interp.Linear(d.buffer[i0], d.buffer[i1], frac)
}

// ReadFractional reads a fractional delay with linear interpolation. The
// delay is clamped to [0, Len()-2] so both taps hold written history.
func (d *Line) ReadFractional(delay float64) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	if delay < 0 || math.IsNaN(delay) {
		delay = 0
	}
	if maxDelay := float64(size - 2); delay > maxDelay {
		delay = math.Max(maxDelay, 0)
	}

	// Reading backwards from the newest sample: the older tap sits one
	// index below the newer one.
	p := int(delay)
	t := delay - float64(p)
	newer := d.Read(p)
	older := d.Read(p + 1)
	return interp.Linear(newer, older, t)
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func wrap(i, size int) int {
	i %= size
	if i < 0 {
		i += size
	}
	return i
}
