package buffer

// Buffer is planar multichannel storage: Data()[ch][i]. Backing arrays are
// only reallocated when a Resize exceeds the capacity seen so far, so a
// buffer sized in a prepare call can be reused per block without
// allocating.
type Buffer struct {
	storage [][]float64
	views   [][]float64
	frames  int
}

// New returns a zero-filled buffer of the given shape. Negative
// dimensions are treated as zero.
func New(channels, frames int) *Buffer {
	b := &Buffer{}
	b.Resize(channels, frames)
	return b
}

// Channels returns the current channel count.
func (b *Buffer) Channels() int {
	return len(b.views)
}

// Frames returns the current per-channel length.
func (b *Buffer) Frames() int {
	return b.frames
}

// Channel returns the samples of channel ch, or nil when out of range.
func (b *Buffer) Channel(ch int) []float64 {
	if ch < 0 || ch >= len(b.views) {
		return nil
	}
	return b.views[ch]
}

// Data returns the planar channel views. The outer slice is owned by the
// buffer and stays valid until the next Resize.
func (b *Buffer) Data() [][]float64 {
	return b.views
}

// Fits reports whether a Resize to the given shape can reuse the existing
// backing storage.
func (b *Buffer) Fits(channels, frames int) bool {
	if channels > len(b.storage) || channels > cap(b.views) {
		return false
	}
	for ch := 0; ch < channels; ch++ {
		if len(b.storage[ch]) < frames {
			return false
		}
	}
	return true
}

// Resize sets the shape, reusing capacity when possible. Samples exposed by
// growing are zeroed.
func (b *Buffer) Resize(channels, frames int) {
	channels = max(channels, 0)
	frames = max(frames, 0)

	prevChannels, prevFrames := len(b.views), b.frames

	for len(b.storage) < channels {
		b.storage = append(b.storage, nil)
	}
	for ch := 0; ch < channels; ch++ {
		if len(b.storage[ch]) < frames {
			grown := make([]float64, frames)
			copy(grown, b.storage[ch])
			b.storage[ch] = grown
		}
	}

	if cap(b.views) < channels {
		b.views = make([][]float64, channels)
	}
	b.views = b.views[:channels]
	for ch := range b.views {
		b.views[ch] = b.storage[ch][:frames]
		start := 0
		if ch < prevChannels {
			start = min(prevFrames, frames)
		}
		clear(b.views[ch][start:])
	}
	b.frames = frames
}

// CopyFrom resizes b to the shape of src and copies it. Channels of src
// shorter than the first are zero-padded.
func (b *Buffer) CopyFrom(src [][]float64) {
	frames := 0
	if len(src) > 0 {
		frames = len(src[0])
	}
	b.Resize(len(src), frames)
	for ch := range b.views {
		n := copy(b.views[ch], src[ch])
		clear(b.views[ch][n:])
	}
}

// CopyTo copies the buffer into dst channel by channel, up to the common
// shape, and returns the number of frames copied per channel.
func (b *Buffer) CopyTo(dst [][]float64) int {
	n := 0
	for ch := 0; ch < len(dst) && ch < len(b.views); ch++ {
		n = copy(dst[ch], b.views[ch])
	}
	return n
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	for _, ch := range b.views {
		clear(ch)
	}
}

// Release drops all storage and shrinks the buffer to zero size.
func (b *Buffer) Release() {
	b.storage = nil
	b.views = nil
	b.frames = 0
}
