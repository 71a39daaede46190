// Package playback streams a processed source to the audio device and
// maps terminal keys to parameter switches.
package playback

import (
	"encoding/binary"
	"math"

	"github.com/cwbudde/algo-glitch/dsp/buffer"
	"github.com/cwbudde/algo-glitch/dsp/core"
)

const (
	// Channels is the device channel count.
	Channels = 2

	bytesPerSample = 4
	bytesPerFrame  = Channels * bytesPerSample
)

// Source renders dry input into a planar stereo block.
type Source interface {
	Render(buf [][]float64)
}

// Processor processes a planar block in place.
type Processor interface {
	ProcessBlock(buf [][]float64)
}

// Stream is an io.Reader of interleaved float32 little-endian stereo
// frames: source blocks run through the processor on demand. The device
// callback that calls Read is the audio thread.
type Stream struct {
	src       Source
	proc      Processor
	blockSize int

	block   buffer.Buffer
	frames  []float32
	pending []float32
}

// NewStream creates a stream that renders blockSize frames at a time.
func NewStream(src Source, proc Processor, blockSize int) *Stream {
	blockSize = core.ClampInt(blockSize, 1, core.MaxBlockSize)

	s := &Stream{
		src:       src,
		proc:      proc,
		blockSize: blockSize,
		frames:    make([]float32, blockSize*Channels),
	}
	s.block.Resize(Channels, blockSize)

	return s
}

// Read fills p with whole frames. It never returns an error; a trailing
// partial frame of p is left unused.
func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for len(p)-n >= bytesPerFrame {
		if len(s.pending) == 0 {
			s.renderBlock()
		}

		for len(s.pending) > 0 && len(p)-n >= bytesPerFrame {
			for ch := 0; ch < Channels; ch++ {
				binary.LittleEndian.PutUint32(p[n:], math.Float32bits(s.pending[ch]))
				n += bytesPerSample
			}
			s.pending = s.pending[Channels:]
		}
	}

	return n, nil
}

func (s *Stream) renderBlock() {
	data := s.block.Data()
	s.src.Render(data)

	if s.proc != nil {
		s.proc.ProcessBlock(data)
	}

	for ch := range data {
		for i, x := range data[ch] {
			data[ch][i] = core.Clamp(x, -1, 1)
		}
	}

	n := buffer.Interleave(s.frames, data)
	s.pending = s.frames[:n*Channels]
}
