// Package wavio reads and writes PCM WAV files as planar float64 blocks.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-glitch/dsp/core"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

var (
	// ErrInvalidFile is returned when the input is not a WAV file.
	ErrInvalidFile = errors.New("wavio: invalid WAV file")

	// ErrUnsupportedFormat is returned for channel counts or bit depths
	// the glitch chain cannot take.
	ErrUnsupportedFormat = errors.New("wavio: unsupported format")
)

// Audio is a decoded file: planar samples in [-1, 1].
type Audio struct {
	SampleRate int
	BitDepth   int
	Data       [][]float64
}

// Channels returns the channel count.
func (a *Audio) Channels() int {
	return len(a.Data)
}

// Frames returns the number of samples per channel.
func (a *Audio) Frames() int {
	if len(a.Data) == 0 {
		return 0
	}
	return len(a.Data[0])
}

// Duration returns the length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.Frames()) / float64(a.SampleRate)
}

// Read decodes a 16, 24 or 32-bit PCM WAV with one or two channels.
func Read(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wavio: decode: %w", err)
	}

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)

	if channels < 1 || channels > core.MaxChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}

	if !validBitDepth(bitDepth) && bitDepth != 32 {
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedFormat, bitDepth)
	}

	frames := len(buf.Data) / channels
	scale := 1 / math.Exp2(float64(bitDepth-1))

	a := &Audio{
		SampleRate: int(dec.SampleRate),
		BitDepth:   bitDepth,
		Data:       make([][]float64, channels),
	}
	for ch := range a.Data {
		a.Data[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			a.Data[ch][i] = float64(buf.Data[i*channels+ch]) * scale
		}
	}

	return a, nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavio: %w", err)
	}
	defer f.Close()

	a, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return a, nil
}

// Write encodes a as integer PCM at bitDepth (16 or 24). Samples are
// clipped to [-1, 1].
func Write(w io.WriteSeeker, a *Audio, bitDepth int) error {
	if !validBitDepth(bitDepth) {
		return fmt.Errorf("%w: %d-bit output", ErrUnsupportedFormat, bitDepth)
	}

	channels := a.Channels()
	if channels < 1 || channels > core.MaxChannels || a.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, channels, a.SampleRate)
	}

	frames := a.Frames()
	full := math.Exp2(float64(bitDepth-1)) - 1

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  a.SampleRate,
		},
		Data:           make([]int, frames*channels),
		SourceBitDepth: bitDepth,
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			x := core.Clamp(a.Data[ch][i], -1, 1)
			buf.Data[i*channels+ch] = int(math.Round(x * full))
		}
	}

	enc := wav.NewEncoder(w, a.SampleRate, bitDepth, channels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}

	return nil
}

// WriteFile encodes a to a new file at path.
func WriteFile(path string, a *Audio, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: %w", err)
	}

	if err := Write(f, a, bitDepth); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("wavio: %w", err)
	}

	return nil
}

func validBitDepth(bits int) bool {
	return bits == 16 || bits == 24
}
