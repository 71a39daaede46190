package playback

// Loop is a Source that repeats a planar clip. A mono clip feeds both
// channels.
type Loop struct {
	data [][]float64
	pos  int
}

// NewLoop returns a looping source over data. data must not be modified
// while the loop plays.
func NewLoop(data [][]float64) *Loop {
	return &Loop{data: data}
}

// Render copies the next frames of the clip into buf, wrapping at the end.
// An empty clip renders silence.
func (l *Loop) Render(buf [][]float64) {
	frames := 0
	if len(l.data) > 0 {
		frames = len(l.data[0])
	}

	for ch := range buf {
		if frames == 0 {
			clear(buf[ch])
			continue
		}

		src := l.data[min(ch, len(l.data)-1)]
		pos := l.pos
		for i := range buf[ch] {
			buf[ch][i] = src[pos]
			pos++
			if pos == frames {
				pos = 0
			}
		}
	}

	if frames > 0 && len(buf) > 0 {
		l.pos = (l.pos + len(buf[0])) % frames
	}
}
