package playback

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

// Player plays an io.Reader of float32 stereo frames on the default
// output device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	logger logrus.FieldLogger
}

// Open creates the device context and starts playing r. Only one Player
// may exist per process.
func Open(r io.Reader, sampleRate int, latency time.Duration, logger logrus.FieldLogger) (*Player, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("playback: open device: %w", err)
	}
	<-ready

	p := &Player{
		ctx:    ctx,
		player: ctx.NewPlayer(r),
		logger: logger,
	}
	p.player.Play()

	logger.WithFields(logrus.Fields{
		"function":    "Player.Open",
		"sample_rate": sampleRate,
		"latency":     latency,
	}).Info("Playback started")

	return p, nil
}

// Err returns the first device error, if any.
func (p *Player) Err() error {
	if err := p.player.Err(); err != nil {
		return err
	}
	return p.ctx.Err()
}

// Close stops playback.
func (p *Player) Close() error {
	err := p.player.Close()

	p.logger.WithField("function", "Player.Close").Info("Playback stopped")

	if err != nil {
		return fmt.Errorf("playback: close: %w", err)
	}
	return nil
}
