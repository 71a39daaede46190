package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/internal/engine"
	"github.com/cwbudde/algo-glitch/internal/midicc"
	"github.com/cwbudde/algo-glitch/internal/playback"
	"github.com/cwbudde/algo-glitch/internal/wavio"
)

const keyHelp = "keys: 1-6 toggle modules, c chaos, r reset, q quit"

type playFlags struct {
	chainFlags
	in      string
	tone    float64
	wave    string
	tempo   float64
	rate    int
	latency time.Duration
	midi    string
	cc      ccFlags
	channel int
}

func runPlay(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("play", stderr)

	var pf playFlags
	pf.register(fs)
	fs.StringVar(&pf.in, "in", "", "WAV file to loop (default: test synth)")
	fs.Float64Var(&pf.tone, "tone", 0, "play a steady test tone at this frequency instead of the pattern")
	fs.StringVar(&pf.wave, "wave", "sine", "test synth waveform: sine, triangle, saw, square")
	fs.Float64Var(&pf.tempo, "tempo", 110, "test pattern tempo in BPM")
	fs.IntVar(&pf.rate, "rate", int(core.DefaultSampleRate), "sample rate for the test synth")
	fs.DurationVar(&pf.latency, "latency", 50*time.Millisecond, "device buffer size")
	fs.StringVar(&pf.midi, "midi", "", "MIDI input port, by number or name")
	fs.Var(&pf.cc, "cc", "map a MIDI controller, cc=param (repeatable; default CC 20+ in table order)")
	fs.IntVar(&pf.channel, "channel", midicc.AnyChannel, "MIDI channel 0-15, or -1 for all")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(stderr, pf.verbose)

	src, sampleRate, err := pf.source()
	if err != nil {
		return err
	}

	e, err := pf.build(fs, logger)
	if err != nil {
		return err
	}

	cfg := core.ProcessorConfig{SampleRate: float64(sampleRate), BlockSize: pf.block, Channels: playback.Channels}
	if err := e.Prepare(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if pf.midi != "" {
		stop, err := pf.listenMIDI(e, logger)
		if err != nil {
			return err
		}
		defer midicc.Close()
		defer stop()
	}

	player, err := playback.Open(playback.NewStream(src, e, pf.block), sampleRate, pf.latency, logger)
	if err != nil {
		return err
	}
	defer player.Close()

	go func() {
		if err := e.RunChaos(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Warn("Chaos poller stopped")
		}
	}()

	restore, err := playback.RawMode(os.Stdin)
	if err != nil {
		return err
	}
	defer restore()

	fmt.Fprintf(stdout, "%s\r\n", keyHelp)

	err = playback.ReadKeys(ctx, os.Stdin, func(key byte) bool {
		status, quit := playback.HandleKey(e, key)
		if status != "" {
			fmt.Fprintf(stdout, "%s\r\n", status)
		}
		return !quit
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if err := player.Err(); err != nil {
		return err
	}

	return pf.save(e)
}

func (pf *playFlags) source() (playback.Source, int, error) {
	if pf.in != "" {
		a, err := wavio.ReadFile(pf.in)
		if err != nil {
			return nil, 0, err
		}
		return playback.NewLoop(a.Data), a.SampleRate, nil
	}

	wave, err := engine.ParseWaveform(pf.wave)
	if err != nil {
		return nil, 0, err
	}

	opts := []engine.SynthOption{engine.WithWaveform(wave), engine.WithTempo(pf.tempo)}
	if pf.tone > 0 {
		opts = append(opts, engine.WithDrone(pf.tone))
	}

	s, err := engine.NewSynth(float64(pf.rate), opts...)
	if err != nil {
		return nil, 0, err
	}
	return s, pf.rate, nil
}

func (pf *playFlags) listenMIDI(e *engine.Engine, logger logrus.FieldLogger) (func(), error) {
	opts := []midicc.Option{midicc.WithChannel(pf.channel), midicc.WithLogger(logger)}
	if len(pf.cc) > 0 {
		opts = append(opts, midicc.WithBindings(pf.cc...))
	}

	m, err := midicc.NewMapper(e.Params(), opts...)
	if err != nil {
		return nil, err
	}

	in, err := midicc.OpenInPort(pf.midi)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, midicc.InPorts())
	}

	return m.Listen(in)
}
