package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-glitch/dsp/core"
	"github.com/cwbudde/algo-glitch/dsp/window"
	"github.com/cwbudde/algo-glitch/internal/engine"
	"github.com/cwbudde/algo-glitch/internal/wavio"
	"github.com/cwbudde/algo-glitch/measure/analysis"
)

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("render", stderr)

	var cf chainFlags
	cf.register(fs)

	in := fs.String("in", "", "input WAV file (required)")
	out := fs.String("out", "", "output WAV file (required)")
	bits := fs.Int("bits", 16, "output bit depth (16 or 24)")
	report := fs.Bool("report", false, "print an analysis report of input and output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" || *out == "" {
		fs.Usage()
		return errors.New("render: -in and -out are required")
	}

	logger := newLogger(stderr, cf.verbose)

	src, err := wavio.ReadFile(*in)
	if err != nil {
		return err
	}

	e, err := cf.build(fs, logger)
	if err != nil {
		return err
	}

	cfg := core.ProcessorConfig{
		SampleRate: float64(src.SampleRate),
		BlockSize:  cf.block,
		Channels:   src.Channels(),
	}
	if err := e.Prepare(cfg); err != nil {
		return err
	}

	dst := &wavio.Audio{SampleRate: src.SampleRate, Data: cloneBlock(src.Data)}
	renderOffline(e, dst.Data, cf.block)

	if err := wavio.WriteFile(*out, dst, *bits); err != nil {
		return err
	}

	if err := cf.save(e); err != nil {
		return err
	}

	logger.WithField("frames", dst.Frames()).Infof("Rendered %s", *out)

	if *report {
		return printComparison(stdout, src, dst)
	}
	return nil
}

// renderOffline processes data in place block by block. Chaos triggers
// are consumed after every block, standing in for the live poller.
func renderOffline(e *engine.Engine, data [][]float64, blockSize int) {
	if len(data) == 0 {
		return
	}

	frames := len(data[0])
	view := make([][]float64, len(data))

	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)
		for ch := range data {
			view[ch] = data[ch][start:end]
		}

		e.ProcessBlock(view)
		e.PollChaos()
	}
}

func cloneBlock(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for ch := range src {
		out[ch] = append([]float64(nil), src[ch]...)
	}
	return out
}

func analysisConfig(sampleRate int) analysis.Config {
	cfg := analysis.DefaultConfig()
	cfg.SampleRate = float64(sampleRate)
	return cfg
}

func printComparison(w io.Writer, before, after *wavio.Audio) error {
	in, err := analysis.AnalyzeChannels(before.Data, analysisConfig(before.SampleRate))
	if err != nil {
		return err
	}

	out, err := analysis.AnalyzeChannels(after.Data, analysisConfig(after.SampleRate))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeReportHeader(tw)
	for ch := range in {
		writeReportRow(tw, fmt.Sprintf("in/%d", ch), in[ch])
		writeReportRow(tw, fmt.Sprintf("out/%d", ch), out[ch])
	}
	return tw.Flush()
}

func writeReportHeader(tw *tabwriter.Writer) {
	fmt.Fprintf(tw, "Signal\tPeak [dB]\tRMS [dB]\tLevels\tDominant [Hz]\tDistortion [%%]\tFinite\n")
	fmt.Fprintf(tw, "------\t---------\t--------\t------\t-------------\t--------------\t------\n")
}

func writeReportRow(tw *tabwriter.Writer, label string, r analysis.Report) {
	fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t%.1f\t%.2f\t%v\n",
		label, r.PeakDB, r.RMSDB, r.DistinctLevels, r.DominantFreq, 100*r.Distortion, r.Finite)
}

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("analyze", stderr)
	fftSize := fs.Int("fft", 8192, "FFT size (power of two)")
	rect := fs.Bool("rect", false, "use a rectangular window instead of Hann")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("analyze: no input files")
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	writeReportHeader(tw)

	for _, path := range fs.Args() {
		a, err := wavio.ReadFile(path)
		if err != nil {
			return err
		}

		cfg := analysisConfig(a.SampleRate)
		cfg.FFTSize = *fftSize
		if *rect {
			cfg.Window = window.TypeRectangular
		}

		reports, err := analysis.AnalyzeChannels(a.Data, cfg)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		for ch, r := range reports {
			writeReportRow(tw, fmt.Sprintf("%s/%d", path, ch), r)
		}
	}

	return tw.Flush()
}
