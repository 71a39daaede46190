package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-glitch/dsp/params"
	"github.com/cwbudde/algo-glitch/internal/testutil"
	"github.com/cwbudde/algo-glitch/internal/wavio"
	"github.com/cwbudde/algo-glitch/measure/analysis"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)

	return stdout.String(), stderr.String(), err
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "in.wav")
	a := &wavio.Audio{
		SampleRate: 44100,
		Data: [][]float64{
			testutil.DeterministicSine(441, 44100, 0.8, 22050),
			testutil.DeterministicSine(882, 44100, 0.8, 22050),
		},
	}

	if err := wavio.WriteFile(path, a, 24); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	return path
}

func TestRunUsage(t *testing.T) {
	_, stderr, err := runCLI(t)
	if !errors.Is(err, flag.ErrHelp) || !strings.Contains(stderr, "render") {
		t.Fatalf("run() = %v, stderr %q", err, stderr)
	}

	if _, _, err := runCLI(t, "explode"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("unknown command error = %v", err)
	}
}

func TestParamsTable(t *testing.T) {
	stdout, _, err := runCLI(t, "params")
	if err != nil {
		t.Fatalf("params error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != params.Default().Len()+2 {
		t.Fatalf("params printed %d lines", len(lines))
	}

	if !strings.Contains(stdout, params.BitCrusherBitDepth) || !strings.Contains(stdout, "cents") {
		t.Fatalf("table missing expected rows:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, "params", "-filter", "bc_")
	if err != nil {
		t.Fatalf("params -filter error = %v", err)
	}

	if got := len(strings.Split(strings.TrimSpace(stdout), "\n")); got != 4+2 {
		t.Fatalf("filtered table has %d lines, want 6", got)
	}
}

func TestParamsPreset(t *testing.T) {
	stdout, _, err := runCLI(t, "params", "-preset")
	if err != nil {
		t.Fatalf("params -preset error = %v", err)
	}

	var values map[string]float64
	if err := json.Unmarshal([]byte(stdout), &values); err != nil {
		t.Fatalf("preset is not JSON: %v", err)
	}

	if values[params.GlobalOutputGain] != 1 || len(values) != params.Default().Len() {
		t.Fatalf("unexpected preset: %v", values)
	}
}

func TestRenderCrush(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	out := filepath.Join(dir, "out.wav")
	preset := filepath.Join(dir, "final.json")
	state := filepath.Join(dir, "final.xml")

	stdout, _, err := runCLI(t, "render",
		"-in", in, "-out", out, "-bits", "24", "-block", "300",
		"-set", "bc_enabled=1", "-set", "bc_bit_depth=2", "-set", "bc_mix=1",
		"-save-preset", preset, "-save-state", state, "-report",
	)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}

	if !strings.Contains(stdout, "out/1") {
		t.Fatalf("report missing output rows:\n%s", stdout)
	}

	a, err := wavio.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if a.Frames() != 22050 || a.Channels() != 2 || a.BitDepth != 24 {
		t.Fatalf("output shape %d frames, %d ch, %d-bit", a.Frames(), a.Channels(), a.BitDepth)
	}

	for ch := range a.Data {
		if n := analysis.DistinctLevels(a.Data[ch]); n > 9 {
			t.Fatalf("channel %d has %d levels, want at most 9", ch, n)
		}
	}

	if _, err := os.Stat(preset); err != nil {
		t.Fatalf("preset not written: %v", err)
	}

	xml, err := os.ReadFile(state)
	if err != nil || !strings.Contains(string(xml), `Name="BitCrusher" Enabled="true"`) {
		t.Fatalf("state not written correctly: %v\n%s", err, xml)
	}
}

func TestRenderChaosIsReproducible(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)

	render := func(name string) [][]float64 {
		out := filepath.Join(dir, name)
		if _, _, err := runCLI(t, "render", "-in", in, "-out", out, "-chaos", "-seed", "9", "-set", "chaos_speed=10"); err != nil {
			t.Fatalf("render error = %v", err)
		}

		a, err := wavio.ReadFile(out)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		testutil.RequireBlockFinite(t, a.Data)

		return a.Data
	}

	testutil.RequireBlockNearlyEqual(t, render("a.wav"), render("b.wav"), 0)
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	out := filepath.Join(dir, "out.wav")

	tests := []struct {
		name string
		args []string
	}{
		{"missing out", []string{"render", "-in", in}},
		{"missing input file", []string{"render", "-in", filepath.Join(dir, "nope.wav"), "-out", out}},
		{"unknown parameter", []string{"render", "-in", in, "-out", out, "-set", "nope=1"}},
		{"bad set syntax", []string{"render", "-in", in, "-out", out, "-set", "bc_mix"}},
		{"block too large", []string{"render", "-in", in, "-out", out, "-block", "100000"}},
		{"bad bit depth", []string{"render", "-in", in, "-out", out, "-bits", "8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCLI(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAnalyzeCommand(t *testing.T) {
	in := writeInput(t, t.TempDir())

	stdout, _, err := runCLI(t, "analyze", in)
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	if !strings.Contains(stdout, "Dominant [Hz]") || !strings.Contains(stdout, in+"/1") {
		t.Fatalf("unexpected analyze output:\n%s", stdout)
	}

	if _, _, err := runCLI(t, "analyze"); err == nil {
		t.Fatal("expected error without input files")
	}
}

func TestSetFlags(t *testing.T) {
	var s setFlags

	if err := s.Set("bc_mix= 0.25"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if len(s) != 1 || s[0].id != params.BitCrusherMix || s[0].value != 0.25 {
		t.Fatalf("setFlags = %+v", s)
	}

	if s.String() != "bc_mix=0.25" {
		t.Fatalf("String() = %q", s.String())
	}

	for _, bad := range []string{"", "=1", "bc_mix", "bc_mix=loud"} {
		if err := s.Set(bad); err == nil {
			t.Errorf("Set(%q) should fail", bad)
		}
	}

	var c ccFlags
	if err := c.Set("74=wf_rate"); err != nil || c.String() != "74=wf_rate" {
		t.Fatalf("ccFlags = %v, %v", c.String(), err)
	}
}
