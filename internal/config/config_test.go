package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/snake-autopilot/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestEmbeddedDefaultMatchesHardcoded(t *testing.T) {
	cfg, err := parse(DefaultYAML())
	if err != nil {
		t.Fatalf("embedded default does not parse: %v", err)
	}
	if cfg != Default() {
		t.Errorf("embedded default = %+v\nexpected %+v", cfg, Default())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("embedded default is invalid: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := writeConfig(t, `
grid:
  width: 30
  height: 20
start:
  x: 3
  y: 4
  direction: right
loop:
  tick_interval: 120ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Bounds() != core.NewBounds(30, 20) {
		t.Errorf("bounds = %v, expected 30x20", cfg.Bounds())
	}
	if cfg.StartPos() != core.Pos(3, 4) || cfg.Start.Direction != core.DirRight {
		t.Errorf("start = %v %v, expected (3,4) right", cfg.StartPos(), cfg.Start.Direction)
	}
	if cfg.Loop.TickInterval != 120*time.Millisecond {
		t.Errorf("tick_interval = %v, expected 120ms", cfg.Loop.TickInterval)
	}
	// Keys not in the file keep their defaults.
	if cfg.Loop.MaxActuationFailures != Default().Loop.MaxActuationFailures {
		t.Errorf("max_actuation_failures = %d, expected default", cfg.Loop.MaxActuationFailures)
	}
	if cfg.Remote.Timeout != 2*time.Second {
		t.Errorf("remote timeout = %v, expected 2s", cfg.Remote.Timeout)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{name: "malformed yaml", content: "grid: [1, 2"},
		{name: "unknown direction", content: "start:\n  direction: sideways\n"},
		{name: "zero width", content: "grid:\n  width: 0\n", invalid: true},
		{name: "start outside grid", content: "start:\n  x: 21\n", invalid: true},
		{name: "zero interval", content: "loop:\n  tick_interval: 0s\n", invalid: true},
		{name: "negative stagnation", content: "loop:\n  stagnation_ticks: -1\n", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() succeeded, expected an error")
			}
			if errors.Is(err, ErrInvalid) != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, expected %v (err: %v)",
					!tt.invalid, tt.invalid, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, expected os.ErrNotExist", err)
	}
}

func TestParsePace(t *testing.T) {
	tests := []struct {
		input    string
		expected Pace
		interval time.Duration
		wantErr  bool
	}{
		{"relaxed", PaceRelaxed, 150 * time.Millisecond, false},
		{"normal", PaceNormal, 50 * time.Millisecond, false},
		{"fast", PaceFast, 20 * time.Millisecond, false},
		{"fixed", PaceFixed, 0, false},
		{"", PaceFixed, 0, false},
		{"ludicrous", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePace(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePace(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if p != tt.expected {
				t.Errorf("ParsePace(%q) = %q, expected %q", tt.input, p, tt.expected)
			}
			if got := IntervalForPace(p); got != tt.interval {
				t.Errorf("IntervalForPace(%q) = %v, expected %v", p, got, tt.interval)
			}
		})
	}
}

func TestApplyPace(t *testing.T) {
	cfg := Default()
	cfg.Loop.TickInterval = 80 * time.Millisecond

	ApplyPace(&cfg, PaceFixed)
	if cfg.Loop.TickInterval != 80*time.Millisecond {
		t.Errorf("fixed pace changed interval to %v", cfg.Loop.TickInterval)
	}

	ApplyPace(&cfg, PaceFast)
	if cfg.Loop.TickInterval != 20*time.Millisecond {
		t.Errorf("fast pace interval = %v, expected 20ms", cfg.Loop.TickInterval)
	}
}

func TestOptionsConversion(t *testing.T) {
	cfg := Default()
	cfg.Loop.MaxGames = 4

	opts := cfg.PilotOptions(nil)
	if opts.Bounds != cfg.Bounds() || opts.InitialHead != core.Pos(10, 2) {
		t.Errorf("pilot options = %+v", opts)
	}
	if opts.StagnationTicks != 315 || opts.MaxGames != 4 {
		t.Errorf("pilot thresholds = %d/%d", opts.StagnationTicks, opts.MaxGames)
	}

	dopts := cfg.DriverOptions(nil)
	if dopts.URL != cfg.Remote.URL || dopts.InitialLength != 3 || dopts.Direction != core.DirDown {
		t.Errorf("driver options = %+v", dopts)
	}
}
