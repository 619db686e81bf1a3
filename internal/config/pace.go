package config

import (
	"fmt"
	"time"
)

// Pace represents a named tick interval preset.
type Pace string

const (
	PaceRelaxed Pace = "relaxed"
	PaceNormal  Pace = "normal"
	PaceFast    Pace = "fast"
	PaceFixed   Pace = "fixed" // Keep the configured interval
)

// ParsePace validates a preset name. An empty name means PaceFixed.
func ParsePace(s string) (Pace, error) {
	switch p := Pace(s); p {
	case PaceRelaxed, PaceNormal, PaceFast, PaceFixed:
		return p, nil
	case "":
		return PaceFixed, nil
	default:
		return "", fmt.Errorf("config: unknown pace %q (expected relaxed, normal, fast or fixed)", s)
	}
}

// IntervalForPace returns the tick interval for a preset, or 0 for PaceFixed.
func IntervalForPace(p Pace) time.Duration {
	switch p {
	case PaceRelaxed:
		return 150 * time.Millisecond
	case PaceNormal:
		return 50 * time.Millisecond
	case PaceFast:
		return 20 * time.Millisecond
	default:
		return 0
	}
}

// ApplyPace modifies the config based on a pace preset.
func ApplyPace(cfg *AgentConfig, p Pace) {
	if d := IntervalForPace(p); d > 0 {
		cfg.Loop.TickInterval = d
	}
}
