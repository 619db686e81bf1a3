package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/snake-autopilot/internal/core"
)

//go:embed defaults/agent.yaml
var defaultAgentYAML []byte

// Default returns the hardcoded autopilot configuration.
func Default() AgentConfig {
	return AgentConfig{
		Grid: GridConfig{
			Width:  21,
			Height: 15,
		},
		Start: StartConfig{
			X:         10,
			Y:         2,
			Direction: core.DirDown,
		},
		Loop: LoopConfig{
			TickInterval:         50 * time.Millisecond,
			StagnationTicks:      21 * 15,
			MaxActuationFailures: 5,
		},
		Sim: SimConfig{
			Seed:          1,
			InitialLength: 3,
		},
		Remote: RemoteConfig{
			URL:     "http://localhost:8080",
			Timeout: 2 * time.Second,
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultAgentYAML
}
