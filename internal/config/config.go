// Package config provides YAML-based autopilot configuration loading and
// pace presets.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
	"github.com/vovakirdan/snake-autopilot/internal/registry"
)

// ErrInvalid is wrapped by Validate for any rejected setting.
var ErrInvalid = errors.New("config: invalid")

// AgentConfig contains all configuration for the autopilot.
type AgentConfig struct {
	Grid   GridConfig   `yaml:"grid"`
	Start  StartConfig  `yaml:"start"`
	Loop   LoopConfig   `yaml:"loop"`
	Sim    SimConfig    `yaml:"sim"`
	Remote RemoteConfig `yaml:"remote"`
}

// GridConfig defines the playing field dimensions.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// StartConfig defines where the head is assumed to be when a game begins.
type StartConfig struct {
	X         int            `yaml:"x"`
	Y         int            `yaml:"y"`
	Direction core.Direction `yaml:"direction"`
}

// LoopConfig defines control loop timing and thresholds.
type LoopConfig struct {
	TickInterval         time.Duration `yaml:"tick_interval"`
	StagnationTicks      int           `yaml:"stagnation_ticks"`
	MaxActuationFailures int           `yaml:"max_actuation_failures"`
	MaxGames             int           `yaml:"max_games"` // 0 = unlimited
}

// SimConfig defines the simulator used by the sim driver and the server.
type SimConfig struct {
	Seed          int64 `yaml:"seed"`
	InitialLength int   `yaml:"initial_length"`
}

// RemoteConfig defines how remote drivers reach a game server.
type RemoteConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Bounds returns the field as core.Bounds.
func (c AgentConfig) Bounds() core.Bounds {
	return core.NewBounds(c.Grid.Width, c.Grid.Height)
}

// StartPos returns the initial head position.
func (c AgentConfig) StartPos() core.Position {
	return core.Pos(c.Start.X, c.Start.Y)
}

// Validate checks the configuration for settings the autopilot cannot run with.
func (c AgentConfig) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d must be positive", ErrInvalid, c.Grid.Width, c.Grid.Height)
	}
	if !c.Bounds().Contains(c.StartPos()) {
		return fmt.Errorf("%w: start %v outside %dx%d grid", ErrInvalid, c.StartPos(), c.Grid.Width, c.Grid.Height)
	}
	if !c.Start.Direction.Valid() {
		return fmt.Errorf("%w: start direction %d", ErrInvalid, int(c.Start.Direction))
	}
	if c.Loop.TickInterval <= 0 {
		return fmt.Errorf("%w: tick_interval %v must be positive", ErrInvalid, c.Loop.TickInterval)
	}
	if c.Loop.StagnationTicks < 0 || c.Loop.MaxActuationFailures < 0 || c.Loop.MaxGames < 0 {
		return fmt.Errorf("%w: loop thresholds must not be negative", ErrInvalid)
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("%w: remote timeout %v", ErrInvalid, c.Remote.Timeout)
	}
	return nil
}

// PilotOptions converts the configuration to autopilot options.
func (c AgentConfig) PilotOptions(logger *log.Logger) autopilot.Options {
	return autopilot.Options{
		Bounds:               c.Bounds(),
		InitialHead:          c.StartPos(),
		InitialDirection:     c.Start.Direction,
		TickInterval:         c.Loop.TickInterval,
		StagnationTicks:      c.Loop.StagnationTicks,
		MaxActuationFailures: c.Loop.MaxActuationFailures,
		MaxGames:             c.Loop.MaxGames,
		Logger:               logger,
	}
}

// DriverOptions converts the configuration to driver factory options.
func (c AgentConfig) DriverOptions(logger *log.Logger) registry.Options {
	return registry.Options{
		Bounds:        c.Bounds(),
		Start:         c.StartPos(),
		Direction:     c.Start.Direction,
		Seed:          c.Sim.Seed,
		InitialLength: c.Sim.InitialLength,
		URL:           c.Remote.URL,
		Timeout:       c.Remote.Timeout,
		Logger:        logger,
	}
}
