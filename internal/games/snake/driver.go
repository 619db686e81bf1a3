package snake

import (
	"context"
	"fmt"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
	"github.com/vovakirdan/snake-autopilot/internal/registry"
)

func init() {
	registry.Register("sim", "In-process simulator", func(opts registry.Options) (autopilot.Driver, error) {
		cfg := Config{
			Bounds:        opts.Bounds,
			Start:         opts.Start,
			Direction:     opts.Direction,
			InitialLength: opts.InitialLength,
		}
		if cfg.Bounds.Area() == 0 {
			cfg = DefaultConfig()
		}
		return NewDriver(New(cfg), opts.Seed), nil
	})
}

// Driver adapts a Game to the autopilot collaborator interfaces.
// Every SendDirection advances the simulation by exactly one move.
type Driver struct {
	game    *Game
	seed    int64
	games   int64
	started bool
}

// NewDriver wraps g. Successive games are seeded seed, seed+1, ...
func NewDriver(g *Game, seed int64) *Driver {
	return &Driver{game: g, seed: seed}
}

// Game returns the wrapped game.
func (d *Driver) Game() *Game {
	return d.game
}

// GameState implements autopilot.PerceptionSource.
func (d *Driver) GameState(ctx context.Context) (core.GameState, error) {
	if err := ctx.Err(); err != nil {
		return core.GameState{}, err
	}
	if !d.started {
		return core.GameState{}, fmt.Errorf("snake: game not started: %w", autopilot.ErrUnavailable)
	}
	s := d.game.State()
	if s.Food == nil && !s.Over {
		return core.GameState{}, fmt.Errorf("snake: no food on the board: %w", autopilot.ErrUnavailable)
	}
	return s, nil
}

// SendDirection implements autopilot.ActuatorSink.
func (d *Driver) SendDirection(ctx context.Context, dir core.Direction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.started {
		return fmt.Errorf("snake: game not started")
	}
	d.game.Turn(dir)
	d.game.Advance()
	return nil
}

// Begin starts a new game unless one is already in progress.
func (d *Driver) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.started && !d.game.Over() {
		return nil
	}
	d.game.Reset(d.seed + d.games)
	d.games++
	d.started = true
	return nil
}

// Reenter abandons the current game so the next Begin deals a new one.
func (d *Driver) Reenter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.started = false
	return nil
}

// Close implements autopilot.Session.
func (d *Driver) Close() error {
	return nil
}
