package snake

import (
	"context"
	"errors"
	"testing"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
)

func newGame(seed int64) *Game {
	g := New(DefaultConfig())
	g.Reset(seed)
	return g
}

func TestDeterminism(t *testing.T) {
	// Two games with the same seed should produce identical snapshots
	g1 := newGame(12345)
	g2 := newGame(12345)

	for i := 0; i < 100; i++ {
		switch i {
		case 5:
			g1.Turn(core.DirLeft)
			g2.Turn(core.DirLeft)
		case 8:
			g1.Turn(core.DirDown)
			g2.Turn(core.DirDown)
		}
		g1.Advance()
		g2.Advance()
	}

	snap1 := g1.Snapshot()
	snap2 := g2.Snapshot()
	if snap1 != snap2 {
		t.Errorf("Snapshot mismatch:\n%+v\n%+v", snap1, snap2)
	}
}

func TestInitialSnake(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected []core.Position
	}{
		{
			name:     "default trails upward",
			cfg:      DefaultConfig(),
			expected: []core.Position{core.Pos(10, 2), core.Pos(10, 1), core.Pos(10, 0)},
		},
		{
			name: "clipped at the wall",
			cfg: Config{
				Bounds: core.NewBounds(5, 5), Start: core.Pos(1, 1),
				Direction: core.DirRight, InitialLength: 4,
			},
			expected: []core.Position{core.Pos(1, 1), core.Pos(0, 1)},
		},
		{
			name: "length below one",
			cfg: Config{
				Bounds: core.NewBounds(5, 5), Start: core.Pos(2, 2),
				Direction: core.DirUp,
			},
			expected: []core.Position{core.Pos(2, 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.cfg)
			g.Reset(1)
			s := g.State()
			if len(s.Snake) != len(tt.expected) {
				t.Fatalf("snake = %v, expected %v", s.Snake, tt.expected)
			}
			for i := range s.Snake {
				if s.Snake[i] != tt.expected[i] {
					t.Errorf("segment %d = %v, expected %v", i, s.Snake[i], tt.expected[i])
				}
			}
			if g.Direction() != tt.cfg.Direction {
				t.Errorf("direction = %v, expected %v", g.Direction(), tt.cfg.Direction)
			}
		})
	}
}

func TestNoImmediateReversal(t *testing.T) {
	g := newGame(42)

	// Initial direction is down
	if g.Turn(core.DirUp) {
		t.Error("Should not allow immediate reversal from Down to Up")
	}
	if g.nextDir != core.DirDown {
		t.Errorf("Expected nextDir to stay Down, got %v", g.nextDir)
	}

	if !g.Turn(core.DirLeft) {
		t.Fatal("Expected Left to be accepted")
	}
	g.Advance()
	if g.Direction() != core.DirLeft {
		t.Errorf("Expected direction Left after move, got %v", g.Direction())
	}
}

func TestFoodSpawnValidity(t *testing.T) {
	g := newGame(999)
	b := g.Config().Bounds

	for i := 0; i < 100; i++ {
		g.spawnFood()

		if !g.hasFood {
			t.Fatal("Expected food on a mostly empty board")
		}
		if g.isSnakeAt(g.food) {
			t.Errorf("Food spawned on snake at %v", g.food)
		}
		if !b.Contains(g.food) {
			t.Errorf("Food spawned out of bounds at %v", g.food)
		}
	}
}

func TestWallCollision(t *testing.T) {
	g := newGame(7)
	g.Turn(core.DirRight)

	// Head starts at x=10 on a 21-wide field: 10 moves reach the wall column.
	for i := 0; i < 10; i++ {
		g.food = core.Pos(0, 14)
		g.Advance()
		if g.Over() {
			t.Fatalf("Game over too early at move %d", i+1)
		}
	}
	g.Advance()
	if !g.Over() {
		t.Fatal("Expected game over after leaving the field")
	}
	if g.Snapshot().Status != StatusGameOver {
		t.Errorf("Status = %v, expected game_over", g.Snapshot().Status)
	}

	before := g.Snapshot()
	g.Advance()
	if g.Snapshot() != before {
		t.Error("Advance after game over should be a no-op")
	}
}

func TestSelfCollision(t *testing.T) {
	tests := []struct {
		name     string
		snake    []core.Position
		expected bool
	}{
		{
			name:     "runs into body",
			snake:    []core.Position{core.Pos(2, 2), core.Pos(2, 3), core.Pos(3, 3), core.Pos(3, 2), core.Pos(3, 1)},
			expected: true,
		},
		{
			name:     "follows its own tail",
			snake:    []core.Position{core.Pos(2, 2), core.Pos(2, 3), core.Pos(3, 3), core.Pos(3, 2)},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGame(3)
			g.snake = append([]core.Position(nil), tt.snake...)
			g.direction = core.DirUp
			g.nextDir = core.DirUp
			g.food = core.Pos(0, 0)

			g.Turn(core.DirRight)
			g.Advance()

			if g.Over() != tt.expected {
				t.Errorf("Over() = %v, expected %v", g.Over(), tt.expected)
			}
		})
	}
}

func TestEatingGrows(t *testing.T) {
	g := newGame(11)
	g.food = core.Pos(10, 3)

	g.Advance()

	s := g.State()
	if s.Score != 1 {
		t.Errorf("Score = %d, expected 1", s.Score)
	}
	if len(s.Snake) != 4 {
		t.Errorf("Snake length = %d, expected 4", len(s.Snake))
	}
	if s.Snake[0] != core.Pos(10, 3) {
		t.Errorf("Head = %v, expected (10,3)", s.Snake[0])
	}
	if s.Food == nil || g.isSnakeAt(*s.Food) {
		t.Errorf("Food should respawn on an empty cell, got %v", s.Food)
	}
}

func TestFullBoardWins(t *testing.T) {
	g := New(Config{
		Bounds:        core.NewBounds(2, 1),
		Start:         core.Pos(0, 0),
		Direction:     core.DirRight,
		InitialLength: 1,
	})
	g.Reset(5)

	if g.food != core.Pos(1, 0) {
		t.Fatalf("Food = %v, expected the only free cell", g.food)
	}
	g.Advance()

	if !g.Over() || g.Snapshot().Status != StatusWin {
		t.Errorf("Expected a win, got %+v", g.Snapshot())
	}
	if g.State().Food != nil {
		t.Error("Full board should have no food")
	}
}

func TestStateIsACopy(t *testing.T) {
	g := newGame(1)
	food := g.food
	s := g.State()
	s.Snake[0] = core.Pos(0, 0)
	*s.Food = core.Pos(-1, -1)

	if g.snake[0] != core.Pos(10, 2) {
		t.Error("Mutating the state changed the snake")
	}
	if g.food != food {
		t.Error("Mutating the state changed the food")
	}
}

func TestDriverLifecycle(t *testing.T) {
	ctx := context.Background()
	d := NewDriver(New(DefaultConfig()), 100)

	if _, err := d.GameState(ctx); !errors.Is(err, autopilot.ErrUnavailable) {
		t.Errorf("GameState before Begin = %v, expected ErrUnavailable", err)
	}
	if err := d.SendDirection(ctx, core.DirDown); err == nil {
		t.Error("SendDirection before Begin should fail")
	}

	if err := d.Begin(ctx); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	first := d.Game().Snapshot()

	// Begin during a live game keeps it.
	if err := d.Begin(ctx); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if d.Game().Snapshot() != first {
		t.Error("Begin should not reset a game in progress")
	}

	if err := d.SendDirection(ctx, core.DirLeft); err != nil {
		t.Fatalf("SendDirection() failed: %v", err)
	}
	s, err := d.GameState(ctx)
	if err != nil {
		t.Fatalf("GameState() failed: %v", err)
	}
	if s.Snake[0] != core.Pos(9, 2) {
		t.Errorf("Head = %v, expected (9,2)", s.Snake[0])
	}

	if err := d.Reenter(ctx); err != nil {
		t.Fatalf("Reenter() failed: %v", err)
	}
	if err := d.Begin(ctx); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if got := d.Game().Snapshot(); got.Tick != 0 || got.Head != core.Pos(10, 2) {
		t.Errorf("Expected a fresh game after Reenter, got %+v", got)
	}
}

func TestDriverNoFoodIsUnavailable(t *testing.T) {
	ctx := context.Background()
	d := NewDriver(New(DefaultConfig()), 1)
	if err := d.Begin(ctx); err != nil {
		t.Fatal(err)
	}
	d.Game().hasFood = false

	if _, err := d.GameState(ctx); !errors.Is(err, autopilot.ErrUnavailable) {
		t.Errorf("GameState() = %v, expected ErrUnavailable", err)
	}
}

func TestAutopilotPlaysSimulator(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDriver(New(cfg), 2024)

	var ends []autopilot.GameEndedEvent
	opts := autopilot.DefaultOptions()
	opts.TickInterval = 0
	opts.StagnationTicks = cfg.Bounds.Area()
	opts.MaxGames = 3
	opts.Observer = autopilot.ObserverFunc(func(e autopilot.Event) {
		if ge, ok := e.(autopilot.GameEndedEvent); ok {
			ends = append(ends, ge)
		}
	})

	if err := autopilot.New(d, opts).Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(ends) != 3 {
		t.Fatalf("Played %d games, expected 3", len(ends))
	}
	for _, ge := range ends {
		if ge.Score < 1 {
			t.Errorf("Game %d scored %d, expected the first food at least", ge.Game, ge.Score)
		}
	}
}
