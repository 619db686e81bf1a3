package snake

import "github.com/vovakirdan/snake-autopilot/internal/core"

// Status is the coarse game status.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusGameOver Status = "game_over"
	StatusWin      Status = "win"
)

// Snapshot captures the scalar game state for determinism testing.
type Snapshot struct {
	Tick     uint64
	Score    int
	SnakeLen int
	Head     core.Position
	Dir      core.Direction
	Food     core.Position
	HasFood  bool
	Status   Status
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	status := StatusPlaying
	switch {
	case g.won:
		status = StatusWin
	case g.gameOver:
		status = StatusGameOver
	}

	var head core.Position
	if len(g.snake) > 0 {
		head = g.snake[0]
	}

	return Snapshot{
		Tick:     g.tick,
		Score:    g.score,
		SnakeLen: len(g.snake),
		Head:     head,
		Dir:      g.direction,
		Food:     g.food,
		HasFood:  g.hasFood,
		Status:   status,
	}
}
