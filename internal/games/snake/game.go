// Package snake implements a headless snake game on an open rectangular field.
// It is the reference collaborator for the autopilot: the same rules back the
// in-process "sim" driver and the remote game server.
package snake

import (
	"math/rand"

	"github.com/vovakirdan/snake-autopilot/internal/core"
)

// Config describes the playing field and the starting snake.
type Config struct {
	Bounds        core.Bounds
	Start         core.Position  // Head position after Reset
	Direction     core.Direction // Initial heading
	InitialLength int            // Segments, clipped to the field
}

// DefaultConfig returns the classic 21x15 field with the head near the top.
func DefaultConfig() Config {
	return Config{
		Bounds:        core.NewBounds(21, 15),
		Start:         core.Pos(10, 2),
		Direction:     core.DirDown,
		InitialLength: 3,
	}
}

// Game holds the simulation state. It is not safe for concurrent use.
type Game struct {
	cfg  Config
	rng  *rand.Rand
	tick uint64

	score     int
	snake     []core.Position // Head at index 0
	direction core.Direction
	nextDir   core.Direction // Buffered direction for next move

	food    core.Position
	hasFood bool

	gameOver bool
	won      bool
}

// New creates a game. Call Reset before use.
func New(cfg Config) *Game {
	if cfg.InitialLength < 1 {
		cfg.InitialLength = 1
	}
	return &Game{cfg: cfg}
}

// Config returns the game configuration.
func (g *Game) Config() Config {
	return g.cfg
}

// Reset starts a fresh game using the given seed.
func (g *Game) Reset(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
	g.tick = 0
	g.score = 0
	g.gameOver = false
	g.won = false

	g.initSnake()
	g.spawnFood()
}

// initSnake lays out a straight snake trailing behind the head.
func (g *Game) initSnake() {
	g.direction = g.cfg.Direction
	g.nextDir = g.cfg.Direction
	g.snake = g.snake[:0]

	back := g.cfg.Direction.Opposite()
	p := g.cfg.Start
	for range g.cfg.InitialLength {
		if !g.cfg.Bounds.Contains(p) {
			break
		}
		g.snake = append(g.snake, p)
		p = p.Step(back)
	}
}

// spawnFood places food at a random empty cell.
func (g *Game) spawnFood() {
	var emptyCells []core.Position
	for y := range g.cfg.Bounds.H {
		for x := range g.cfg.Bounds.W {
			p := core.Pos(x, y)
			if !g.isSnakeAt(p) {
				emptyCells = append(emptyCells, p)
			}
		}
	}

	if len(emptyCells) == 0 {
		// Board is full
		g.hasFood = false
		return
	}

	g.food = emptyCells[g.rng.Intn(len(emptyCells))]
	g.hasFood = true
}

func (g *Game) isSnakeAt(p core.Position) bool {
	for _, seg := range g.snake {
		if seg == p {
			return true
		}
	}
	return false
}

// Turn buffers a direction for the next move. Reversals are ignored.
// Reports whether the direction was accepted.
func (g *Game) Turn(d core.Direction) bool {
	if !d.Valid() || d == g.direction.Opposite() {
		return false
	}
	g.nextDir = d
	return true
}

// Advance moves the snake one cell. It is a no-op once the game is over.
func (g *Game) Advance() {
	if g.gameOver || len(g.snake) == 0 {
		return
	}
	g.tick++
	g.direction = g.nextDir

	newHead := g.snake[0].Step(g.direction)
	if !g.cfg.Bounds.Contains(newHead) {
		g.gameOver = true
		return
	}

	eating := g.hasFood && newHead == g.food

	// The tail moves out of the way unless the snake grows this move.
	checkLen := len(g.snake)
	if !eating {
		checkLen--
	}
	for i := range checkLen {
		if g.snake[i] == newHead {
			g.gameOver = true
			return
		}
	}

	g.snake = append([]core.Position{newHead}, g.snake...)
	if eating {
		g.score++
		g.spawnFood()
		if !g.hasFood {
			g.won = true
			g.gameOver = true
		}
		return
	}
	g.snake = g.snake[:len(g.snake)-1]
}

// State returns the current observable state. The slices are copies.
func (g *Game) State() core.GameState {
	s := core.GameState{
		Snake: append([]core.Position(nil), g.snake...),
		Score: g.score,
		Over:  g.gameOver,
	}
	if g.hasFood {
		food := g.food
		s.Food = &food
	}
	return s
}

// Over reports whether the game has ended.
func (g *Game) Over() bool {
	return g.gameOver
}

// Direction returns the direction of the last move.
func (g *Game) Direction() core.Direction {
	return g.direction
}
