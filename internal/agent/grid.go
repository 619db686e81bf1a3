// Package agent implements the snake autopilot's decision core: the grid model,
// the shortest-path search toward food, the safety fallback used when no path
// exists, and the direction state machine that forbids reversals.
//
// Every function here is a pure function of its explicit inputs; the only
// long-lived state is the committed direction held by Steering.
package agent

import "github.com/vovakirdan/snake-autopilot/internal/core"

// Grid is the playing field for one observed instant: bounds, the obstacle set
// and the food cell. Obstacles are kept as a bitmap indexed by Bounds.Index.
type Grid struct {
	bounds   core.Bounds
	occupied []bool
	food     core.Position
	hasFood  bool
}

// NewGrid builds the grid for a snapshot. Every snake cell, head included,
// becomes an obstacle. Cells outside the bounds are ignored.
func NewGrid(b core.Bounds, s core.GameState) *Grid {
	g := &Grid{
		bounds:   b,
		occupied: make([]bool, b.Area()),
	}
	for _, p := range s.Snake {
		g.Occupy(p)
	}
	if s.Food != nil && b.Contains(*s.Food) {
		g.food = *s.Food
		g.hasFood = true
	}
	return g
}

// Bounds returns the field bounds.
func (g *Grid) Bounds() core.Bounds {
	return g.bounds
}

// Occupy marks a cell as an obstacle.
func (g *Grid) Occupy(p core.Position) {
	if g.bounds.Contains(p) {
		g.occupied[g.bounds.Index(p)] = true
	}
}

// Occupied reports whether p is in the obstacle set.
func (g *Grid) Occupied(p core.Position) bool {
	return g.bounds.Contains(p) && g.occupied[g.bounds.Index(p)]
}

// Free reports whether p is inside the field and not an obstacle.
func (g *Grid) Free(p core.Position) bool {
	return g.bounds.Contains(p) && !g.occupied[g.bounds.Index(p)]
}

// Food returns the food cell, if any.
func (g *Grid) Food() (core.Position, bool) {
	return g.food, g.hasFood
}

// ObstacleCount returns the number of occupied cells.
func (g *Grid) ObstacleCount() int {
	n := 0
	for _, o := range g.occupied {
		if o {
			n++
		}
	}
	return n
}
