// Package core provides the fundamental grid types shared by the decision core,
// the game collaborators and the viewer. It has no external dependencies so the
// agent logic stays pure and testable.
package core

import "fmt"

// Position is a cell coordinate on the playing field.
// X grows to the right, Y grows downward.
type Position struct {
	X, Y int
}

// Pos is shorthand for constructing a Position.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// Add returns the position shifted by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Step returns the neighboring position in direction d.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return p.Add(dx, dy)
}

// String formats the position as (x,y).
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns the grid distance between two positions.
func Manhattan(a, b Position) int {
	return Abs(a.X-b.X) + Abs(a.Y-b.Y)
}

// Bounds describes a W x H playing field anchored at (0, 0).
type Bounds struct {
	W, H int
}

// NewBounds creates bounds with the given dimensions.
func NewBounds(w, h int) Bounds {
	return Bounds{W: w, H: h}
}

// Contains returns true if p lies inside the field.
func (b Bounds) Contains(p Position) bool {
	return p.X >= 0 && p.X < b.W && p.Y >= 0 && p.Y < b.H
}

// Area returns the number of cells in the field.
func (b Bounds) Area() int {
	return b.W * b.H
}

// Index linearizes p in row-major order. p must be inside the bounds.
func (b Bounds) Index(p Position) int {
	return p.Y*b.W + p.X
}

// At is the inverse of Index.
func (b Bounds) At(i int) Position {
	return Position{X: i % b.W, Y: i / b.W}
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
