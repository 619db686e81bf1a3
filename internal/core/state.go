package core

import "fmt"

// GameState is one observed instant of the game. It is built fresh every tick
// by a perception collaborator and treated as read-only afterwards.
type GameState struct {
	Snake []Position // Body cells, head at index 0
	Food  *Position  // nil when no food is on the field
	Score int
	Over  bool // Set only when the collaborator knows the game has ended

	// HeadUnknown marks Snake as plain obstacle cells whose order does not
	// identify the head.
	HeadUnknown bool
}

// Head returns the snake's leading cell.
func (s GameState) Head() (Position, bool) {
	if len(s.Snake) == 0 || s.HeadUnknown {
		return Position{}, false
	}
	return s.Snake[0], true
}

// HasFood reports whether the snapshot contains a food cell.
func (s GameState) HasFood() bool {
	return s.Food != nil
}

// Clone returns a deep copy of the snapshot.
func (s GameState) Clone() GameState {
	c := s
	c.Snake = append([]Position(nil), s.Snake...)
	if s.Food != nil {
		f := *s.Food
		c.Food = &f
	}
	return c
}

// Validate checks the snapshot invariants against the field bounds:
// every body cell inside the field, no duplicate body cells, food inside the
// field and off the body.
func (s GameState) Validate(b Bounds) error {
	seen := make(map[Position]bool, len(s.Snake))
	for i, p := range s.Snake {
		if !b.Contains(p) {
			return fmt.Errorf("core: snake cell %d %v out of bounds", i, p)
		}
		if seen[p] {
			return fmt.Errorf("core: duplicate snake cell %v", p)
		}
		seen[p] = true
	}
	if s.Food != nil && !b.Contains(*s.Food) {
		return fmt.Errorf("core: food %v out of bounds", *s.Food)
	}
	if s.Food != nil && seen[*s.Food] {
		return fmt.Errorf("core: food %v on snake body", *s.Food)
	}
	return nil
}
