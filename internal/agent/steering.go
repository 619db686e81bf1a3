package agent

import (
	"fmt"

	"github.com/vovakirdan/snake-autopilot/internal/core"
)

// DefaultDirection is the direction a fresh Steering starts with.
const DefaultDirection = core.DirDown

// Steering is the direction state machine. It holds the last committed
// direction and is the single authority for the no-reversal rule: a commit
// that would turn 180 degrees is refused and the current direction is kept.
// There is no terminal state; Reset returns it to an initial direction.
type Steering struct {
	current core.Direction
}

// NewSteering creates a state machine starting at initial.
func NewSteering(initial core.Direction) *Steering {
	return &Steering{current: initial}
}

// Current returns the last committed direction.
func (s *Steering) Current() core.Direction {
	return s.current
}

// Reset forces the state to d, regardless of reversal.
func (s *Steering) Reset(d core.Direction) {
	s.current = d
}

// Toward returns the direction that moves head onto next.
// next must be a 4-neighbor of head; anything else is a caller bug and panics.
func (s *Steering) Toward(head, next core.Position) core.Direction {
	d, ok := core.DirectionOf(next.X-head.X, next.Y-head.Y)
	if !ok {
		panic(fmt.Sprintf("agent: %v is not adjacent to %v", next, head))
	}
	return d
}

// Commit makes d the current direction unless it reverses the current one.
// Returns false when the commit was refused.
func (s *Steering) Commit(d core.Direction) bool {
	if !d.Valid() || d == s.current.Opposite() {
		return false
	}
	s.current = d
	return true
}

// Steer converts a target cell into a direction and commits it.
// It returns the direction in effect afterwards and whether the request was
// accepted; on refusal the previous direction is held.
func (s *Steering) Steer(head, next core.Position) (core.Direction, bool) {
	ok := s.Commit(s.Toward(head, next))
	return s.current, ok
}
