package agent

import "github.com/vovakirdan/snake-autopilot/internal/core"

// SafeMove picks an immediate neighbor of head that is inside the field,
// unoccupied, and does not reverse the current direction. Candidates are tried
// in the order up, down, left, right and the first acceptable one wins.
// Returns false when no neighbor qualifies.
func SafeMove(g *Grid, head core.Position, current core.Direction) (core.Position, core.Direction, bool) {
	reverse := current.Opposite()
	for _, d := range core.Directions {
		if d == reverse {
			continue
		}
		n := head.Step(d)
		if g.Free(n) {
			return n, d, true
		}
	}
	return core.Position{}, current, false
}
