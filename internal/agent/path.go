package agent

import "github.com/vovakirdan/snake-autopilot/internal/core"

const noParent = -1

// PathFinder runs breadth-first searches over the 4-connected grid.
// Parent pointers and the queue live in flat slices indexed by the linearized
// cell, reused between searches on fields of the same size.
// A PathFinder is not safe for concurrent use.
type PathFinder struct {
	parent []int32
	queue  []int32
}

// NewPathFinder creates a path finder with buffers sized for b.
func NewPathFinder(b core.Bounds) *PathFinder {
	pf := &PathFinder{}
	pf.ensure(b.Area())
	return pf
}

func (pf *PathFinder) ensure(area int) {
	if cap(pf.parent) < area {
		pf.parent = make([]int32, area)
		pf.queue = make([]int32, 0, area)
	}
	pf.parent = pf.parent[:area]
}

// FindPath returns the shortest path from start (exclusive) to target
// (inclusive), or false if the target is unreachable.
//
// A cell is walkable iff it is inside the field and not occupied; the target is
// exempt from the occupancy check. The start cell is the search root and is
// never tested against the obstacle set. Neighbors expand in the order
// up, down, left, right, so ties always resolve the same way.
// When start equals target the path is empty and found is true.
func (pf *PathFinder) FindPath(g *Grid, start, target core.Position) ([]core.Position, bool) {
	b := g.Bounds()
	if !b.Contains(start) || !b.Contains(target) {
		return nil, false
	}
	if start == target {
		return []core.Position{}, true
	}

	pf.ensure(b.Area())
	for i := range pf.parent {
		pf.parent[i] = noParent
	}

	startIdx := int32(b.Index(start))
	targetIdx := int32(b.Index(target))
	pf.parent[startIdx] = startIdx
	pf.queue = append(pf.queue[:0], startIdx)

	for head := 0; head < len(pf.queue); head++ {
		cur := pf.queue[head]
		if cur == targetIdx {
			return pf.reconstruct(b, startIdx, targetIdx), true
		}
		p := b.At(int(cur))
		for _, d := range core.Directions {
			n := p.Step(d)
			if !b.Contains(n) {
				continue
			}
			ni := int32(b.Index(n))
			if pf.parent[ni] != noParent {
				continue
			}
			if ni != targetIdx && g.Occupied(n) {
				continue
			}
			pf.parent[ni] = cur
			pf.queue = append(pf.queue, ni)
		}
	}
	return nil, false
}

// reconstruct walks parent pointers back from target and reverses the result.
func (pf *PathFinder) reconstruct(b core.Bounds, startIdx, targetIdx int32) []core.Position {
	n := 0
	for i := targetIdx; i != startIdx; i = pf.parent[i] {
		n++
	}
	path := make([]core.Position, n)
	for i := targetIdx; i != startIdx; i = pf.parent[i] {
		n--
		path[n] = b.At(int(i))
	}
	return path
}

// FindPath is a convenience wrapper that allocates a one-shot PathFinder.
func FindPath(g *Grid, start, target core.Position) ([]core.Position, bool) {
	return NewPathFinder(g.Bounds()).FindPath(g, start, target)
}
