package core

import (
	"fmt"
	"strings"
)

// Direction is one of the four movement directions.
// The set is closed: every value has exactly one opposite.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Directions lists all directions in neighbor expansion order.
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

// Valid reports whether d is one of the four defined directions.
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirRight
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

// Delta returns the unit vector for the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	default:
		return 1, 0
	}
}

// DirectionOf maps a unit vector back to its direction.
// Returns false for any delta that is not exactly one unit step.
func DirectionOf(dx, dy int) (Direction, bool) {
	switch {
	case dx == 0 && dy == -1:
		return DirUp, true
	case dx == 0 && dy == 1:
		return DirDown, true
	case dx == -1 && dy == 0:
		return DirLeft, true
	case dx == 1 && dy == 0:
		return DirRight, true
	}
	return DirUp, false
}

// String returns a lowercase name for the direction.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection parses a direction name (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return DirUp, fmt.Errorf("core: unknown direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("core: invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
