package autopilot

import (
	"time"

	"github.com/vovakirdan/snake-autopilot/internal/core"
)

// Event is emitted by the Pilot to its observer.
type Event interface {
	autopilotEvent()
}

// Observer receives pilot events synchronously on the loop goroutine.
// Implementations must not block and must not modify event payloads.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// Observers fans events out to several observers in order. Nil entries are skipped.
func Observers(obs ...Observer) Observer {
	return ObserverFunc(func(e Event) {
		for _, o := range obs {
			if o != nil {
				o.Observe(e)
			}
		}
	})
}

// PhaseChangedEvent is sent on every phase transition.
type PhaseChangedEvent struct {
	From, To Phase
	Game     int // Game number the transition belongs to (1-based)
}

func (PhaseChangedEvent) autopilotEvent() {}

// Decision describes how the direction for a tick was chosen.
type Decision int

const (
	DecisionPath     Decision = iota // First step of a shortest path to food
	DecisionFallback                 // Safe neighbor, no path to food
	DecisionHold                     // No safe move, previous direction kept
	DecisionSkip                     // Perception failed, tick skipped
)

func (d Decision) String() string {
	switch d {
	case DecisionPath:
		return "path"
	case DecisionFallback:
		return "fallback"
	case DecisionHold:
		return "hold"
	case DecisionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// TickEvent reports the outcome of one running tick.
type TickEvent struct {
	Tick      uint64
	Game      int
	State     core.GameState // Snapshot the decision was made on (empty when skipped)
	Head      core.Position  // Head the decision was made from
	Direction core.Direction // Direction sent (or held)
	Decision  Decision
	PathLen   int   // Length of the path to food, 0 if none
	Err       error // Perception or actuation error, if any
}

func (TickEvent) autopilotEvent() {}

// EndReason describes why a game was considered over.
type EndReason int

const (
	EndReasonGameOver   EndReason = iota // Collaborator reported the game ended
	EndReasonStagnation                  // Score unchanged for too many ticks
	EndReasonStopped                     // Pilot stopped mid-game
)

func (r EndReason) String() string {
	switch r {
	case EndReasonGameOver:
		return "game_over"
	case EndReasonStagnation:
		return "stagnation"
	case EndReasonStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// GameEndedEvent is sent once per game when the pilot leaves the running phase.
type GameEndedEvent struct {
	Game      int
	Score     int
	Ticks     int // Running ticks spent in this game
	Moves     int // Directions successfully sent
	Fallbacks int
	Holds     int
	Reason    EndReason
	StartedAt time.Time
	EndedAt   time.Time
}

func (GameEndedEvent) autopilotEvent() {}
