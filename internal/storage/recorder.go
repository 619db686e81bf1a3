package storage

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
)

// Recorder is an autopilot.Observer that writes every finished game to the
// ledger. Write failures are logged; they never stop the pilot.
type Recorder struct {
	store  *Store
	runID  string
	logger *log.Logger
}

// NewRecorder creates a recorder for the given run.
func NewRecorder(store *Store, runID string, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Recorder{store: store, runID: runID, logger: logger}
}

// Observe implements autopilot.Observer.
func (r *Recorder) Observe(e autopilot.Event) {
	ge, ok := e.(autopilot.GameEndedEvent)
	if !ok {
		return
	}

	_, err := r.store.RecordGame(GameRecord{
		RunID:     r.runID,
		Game:      ge.Game,
		Score:     ge.Score,
		Ticks:     ge.Ticks,
		Moves:     ge.Moves,
		Fallbacks: ge.Fallbacks,
		Holds:     ge.Holds,
		Reason:    ge.Reason.String(),
		StartedAt: ge.StartedAt,
		EndedAt:   ge.EndedAt,
	})
	if err != nil {
		r.logger.Warn("could not record game", "game", ge.Game, "error", err)
	}
}

var _ autopilot.Observer = (*Recorder)(nil)
