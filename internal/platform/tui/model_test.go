package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, expected Model", next)
	}
	return nm, cmd
}

func tickState() core.GameState {
	food := core.Pos(3, 0)
	return core.GameState{
		Snake: []core.Position{core.Pos(1, 1), core.Pos(0, 1)},
		Food:  &food,
		Score: 4,
	}
}

func TestModelAppliesTicks(t *testing.T) {
	m := NewModel(core.NewBounds(4, 3))

	m, _ = update(t, m, EventMsg{Event: autopilot.PhaseChangedEvent{
		From: autopilot.PhaseStarting, To: autopilot.PhaseRunning, Game: 2,
	}})
	m, _ = update(t, m, EventMsg{Event: autopilot.TickEvent{
		Tick: 9, Game: 2, State: tickState(), Direction: core.DirRight,
		Decision: autopilot.DecisionPath, PathLen: 3,
	}})

	if m.game != 2 || m.score != 4 || m.tick != 9 {
		t.Errorf("game/score/tick = %d/%d/%d", m.game, m.score, m.tick)
	}
	if got := m.board.String(); got != "...*\noO..\n...." {
		t.Errorf("board =\n%s", got)
	}

	view := m.View()
	for _, want := range []string{"Snake autopilot", "running", "right", "path (3)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view does not contain %q", want)
		}
	}
}

func TestModelKeepsBoardOnSkip(t *testing.T) {
	m := NewModel(core.NewBounds(4, 3))
	m, _ = update(t, m, EventMsg{Event: autopilot.TickEvent{Tick: 1, State: tickState()}})
	before := m.board.String()

	m, _ = update(t, m, EventMsg{Event: autopilot.TickEvent{
		Tick: 2, Decision: autopilot.DecisionSkip, Err: autopilot.ErrUnavailable,
	}})

	if m.board.String() != before || m.score != 4 {
		t.Error("a skipped tick should not clear the board")
	}
}

func TestModelRecordsGames(t *testing.T) {
	m := NewModel(core.NewBounds(4, 3))

	for i, score := range []int{5, 12, 7} {
		m, _ = update(t, m, EventMsg{Event: autopilot.GameEndedEvent{
			Game: i + 1, Score: score, Ticks: 10 * score, Reason: autopilot.EndReasonGameOver,
		}})
	}

	if m.best != 12 {
		t.Errorf("best = %d, expected 12", m.best)
	}
	if len(m.rows) != 3 || m.rows[0][0] != "3" || m.rows[0][3] != "game_over" {
		t.Errorf("rows = %v, expected newest first", m.rows)
	}
}

func TestModelQuit(t *testing.T) {
	m := NewModel(core.NewBounds(4, 3))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !m.quitting {
		t.Error("q should quit the viewer")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestModelShowsPilotError(t *testing.T) {
	m := NewModel(core.NewBounds(4, 3))
	m, _ = update(t, m, DoneMsg{Err: errors.New("send failed")})

	if !m.done || !strings.Contains(m.View(), "stopped: send failed") {
		t.Error("view should report the pilot error")
	}
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

func TestObserverCopiesState(t *testing.T) {
	rs := &recordingSender{}
	obs := programObserver{p: rs}

	st := tickState()
	obs.Observe(autopilot.TickEvent{State: st})
	st.Snake[0] = core.Pos(3, 2)

	te := rs.msgs[0].(EventMsg).Event.(autopilot.TickEvent)
	if te.State.Snake[0] != core.Pos(1, 1) {
		t.Error("observer should forward a copy of the snapshot")
	}
}

func TestRenderBoard(t *testing.T) {
	b := core.BoardOf(core.NewBounds(4, 3), tickState())
	out := RenderBoard(b)

	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected 3 rows, got:\n%s", out)
	}
	for _, glyph := range []string{"O", "o", "*"} {
		if !strings.Contains(out, glyph) {
			t.Errorf("render is missing %q", glyph)
		}
	}
}
