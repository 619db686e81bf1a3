package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
)

// Viewer layout constants
const (
	maxRecentGames = 100 // Rows kept in the games table
	tableHeight    = 10
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// Model is the Bubble Tea model that displays a running autopilot.
type Model struct {
	board *core.Board
	table table.Model
	help  help.Model
	keys  ViewerKeyMap

	game      int
	score     int
	best      int
	tick      uint64
	phase     autopilot.Phase
	direction core.Direction
	decision  autopilot.Decision
	pathLen   int
	rows      []table.Row

	done     bool
	err      error
	quitting bool

	events <-chan tea.Msg // nil when events arrive through Program.Send
}

// NewModel creates a viewer for a field of the given size.
func NewModel(bounds core.Bounds) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Game", Width: 5},
			{Title: "Score", Width: 6},
			{Title: "Ticks", Width: 7},
			{Title: "Reason", Width: 11},
		}),
		table.WithHeight(tableHeight),
	)

	h := help.New()
	h.ShowAll = false

	return Model{
		board: core.NewBoard(bounds),
		table: t,
		help:  h,
		keys:  DefaultViewerKeyMap(),
	}
}

// WithEvents makes the model pull EventMsg and DoneMsg values from ch
// instead of waiting for them to be sent to the program.
func (m Model) WithEvents(ch <-chan tea.Msg) Model {
	m.events = ch
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.listen()
}

// listen waits for the next message on the event channel.
func (m Model) listen() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return DoneMsg{}
		}
		return msg
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case EventMsg:
		m.apply(msg.Event)
		return m, m.listen()

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

func (m *Model) apply(e autopilot.Event) {
	switch e := e.(type) {
	case autopilot.PhaseChangedEvent:
		m.phase = e.To
		m.game = e.Game
		if e.To == autopilot.PhaseRunning {
			m.score = 0
		}

	case autopilot.TickEvent:
		m.tick = e.Tick
		m.direction = e.Direction
		m.decision = e.Decision
		m.pathLen = e.PathLen
		if e.Decision != autopilot.DecisionSkip {
			m.board.Draw(e.State)
			m.score = e.State.Score
		}

	case autopilot.GameEndedEvent:
		m.best = max(m.best, e.Score)
		row := table.Row{
			strconv.Itoa(e.Game),
			strconv.Itoa(e.Score),
			strconv.Itoa(e.Ticks),
			e.Reason.String(),
		}
		// Newest first
		m.rows = append([]table.Row{row}, m.rows...)
		if len(m.rows) > maxRecentGames {
			m.rows = m.rows[:maxRecentGames]
		}
		m.table.SetRows(m.rows)
	}
}

// View renders the board, the HUD, the games table and the help footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	hud := fmt.Sprintf("%s  %s %s  %s %s  %s %s  %s %s  %s %s",
		titleStyle.Render("Snake autopilot"),
		labelStyle.Render("game"), valueStyle.Render(strconv.Itoa(m.game)),
		labelStyle.Render("score"), valueStyle.Render(strconv.Itoa(m.score)),
		labelStyle.Render("best"), valueStyle.Render(strconv.Itoa(m.best)),
		labelStyle.Render("phase"), valueStyle.Render(m.phase.String()),
		labelStyle.Render("dir"), valueStyle.Render(m.direction.String()),
	)

	decision := m.decision.String()
	if m.decision == autopilot.DecisionPath {
		decision = fmt.Sprintf("%s (%d)", decision, m.pathLen)
	}
	status := fmt.Sprintf("%s %s  %s %d",
		labelStyle.Render("decision"), valueStyle.Render(decision),
		labelStyle.Render("tick"), m.tick,
	)
	if m.done {
		if m.err != nil {
			status += "  " + errorStyle.Render("stopped: "+m.err.Error())
		} else {
			status += "  " + labelStyle.Render("finished")
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		borderStyle.Render(RenderBoard(m.board)),
		"  ",
		m.table.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, hud, status, body, m.help.View(m.keys))
}

// Watch runs the pilot built by newPilot under a full-screen viewer. It
// returns when the user quits or ctx is cancelled, after the pilot has
// stopped. The pilot's own error is returned.
func Watch(ctx context.Context, bounds core.Bounds, newPilot func(autopilot.Observer) *autopilot.Pilot) error {
	prog := tea.NewProgram(NewModel(bounds), tea.WithAltScreen(), tea.WithContext(ctx))
	pilot := newPilot(Observer(prog))

	done := make(chan error, 1)
	go func() {
		err := pilot.Run(ctx)
		done <- err
		prog.Send(DoneMsg{Err: err})
	}()

	_, uiErr := prog.Run()
	pilot.Stop()
	err := <-done

	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: viewer failed: %w", uiErr)
	}
	return err
}
