package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snake-autopilot/internal/registry"
)

// MenuModel is the Bubble Tea model for the driver picker.
type MenuModel struct {
	items    []registry.DriverInfo
	cursor   int
	width    int
	help     help.Model
	keys     MenuKeyMap
	quitting bool
	selected *registry.DriverInfo // Set when the user picks a driver
}

// NewMenuModel creates a picker over the given drivers.
func NewMenuModel(drivers []registry.DriverInfo) MenuModel {
	return MenuModel{
		items: drivers,
		width: 80,
		help:  help.New(),
		keys:  DefaultMenuKeyMap(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Select):
			if len(m.items) > 0 {
				selected := m.items[m.cursor]
				m.selected = &selected
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting || m.selected != nil {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("S N A K E   A U T O P I L O T"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(labelStyle.Render("Select a driver"), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-6s %s", cursor, item.ID, item.Title)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(m.help.View(m.keys), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the picked driver, or nil if none was picked.
func (m MenuModel) Selected() *registry.DriverInfo {
	return m.selected
}

// RunMenu shows the picker and returns the chosen driver ID.
// An empty ID means the user quit.
func RunMenu(drivers []registry.DriverInfo) (string, error) {
	final, err := tea.NewProgram(NewMenuModel(drivers), tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("tui: menu failed: %w", err)
	}

	if sel := final.(MenuModel).Selected(); sel != nil {
		return sel.ID, nil
	}
	return "", nil
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
