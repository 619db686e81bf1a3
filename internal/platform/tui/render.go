package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snake-autopilot/internal/core"
)

// cellStyles maps board cells to lipgloss styles.
var cellStyles = map[core.Cell]lipgloss.Style{
	core.CellEmpty: lipgloss.NewStyle().Foreground(lipgloss.Color("238")), // Dark gray
	core.CellBody:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.CellHead:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	core.CellFood:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
}

// RenderBoard converts a board to a styled string for display.
// Groups adjacent cells of the same kind to minimize ANSI escape sequences.
// Each cell is two characters wide to keep the field roughly square.
func RenderBoard(b *core.Board) string {
	bounds := b.Bounds()
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(bounds.Area()*4 + bounds.H)

	for y := range bounds.H {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < bounds.W {
			start := b.Get(core.Pos(x, y))

			// Collect consecutive cells of the same kind
			var run strings.Builder
			for x < bounds.W {
				c := b.Get(core.Pos(x, y))
				if c != start {
					break
				}
				run.WriteRune(c.Rune())
				run.WriteRune(' ')
				x++
			}

			sb.WriteString(cellStyles[start].Render(run.String()))
		}
	}
	return sb.String()
}
