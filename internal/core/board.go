package core

import "strings"

// Cell classifies the content of one field cell.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellBody
	CellHead
	CellFood
)

// Rune returns the ASCII glyph used to draw the cell.
func (c Cell) Rune() rune {
	switch c {
	case CellBody:
		return 'o'
	case CellHead:
		return 'O'
	case CellFood:
		return '*'
	default:
		return '.'
	}
}

// String returns the cell name. The names double as HTML class names.
func (c Cell) String() string {
	switch c {
	case CellBody:
		return "snake"
	case CellHead:
		return "head"
	case CellFood:
		return "food"
	default:
		return "empty"
	}
}

// Board is a 2D cell buffer used to draw a GameState.
// It decouples snapshot rendering from the output medium (terminal, HTML, logs).
type Board struct {
	bounds Bounds
	cells  []Cell
}

// NewBoard creates an empty board with the given bounds.
func NewBoard(b Bounds) *Board {
	return &Board{
		bounds: b,
		cells:  make([]Cell, b.Area()),
	}
}

// BoardOf draws a snapshot onto a fresh board.
// Cells outside the bounds are silently dropped.
func BoardOf(b Bounds, s GameState) *Board {
	board := NewBoard(b)
	board.Draw(s)
	return board
}

// Bounds returns the board dimensions.
func (bd *Board) Bounds() Bounds {
	return bd.bounds
}

// Clear resets every cell to empty.
func (bd *Board) Clear() {
	for i := range bd.cells {
		bd.cells[i] = CellEmpty
	}
}

// Draw clears the board and paints the snapshot.
func (bd *Board) Draw(s GameState) {
	bd.Clear()
	if s.Food != nil {
		bd.Set(*s.Food, CellFood)
	}
	for i := len(s.Snake) - 1; i >= 0; i-- {
		if i == 0 && !s.HeadUnknown {
			bd.Set(s.Snake[i], CellHead)
		} else {
			bd.Set(s.Snake[i], CellBody)
		}
	}
}

// Set places a cell at the given position.
// Out-of-bounds positions are silently ignored.
func (bd *Board) Set(p Position, c Cell) {
	if !bd.bounds.Contains(p) {
		return
	}
	bd.cells[bd.bounds.Index(p)] = c
}

// Get returns the cell at the given position.
// Returns CellEmpty for out-of-bounds positions.
func (bd *Board) Get(p Position) Cell {
	if !bd.bounds.Contains(p) {
		return CellEmpty
	}
	return bd.cells[bd.bounds.Index(p)]
}

// Cells returns the cells in row-major order.
func (bd *Board) Cells() []Cell {
	return bd.cells
}

// String converts the board to ASCII rows joined with newlines.
func (bd *Board) String() string {
	var sb strings.Builder
	sb.Grow(bd.bounds.Area() + bd.bounds.H)

	for y := 0; y < bd.bounds.H; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := 0; x < bd.bounds.W; x++ {
			sb.WriteRune(bd.Get(Pos(x, y)).Rune())
		}
	}
	return sb.String()
}
