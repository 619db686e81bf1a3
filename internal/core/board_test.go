package core

import (
	"strings"
	"testing"
)

func TestBoardDraw(t *testing.T) {
	food := Pos(3, 0)
	state := GameState{
		Snake: []Position{Pos(1, 1), Pos(0, 1), Pos(0, 0)},
		Food:  &food,
	}

	b := BoardOf(NewBounds(4, 3), state)

	expected := strings.Join([]string{
		"o..*",
		"oO..",
		"....",
	}, "\n")
	if got := b.String(); got != expected {
		t.Errorf("String() =\n%s\nexpected\n%s", got, expected)
	}

	if b.Get(Pos(1, 1)) != CellHead {
		t.Errorf("Get(1,1) = %v, expected head", b.Get(Pos(1, 1)))
	}
	// Out of bounds should be silent
	b.Set(Pos(-1, 0), CellFood)
	b.Set(Pos(9, 9), CellFood)
	if b.Get(Pos(9, 9)) != CellEmpty {
		t.Error("out-of-bounds Get should return empty")
	}
}

func TestBoardClear(t *testing.T) {
	b := NewBoard(NewBounds(3, 3))
	b.Set(Pos(1, 1), CellBody)
	b.Clear()

	for i, c := range b.Cells() {
		if c != CellEmpty {
			t.Errorf("cell %d = %v after Clear()", i, c)
		}
	}
}

func TestGameStateValidate(t *testing.T) {
	b := NewBounds(5, 5)
	outside := Pos(5, 0)
	onBody := Pos(1, 2)

	tests := []struct {
		name    string
		state   GameState
		wantErr bool
	}{
		{"valid", GameState{Snake: []Position{Pos(1, 1), Pos(1, 2)}}, false},
		{"empty", GameState{}, false},
		{"head out of bounds", GameState{Snake: []Position{Pos(-1, 0)}}, true},
		{"duplicate body", GameState{Snake: []Position{Pos(1, 1), Pos(1, 2), Pos(1, 1)}}, true},
		{"food out of bounds", GameState{Snake: []Position{Pos(1, 1)}, Food: &outside}, true},
		{"food on body", GameState{Snake: []Position{Pos(1, 1), Pos(1, 2)}, Food: &onBody}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.state.Validate(b)
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestGameStateClone(t *testing.T) {
	food := Pos(2, 2)
	s := GameState{Snake: []Position{Pos(0, 0)}, Food: &food, Score: 3}
	c := s.Clone()

	c.Snake[0] = Pos(4, 4)
	*c.Food = Pos(1, 1)

	if s.Snake[0] != Pos(0, 0) || *s.Food != Pos(2, 2) {
		t.Error("Clone() should not share body or food with the original")
	}
}

func TestHeadUnknown(t *testing.T) {
	s := GameState{Snake: []Position{Pos(0, 0), Pos(1, 0)}, HeadUnknown: true}

	if _, ok := s.Head(); ok {
		t.Error("Head() should fail when the head is unknown")
	}

	b := BoardOf(NewBounds(3, 1), s)
	if got := b.String(); got != "oo." {
		t.Errorf("String() = %q, expected body cells only", got)
	}
}
