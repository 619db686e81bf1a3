package scrape

import (
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
	"github.com/vovakirdan/snake-autopilot/internal/remote"
)

// page builds a board page from ASCII rows using the core board glyphs.
func page(score string, over bool, rows ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><p>Score: <span class="score">` + score + `</span></p>`)
	if over {
		sb.WriteString(`<div class="board over">`)
	} else {
		sb.WriteString(`<div class="board" data-width="` + strconv.Itoa(len(rows[0])) + `">`)
	}
	for _, row := range rows {
		for _, ch := range row {
			switch ch {
			case 'O':
				sb.WriteString(`<div class="cell snake head"></div>`)
			case 'o', 'x':
				sb.WriteString(`<div class="cell snake"></div>`)
			case '*':
				sb.WriteString(`<div class="cell food"></div>`)
			default:
				sb.WriteString(`<div class="cell"></div>`)
			}
		}
	}
	sb.WriteString(`</div></body></html>`)
	return sb.String()
}

func TestParseBoard(t *testing.T) {
	html := page("12", false,
		"o...",
		"oO.*",
		"....",
	)

	st, err := ParseBoard(strings.NewReader(html), 4)
	if err != nil {
		t.Fatalf("ParseBoard() failed: %v", err)
	}

	expected := []core.Position{core.Pos(1, 1), core.Pos(0, 0), core.Pos(0, 1)}
	if len(st.Snake) != len(expected) {
		t.Fatalf("snake = %v, expected %v", st.Snake, expected)
	}
	for i := range expected {
		if st.Snake[i] != expected[i] {
			t.Errorf("snake[%d] = %v, expected %v", i, st.Snake[i], expected[i])
		}
	}
	if st.Food == nil || *st.Food != core.Pos(3, 1) {
		t.Errorf("food = %v, expected (3,1)", st.Food)
	}
	if st.Score != 12 || st.Over {
		t.Errorf("score/over = %d/%v", st.Score, st.Over)
	}
}

func TestParseBoardWidthFromPage(t *testing.T) {
	st, err := ParseBoard(strings.NewReader(page("0", false, "O..", "..*")), 0)
	if err != nil {
		t.Fatalf("ParseBoard() failed: %v", err)
	}
	if *st.Food != core.Pos(2, 1) {
		t.Errorf("food = %v, expected (2,1)", *st.Food)
	}
}

func TestParseBoardUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		width int
	}{
		{"no board", `<html><body><span class="score">0</span></body></html>`, 4},
		{"no cells", `<div class="board"></div><span class="score">0</span>`, 4},
		{"ragged rows", page("0", false, "O..*", "...."), 3},
		{"no food", page("3", false, "O...", "o..."), 4},
		{"bad score", page("n/a", false, "O..*"), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBoard(strings.NewReader(tt.html), tt.width)
			if !errors.Is(err, autopilot.ErrUnavailable) {
				t.Errorf("ParseBoard() error = %v, expected ErrUnavailable", err)
			}
		})
	}
}

func TestParseBoardWithoutHeadClass(t *testing.T) {
	st, err := ParseBoard(strings.NewReader(page("2", false, "xx.*", ".x..")), 4)
	if err != nil {
		t.Fatalf("ParseBoard() failed: %v", err)
	}
	if !st.HeadUnknown {
		t.Error("expected HeadUnknown without a head cell")
	}
	if _, ok := st.Head(); ok {
		t.Error("Head() should not report a head")
	}
	want := []core.Position{core.Pos(0, 0), core.Pos(1, 0), core.Pos(1, 1)}
	if len(st.Snake) != len(want) {
		t.Fatalf("snake = %v, expected %v", st.Snake, want)
	}
	for i, p := range want {
		if st.Snake[i] != p {
			t.Errorf("snake[%d] = %v, expected %v", i, st.Snake[i], p)
		}
	}
}

func TestParseBoardOver(t *testing.T) {
	st, err := ParseBoard(strings.NewReader(page("5", true, "oO..", "....")), 4)
	if err != nil {
		t.Fatalf("ParseBoard() failed: %v", err)
	}
	if !st.Over || st.Score != 5 || st.Food != nil {
		t.Errorf("state = %+v, expected a finished game without food", st)
	}
}

func TestDriverAgainstServer(t *testing.T) {
	ts := httptest.NewServer(remote.NewServer(remote.DefaultServerConfig(), nil).Handler())
	defer ts.Close()

	d, err := NewDriver(ts.URL, 21, 0, nil)
	if err != nil {
		t.Fatalf("NewDriver() failed: %v", err)
	}
	defer d.Close()
	ctx := context.Background()

	if _, err := d.GameState(ctx); !errors.Is(err, autopilot.ErrUnavailable) {
		t.Errorf("GameState() before start = %v, expected ErrUnavailable", err)
	}
	if err := d.SendDirection(ctx, core.DirLeft); err == nil {
		t.Error("SendDirection() before start should fail")
	}

	if err := d.Begin(ctx); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if err := d.SendDirection(ctx, core.DirLeft); err != nil {
		t.Fatalf("SendDirection() failed: %v", err)
	}

	st, err := d.GameState(ctx)
	if err != nil {
		t.Fatalf("GameState() failed: %v", err)
	}
	if head, _ := st.Head(); head != core.Pos(9, 2) {
		t.Errorf("head = %v, expected (9,2)", head)
	}
	if len(st.Snake) != 3 {
		t.Errorf("snake length = %d, expected 3", len(st.Snake))
	}
}

func TestNewDriverRejectsBadURL(t *testing.T) {
	for _, u := range []string{"ws://localhost", "::nope"} {
		if _, err := NewDriver(u, 21, 0, nil); err == nil {
			t.Errorf("NewDriver(%q) should fail", u)
		}
	}
}

func TestAutopilotPlaysPage(t *testing.T) {
	ts := httptest.NewServer(remote.NewServer(remote.DefaultServerConfig(), nil).Handler())
	defer ts.Close()

	d, err := NewDriver(ts.URL, 21, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	var ends []autopilot.GameEndedEvent
	opts := autopilot.DefaultOptions()
	opts.TickInterval = 0
	opts.StagnationTicks = 21 * 15
	opts.MaxGames = 1
	opts.Observer = autopilot.ObserverFunc(func(e autopilot.Event) {
		if ge, ok := e.(autopilot.GameEndedEvent); ok {
			ends = append(ends, ge)
		}
	})

	if err := autopilot.New(d, opts).Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(ends) != 1 || ends[0].Score < 1 {
		t.Errorf("game ends = %+v, expected one scoring game", ends)
	}
}
