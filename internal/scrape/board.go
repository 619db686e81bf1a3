// Package scrape reads a snake game from its HTML page and plays it through
// plain HTTP form posts.
package scrape

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
)

// ParseBoard extracts a snapshot from a board page.
//
// The page holds a div.board with one div.cell per field cell in row-major
// order; cells carry the classes snake, head and food. The score is the text
// of the first .score element and a board classed "over" marks a finished
// game. Without a head cell the snake cells are reported with HeadUnknown
// set, leaving head tracking to the caller. When width is not positive it is read from the board's data-width.
//
// Pages that cannot be read as a running game yield an error wrapping
// autopilot.ErrUnavailable.
func ParseBoard(r io.Reader, width int) (core.GameState, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return core.GameState{}, fmt.Errorf("scrape: cannot parse page: %w", err)
	}

	board := doc.Find("div.board").First()
	if board.Length() == 0 {
		return core.GameState{}, fmt.Errorf("scrape: no board on page: %w", autopilot.ErrUnavailable)
	}

	if width <= 0 {
		if w, ok := board.Attr("data-width"); ok {
			width, _ = strconv.Atoi(w)
		}
		if width <= 0 {
			return core.GameState{}, fmt.Errorf("scrape: board width unknown")
		}
	}

	cells := board.Find("div.cell")
	if cells.Length() == 0 || cells.Length()%width != 0 {
		return core.GameState{}, fmt.Errorf("scrape: %d cells do not fill rows of %d: %w",
			cells.Length(), width, autopilot.ErrUnavailable)
	}

	var (
		st      core.GameState
		head    *core.Position
		body    []core.Position
		hasFood bool
	)
	cells.Each(func(i int, s *goquery.Selection) {
		p := core.Pos(i%width, i/width)
		switch {
		case s.HasClass("head"):
			head = &p
		case s.HasClass("snake"):
			body = append(body, p)
		case s.HasClass("food"):
			if !hasFood {
				f := p
				st.Food = &f
				hasFood = true
			}
		}
	})

	if head != nil {
		st.Snake = append(st.Snake, *head)
	}
	st.Snake = append(st.Snake, body...)
	st.HeadUnknown = head == nil && len(body) > 0
	st.Over = board.HasClass("over")

	scoreText := strings.TrimSpace(doc.Find(".score").First().Text())
	score, err := strconv.Atoi(scoreText)
	if err != nil {
		return core.GameState{}, fmt.Errorf("scrape: unreadable score %q: %w", scoreText, autopilot.ErrUnavailable)
	}
	st.Score = score

	if !hasFood && !st.Over {
		return core.GameState{}, fmt.Errorf("scrape: no food on the board: %w", autopilot.ErrUnavailable)
	}
	return st, nil
}
