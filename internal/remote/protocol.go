// Package remote exposes the snake simulator over the network and provides the
// matching client driver.
//
// WebSocket messages are JSON envelopes:
//
//	{"type": "observe"}
//	{"type": "move", "data": {"direction": "up"}}
//	{"type": "start"} / {"type": "restart"}
//
// The server answers every client message with exactly one "state" or
// "error" envelope.
package remote

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/snake-autopilot/internal/core"
)

// MessageType identifies the payload carried by an Envelope.
type MessageType string

const (
	// Client -> server
	TypeObserve MessageType = "observe"
	TypeMove    MessageType = "move"
	TypeStart   MessageType = "start"
	TypeRestart MessageType = "restart"

	// Server -> client
	TypeState MessageType = "state"
	TypeError MessageType = "error"
)

// Error codes carried in ErrorPayload.
const (
	CodeUnavailable = "unavailable"
	CodeBadRequest  = "bad_request"
	CodeConflict    = "conflict"
)

// Envelope is the wire frame for every message.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Point is a cell on the wire.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MovePayload is the data of a move message.
type MovePayload struct {
	Direction core.Direction `json:"direction"`
}

// StatePayload is the data of a state message.
type StatePayload struct {
	Snake []Point `json:"snake"`
	Food  *Point  `json:"food"`
	Score int     `json:"score"`
	Over  bool    `json:"over"`
}

// ErrorPayload is the data of an error message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewStatePayload converts a snapshot to its wire form.
func NewStatePayload(s core.GameState) StatePayload {
	p := StatePayload{
		Snake: make([]Point, len(s.Snake)),
		Score: s.Score,
		Over:  s.Over,
	}
	for i, c := range s.Snake {
		p.Snake[i] = Point{X: c.X, Y: c.Y}
	}
	if s.Food != nil {
		p.Food = &Point{X: s.Food.X, Y: s.Food.Y}
	}
	return p
}

// GameState converts the wire form back to a snapshot.
func (p StatePayload) GameState() core.GameState {
	s := core.GameState{
		Snake: make([]core.Position, len(p.Snake)),
		Score: p.Score,
		Over:  p.Over,
	}
	for i, c := range p.Snake {
		s.Snake[i] = core.Pos(c.X, c.Y)
	}
	if p.Food != nil {
		f := core.Pos(p.Food.X, p.Food.Y)
		s.Food = &f
	}
	return s
}

// NewEnvelope marshals data into an envelope of the given type.
// A nil data produces an envelope without payload.
func NewEnvelope(t MessageType, data any) (Envelope, error) {
	env := Envelope{Type: t}
	if data == nil {
		return env, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return env, fmt.Errorf("remote: cannot encode %s payload: %w", t, err)
	}
	env.Data = raw
	return env, nil
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("remote: %s message has no data", e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("remote: cannot decode %s payload: %w", e.Type, err)
	}
	return nil
}
