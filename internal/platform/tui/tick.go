// Package tui provides the Bubble Tea viewer that follows a running autopilot.
// The pilot runs on its own goroutine; its events reach the model as messages.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
)

// EventMsg carries one autopilot event into the Bubble Tea loop.
type EventMsg struct {
	Event autopilot.Event
}

// DoneMsg is sent once the pilot has returned.
type DoneMsg struct {
	Err error
}

// sender is the part of *tea.Program the observer needs.
type sender interface {
	Send(msg tea.Msg)
}

type programObserver struct {
	p sender
}

// Observer forwards autopilot events to a running program.
func Observer(p *tea.Program) autopilot.Observer {
	return programObserver{p: p}
}

func (o programObserver) Observe(e autopilot.Event) {
	o.p.Send(EventMsg{Event: detach(e)})
}

type channelObserver struct {
	ch   chan<- tea.Msg
	done <-chan struct{}
}

// ChannelObserver forwards autopilot events to ch for a model built with
// WithEvents. Sends block until the model takes them or done is closed.
func ChannelObserver(ch chan<- tea.Msg, done <-chan struct{}) autopilot.Observer {
	return channelObserver{ch: ch, done: done}
}

func (o channelObserver) Observe(e autopilot.Event) {
	select {
	case o.ch <- EventMsg{Event: detach(e)}:
	case <-o.done:
	}
}

// detach copies tick snapshots so the model never shares memory with the
// pilot goroutine.
func detach(e autopilot.Event) autopilot.Event {
	if te, ok := e.(autopilot.TickEvent); ok {
		te.State = te.State.Clone()
		return te
	}
	return e
}
