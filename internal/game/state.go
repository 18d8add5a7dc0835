package game

import (
	"fmt"
	"time"
)

// State is the session's position in the menu/running/paused machine.
type State int

const (
	StateMenu State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// delayedAction is a one-shot deadline polled from Tick.
type delayedAction struct {
	due   time.Time
	armed bool
}

func (d *delayedAction) Schedule(now time.Time, after time.Duration) {
	d.due = now.Add(after)
	d.armed = true
}

func (d *delayedAction) Cancel() { d.armed = false }

func (d *delayedAction) Pending() bool { return d.armed }

// Fire reports true exactly once, on the first poll at or after the deadline.
func (d *delayedAction) Fire(now time.Time) bool {
	if !d.armed || now.Before(d.due) {
		return false
	}
	d.armed = false
	return true
}
