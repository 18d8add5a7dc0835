package game

import (
	"time"

	"turbocraft/internal/input"
	"turbocraft/internal/player"
	"turbocraft/internal/world"
)

// Event is one discrete input: the logical action and, for the two mouse
// actions, the raycast result at the moment of the event.
type Event struct {
	Action input.Action
	Hit    world.Hit
}

// Delta describes what an Event changed.
type Delta struct {
	State  State
	Mode   player.GameMode
	Slot   int
	Edit   EditResult
	Target world.BlockPos
	Quit   bool
	Err    error
}

// Handle dispatches ev against the current state and returns the resulting
// delta. Actions that do not apply to the current state are ignored.
func (s *Session) Handle(ev Event, now time.Time) Delta {
	var d Delta
	switch s.state {
	case StateMenu:
		s.handleMenu(ev, now, &d)
	case StateRunning:
		s.handleRunning(ev, &d)
	case StatePaused:
		s.handlePaused(ev, &d)
	}
	d.State = s.state
	d.Mode = s.mode
	d.Slot = s.inventory.CurrentItem
	return d
}

func (s *Session) handleMenu(ev Event, now time.Time, d *Delta) {
	switch ev.Action {
	case input.ActionStart:
		d.Err = s.Start(now)
	case input.ActionQuit:
		d.Quit = true
	}
}

func (s *Session) handlePaused(ev Event, d *Delta) {
	switch ev.Action {
	case input.ActionPause, input.ActionStart:
		s.resume()
	case input.ActionQuitToMenu:
		s.End()
	case input.ActionQuit:
		d.Quit = true
	}
}

func (s *Session) handleRunning(ev Event, d *Delta) {
	if slot, ok := ev.Action.HotbarSlot(); ok {
		s.inventory.SetCurrentItem(slot)
		return
	}

	switch ev.Action {
	case input.ActionScrollUp:
		s.inventory.ChangeCurrentItem(1)
	case input.ActionScrollDown:
		s.inventory.ChangeCurrentItem(-1)
	case input.ActionToggleMode:
		s.mode = s.mode.Toggle()
		s.log.Info("game mode changed", "mode", s.mode)
	case input.ActionSaveWorld:
		d.Err = s.SaveWorld()
	case input.ActionLoadWorld:
		d.Err = s.LoadWorld()
	case input.ActionSaveInventory:
		d.Err = s.SaveInventory()
	case input.ActionLoadInventory:
		d.Err = s.LoadInventory()
	case input.ActionConnect:
		s.connect()
	case input.ActionPause:
		s.pause()
	case input.ActionPrimary:
		if s.observerEnabled {
			d.Edit, d.Target = s.destroy(ev.Hit)
			s.metrics.Edit("destroy", d.Edit.String())
		}
	case input.ActionSecondary:
		if s.observerEnabled {
			d.Edit, d.Target = s.place(ev.Hit)
			s.metrics.Edit("place", d.Edit.String())
		}
	}
}
