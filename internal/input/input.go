package input

import (
	"fmt"
	"strings"
	"sync"
)

// Action represents a logical game action, not a physical key
type Action int

// Action constants using iota
const (
	ActionNone Action = iota
	ActionHotbar1
	ActionHotbar2
	ActionHotbar3
	ActionHotbar4
	ActionHotbar5
	ActionHotbar6
	ActionHotbar7
	ActionHotbar8
	ActionHotbar9
	ActionScrollUp
	ActionScrollDown
	ActionToggleMode
	ActionSaveWorld
	ActionLoadWorld
	ActionSaveInventory
	ActionLoadInventory
	ActionConnect
	ActionPause
	ActionPrimary   // destroy
	ActionSecondary // place
	ActionStart
	ActionQuitToMenu
	ActionQuit
	ActionCount // Sentinel value for array sizing
)

var actionNames = [ActionCount]string{
	ActionNone:          "none",
	ActionHotbar1:       "hotbar1",
	ActionHotbar2:       "hotbar2",
	ActionHotbar3:       "hotbar3",
	ActionHotbar4:       "hotbar4",
	ActionHotbar5:       "hotbar5",
	ActionHotbar6:       "hotbar6",
	ActionHotbar7:       "hotbar7",
	ActionHotbar8:       "hotbar8",
	ActionHotbar9:       "hotbar9",
	ActionScrollUp:      "scroll_up",
	ActionScrollDown:    "scroll_down",
	ActionToggleMode:    "toggle_mode",
	ActionSaveWorld:     "save_world",
	ActionLoadWorld:     "load_world",
	ActionSaveInventory: "save_inventory",
	ActionLoadInventory: "load_inventory",
	ActionConnect:       "connect",
	ActionPause:         "pause",
	ActionPrimary:       "primary",
	ActionSecondary:     "secondary",
	ActionStart:         "start",
	ActionQuitToMenu:    "quit_to_menu",
	ActionQuit:          "quit",
}

func (a Action) String() string {
	if a < 0 || a >= ActionCount {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// HotbarSlot returns the slot index selected by a digit action.
func (a Action) HotbarSlot() (int, bool) {
	if a >= ActionHotbar1 && a <= ActionHotbar9 {
		return int(a - ActionHotbar1), true
	}
	return 0, false
}

// ParseAction maps a config action name back to its Action.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", name)
}

// Mouse and wheel events use these key names.
const (
	MouseLeft  = "mouse left"
	MouseRight = "mouse right"
	WheelUp    = "wheel up"
	WheelDown  = "wheel down"
)

// InputManager maps physical key names to logical actions and tracks which
// actions are held.
type InputManager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[string][]Action

	currentState [ActionCount]bool
	justPressed  [ActionCount]bool
}

// NewInputManager creates a new InputManager with default key bindings
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions: make(map[string][]Action),
	}

	for i := range 9 {
		im.BindKey(fmt.Sprint(i+1), ActionHotbar1+Action(i))
	}
	im.BindKey("g", ActionToggleMode)
	im.BindKey("k", ActionSaveWorld)
	im.BindKey("l", ActionLoadWorld)
	im.BindKey("i", ActionSaveInventory)
	im.BindKey("o", ActionLoadInventory)
	im.BindKey("j", ActionConnect)
	im.BindKey("escape", ActionPause)
	im.BindKey("enter", ActionStart)
	im.BindKey("m", ActionQuitToMenu)
	im.BindKey("q", ActionQuit)

	im.BindKey(MouseLeft, ActionPrimary)
	im.BindKey(MouseRight, ActionSecondary)
	im.BindKey(WheelUp, ActionScrollUp)
	im.BindKey(WheelDown, ActionScrollDown)

	return im
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// BindKey binds a physical key to a logical action
func (im *InputManager) BindKey(key string, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action <= ActionNone || action >= ActionCount {
		return
	}

	key = normalizeKey(key)
	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (im *InputManager) UnbindKey(key string) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.keyToActions, normalizeKey(key))
}

// Rebind replaces the bindings of every key in bindings (key name to action
// name). Unknown action names are reported and the rest are still applied.
func (im *InputManager) Rebind(bindings map[string]string) error {
	var bad []string
	for key, name := range bindings {
		action, err := ParseAction(name)
		if err != nil {
			bad = append(bad, name)
			continue
		}
		im.UnbindKey(key)
		if action != ActionNone {
			im.BindKey(key, action)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("unknown actions in key bindings: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Actions returns the actions bound to key.
func (im *InputManager) Actions(key string) []Action {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return append([]Action(nil), im.keyToActions[normalizeKey(key)]...)
}

// HandleKeyEvent processes a key event and returns the actions that went from
// released to pressed.
func (im *InputManager) HandleKeyEvent(key string, pressed bool) []Action {
	im.mu.Lock()
	defer im.mu.Unlock()

	var fired []Action
	for _, act := range im.keyToActions[normalizeKey(key)] {
		// Detect edges immediately when event arrives
		if pressed && !im.currentState[act] {
			im.justPressed[act] = true
			fired = append(fired, act)
		}
		im.currentState[act] = pressed
	}
	return fired
}

// Tap presses and releases key, returning the fired actions.
func (im *InputManager) Tap(key string) []Action {
	fired := im.HandleKeyEvent(key, true)
	im.HandleKeyEvent(key, false)
	return fired
}

// PostUpdate must be called at the end of each tick to reset edge flags
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()

	for i := range ActionCount {
		im.justPressed[i] = false
	}
}

// IsActive returns true if the action is currently being held down
func (im *InputManager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.currentState[action]
}

// JustPressed returns true only if the action was pressed in the current tick
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justPressed[action]
}
