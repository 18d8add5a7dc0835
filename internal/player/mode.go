package player

import "fmt"

// GameMode selects whether edits are unlimited or draw on the inventory.
type GameMode int

const (
	GameModeSurvival GameMode = iota // resource-limited
	GameModeCreative                 // unlimited
)

func (m GameMode) String() string {
	switch m {
	case GameModeSurvival:
		return "survival"
	case GameModeCreative:
		return "creative"
	default:
		return fmt.Sprintf("GameMode(%d)", int(m))
	}
}

// Toggle returns the other mode.
func (m GameMode) Toggle() GameMode {
	if m == GameModeCreative {
		return GameModeSurvival
	}
	return GameModeCreative
}

// ParseGameMode accepts "creative" or "survival".
func ParseGameMode(s string) (GameMode, error) {
	switch s {
	case "creative":
		return GameModeCreative, nil
	case "survival":
		return GameModeSurvival, nil
	}
	return GameModeCreative, fmt.Errorf("unknown game mode %q", s)
}
