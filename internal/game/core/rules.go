package core

import (
	"fmt"

	"github.com/mitchelldurbincs/hexwar/internal/common"
)

// Rules are the per-session game settings. They do not change once a
// session has started.
type Rules struct {
	ActionsPerTurn        int
	TurnsPerRound         int
	RoundsPerGame         int // 0 = unbounded
	ReinforcementsPerTurn int
	PlayerCount           int
	MaxArmyStrength       int // 0 = unbounded
}

// DefaultRules returns the standard settings
func DefaultRules() Rules {
	return Rules{
		ActionsPerTurn:        3,
		TurnsPerRound:         1,
		RoundsPerGame:         0,
		ReinforcementsPerTurn: 1,
		PlayerCount:           2,
		MaxArmyStrength:       10,
	}
}

// Validate checks the rules and wraps ErrInvalidRules on failure
func (r Rules) Validate() error {
	switch {
	case !common.IsValidPlayerCount(r.PlayerCount):
		return fmt.Errorf("player count %d outside 1..%d: %w", r.PlayerCount, common.MaxPlayerCount, ErrInvalidRules)
	case r.ActionsPerTurn < 1:
		return fmt.Errorf("actions per turn must be at least 1, got %d: %w", r.ActionsPerTurn, ErrInvalidRules)
	case r.TurnsPerRound < 1:
		return fmt.Errorf("turns per round must be at least 1, got %d: %w", r.TurnsPerRound, ErrInvalidRules)
	case r.RoundsPerGame < 0:
		return fmt.Errorf("rounds per game must not be negative, got %d: %w", r.RoundsPerGame, ErrInvalidRules)
	case r.ReinforcementsPerTurn < 0:
		return fmt.Errorf("reinforcements per turn must not be negative, got %d: %w", r.ReinforcementsPerTurn, ErrInvalidRules)
	case r.MaxArmyStrength < 0:
		return fmt.Errorf("max army strength must not be negative, got %d: %w", r.MaxArmyStrength, ErrInvalidRules)
	}
	return nil
}

// TurnsPerRoundTotal is the number of turns in one round across all players
func (r Rules) TurnsPerRoundTotal() int {
	return r.TurnsPerRound * r.PlayerCount
}
