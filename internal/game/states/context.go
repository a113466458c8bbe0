package states

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/common"
)

// GameContext provides game-specific information to states for making decisions
type GameContext struct {
	// GameID uniquely identifies this session
	GameID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// PlayerCount is the number of players in the game
	PlayerCount int

	// StartTime is when PhasePlayerActing was first entered
	StartTime time.Time

	// Round is the round number the scheduler is in
	Round int

	// Winner is the player ID of the winner, 0 while undecided
	Winner int

	// EndReason describes why the game ended
	EndReason string
}

// NewGameContext creates a new game context
func NewGameContext(gameID string, playerCount int, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID:      gameID,
		PlayerCount: playerCount,
		Logger:      logger.With().Str("game_id", gameID).Logger(),
		Round:       1,
	}
}

// IsReady returns true if the game has a valid number of players
func (gc *GameContext) IsReady() bool {
	return common.IsValidPlayerCount(gc.PlayerCount)
}

// GetElapsedTime returns the time elapsed since play started
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	return time.Since(gc.StartTime)
}
