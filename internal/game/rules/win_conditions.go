package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger      zerolog.Logger
	playerCount int
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger, playerCount int) *WinConditionChecker {
	return &WinConditionChecker{
		logger:      logger.With().Str("component", "WinConditionChecker").Logger(),
		playerCount: playerCount,
	}
}

// CheckGameOver determines if the game is over based on which players still
// own tiles. Returns (isGameOver, winnerID); winnerID is 0 when nobody wins.
func (wc *WinConditionChecker) CheckGameOver(b *core.Board) (bool, int) {
	alive := wc.AlivePlayers(b)

	// A solo game only ends when the player has nothing left
	var gameOver bool
	if wc.playerCount > 1 {
		gameOver = len(alive) <= 1
	} else {
		gameOver = len(alive) == 0
	}

	winnerID := 0
	if gameOver && len(alive) == 1 {
		winnerID = alive[0]
		wc.logger.Info().Int("winner_player_id", winnerID).Msg("Winner determined")
	} else if gameOver {
		wc.logger.Info().Msg("No winner found, every player was eliminated")
	}

	wc.logger.Debug().
		Bool("is_game_over", gameOver).
		Ints("alive_player_ids", alive).
		Msg("Game over check complete")
	return gameOver, winnerID
}

// AlivePlayers returns the ids in 1..playerCount that own at least one tile
func (wc *WinConditionChecker) AlivePlayers(b *core.Board) []int {
	alive := make([]int, 0, wc.playerCount)
	for id := 1; id <= wc.playerCount; id++ {
		if b.PlayerTileCount(id) > 0 {
			alive = append(alive, id)
		}
	}
	return alive
}

// Leader picks the winner when the round cap ends the game: most tiles, then
// most total army, then the lowest id. Returns 0 if no player owns a tile.
func (wc *WinConditionChecker) Leader(b *core.Board) int {
	leader, bestTiles, bestArmy := 0, 0, 0
	for id := 1; id <= wc.playerCount; id++ {
		tiles := b.PlayerTileCount(id)
		if tiles == 0 {
			continue
		}
		army := b.PlayerArmy(id)
		if tiles > bestTiles || (tiles == bestTiles && army > bestArmy) {
			leader, bestTiles, bestArmy = id, tiles, army
		}
	}
	wc.logger.Debug().
		Int("leader", leader).
		Int("tiles", bestTiles).
		Int("army", bestArmy).
		Msg("Round cap leader")
	return leader
}

// Eliminated returns the players in before that no longer own any tile
func (wc *WinConditionChecker) Eliminated(b *core.Board, before []int) []int {
	var out []int
	for _, id := range before {
		if b.PlayerTileCount(id) == 0 {
			out = append(out, id)
		}
	}
	return out
}
