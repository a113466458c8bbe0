package game

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/events"
)

// ReinforcementManager grows the armies of every owned tile at the end of a
// round
type ReinforcementManager struct {
	board  *core.Board
	rules  core.Rules
	bus    events.Publisher
	gameID string
	logger zerolog.Logger
}

// NewReinforcementManager creates a new reinforcement manager. bus may be nil.
func NewReinforcementManager(board *core.Board, rules core.Rules, bus events.Publisher, gameID string, logger zerolog.Logger) *ReinforcementManager {
	return &ReinforcementManager{
		board:  board,
		rules:  rules,
		bus:    bus,
		gameID: gameID,
		logger: logger.With().Str("component", "reinforcement_manager").Logger(),
	}
}

// ApplyReinforcements adds ReinforcementsPerTurn to every tile owned by
// players 1..PlayerCount, in ascending player order, clamped by the board's
// army cap. Every change is written before it returns.
func (rm *ReinforcementManager) ApplyReinforcements(round int) error {
	per := rm.rules.ReinforcementsPerTurn
	rm.logger.Debug().
		Int("round", round).
		Int("per_tile", per).
		Msg("Applying reinforcements")
	if per == 0 {
		return nil
	}

	var changed []int
	total := 0
	for pid := 1; pid <= rm.rules.PlayerCount; pid++ {
		tiles := rm.board.PlayerTiles(pid)
		if len(tiles) == 0 {
			continue
		}
		added := 0
		for _, idx := range tiles {
			before := rm.board.Army(idx)
			rm.board.AddArmy(idx, per)
			if gained := rm.board.Army(idx) - before; gained > 0 {
				added += gained
				changed = append(changed, idx)
			}
		}
		total += added

		rm.logger.Debug().
			Int("player_id", pid).
			Int("tiles", len(tiles)).
			Int("armies_added", added).
			Msg("Player reinforced")
		rm.publish(events.NewReinforcementsAppliedEvent(rm.gameID, pid, len(tiles), added, round))
	}

	if len(changed) > 0 {
		rm.publish(events.NewTilesChangedEvent(rm.gameID, "reinforcements", tileChanges(rm.board, changed)))
	}
	rm.logger.Info().
		Int("round", round).
		Int("total_added", total).
		Msg("Reinforcements applied")
	return nil
}

func (rm *ReinforcementManager) publish(e events.Event) {
	if rm.bus != nil {
		rm.bus.Publish(e)
	}
}
