package game

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

// PlayRandomAction executes a random legal action for the active player, or
// ends the turn when the player has nothing to do. attackBias in [0, 1] is
// the chance of preferring an attack when one is available.
func PlayRandomAction(ctx context.Context, s *Session, rng *rand.Rand, attackBias float64, logger zerolog.Logger) error {
	actions := s.LegalActions()
	if len(actions) == 0 {
		logger.Debug().Int("player_id", s.TurnState().ActivePlayer).Msg("No legal action, ending turn")
		return s.EndTurnNow()
	}

	var attacks []core.Action
	for _, a := range actions {
		if a.GetType() == core.ActionAttack {
			attacks = append(attacks, a)
		}
	}
	pool := actions
	if len(attacks) > 0 && rng.Float64() < attackBias {
		pool = attacks
	}
	chosen := pool[rng.Intn(len(pool))]

	switch a := chosen.(type) {
	case *core.MoveAction:
		logger.Debug().
			Int("player_id", a.PlayerID).
			Str("from", a.From.String()).
			Str("to", a.To.String()).
			Msg("Generated random move")
		return s.RequestMove(ctx, a.From, a.To)
	case *core.AttackAction:
		logger.Debug().
			Int("player_id", a.PlayerID).
			Str("from", a.From.String()).
			Str("to", a.To.String()).
			Msg("Generated random attack")
		return s.RequestAttack(ctx, a.From, a.To)
	}
	return nil
}
