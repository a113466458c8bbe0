package processor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/dice"
)

// Result describes what one processed action did to the board
type Result struct {
	Action core.Action
	Move   *core.MovementPlan // set for moves
	Combat *core.CombatResult // set for attacks
	// Changed lists the tile indices whose owner or army changed, in the
	// order they were written
	Changed []int
}

// ActionProcessor validates a single player action against the board and
// applies it. Rejected actions leave the board untouched.
type ActionProcessor struct {
	logger zerolog.Logger
}

// NewActionProcessor creates a new action processor
func NewActionProcessor(logger zerolog.Logger) *ActionProcessor {
	return &ActionProcessor{
		logger: logger.With().Str("component", "action_processor").Logger(),
	}
}

// Process applies action for activePlayer. Attacks roll through roller; a nil
// roller rejects every attack with core.ErrDiceUnavailable. The roll is the
// only blocking step and ctx is passed to it unchanged.
func (ap *ActionProcessor) Process(ctx context.Context, b *core.Board, action core.Action, activePlayer int, roller dice.Roller) (Result, error) {
	if action == nil {
		return Result{}, core.WrapActionError(nil, core.ErrInvalidPlayer)
	}
	if action.GetPlayerID() != activePlayer {
		err := core.WrapActionError(action, core.ErrInvalidPlayer)
		ap.logger.Warn().Err(err).Int("active_player", activePlayer).Msg("Action from inactive player")
		return Result{}, err
	}

	switch act := action.(type) {
	case *core.MoveAction:
		return ap.processMove(b, act)
	case *core.AttackAction:
		return ap.processAttack(ctx, b, act, roller)
	default:
		return Result{}, fmt.Errorf("unsupported action type %T", action)
	}
}

func (ap *ActionProcessor) processMove(b *core.Board, act *core.MoveAction) (Result, error) {
	plan, err := core.ExecuteMovement(b, act.From, act.To, act.PlayerID)
	if err != nil {
		wrapped := core.WrapActionError(act, err)
		ap.logger.Warn().Err(wrapped).Int("player_id", act.PlayerID).Msg("Move rejected")
		return Result{}, wrapped
	}

	ap.logger.Debug().
		Int("player_id", act.PlayerID).
		Str("from", act.From.String()).
		Str("to", act.To.String()).
		Ints("path", plan.Path).
		Int("credit", plan.Credit).
		Msg("Move applied")

	return Result{
		Action:  act,
		Move:    &plan,
		Changed: append([]int(nil), plan.Path...),
	}, nil
}

func (ap *ActionProcessor) processAttack(ctx context.Context, b *core.Board, act *core.AttackAction, roller dice.Roller) (Result, error) {
	src, dst, err := core.ValidateAttack(b, act.From, act.To, act.PlayerID)
	if err != nil {
		wrapped := core.WrapActionError(act, err)
		ap.logger.Warn().Err(wrapped).Int("player_id", act.PlayerID).Msg("Attack rejected")
		return Result{}, wrapped
	}
	if roller == nil {
		return Result{}, core.WrapActionError(act, core.ErrDiceUnavailable)
	}

	outcome, err := roller.Roll(ctx, src.Army, dst.Army)
	if err != nil {
		wrapped := core.WrapActionError(act, fmt.Errorf("%w: %w", core.ErrDiceUnavailable, err))
		ap.logger.Error().Err(wrapped).Int("player_id", act.PlayerID).Msg("Dice roll failed, attack aborted")
		return Result{}, wrapped
	}

	res, err := core.ResolveCombat(b, act.From, act.To, act.PlayerID, outcome)
	if err != nil {
		return Result{}, core.WrapActionError(act, err)
	}

	ap.logger.Debug().
		Int("attacker_id", res.Attacker).
		Int("defender_id", res.Defender).
		Int("attack_sum", outcome.AttackSum).
		Int("defend_sum", outcome.DefendSum).
		Int("winner_id", res.Winner).
		Int("result_army", res.ResultArmy).
		Msg("Combat resolved")

	return Result{
		Action:  act,
		Combat:  &res,
		Changed: []int{res.FromIndex, res.ToIndex},
	}, nil
}
