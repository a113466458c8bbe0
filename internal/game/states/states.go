package states

import (
	"fmt"
	"time"
)

// SetupState represents board and turn state creation
type SetupState struct{}

func NewSetupState() State {
	return &SetupState{}
}

func (s *SetupState) Phase() GamePhase {
	return PhaseSetup
}

func (s *SetupState) Enter(ctx *GameContext) error {
	ctx.Logger.Debug().Msg("Entering Setup state")
	return nil
}

func (s *SetupState) Exit(ctx *GameContext) error {
	ctx.Logger.Debug().
		Int("player_count", ctx.PlayerCount).
		Msg("Setup complete")
	return nil
}

func (s *SetupState) Validate(ctx *GameContext) error {
	return nil
}

// PlayerActingState represents a player spending actions
type PlayerActingState struct{}

func NewPlayerActingState() State {
	return &PlayerActingState{}
}

func (s *PlayerActingState) Phase() GamePhase {
	return PhasePlayerActing
}

func (s *PlayerActingState) Enter(ctx *GameContext) error {
	if ctx.StartTime.IsZero() {
		ctx.StartTime = time.Now()
		ctx.Logger.Info().
			Time("start_time", ctx.StartTime).
			Msg("Game started")
	}
	ctx.Logger.Debug().Int("round", ctx.Round).Msg("Players acting")
	return nil
}

func (s *PlayerActingState) Exit(ctx *GameContext) error {
	return nil
}

func (s *PlayerActingState) Validate(ctx *GameContext) error {
	if !ctx.IsReady() {
		return fmt.Errorf("cannot start play with %d players", ctx.PlayerCount)
	}
	return nil
}

// RoundEndState represents reinforcement distribution between rounds
type RoundEndState struct{}

func NewRoundEndState() State {
	return &RoundEndState{}
}

func (s *RoundEndState) Phase() GamePhase {
	return PhaseRoundEnd
}

func (s *RoundEndState) Enter(ctx *GameContext) error {
	ctx.Logger.Debug().Int("round", ctx.Round).Msg("Round ending")
	return nil
}

func (s *RoundEndState) Exit(ctx *GameContext) error {
	return nil
}

func (s *RoundEndState) Validate(ctx *GameContext) error {
	return nil
}

// GameOverState represents a finished game
type GameOverState struct{}

func NewGameOverState() State {
	return &GameOverState{}
}

func (s *GameOverState) Phase() GamePhase {
	return PhaseGameOver
}

func (s *GameOverState) Enter(ctx *GameContext) error {
	ctx.Logger.Info().
		Int("winner", ctx.Winner).
		Int("round", ctx.Round).
		Str("reason", ctx.EndReason).
		Dur("game_duration", ctx.GetElapsedTime()).
		Msg("Game over")
	return nil
}

func (s *GameOverState) Exit(ctx *GameContext) error {
	ctx.Logger.Debug().Msg("Leaving game over state")
	return nil
}

func (s *GameOverState) Validate(ctx *GameContext) error {
	if ctx.EndReason == "" {
		return fmt.Errorf("game over requires an end reason")
	}
	return nil
}

// ResetState represents tearing a session down for a new game
type ResetState struct{}

func NewResetState() State {
	return &ResetState{}
}

func (s *ResetState) Phase() GamePhase {
	return PhaseReset
}

func (s *ResetState) Enter(ctx *GameContext) error {
	ctx.Logger.Info().Msg("Resetting game")

	ctx.StartTime = time.Time{}
	ctx.Winner = 0
	ctx.EndReason = ""
	ctx.Round = 1
	return nil
}

func (s *ResetState) Exit(ctx *GameContext) error {
	ctx.Logger.Debug().Msg("Game reset complete")
	return nil
}

func (s *ResetState) Validate(ctx *GameContext) error {
	return nil
}
