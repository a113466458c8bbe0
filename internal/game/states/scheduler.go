package states

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/common"
	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/events"
)

// ErrNotAcceptingActions is returned when the scheduler is asked to count an
// action outside PhasePlayerActing
var ErrNotAcceptingActions = core.WithKind(core.KindPreconditionFailed, errors.New("phase does not accept actions"))

// TurnState holds the counters of the scheduler. ActionsTaken and TurnsTaken
// reset at their own boundary; RoundNumber starts at 1.
type TurnState struct {
	ActivePlayer int
	ActionsTaken int
	TurnsTaken   int
	RoundNumber  int
}

// NewTurnState returns the state at the start of a game
func NewTurnState() TurnState {
	return TurnState{ActivePlayer: 1, RoundNumber: 1}
}

// Reinforcer applies the end-of-round army growth. It must have committed
// every change when it returns.
type Reinforcer interface {
	ApplyReinforcements(round int) error
}

// SchedulerConfig wires a TurnScheduler
type SchedulerConfig struct {
	GameID     string
	Rules      core.Rules
	Bus        events.Publisher // optional
	Reinforcer Reinforcer       // optional
	// Judge picks the winner when the round cap ends the game. Optional.
	Judge  func() int
	Logger zerolog.Logger
}

// TurnScheduler drives the action, turn and round counters and the phase
// state machine. It is not safe for concurrent use; the owning session
// serialises calls.
type TurnScheduler struct {
	gameID     string
	rules      core.Rules
	state      TurnState
	machine    *StateMachine
	ctx        *GameContext
	bus        events.Publisher
	reinforcer Reinforcer
	judge      func() int
	logger     zerolog.Logger
}

// NewTurnScheduler creates a scheduler in PhaseSetup
func NewTurnScheduler(cfg SchedulerConfig) (*TurnScheduler, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger.With().Str("component", "turn_scheduler").Logger()
	ctx := NewGameContext(cfg.GameID, cfg.Rules.PlayerCount, logger)
	return &TurnScheduler{
		gameID:     cfg.GameID,
		rules:      cfg.Rules,
		state:      NewTurnState(),
		machine:    NewStateMachine(ctx, cfg.Bus),
		ctx:        ctx,
		bus:        cfg.Bus,
		reinforcer: cfg.Reinforcer,
		judge:      cfg.Judge,
		logger:     logger,
	}, nil
}

// Rules returns the rules the scheduler runs under
func (s *TurnScheduler) Rules() core.Rules { return s.rules }

// State returns a copy of the counters
func (s *TurnScheduler) State() TurnState { return s.state }

// Phase returns the current phase
func (s *TurnScheduler) Phase() GamePhase { return s.machine.CurrentPhase() }

// Machine exposes the underlying phase state machine
func (s *TurnScheduler) Machine() *StateMachine { return s.machine }

// Winner returns the winner once the game is over, 0 otherwise
func (s *TurnScheduler) Winner() int { return s.ctx.Winner }

// EndReason returns why the game ended, empty while it is running
func (s *TurnScheduler) EndReason() string { return s.ctx.EndReason }

// ActionsRemaining is ActionsPerTurn - ActionsTaken
func (s *TurnScheduler) ActionsRemaining() int {
	return s.rules.ActionsPerTurn - s.state.ActionsTaken
}

// TurnsRemaining is TurnsPerRound*PlayerCount - TurnsTaken
func (s *TurnScheduler) TurnsRemaining() int {
	return s.rules.TurnsPerRoundTotal() - s.state.TurnsTaken
}

// RoundsRemaining counts the current round and those after it, or -1 when
// the game has no round cap
func (s *TurnScheduler) RoundsRemaining() int {
	if s.rules.RoundsPerGame == 0 {
		return -1
	}
	r := s.rules.RoundsPerGame - s.state.RoundNumber + 1
	if r < 0 {
		return 0
	}
	return r
}

// Restore replaces the counters with a saved state. Only allowed before Start.
func (s *TurnScheduler) Restore(ts TurnState) error {
	if phase := s.Phase(); phase != PhaseSetup {
		return fmt.Errorf("cannot restore turn state in %s phase", phase)
	}
	switch {
	case !common.IsValidPlayerID(ts.ActivePlayer, s.rules.PlayerCount):
		return fmt.Errorf("active player %d outside 1..%d: %w", ts.ActivePlayer, s.rules.PlayerCount, core.ErrInvalidPlayer)
	case ts.ActionsTaken < 0 || ts.ActionsTaken >= s.rules.ActionsPerTurn:
		return fmt.Errorf("actions taken %d outside 0..%d", ts.ActionsTaken, s.rules.ActionsPerTurn-1)
	case ts.TurnsTaken < 0 || ts.TurnsTaken >= s.rules.TurnsPerRoundTotal():
		return fmt.Errorf("turns taken %d outside 0..%d", ts.TurnsTaken, s.rules.TurnsPerRoundTotal()-1)
	case ts.RoundNumber < 1:
		return fmt.Errorf("round number %d must be at least 1", ts.RoundNumber)
	}
	s.state = ts
	s.ctx.Round = ts.RoundNumber
	return nil
}

// Start moves from Setup into PlayerActing. A restored state that is already
// past the round cap goes straight to GameOver.
func (s *TurnScheduler) Start() error {
	if s.rules.RoundsPerGame > 0 && s.state.RoundNumber > s.rules.RoundsPerGame {
		return s.EndGame(s.pickWinner(), "round limit reached")
	}
	return s.machine.TransitionTo(PhasePlayerActing, "game started")
}

// ConsumeAction counts one action of the active player. When the turn's
// budget is spent it ends the turn, which may end the round.
func (s *TurnScheduler) ConsumeAction() error {
	if err := s.checkActing(); err != nil {
		return err
	}
	player := s.state.ActivePlayer
	s.state.ActionsTaken++
	taken := s.state.ActionsTaken
	remaining := s.ActionsRemaining()

	s.logger.Debug().
		Int("player_id", player).
		Int("actions_taken", taken).
		Int("actions_remaining", remaining).
		Msg("Action consumed")

	if remaining <= 0 {
		if err := s.EndTurn(); err != nil {
			return err
		}
	}

	s.publish(events.NewActionConsumedEvent(s.gameID, player, taken, max(remaining, 0), s.state.RoundNumber))
	return nil
}

// EndTurn finishes the active player's turn. The action counter resets; the
// next player becomes active, or the round ends when every turn of the round
// has been played.
func (s *TurnScheduler) EndTurn() error {
	if err := s.checkActing(); err != nil {
		return err
	}
	player := s.state.ActivePlayer
	s.state.ActionsTaken = 0
	s.state.TurnsTaken++
	turnsTaken := s.state.TurnsTaken

	if s.TurnsRemaining() <= 0 {
		s.state.TurnsTaken = 0
		if err := s.EndRound(); err != nil {
			return err
		}
	} else {
		s.state.ActivePlayer = player%s.rules.PlayerCount + 1
	}

	s.logger.Debug().
		Int("player_id", player).
		Int("next_player", s.state.ActivePlayer).
		Int("turns_taken", turnsTaken).
		Msg("Turn ended")

	s.publish(events.NewTurnEndedEvent(s.gameID, player, s.state.ActivePlayer, turnsTaken, s.state.RoundNumber))
	return nil
}

// EndRound applies reinforcements for every player, advances the round
// number and hands the turn to player 1. Every reinforcement has been
// committed when EndRound returns. The game ends here when the round cap is
// reached.
func (s *TurnScheduler) EndRound() error {
	if err := s.checkActing(); err != nil {
		return err
	}
	completed := s.state.RoundNumber
	if err := s.machine.TransitionTo(PhaseRoundEnd, "round complete"); err != nil {
		return core.WrapGameStateError(completed, PhasePlayerActing.String(), err)
	}

	if s.reinforcer != nil {
		if err := s.reinforcer.ApplyReinforcements(completed); err != nil {
			s.logger.Error().Err(err).Int("round", completed).Msg("Reinforcement failed")
		}
	}

	s.state.RoundNumber++
	s.state.ActivePlayer = 1
	s.state.ActionsTaken = 0
	s.state.TurnsTaken = 0
	s.ctx.Round = s.state.RoundNumber

	s.logger.Info().
		Int("completed_round", completed).
		Int("next_round", s.state.RoundNumber).
		Msg("Round ended")
	s.publish(events.NewRoundEndedEvent(s.gameID, completed, s.state.RoundNumber))

	if s.rules.RoundsPerGame > 0 && completed >= s.rules.RoundsPerGame {
		return s.EndGame(s.pickWinner(), "round limit reached")
	}
	if err := s.machine.TransitionTo(PhasePlayerActing, "next round"); err != nil {
		return core.WrapGameStateError(s.state.RoundNumber, PhaseRoundEnd.String(), err)
	}
	return nil
}

// EndGame moves the scheduler to GameOver with the given winner (0 for none)
func (s *TurnScheduler) EndGame(winner int, reason string) error {
	if s.Phase().IsTerminal() {
		return core.WrapGameStateError(s.state.RoundNumber, PhaseGameOver.String(), core.ErrGameOver)
	}
	s.ctx.Winner = winner
	s.ctx.EndReason = reason
	if err := s.machine.TransitionTo(PhaseGameOver, reason); err != nil {
		return core.WrapGameStateError(s.state.RoundNumber, s.Phase().String(), err)
	}
	s.publish(events.NewGameEndedEvent(s.gameID, winner, s.state.RoundNumber, reason))
	return nil
}

// Reset returns the scheduler to Setup with fresh counters
func (s *TurnScheduler) Reset() error {
	if err := s.machine.Reset(); err != nil {
		return err
	}
	s.state = NewTurnState()
	return nil
}

func (s *TurnScheduler) checkActing() error {
	phase := s.Phase()
	if phase.IsTerminal() {
		return core.WrapGameStateError(s.state.RoundNumber, phase.String(), core.ErrGameOver)
	}
	if !phase.CanReceiveActions() {
		return core.WrapGameStateError(s.state.RoundNumber, phase.String(), ErrNotAcceptingActions)
	}
	return nil
}

func (s *TurnScheduler) pickWinner() int {
	if s.judge == nil {
		return 0
	}
	return s.judge()
}

func (s *TurnScheduler) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
