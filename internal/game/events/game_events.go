package events

import (
	"time"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted           = "game.started"
	TypeGameEnded             = "game.ended"
	TypeActionConsumed        = "action.consumed"
	TypeActionRejected        = "action.rejected"
	TypeTurnEnded             = "turn.ended"
	TypeRoundEnded            = "round.ended"
	TypeReinforcementsApplied = "reinforcements.applied"
	TypeMoveExecuted          = "move.executed"
	TypeCombatResolved        = "combat.resolved"
	TypeTilesChanged          = "tiles.changed"
	TypeTileSelected          = "tile.selected"
	TypePlayerEliminated      = "player.eliminated"
	TypeStateTransition       = "state.transition"
)

func newBase(eventType, gameID string, round int) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Game:      gameID,
		RoundNum:  round,
	}
}

// GameStartedEvent is published when a session begins play
type GameStartedEvent struct {
	BaseEvent
	NumPlayers int
	TileCount  int
	Source     string // "new", "map" or "autosave"
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, numPlayers, tileCount int, source string) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent:  newBase(TypeGameStarted, gameID, 0),
		NumPlayers: numPlayers,
		TileCount:  tileCount,
		Source:     source,
	}
}

// GameEndedEvent is published when the game reaches GameOver
type GameEndedEvent struct {
	BaseEvent
	Winner     int
	FinalRound int
	Reason     string
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, winner, finalRound int, reason string) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent:  newBase(TypeGameEnded, gameID, finalRound),
		Winner:     winner,
		FinalRound: finalRound,
		Reason:     reason,
	}
}

// ActionConsumedEvent is published after an action has been counted, once any
// turn or round boundary it triggered has completed
type ActionConsumedEvent struct {
	BaseEvent
	PlayerID         int
	ActionsTaken     int
	ActionsRemaining int
}

// NewActionConsumedEvent creates a new ActionConsumedEvent
func NewActionConsumedEvent(gameID string, playerID, taken, remaining, round int) *ActionConsumedEvent {
	return &ActionConsumedEvent{
		BaseEvent:        newBase(TypeActionConsumed, gameID, round),
		PlayerID:         playerID,
		ActionsTaken:     taken,
		ActionsRemaining: remaining,
	}
}

// ActionRejectedEvent is published when a command is refused
type ActionRejectedEvent struct {
	BaseEvent
	PlayerID int
	Action   string
	Reason   string
}

// NewActionRejectedEvent creates a new ActionRejectedEvent
func NewActionRejectedEvent(gameID string, playerID int, action string, err error, round int) *ActionRejectedEvent {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return &ActionRejectedEvent{
		BaseEvent: newBase(TypeActionRejected, gameID, round),
		PlayerID:  playerID,
		Action:    action,
		Reason:    reason,
	}
}

// TurnEndedEvent is published when a player's turn ends
type TurnEndedEvent struct {
	BaseEvent
	PlayerID   int
	NextPlayer int
	TurnsTaken int
}

// NewTurnEndedEvent creates a new TurnEndedEvent
func NewTurnEndedEvent(gameID string, playerID, nextPlayer, turnsTaken, round int) *TurnEndedEvent {
	return &TurnEndedEvent{
		BaseEvent:  newBase(TypeTurnEnded, gameID, round),
		PlayerID:   playerID,
		NextPlayer: nextPlayer,
		TurnsTaken: turnsTaken,
	}
}

// RoundEndedEvent is published after reinforcements of a round are committed
type RoundEndedEvent struct {
	BaseEvent
	CompletedRound int
	NextRound      int
}

// NewRoundEndedEvent creates a new RoundEndedEvent
func NewRoundEndedEvent(gameID string, completed, next int) *RoundEndedEvent {
	return &RoundEndedEvent{
		BaseEvent:      newBase(TypeRoundEnded, gameID, completed),
		CompletedRound: completed,
		NextRound:      next,
	}
}

// ReinforcementsAppliedEvent is published once per player when reinforcements land
type ReinforcementsAppliedEvent struct {
	BaseEvent
	PlayerID    int
	TileCount   int
	ArmiesAdded int
}

// NewReinforcementsAppliedEvent creates a new ReinforcementsAppliedEvent
func NewReinforcementsAppliedEvent(gameID string, playerID, tiles, added, round int) *ReinforcementsAppliedEvent {
	return &ReinforcementsAppliedEvent{
		BaseEvent:   newBase(TypeReinforcementsApplied, gameID, round),
		PlayerID:    playerID,
		TileCount:   tiles,
		ArmiesAdded: added,
	}
}

// MoveExecutedEvent is published when a movement has been applied
type MoveExecutedEvent struct {
	BaseEvent
	PlayerID int
	From     core.Coordinate
	To       core.Coordinate
	Path     []int
	Credit   int
}

// NewMoveExecutedEvent creates a new MoveExecutedEvent
func NewMoveExecutedEvent(gameID string, plan core.MovementPlan, round int) *MoveExecutedEvent {
	return &MoveExecutedEvent{
		BaseEvent: newBase(TypeMoveExecuted, gameID, round),
		PlayerID:  plan.PlayerID,
		From:      plan.From,
		To:        plan.To,
		Path:      append([]int(nil), plan.Path...),
		Credit:    plan.Credit,
	}
}

// CombatResolvedEvent is published when an attack has been resolved
type CombatResolvedEvent struct {
	BaseEvent
	AttackerID int
	DefenderID int
	From       core.Coordinate
	To         core.Coordinate
	AttackSum  int
	DefendSum  int
	WinnerID   int
	ResultArmy int
	Tie        bool
}

// NewCombatResolvedEvent creates a new CombatResolvedEvent
func NewCombatResolvedEvent(gameID string, from, to core.Coordinate, res core.CombatResult, round int) *CombatResolvedEvent {
	return &CombatResolvedEvent{
		BaseEvent:  newBase(TypeCombatResolved, gameID, round),
		AttackerID: res.Attacker,
		DefenderID: res.Defender,
		From:       from,
		To:         to,
		AttackSum:  res.Outcome.AttackSum,
		DefendSum:  res.Outcome.DefendSum,
		WinnerID:   res.Winner,
		ResultArmy: res.ResultArmy,
		Tie:        res.Tie,
	}
}

// TileChange is the new state of one tile
type TileChange struct {
	Index int
	Coord core.Coordinate
	Owner core.Owner
	Army  int
}

// TilesChangedEvent carries ownership and army changes for the rendering side
type TilesChangedEvent struct {
	BaseEvent
	Changes []TileChange
	Cause   string
}

// NewTilesChangedEvent creates a new TilesChangedEvent
func NewTilesChangedEvent(gameID, cause string, changes []TileChange) *TilesChangedEvent {
	return &TilesChangedEvent{
		BaseEvent: newBase(TypeTilesChanged, gameID, 0),
		Changes:   changes,
		Cause:     cause,
	}
}

// TileSelectedEvent is published when the UI selection changes
type TileSelectedEvent struct {
	BaseEvent
	PlayerID     int
	Index        int // -1 when the selection was cleared
	MovementMode bool
}

// NewTileSelectedEvent creates a new TileSelectedEvent
func NewTileSelectedEvent(gameID string, playerID, index int, movementMode bool) *TileSelectedEvent {
	return &TileSelectedEvent{
		BaseEvent:    newBase(TypeTileSelected, gameID, 0),
		PlayerID:     playerID,
		Index:        index,
		MovementMode: movementMode,
	}
}

// PlayerEliminatedEvent is published when a player loses their last tile
type PlayerEliminatedEvent struct {
	BaseEvent
	PlayerID     int
	EliminatedBy int
}

// NewPlayerEliminatedEvent creates a new PlayerEliminatedEvent
func NewPlayerEliminatedEvent(gameID string, playerID, eliminatedBy, round int) *PlayerEliminatedEvent {
	return &PlayerEliminatedEvent{
		BaseEvent:    newBase(TypePlayerEliminated, gameID, round),
		PlayerID:     playerID,
		EliminatedBy: eliminatedBy,
	}
}

// StateTransitionEvent is published when the game phase changes
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID, 0),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
