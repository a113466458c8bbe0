package core

import (
	"errors"
	"fmt"
)

var (
	ErrTileNotFound     = errors.New("tile not found")
	ErrNotAdjacent      = errors.New("tiles are not adjacent")
	ErrNotOwned         = errors.New("tile not owned by player")
	ErrInsufficientArmy = errors.New("insufficient army to move")
	ErrMoveToSelf       = errors.New("cannot move to the same tile")
	ErrNotReachable     = errors.New("no path to target")
	ErrTargetHostile    = errors.New("target tile is hostile")
	ErrTargetNotEnemy   = errors.New("target tile is not an enemy")
	ErrDiceUnavailable  = errors.New("dice unavailable")
	ErrGameOver         = errors.New("game is over")
	ErrInvalidPlayer    = errors.New("invalid player ID")
	ErrInvalidRules     = errors.New("invalid rules")
)

// Kind classifies an error for callers that only need to know what went wrong
// in broad terms
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidOperation
	KindPreconditionFailed
	KindPersistenceUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindPersistenceUnavailable:
		return "persistence_unavailable"
	default:
		return "unknown"
	}
}

// KindError attaches a Kind to an error. Packages outside core (persistence)
// use it for their own sentinels.
type KindError struct {
	Kind Kind
	Err  error
}

func (e *KindError) Error() string { return e.Err.Error() }
func (e *KindError) Unwrap() error { return e.Err }

// WithKind tags err with k
func WithKind(k Kind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: k, Err: err}
}

var sentinelKinds = []struct {
	err  error
	kind Kind
}{
	{ErrTileNotFound, KindNotFound},
	{ErrNotAdjacent, KindInvalidOperation},
	{ErrNotOwned, KindInvalidOperation},
	{ErrInsufficientArmy, KindInvalidOperation},
	{ErrMoveToSelf, KindInvalidOperation},
	{ErrNotReachable, KindInvalidOperation},
	{ErrTargetHostile, KindInvalidOperation},
	{ErrTargetNotEnemy, KindInvalidOperation},
	{ErrInvalidPlayer, KindInvalidOperation},
	{ErrInvalidRules, KindInvalidOperation},
	{ErrGameOver, KindPreconditionFailed},
	{ErrDiceUnavailable, KindPreconditionFailed},
}

// KindOf reports the Kind of err, looking through wrapping
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	for _, s := range sentinelKinds {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindUnknown
}

// WrapActionError adds the acting player and the tiles involved to err
func WrapActionError(action Action, err error) error {
	if err == nil {
		return nil
	}
	switch a := action.(type) {
	case *MoveAction:
		return fmt.Errorf("player %d: move from %s to %s: %w", a.PlayerID, a.From, a.To, err)
	case *AttackAction:
		return fmt.Errorf("player %d: attack from %s to %s: %w", a.PlayerID, a.From, a.To, err)
	default:
		return fmt.Errorf("player action: %w", err)
	}
}

// WrapGameStateError adds the round and the phase name to err
func WrapGameStateError(round int, phase string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("game round %d [%s]: %w", round, phase, err)
}

// WrapPlayerError adds the player id and operation to err
func WrapPlayerError(playerID int, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("player %d %s: %w", playerID, operation, err)
}

// GameError carries the round, player and operation a failure happened in
type GameError struct {
	Round     int
	PlayerID  int
	Operation string
	Err       error
}

func (e *GameError) Error() string {
	if e.PlayerID > 0 {
		return fmt.Sprintf("round %d: player %d %s: %v", e.Round, e.PlayerID, e.Operation, e.Err)
	}
	return fmt.Sprintf("round %d: %s: %v", e.Round, e.Operation, e.Err)
}

func (e *GameError) Unwrap() error { return e.Err }

// NewGameError creates a GameError. playerID 0 means no specific player.
func NewGameError(round, playerID int, operation string, err error) *GameError {
	return &GameError{Round: round, PlayerID: playerID, Operation: operation, Err: err}
}
