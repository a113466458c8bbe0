package core

import "fmt"

// ActionType represents the type of action
type ActionType int

const (
	ActionMove ActionType = iota
	ActionAttack
)

func (t ActionType) String() string {
	switch t {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Action represents a player action
type Action interface {
	GetPlayerID() int
	GetType() ActionType
	Validate(b *Board, playerID int) error
}

// MoveAction relocates army from one tile to another along a path
type MoveAction struct {
	PlayerID int
	From     Coordinate
	To       Coordinate
}

func (m *MoveAction) GetPlayerID() int    { return m.PlayerID }
func (m *MoveAction) GetType() ActionType { return ActionMove }

// Validate checks the move against the board. playerID is the active player.
func (m *MoveAction) Validate(b *Board, playerID int) error {
	if m.PlayerID != playerID {
		return ErrInvalidPlayer
	}
	_, err := PlanMovement(b, m.From, m.To, m.PlayerID)
	return err
}

// AttackAction attacks an adjacent enemy tile
type AttackAction struct {
	PlayerID int
	From     Coordinate
	To       Coordinate
}

func (a *AttackAction) GetPlayerID() int    { return a.PlayerID }
func (a *AttackAction) GetType() ActionType { return ActionAttack }

func (a *AttackAction) Validate(b *Board, playerID int) error {
	if a.PlayerID != playerID {
		return ErrInvalidPlayer
	}
	_, _, err := ValidateAttack(b, a.From, a.To, a.PlayerID)
	return err
}

// GetActionType returns a printable name for an action
func GetActionType(action Action) string {
	if action == nil {
		return "nil"
	}
	return action.GetType().String()
}
