package states

import "fmt"

// GamePhase represents the current phase of a game
type GamePhase int

const (
	// PhaseSetup - Board and turn state are being created
	PhaseSetup GamePhase = iota

	// PhasePlayerActing - The active player may spend actions
	PhasePlayerActing

	// PhaseRoundEnd - Reinforcements are being applied
	PhaseRoundEnd

	// PhaseGameOver - Final state, no more actions
	PhaseGameOver

	// PhaseReset - The session is being torn down for a new game
	PhaseReset
)

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	switch p {
	case PhaseSetup:
		return "Setup"
	case PhasePlayerActing:
		return "PlayerActing"
	case PhaseRoundEnd:
		return "RoundEnd"
	case PhaseGameOver:
		return "GameOver"
	case PhaseReset:
		return "Reset"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseGameOver
}

// CanReceiveActions returns true if the game can process player actions in this phase
func (p GamePhase) CanReceiveActions() bool {
	return p == PhasePlayerActing
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseSetup:
		return []GamePhase{PhasePlayerActing, PhaseGameOver}
	case PhasePlayerActing:
		return []GamePhase{PhaseRoundEnd, PhaseGameOver, PhaseReset}
	case PhaseRoundEnd:
		return []GamePhase{PhasePlayerActing, PhaseGameOver}
	case PhaseGameOver:
		return []GamePhase{PhaseReset}
	case PhaseReset:
		return []GamePhase{PhaseSetup}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) GamePhase {
	switch s {
	case "Setup":
		return PhaseSetup
	case "PlayerActing":
		return PhasePlayerActing
	case "RoundEnd":
		return PhaseRoundEnd
	case "GameOver":
		return PhaseGameOver
	case "Reset":
		return PhaseReset
	default:
		return PhaseSetup
	}
}
