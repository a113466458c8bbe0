package dice

import (
	"context"
	"fmt"
	"sync"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

// ScriptedRoller returns a fixed sequence of outcomes, one per roll. Once the
// script runs out every roll fails with core.ErrDiceUnavailable.
type ScriptedRoller struct {
	mu       sync.Mutex
	outcomes []core.Outcome
	calls    [][2]int
}

// NewScriptedRoller creates a roller that replays outcomes in order
func NewScriptedRoller(outcomes ...core.Outcome) *ScriptedRoller {
	return &ScriptedRoller{outcomes: outcomes}
}

func (s *ScriptedRoller) Roll(_ context.Context, attackerArmy, defenderArmy int) (core.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, [2]int{attackerArmy, defenderArmy})
	if len(s.outcomes) == 0 {
		return core.Outcome{}, fmt.Errorf("script exhausted: %w", core.ErrDiceUnavailable)
	}
	out := s.outcomes[0]
	s.outcomes = s.outcomes[1:]
	return out, nil
}

// Calls returns the army counts of every roll requested so far
func (s *ScriptedRoller) Calls() [][2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][2]int, len(s.calls))
	copy(out, s.calls)
	return out
}

// Remaining returns how many scripted outcomes are left
func (s *ScriptedRoller) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outcomes)
}
