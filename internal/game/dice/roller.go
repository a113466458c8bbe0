// Package dice provides the randomness boundary for combat: a Roller turns
// the two army counts of a battle into a pair of dice sums.
package dice

import (
	"context"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

// Faces is the number of faces on each die
const Faces = 6

// Roller rolls one die per army on each side and returns the two sums.
// Implementations may block (for example while an animation plays) but must
// return a complete outcome or an error.
type Roller interface {
	Roll(ctx context.Context, attackerArmy, defenderArmy int) (core.Outcome, error)
}

// RollerFunc adapts a function to the Roller interface
type RollerFunc func(ctx context.Context, attackerArmy, defenderArmy int) (core.Outcome, error)

func (f RollerFunc) Roll(ctx context.Context, attackerArmy, defenderArmy int) (core.Outcome, error) {
	return f(ctx, attackerArmy, defenderArmy)
}

// Sum adds up the faces of a roll
func Sum(faces []int) int {
	total := 0
	for _, f := range faces {
		total += f
	}
	return total
}
