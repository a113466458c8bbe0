package dice

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

// RandomRoller draws uniform faces in [1, Faces] from a seeded source.
// It is safe for concurrent use.
type RandomRoller struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewRandomRoller creates a roller seeded with seed
func NewRandomRoller(seed uint64, logger zerolog.Logger) *RandomRoller {
	return &RandomRoller{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.With().Str("component", "dice").Logger(),
	}
}

// Faces rolls n dice and returns each face
func (r *RandomRoller) Faces(n int) []int {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	faces := make([]int, n)
	for i := range faces {
		faces[i] = r.rng.Intn(Faces) + 1
	}
	return faces
}

func (r *RandomRoller) Roll(ctx context.Context, attackerArmy, defenderArmy int) (core.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return core.Outcome{}, err
	}
	attack := r.Faces(attackerArmy)
	defend := r.Faces(defenderArmy)
	out := core.Outcome{AttackSum: Sum(attack), DefendSum: Sum(defend)}

	r.logger.Debug().
		Ints("attack_faces", attack).
		Ints("defend_faces", defend).
		Int("attack_sum", out.AttackSum).
		Int("defend_sum", out.DefendSum).
		Msg("Dice rolled")
	return out, nil
}
