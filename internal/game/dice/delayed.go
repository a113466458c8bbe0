package dice

import (
	"context"
	"time"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

// DelayedRoller waits before resolving a roll, standing in for a dice
// animation. A cancelled context aborts the wait with ctx.Err().
type DelayedRoller struct {
	Inner Roller
	Delay time.Duration
}

// NewDelayedRoller wraps inner with a fixed delay
func NewDelayedRoller(inner Roller, delay time.Duration) *DelayedRoller {
	return &DelayedRoller{Inner: inner, Delay: delay}
}

func (d *DelayedRoller) Roll(ctx context.Context, attackerArmy, defenderArmy int) (core.Outcome, error) {
	if d.Inner == nil {
		return core.Outcome{}, core.ErrDiceUnavailable
	}
	out, err := d.Inner.Roll(ctx, attackerArmy, defenderArmy)
	if err != nil {
		return core.Outcome{}, err
	}
	if d.Delay <= 0 {
		return out, nil
	}

	timer := time.NewTimer(d.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return out, nil
	case <-ctx.Done():
		return core.Outcome{}, ctx.Err()
	}
}
