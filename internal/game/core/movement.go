package core

import "github.com/mitchelldurbincs/hexwar/internal/common"

// PathStep is one tile of a planned movement with its projected state
type PathStep struct {
	Index int
	Owner Owner
	Army  int
}

// MovementPlan is the full preview of a movement. Steps[0] is the source and
// the last step is the destination. Nothing is mutated until ApplyMovement.
type MovementPlan struct {
	PlayerID int
	From     Coordinate
	To       Coordinate
	Path     []int
	Steps    []PathStep
	// Credit is the army the destination receives before the board's cap
	Credit int
	// Lost is the army the cap clips off along the path. Steps already hold
	// the clipped values.
	Lost int
}

// Destination returns the projected destination step
func (p MovementPlan) Destination() PathStep {
	return p.Steps[len(p.Steps)-1]
}

// PlanMovement validates a movement of mover's army from one tile to another
// and computes the resulting armies without touching the board.
//
// The source keeps 1 army, every interior tile on the path is claimed and
// gains 1, and the destination is claimed and gains the rest:
// army(from) - hops. A tile pushed over the board's army cap keeps the cap
// and the excess is counted in Lost.
func PlanMovement(b *Board, from, to Coordinate, mover int) (MovementPlan, error) {
	if from == to {
		return MovementPlan{}, ErrMoveToSelf
	}
	src, ok := b.TileAt(from)
	if !ok {
		return MovementPlan{}, ErrTileNotFound
	}
	dst, ok := b.TileAt(to)
	if !ok {
		return MovementPlan{}, ErrTileNotFound
	}
	if !src.Owner.Is(mover) {
		return MovementPlan{}, ErrNotOwned
	}
	if dst.Owner.IsHostileTo(mover) {
		return MovementPlan{}, ErrTargetHostile
	}

	pathLength := Distance(from, to)
	if src.Army-pathLength <= 0 {
		return MovementPlan{}, ErrInsufficientArmy
	}

	path := FindPath(b, from, to, mover, pathLength+1)
	if len(path) == 0 {
		return MovementPlan{}, ErrNotReachable
	}

	credit := src.Army - (len(path) - 1)
	if credit <= 0 {
		return MovementPlan{}, ErrInsufficientArmy
	}

	plan := MovementPlan{
		PlayerID: mover,
		From:     from,
		To:       to,
		Path:     path,
		Steps:    make([]PathStep, len(path)),
		Credit:   credit,
	}
	last := len(path) - 1
	for i, idx := range path {
		t := b.tiles[idx]
		step := PathStep{Index: idx, Owner: Player(mover)}
		switch {
		case i == 0:
			step.Owner, step.Army = t.Owner, 1
		case i == last:
			step.Army = t.Army + credit
		default:
			step.Army = t.Army + 1
		}
		if capped := common.Clamp(step.Army, 0, b.maxArmy); capped != step.Army {
			plan.Lost += step.Army - capped
			step.Army = capped
		}
		plan.Steps[i] = step
	}
	return plan, nil
}

// ApplyMovement commits a plan produced by PlanMovement on the same board
func ApplyMovement(b *Board, plan MovementPlan) error {
	if len(plan.Steps) < 2 {
		return ErrNotReachable
	}
	for _, s := range plan.Steps {
		if !b.InBounds(s.Index) {
			return ErrTileNotFound
		}
	}
	for _, s := range plan.Steps {
		b.SetOwner(s.Index, s.Owner)
		b.SetArmy(s.Index, s.Army)
	}
	return nil
}

// ExecuteMovement plans and applies a movement in one step
func ExecuteMovement(b *Board, from, to Coordinate, mover int) (MovementPlan, error) {
	plan, err := PlanMovement(b, from, to, mover)
	if err != nil {
		return MovementPlan{}, err
	}
	if err := ApplyMovement(b, plan); err != nil {
		return MovementPlan{}, err
	}
	return plan, nil
}
