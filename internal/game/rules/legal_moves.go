package rules

import "github.com/mitchelldurbincs/hexwar/internal/game/core"

// LegalMoveCalculator computes legal actions for players
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// LegalMoves returns every movement the player could make right now. A tile
// with army a can reach tiles at most a-1 hops away; each candidate is
// checked with the same planning the session executes, so detours that would
// leave no army for the destination are excluded.
func (lmc *LegalMoveCalculator) LegalMoves(b *core.Board, playerID int) []*core.MoveAction {
	var moves []*core.MoveAction
	for _, idx := range b.PlayerTiles(playerID) {
		src, _ := b.Tile(idx)
		if src.Army <= 1 {
			continue
		}
		for _, target := range core.ReachableSet(b, idx, playerID, src.Army-1) {
			dst, _ := b.Tile(target)
			move := &core.MoveAction{PlayerID: playerID, From: src.Coord, To: dst.Coord}
			if err := move.Validate(b, playerID); err == nil {
				moves = append(moves, move)
			}
		}
	}
	return moves
}

// LegalAttacks returns every attack the player could launch: one per pair of
// an owned tile and an adjacent enemy tile, in neighbor order.
func (lmc *LegalMoveCalculator) LegalAttacks(b *core.Board, playerID int) []*core.AttackAction {
	var attacks []*core.AttackAction
	for _, idx := range b.PlayerTiles(playerID) {
		src, _ := b.Tile(idx)
		for _, n := range src.Coord.Neighbors() {
			dst, ok := b.TileAt(n)
			if !ok || !dst.Owner.IsEnemyOf(playerID) {
				continue
			}
			attacks = append(attacks, &core.AttackAction{PlayerID: playerID, From: src.Coord, To: n})
		}
	}
	return attacks
}

// LegalActions returns moves followed by attacks
func (lmc *LegalMoveCalculator) LegalActions(b *core.Board, playerID int) []core.Action {
	moves := lmc.LegalMoves(b, playerID)
	attacks := lmc.LegalAttacks(b, playerID)
	actions := make([]core.Action, 0, len(moves)+len(attacks))
	for _, m := range moves {
		actions = append(actions, m)
	}
	for _, a := range attacks {
		actions = append(actions, a)
	}
	return actions
}

// HasLegalAction reports whether the player can spend an action at all
func (lmc *LegalMoveCalculator) HasLegalAction(b *core.Board, playerID int) bool {
	return len(lmc.LegalAttacks(b, playerID)) > 0 || len(lmc.LegalMoves(b, playerID)) > 0
}
