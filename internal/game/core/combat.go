package core

// Outcome is the pair of dice sums rolled for a battle
type Outcome struct {
	AttackSum int
	DefendSum int
}

// CombatResult describes what ResolveCombat did to the board
type CombatResult struct {
	Attacker    int
	Defender    int
	FromIndex   int
	ToIndex     int
	Outcome     Outcome
	Tie         bool
	Winner      int // player id, 0 on a tie
	WinnerIndex int // tile the winner attacked or defended from, -1 on a tie
	LoserIndex  int // tile transferred to the winner, -1 on a tie
	ResultArmy  int // army placed on the transferred tile
}

// AttackerWon reports whether the attacking player won the battle
func (r CombatResult) AttackerWon() bool {
	return !r.Tie && r.Winner == r.Attacker
}

// ValidateAttack checks that attacker owns from, an enemy owns to, and the two
// tiles are adjacent. It returns the two tiles on success.
func ValidateAttack(b *Board, from, to Coordinate, attacker int) (Tile, Tile, error) {
	src, ok := b.TileAt(from)
	if !ok {
		return Tile{}, Tile{}, ErrTileNotFound
	}
	dst, ok := b.TileAt(to)
	if !ok {
		return Tile{}, Tile{}, ErrTileNotFound
	}
	if !src.Owner.Is(attacker) {
		return Tile{}, Tile{}, ErrNotOwned
	}
	if !dst.Owner.IsEnemyOf(attacker) {
		return Tile{}, Tile{}, ErrTargetNotEnemy
	}
	if !from.IsAdjacentTo(to) {
		return Tile{}, Tile{}, ErrNotAdjacent
	}
	return src, dst, nil
}

// ResolveCombat applies a rolled outcome to a validated attack.
//
// On a tie both tiles drop to 1 army and keep their owners. Otherwise the side
// with the larger sum wins: the loser's tile is transferred to the winner with
// winningArmy - floor(winningArmy*losingScore/winningScore) army, and the
// winner's own tile drops to 1.
func ResolveCombat(b *Board, from, to Coordinate, attacker int, outcome Outcome) (CombatResult, error) {
	src, dst, err := ValidateAttack(b, from, to, attacker)
	if err != nil {
		return CombatResult{}, err
	}
	defender, _ := dst.Owner.PlayerID()

	res := CombatResult{
		Attacker:  attacker,
		Defender:  defender,
		FromIndex: src.Index,
		ToIndex:   dst.Index,
		Outcome:   outcome,
	}

	if outcome.AttackSum == outcome.DefendSum {
		res.Tie = true
		res.WinnerIndex, res.LoserIndex = -1, -1
		b.SetArmy(src.Index, 1)
		b.SetArmy(dst.Index, 1)
		return res, nil
	}

	var win, lose Tile
	var winScore, loseScore int
	if outcome.AttackSum > outcome.DefendSum {
		win, lose = src, dst
		winScore, loseScore = outcome.AttackSum, outcome.DefendSum
		res.Winner = attacker
	} else {
		win, lose = dst, src
		winScore, loseScore = outcome.DefendSum, outcome.AttackSum
		res.Winner = defender
	}

	res.WinnerIndex = win.Index
	res.LoserIndex = lose.Index
	res.ResultArmy = ResultArmy(win.Army, winScore, loseScore)

	b.SetOwner(lose.Index, Player(res.Winner))
	b.SetArmy(lose.Index, res.ResultArmy)
	b.SetArmy(win.Index, 1)
	return res, nil
}

// ResultArmy computes the army left to the winner of a battle:
// winningArmy - floor(winningArmy*losingScore/winningScore), never negative.
func ResultArmy(winningArmy, winningScore, losingScore int) int {
	if winningScore <= 0 {
		return 0
	}
	r := winningArmy - (winningArmy*losingScore)/winningScore
	if r < 0 {
		return 0
	}
	return r
}
