package game

import "github.com/mitchelldurbincs/hexwar/internal/game/core"

// PlayerStats is the per-player view derived from the board
type PlayerStats struct {
	PlayerID    int
	OwnedTiles  []int // ascending
	TileCount   int
	TotalArmy   int
	LargestArmy int
	Alive       bool
	Active      bool // it is this player's turn
}

// computePlayerStats builds stats for players 1..playerCount. The board's
// per-player sets are the source, so no full scan is needed.
func computePlayerStats(b *core.Board, playerCount, activePlayer int) []PlayerStats {
	stats := make([]PlayerStats, 0, playerCount)
	for pid := 1; pid <= playerCount; pid++ {
		tiles := b.PlayerTiles(pid)
		ps := PlayerStats{
			PlayerID:   pid,
			OwnedTiles: tiles,
			TileCount:  len(tiles),
			Alive:      len(tiles) > 0,
			Active:     pid == activePlayer,
		}
		for _, idx := range tiles {
			a := b.Army(idx)
			ps.TotalArmy += a
			ps.LargestArmy = max(ps.LargestArmy, a)
		}
		stats = append(stats, ps)
	}
	return stats
}
