package core

import "fmt"

// OwnerKind discriminates the Owner union
type OwnerKind uint8

const (
	// OwnerUnused marks a cell outside the playable map
	OwnerUnused OwnerKind = iota
	// OwnerNeutral marks a playable cell nobody holds
	OwnerNeutral
	// OwnerBlocked marks an impassable cell
	OwnerBlocked
	// OwnerPlayer marks a cell held by a player
	OwnerPlayer
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerUnused:
		return "Unused"
	case OwnerNeutral:
		return "Neutral"
	case OwnerBlocked:
		return "Blocked"
	case OwnerPlayer:
		return "Player"
	default:
		return fmt.Sprintf("OwnerKind(%d)", uint8(k))
	}
}

// Owner is the owner of a tile: one of Unused, Neutral, Blocked or
// Player(id). The zero value is Unused. Owners are comparable with ==.
type Owner struct {
	kind   OwnerKind
	player int
}

// Unused returns the owner of cells outside the playable map
func Unused() Owner { return Owner{kind: OwnerUnused} }

// Neutral returns the owner of unclaimed playable cells
func Neutral() Owner { return Owner{kind: OwnerNeutral} }

// Blocked returns the owner of impassable cells
func Blocked() Owner { return Owner{kind: OwnerBlocked} }

// Player returns the owner for player id (1-based)
func Player(id int) Owner { return Owner{kind: OwnerPlayer, player: id} }

// Kind returns the discriminant
func (o Owner) Kind() OwnerKind { return o.kind }

// PlayerID returns the player id and true when o is a Player owner
func (o Owner) PlayerID() (int, bool) {
	if o.kind != OwnerPlayer {
		return 0, false
	}
	return o.player, true
}

// IsPlayer reports whether a player holds the tile
func (o Owner) IsPlayer() bool { return o.kind == OwnerPlayer }

// Is reports whether o is Player(id)
func (o Owner) Is(id int) bool { return o.kind == OwnerPlayer && o.player == id }

// IsUnused reports whether the cell lies outside the playable map
func (o Owner) IsUnused() bool { return o.kind == OwnerUnused }

// IsNeutral reports whether nobody holds the tile
func (o Owner) IsNeutral() bool { return o.kind == OwnerNeutral }

// IsBlocked reports whether the tile is impassable terrain
func (o Owner) IsBlocked() bool { return o.kind == OwnerBlocked }

// IsHostileTo reports whether a mover may not pass through a tile with this
// owner. Blocked tiles, Unused cells and tiles held by another player are
// all closed.
func (o Owner) IsHostileTo(mover int) bool {
	switch o.kind {
	case OwnerBlocked, OwnerUnused:
		return true
	case OwnerPlayer:
		return o.player != mover
	}
	return false
}

// IsEnemyOf reports whether the tile is held by a player other than id
func (o Owner) IsEnemyOf(id int) bool {
	return o.kind == OwnerPlayer && o.player != id
}

func (o Owner) String() string {
	if o.kind == OwnerPlayer {
		return fmt.Sprintf("Player(%d)", o.player)
	}
	return o.kind.String()
}

// MarshalText renders the owner the same way as String
func (o Owner) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
