package core

import (
	"sort"

	"github.com/mitchelldurbincs/hexwar/internal/common"
)

// Tile represents a single cell on the map.
// Index is the creation order and never changes until the board is reset.
type Tile struct {
	Coord Coordinate
	Index int
	Owner Owner
	Army  int
}

// Board holds the tiles of a hexagonal region, the coordinate lookup, and
// the per-player sets of owned tile indices. The tile owner is the source of
// truth; the player sets are only touched by SetOwner.
type Board struct {
	tiles   []Tile
	lookup  map[Coordinate]int
	owned   map[int]map[int]struct{}
	maxArmy int // 0 = unbounded

	qRadius, rRadius int
}

// NewBoard creates a board covering HexRegion(qRadius, rRadius).
// maxArmy caps SetArmy; 0 disables the cap.
func NewBoard(qRadius, rRadius, maxArmy int) *Board {
	b := &Board{maxArmy: maxArmy}
	b.ResetTo(qRadius, rRadius)
	return b
}

// ResetTo rebuilds the tile collection as the hexagonal region of the given
// extent. Every tile starts Unused with no army.
func (b *Board) ResetTo(qRadius, rRadius int) {
	coords := HexRegion(qRadius, rRadius)
	b.tiles = make([]Tile, len(coords))
	b.lookup = make(map[Coordinate]int, len(coords))
	b.owned = make(map[int]map[int]struct{})
	b.qRadius, b.rRadius = qRadius, rRadius
	for i, c := range coords {
		b.tiles[i] = Tile{Coord: c, Index: i, Owner: Unused()}
		b.lookup[c] = i
	}
}

// Len returns the number of tiles
func (b *Board) Len() int { return len(b.tiles) }

// Radius returns the extent the board was built with
func (b *Board) Radius() (qRadius, rRadius int) { return b.qRadius, b.rRadius }

// MaxArmy returns the army cap, 0 meaning unbounded
func (b *Board) MaxArmy() int { return b.maxArmy }

// InBounds checks if index addresses a tile
func (b *Board) InBounds(index int) bool {
	return index >= 0 && index < len(b.tiles)
}

// Tile returns a copy of the tile at index
func (b *Board) Tile(index int) (Tile, bool) {
	if !b.InBounds(index) {
		return Tile{}, false
	}
	return b.tiles[index], true
}

// IndexAt returns the index of the tile at c
func (b *Board) IndexAt(c Coordinate) (int, bool) {
	idx, ok := b.lookup[c]
	return idx, ok
}

// TileAt returns a copy of the tile at c
func (b *Board) TileAt(c Coordinate) (Tile, bool) {
	idx, ok := b.lookup[c]
	if !ok {
		return Tile{}, false
	}
	return b.tiles[idx], true
}

// Tiles returns a copy of all tiles in index order
func (b *Board) Tiles() []Tile {
	out := make([]Tile, len(b.tiles))
	copy(out, b.tiles)
	return out
}

// Army returns the army on the tile at index, or 0 if it does not exist
func (b *Board) Army(index int) int {
	if !b.InBounds(index) {
		return 0
	}
	return b.tiles[index].Army
}

// OwnerOf returns the owner of the tile at index, Unused if it does not exist
func (b *Board) OwnerOf(index int) Owner {
	if !b.InBounds(index) {
		return Unused()
	}
	return b.tiles[index].Owner
}

// SetOwner moves the tile at index from its previous owner's set into the new
// owner's set and updates the tile. Returns false if index is out of range.
func (b *Board) SetOwner(index int, owner Owner) bool {
	if !b.InBounds(index) {
		return false
	}
	t := &b.tiles[index]
	if prev, ok := t.Owner.PlayerID(); ok {
		delete(b.owned[prev], index)
		if len(b.owned[prev]) == 0 {
			delete(b.owned, prev)
		}
	}
	if id, ok := owner.PlayerID(); ok {
		set, exists := b.owned[id]
		if !exists {
			set = make(map[int]struct{})
			b.owned[id] = set
		}
		set[index] = struct{}{}
	}
	t.Owner = owner
	return true
}

// SetOwners applies SetOwner to each index in order. It stops and returns
// false at the first index that does not exist.
func (b *Board) SetOwners(indices []int, owner Owner) bool {
	for _, idx := range indices {
		if !b.SetOwner(idx, owner) {
			return false
		}
	}
	return true
}

// AssignAll gives every tile the same owner
func (b *Board) AssignAll(owner Owner) {
	for i := range b.tiles {
		b.SetOwner(i, owner)
	}
}

// SetArmy sets the army on the tile at index, clamped to [0, MaxArmy]
// (upper bound only when the cap is non-zero)
func (b *Board) SetArmy(index, value int) bool {
	if !b.InBounds(index) {
		return false
	}
	b.tiles[index].Army = common.Clamp(value, 0, b.maxArmy)
	return true
}

// AddArmy adds delta to the tile's army under the same clamping as SetArmy
func (b *Board) AddArmy(index, delta int) bool {
	if !b.InBounds(index) {
		return false
	}
	return b.SetArmy(index, b.tiles[index].Army+delta)
}

// PlayerTiles returns the indices owned by player id in ascending order
func (b *Board) PlayerTiles(id int) []int {
	set := b.owned[id]
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// PlayerTileCount returns how many tiles player id owns
func (b *Board) PlayerTileCount(id int) int {
	return len(b.owned[id])
}

// PlayerArmy returns the total army over the tiles player id owns
func (b *Board) PlayerArmy(id int) int {
	total := 0
	for idx := range b.owned[id] {
		total += b.tiles[idx].Army
	}
	return total
}

// ActivePlayers returns ids of players owning at least one tile, ascending
func (b *Board) ActivePlayers() []int {
	out := make([]int, 0, len(b.owned))
	for id, set := range b.owned {
		if len(set) > 0 {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	c := &Board{
		tiles:   make([]Tile, len(b.tiles)),
		lookup:  make(map[Coordinate]int, len(b.lookup)),
		owned:   make(map[int]map[int]struct{}, len(b.owned)),
		maxArmy: b.maxArmy,
		qRadius: b.qRadius,
		rRadius: b.rRadius,
	}
	copy(c.tiles, b.tiles)
	for k, v := range b.lookup {
		c.lookup[k] = v
	}
	for id, set := range b.owned {
		cs := make(map[int]struct{}, len(set))
		for idx := range set {
			cs[idx] = struct{}{}
		}
		c.owned[id] = cs
	}
	return c
}
