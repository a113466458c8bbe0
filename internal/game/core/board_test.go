package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	tests := []struct {
		name     string
		qR, rR   int
		expected int
	}{
		{"single tile", 0, 0, 1},
		{"small board", 2, 2, 19},
		{"uneven extent", 3, 1, 9},
		{"large board", 10, 10, 331},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := NewBoard(tt.qR, tt.rR, 10)
			require.Equal(t, tt.expected, board.Len())

			for i, tile := range board.Tiles() {
				assert.Equal(t, i, tile.Index)
				assert.True(t, tile.Owner.IsUnused(), "tile %d should be unused", i)
				assert.Equal(t, 0, tile.Army)
				idx, ok := board.IndexAt(tile.Coord)
				require.True(t, ok)
				assert.Equal(t, i, idx)
			}
		})
	}
}

func TestBoard_Lookup(t *testing.T) {
	board := NewBoard(2, 2, 0)

	tile, ok := board.TileAt(NewCoordinate(1, -1))
	require.True(t, ok)
	assert.Equal(t, NewCoordinate(1, -1), tile.Coord)

	_, ok = board.TileAt(NewCoordinate(2, 2))
	assert.False(t, ok, "(2,2) is outside a radius 2 region")

	_, ok = board.Tile(-1)
	assert.False(t, ok)
	_, ok = board.Tile(board.Len())
	assert.False(t, ok)

	_, ok = board.IndexAt(NewCoordinate(5, 0))
	assert.False(t, ok)
}

func TestBoard_SetOwner(t *testing.T) {
	board := NewBoard(2, 2, 0)

	require.True(t, board.SetOwner(3, Player(1)))
	require.True(t, board.SetOwner(5, Player(1)))
	require.True(t, board.SetOwner(7, Player(2)))
	assert.Equal(t, []int{3, 5}, board.PlayerTiles(1))
	assert.Equal(t, []int{7}, board.PlayerTiles(2))

	// reassignment moves the index between sets
	require.True(t, board.SetOwner(5, Player(2)))
	assert.Equal(t, []int{3}, board.PlayerTiles(1))
	assert.Equal(t, []int{5, 7}, board.PlayerTiles(2))

	// non-player owners appear in no set
	require.True(t, board.SetOwner(3, Neutral()))
	assert.Empty(t, board.PlayerTiles(1))
	assert.Equal(t, []int{2}, board.ActivePlayers())

	require.True(t, board.SetOwner(7, Blocked()))
	assert.Equal(t, []int{5}, board.PlayerTiles(2))

	assert.False(t, board.SetOwner(-1, Player(1)))
	assert.False(t, board.SetOwner(board.Len(), Player(1)))
}

func TestBoard_SetOwners(t *testing.T) {
	board := NewBoard(1, 1, 0)

	assert.True(t, board.SetOwners([]int{0, 1, 2}, Player(3)))
	assert.Equal(t, []int{0, 1, 2}, board.PlayerTiles(3))

	assert.False(t, board.SetOwners([]int{4, 99, 5}, Player(4)))
	assert.Equal(t, []int{4}, board.PlayerTiles(4), "indices before the invalid one are applied")
	assert.True(t, board.OwnerOf(5).IsUnused())
}

func TestBoard_PlayerSetsMatchOwners(t *testing.T) {
	board := NewBoard(3, 3, 0)
	owners := []Owner{Player(1), Player(2), Neutral(), Blocked(), Player(3), Unused()}
	for i := 0; i < board.Len(); i++ {
		board.SetOwner(i, owners[i%len(owners)])
	}
	for i := 0; i < board.Len(); i += 4 {
		board.SetOwner(i, owners[(i+1)%len(owners)])
	}

	for id := 1; id <= 3; id++ {
		for _, idx := range board.PlayerTiles(id) {
			assert.True(t, board.OwnerOf(idx).Is(id))
		}
	}
	for _, tile := range board.Tiles() {
		id, ok := tile.Owner.PlayerID()
		if !ok {
			continue
		}
		assert.Contains(t, board.PlayerTiles(id), tile.Index)
	}
}

func TestBoard_SetArmy(t *testing.T) {
	tests := []struct {
		name     string
		maxArmy  int
		value    int
		expected int
	}{
		{"within cap", 10, 7, 7},
		{"above cap", 10, 15, 10},
		{"negative", 10, -3, 0},
		{"unbounded", 0, 250, 250},
		{"unbounded negative", 0, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := NewBoard(1, 1, tt.maxArmy)
			require.True(t, board.SetArmy(0, tt.value))
			assert.Equal(t, tt.expected, board.Army(0))
		})
	}

	board := NewBoard(1, 1, 0)
	assert.False(t, board.SetArmy(7, 1))
}

func TestBoard_AddArmy(t *testing.T) {
	board := NewBoard(1, 1, 5)
	board.SetArmy(2, 3)
	require.True(t, board.AddArmy(2, 1))
	assert.Equal(t, 4, board.Army(2))
	require.True(t, board.AddArmy(2, 4))
	assert.Equal(t, 5, board.Army(2))
	assert.False(t, board.AddArmy(100, 1))
}

func TestBoard_ResetTo(t *testing.T) {
	board := NewBoard(1, 1, 0)
	board.SetOwner(0, Player(1))
	board.SetArmy(0, 4)

	board.ResetTo(2, 2)
	assert.Equal(t, 19, board.Len())
	assert.Empty(t, board.PlayerTiles(1))
	for _, tile := range board.Tiles() {
		assert.True(t, tile.Owner.IsUnused())
		assert.Zero(t, tile.Army)
	}
	qR, rR := board.Radius()
	assert.Equal(t, 2, qR)
	assert.Equal(t, 2, rR)
}

func TestBoard_AssignAllAndStats(t *testing.T) {
	board := NewBoard(1, 1, 0)
	board.AssignAll(Player(2))
	assert.Len(t, board.PlayerTiles(2), 7)

	board.AssignAll(Neutral())
	assert.Empty(t, board.ActivePlayers())

	board.SetOwner(0, Player(1))
	board.SetArmy(0, 3)
	board.SetOwner(1, Player(1))
	board.SetArmy(1, 2)
	assert.Equal(t, 2, board.PlayerTileCount(1))
	assert.Equal(t, 5, board.PlayerArmy(1))
}

func TestBoard_Clone(t *testing.T) {
	board := NewBoard(2, 2, 10)
	board.SetOwner(4, Player(1))
	board.SetArmy(4, 6)

	clone := board.Clone()
	clone.SetOwner(4, Player(2))
	clone.SetArmy(4, 1)

	assert.True(t, board.OwnerOf(4).Is(1))
	assert.Equal(t, 6, board.Army(4))
	assert.Equal(t, []int{4}, board.PlayerTiles(1))
	assert.Empty(t, board.PlayerTiles(2))
	assert.Equal(t, []int{4}, clone.PlayerTiles(2))
	assert.Equal(t, board.MaxArmy(), clone.MaxArmy())
}
