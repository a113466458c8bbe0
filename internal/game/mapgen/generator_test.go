package mapgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

// newTestRNG provides a random number generator with a fixed seed for deterministic tests.
func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(12345))
}

func countOwners(b *core.Board) map[core.OwnerKind]int {
	counts := make(map[core.OwnerKind]int)
	for _, t := range b.Tiles() {
		counts[t.Owner.Kind()]++
	}
	return counts
}

func TestDefaultMapConfig(t *testing.T) {
	config := DefaultMapConfig(4, 3, 2)

	assert.Equal(t, 4, config.QRadius)
	assert.Equal(t, 3, config.RRadius)
	assert.Equal(t, 2, config.PlayerCount)
	assert.Equal(t, 0.1, config.BlockedRatio)
	assert.Equal(t, 2, config.NeutralMaxArmy)
	assert.Equal(t, 5, config.StartArmy)
	assert.Equal(t, 3, config.MinStartSpacing)
	assert.Equal(t, 10, config.MaxArmy)
	assert.NoError(t, config.Validate())
}

func TestMapConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MapConfig)
	}{
		{"negative radius", func(c *MapConfig) { c.QRadius = -1 }},
		{"negative players", func(c *MapConfig) { c.PlayerCount = -1 }},
		{"blocked ratio of one", func(c *MapConfig) { c.BlockedRatio = 1 }},
		{"negative neutral army", func(c *MapConfig) { c.NeutralMaxArmy = -2 }},
		{"empty start tile", func(c *MapConfig) { c.StartArmy = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultMapConfig(3, 3, 2)
			tt.mutate(&config)
			assert.Error(t, config.Validate())

			_, err := NewGenerator(config, newTestRNG()).GenerateMap()
			assert.Error(t, err)
		})
	}
}

func TestNewGenerator(t *testing.T) {
	config := DefaultMapConfig(3, 3, 1)
	rng := newTestRNG()
	generator := NewGenerator(config, rng)

	require.NotNil(t, generator)
	assert.Equal(t, config, generator.config)
	assert.Same(t, rng, generator.rng)
}

func TestPlaceBlocked(t *testing.T) {
	t.Run("BasicBlockedPlacement", func(t *testing.T) {
		config := DefaultMapConfig(4, 4, 0)
		config.BlockedRatio = 0.2
		generator := NewGenerator(config, newTestRNG())
		board := core.NewBoard(4, 4, 0)
		board.AssignAll(core.Neutral())

		generator.placeBlocked(board)

		want := int(float64(board.Len()) * 0.2)
		counts := countOwners(board)
		assert.LessOrEqual(t, counts[core.OwnerBlocked], want)
		assert.Greater(t, counts[core.OwnerBlocked], 0)
		for _, tile := range board.Tiles() {
			if tile.Owner.IsBlocked() {
				assert.Equal(t, 0, tile.Army, "blocked tiles carry no army")
			}
		}
	})

	t.Run("ZeroRatio", func(t *testing.T) {
		config := DefaultMapConfig(3, 3, 0)
		config.BlockedRatio = 0
		generator := NewGenerator(config, newTestRNG())
		board := core.NewBoard(3, 3, 0)
		board.AssignAll(core.Neutral())

		generator.placeBlocked(board)
		assert.Zero(t, countOwners(board)[core.OwnerBlocked])
	})
}

func TestPlaceNeutralArmies(t *testing.T) {
	config := DefaultMapConfig(3, 3, 0)
	config.NeutralMaxArmy = 3
	generator := NewGenerator(config, newTestRNG())
	board := core.NewBoard(3, 3, 0)
	board.AssignAll(core.Neutral())

	generator.placeNeutralArmies(board)

	for _, tile := range board.Tiles() {
		assert.GreaterOrEqual(t, tile.Army, 0)
		assert.LessOrEqual(t, tile.Army, 3)
	}
}

func TestPlaceStarts(t *testing.T) {
	t.Run("BasicStartPlacementAndSpacing", func(t *testing.T) {
		config := DefaultMapConfig(5, 5, 4)
		config.MinStartSpacing = 3
		generator := NewGenerator(config, newTestRNG())
		board := core.NewBoard(5, 5, 0)
		board.AssignAll(core.Neutral())

		placements, err := generator.placeStarts(board)
		require.NoError(t, err)
		require.Len(t, placements, 4)

		for i, p := range placements {
			assert.Equal(t, i+1, p.PlayerID)
			tile, ok := board.Tile(p.Index)
			require.True(t, ok)
			assert.Equal(t, core.Player(p.PlayerID), tile.Owner)
			assert.Equal(t, config.StartArmy, tile.Army)
			assert.Equal(t, []int{p.Index}, board.PlayerTiles(p.PlayerID))

			for _, other := range placements[:i] {
				assert.GreaterOrEqual(t, core.Distance(p.Coord, other.Coord), config.MinStartSpacing)
			}
		}
	})

	t.Run("NoPlayers", func(t *testing.T) {
		generator := NewGenerator(DefaultMapConfig(2, 2, 0), newTestRNG())
		board := core.NewBoard(2, 2, 0)
		board.AssignAll(core.Neutral())

		placements, err := generator.placeStarts(board)
		require.NoError(t, err)
		assert.Empty(t, placements)
		assert.Empty(t, board.ActivePlayers())
	})

	t.Run("StartsNotOnBlockedTiles", func(t *testing.T) {
		board := core.NewBoard(1, 1, 0)
		board.AssignAll(core.Blocked())
		free, _ := board.IndexAt(core.NewCoordinate(0, 1))
		board.SetOwner(free, core.Neutral())

		generator := NewGenerator(DefaultMapConfig(1, 1, 1), newTestRNG())
		placements, err := generator.placeStarts(board)
		require.NoError(t, err)
		require.Len(t, placements, 1)
		assert.Equal(t, free, placements[0].Index)
	})

	t.Run("FallbackWhenSpacingIsImpossible", func(t *testing.T) {
		config := DefaultMapConfig(1, 1, 2)
		config.MinStartSpacing = 10
		generator := NewGenerator(config, newTestRNG())
		board := core.NewBoard(1, 1, 0)
		board.AssignAll(core.Neutral())

		placements, err := generator.placeStarts(board)
		require.NoError(t, err)
		require.Len(t, placements, 2)
		assert.NotEqual(t, placements[0].Index, placements[1].Index)
	})

	t.Run("ErrorWhenNoTilesLeft", func(t *testing.T) {
		board := core.NewBoard(0, 0, 0)
		board.AssignAll(core.Neutral())

		generator := NewGenerator(DefaultMapConfig(0, 0, 2), newTestRNG())
		_, err := generator.placeStarts(board)
		assert.ErrorIs(t, err, ErrNoStartLocation)
	})
}

func TestGenerateMap_FullIntegration(t *testing.T) {
	config := DefaultMapConfig(5, 5, 3)
	board, err := NewGenerator(config, newTestRNG()).GenerateMap()
	require.NoError(t, err)

	assert.Equal(t, len(core.HexRegion(5, 5)), board.Len())
	assert.Equal(t, []int{1, 2, 3}, board.ActivePlayers())
	assert.Equal(t, config.MaxArmy, board.MaxArmy())

	counts := countOwners(board)
	assert.Zero(t, counts[core.OwnerUnused], "every tile is assigned")
	assert.Equal(t, 3, counts[core.OwnerPlayer])

	t.Run("Deterministic", func(t *testing.T) {
		again, err := NewGenerator(config, newTestRNG()).GenerateMap()
		require.NoError(t, err)
		assert.Equal(t, board.Tiles(), again.Tiles())
	})
}
