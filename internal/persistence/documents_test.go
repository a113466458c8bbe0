package persistence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/states"
)

func TestPlayerID_JSON(t *testing.T) {
	tests := []struct {
		name  string
		owner core.Owner
		json  string
	}{
		{"neutral", core.Neutral(), `"undefined"`},
		{"blocked", core.Blocked(), `0`},
		{"player", core.Player(3), `3`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(PlayerID{Owner: tt.owner})
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(data))

			var back PlayerID
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.owner, back.Owner)
		})
	}

	t.Run("unused cannot be encoded", func(t *testing.T) {
		_, err := json.Marshal(PlayerID{Owner: core.Unused()})
		assert.Error(t, err)
	})

	t.Run("null is neutral", func(t *testing.T) {
		var p PlayerID
		require.NoError(t, json.Unmarshal([]byte(`null`), &p))
		assert.Equal(t, core.Neutral(), p.Owner)
	})

	t.Run("bad values", func(t *testing.T) {
		for _, raw := range []string{`"someone"`, `-1`, `1.5`, `true`} {
			var p PlayerID
			assert.Error(t, json.Unmarshal([]byte(raw), &p), raw)
		}
	})
}

func TestTurnRecord(t *testing.T) {
	ts := states.TurnState{ActivePlayer: 2, ActionsTaken: 1, TurnsTaken: 0, RoundNumber: 4}
	rec := EncodeTurn(ts)
	assert.Equal(t, TurnRecord{ActivePlayer: 2, ActionNumber: 2, TurnNumber: 1, RoundNumber: 4}, rec)
	assert.Equal(t, ts, DecodeTurn(rec))

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"activePlayer":2,"actionNumber":2,"turnNumber":1,"roundNumber":4}`, string(data))
}

func TestEncodeTiles(t *testing.T) {
	b := core.NewBoard(1, 1, 0)
	origin, _ := b.IndexAt(core.NewCoordinate(0, 0))
	east, _ := b.IndexAt(core.NewCoordinate(1, 0))
	west, _ := b.IndexAt(core.NewCoordinate(-1, 0))
	b.SetOwner(origin, core.Player(1))
	b.SetArmy(origin, 4)
	b.SetOwner(east, core.Neutral())
	b.SetOwner(west, core.Blocked())

	records := EncodeTiles(b)
	require.Len(t, records, 3, "unused tiles are omitted")

	data, err := json.Marshal(records)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"q":-1,"r":0,"playerId":0,"army":0},
		{"q":0,"r":0,"playerId":1,"army":4},
		{"q":1,"r":0,"playerId":"undefined","army":0}
	]`, string(data))
}

func TestDecodeTiles(t *testing.T) {
	t.Run("bounds the coordinates present", func(t *testing.T) {
		records := []TileRecord{
			{Q: 2, R: -1, PlayerID: PlayerID{core.Player(1)}, Army: 3},
			{Q: 0, R: 1, PlayerID: PlayerID{core.Neutral()}, Army: 1},
		}
		b, err := DecodeTiles(records, 10)
		require.NoError(t, err)

		qR, rR := b.Radius()
		assert.Equal(t, 2, qR)
		assert.Equal(t, 1, rR)
		assert.Equal(t, 10, b.MaxArmy())

		tile, ok := b.TileAt(core.NewCoordinate(2, -1))
		require.True(t, ok)
		assert.Equal(t, core.Player(1), tile.Owner)
		assert.Equal(t, 3, tile.Army)
		assert.Equal(t, []int{tile.Index}, b.PlayerTiles(1))

		unused := 0
		for _, tile := range b.Tiles() {
			if tile.Owner.IsUnused() {
				unused++
			}
		}
		assert.Equal(t, b.Len()-2, unused)
	})

	t.Run("army is clamped by the cap", func(t *testing.T) {
		b, err := DecodeTiles([]TileRecord{{PlayerID: PlayerID{core.Player(1)}, Army: 50}}, 10)
		require.NoError(t, err)
		assert.Equal(t, 10, b.Army(0))
	})

	t.Run("missing playerId is neutral", func(t *testing.T) {
		var records []TileRecord
		require.NoError(t, json.Unmarshal([]byte(`[{"q":0,"r":0,"army":2}]`), &records))
		b, err := DecodeTiles(records, 0)
		require.NoError(t, err)
		assert.Equal(t, core.Neutral(), b.OwnerOf(0))
	})

	t.Run("later record wins", func(t *testing.T) {
		b, err := DecodeTiles([]TileRecord{
			{PlayerID: PlayerID{core.Player(1)}, Army: 2},
			{PlayerID: PlayerID{core.Player(2)}, Army: 5},
		}, 0)
		require.NoError(t, err)
		assert.Equal(t, core.Player(2), b.OwnerOf(0))
		assert.Empty(t, b.PlayerTiles(1))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := DecodeTiles(nil, 0)
		assert.Error(t, err)

		_, err = DecodeTiles([]TileRecord{{PlayerID: PlayerID{core.Neutral()}, Army: -1}}, 0)
		assert.Error(t, err)
	})
}
