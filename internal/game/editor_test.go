package game

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/events"
	"github.com/mitchelldurbincs/hexwar/internal/persistence"
	"github.com/mitchelldurbincs/hexwar/internal/testutil"
)

func newTestEditor(t *testing.T) (*Editor, *testutil.EventRecorder) {
	t.Helper()
	bus := events.NewEventBus(zerolog.Nop())
	rec := testutil.NewEventRecorder("editor_recorder", events.TypeTilesChanged)
	bus.Subscribe(rec)
	gw := persistence.NewGateway(persistence.NewMemoryStore(), zerolog.Nop())
	return NewEditor(gw, 10, bus, zerolog.Nop()), rec
}

func paint(t *testing.T, e *Editor, c core.Coordinate, owner core.Owner, army int) {
	t.Helper()
	require.NoError(t, e.SetBrush(owner, army))
	idx, ok := e.Board().IndexAt(c)
	require.True(t, ok)
	require.NoError(t, e.ApplyBrush(idx))
}

func TestEditor_Inactive(t *testing.T) {
	e, _ := newTestEditor(t)
	assert.Nil(t, e.Board())
	assert.ErrorIs(t, e.ApplyBrush(0), ErrEditorInactive)
	assert.ErrorIs(t, e.Save(context.Background(), "x"), ErrEditorInactive)
}

func TestEditor_SetBrush(t *testing.T) {
	e, _ := newTestEditor(t)

	owner, army := e.Brush()
	assert.Equal(t, core.Unused(), owner)
	assert.Zero(t, army)

	tests := []struct {
		name    string
		owner   core.Owner
		army    int
		wantErr bool
	}{
		{"player", core.Player(3), 5, false},
		{"blocked", core.Blocked(), 0, false},
		{"unused", core.Unused(), 0, false},
		{"player beyond max", core.Player(7), 1, true},
		{"negative army", core.Neutral(), -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.SetBrush(tt.owner, tt.army)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			owner, army := e.Brush()
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.army, army)
		})
	}
}

func TestEditor_EnterResetsBrush(t *testing.T) {
	e, _ := newTestEditor(t)
	e.Enter(1, 1)
	paint(t, e, at(0, 0), core.Player(2), 4)

	e.Enter(1, 1)
	owner, army := e.Brush()
	assert.Equal(t, core.Unused(), owner)
	assert.Zero(t, army)

	// the default brush erases a tile back to off-map
	idx, ok := e.Board().IndexAt(at(1, 0))
	require.True(t, ok)
	require.NoError(t, e.ApplyBrush(idx))
	tile, _ := e.Board().TileAt(at(1, 0))
	assert.True(t, tile.Owner.IsUnused())
	assert.Zero(t, tile.Army)
}

func TestEditor_ApplyBrush(t *testing.T) {
	e, rec := newTestEditor(t)
	e.Enter(1, 1)

	b := e.Board()
	require.Equal(t, 7, b.Len())
	for _, tile := range b.Tiles() {
		assert.True(t, tile.Owner.IsUnused())
	}

	paint(t, e, at(0, 0), core.Player(1), 12)
	tile, _ := e.Board().TileAt(at(0, 0))
	assert.Equal(t, core.Player(1), tile.Owner)
	assert.Equal(t, 10, tile.Army, "clamped to the army cap")

	// Unused keeps the army that was there
	paint(t, e, at(0, 0), core.Unused(), 3)
	tile, _ = e.Board().TileAt(at(0, 0))
	assert.True(t, tile.Owner.IsUnused())
	assert.Equal(t, 10, tile.Army)

	require.NoError(t, e.SetBrush(core.Neutral(), 1))
	assert.ErrorIs(t, e.ApplyBrush(99), core.ErrTileNotFound)

	assert.Equal(t, 2, rec.Count(events.TypeTilesChanged))
	changed, ok := rec.Events()[0].(*events.TilesChangedEvent)
	require.True(t, ok)
	require.Len(t, changed.Changes, 1)
	assert.Equal(t, at(0, 0), changed.Changes[0].Coord)
}

func TestEditor_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEditor(t)
	e.Enter(2, 2)
	paint(t, e, at(0, 0), core.Player(1), 5)
	paint(t, e, at(1, 0), core.Blocked(), 0)
	paint(t, e, at(-1, 1), core.Neutral(), 2)
	paint(t, e, at(0, -1), core.Player(2), 5)

	require.NoError(t, e.Save(ctx, "skirmish"))
	assert.ErrorIs(t, e.Save(ctx, "  "), persistence.ErrInvalidMapName)

	maps, err := e.List(ctx)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, "skirmish", maps[0].Name)
	assert.Equal(t, 4, maps[0].TileCount)

	e.Enter(1, 1)
	info, err := e.Load(ctx, "skirmish")
	require.NoError(t, err)
	assert.Equal(t, 4, info.TileCount)

	loaded := e.Board()
	tile, ok := loaded.TileAt(at(0, 0))
	require.True(t, ok)
	assert.Equal(t, core.Player(1), tile.Owner)
	assert.Equal(t, 5, tile.Army)
	tile, _ = loaded.TileAt(at(1, 0))
	assert.True(t, tile.Owner.IsBlocked())
	tile, _ = loaded.TileAt(at(-1, 1))
	assert.Equal(t, 2, tile.Army)
	assert.Equal(t, []int{1, 2}, loaded.ActivePlayers())

	require.NoError(t, e.Delete(ctx, "skirmish"))
	maps, err = e.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, maps)

	_, err = e.Load(ctx, "skirmish")
	assert.ErrorIs(t, err, persistence.ErrNoSavedState)
}

func TestEditor_NoGateway(t *testing.T) {
	e := NewEditor(nil, 10, nil, zerolog.Nop())
	e.Enter(1, 1)
	paint(t, e, at(0, 0), core.Player(1), 1)
	assert.ErrorIs(t, e.Save(context.Background(), "m"), persistence.ErrStoreUnavailable)
	_, err := e.List(context.Background())
	assert.ErrorIs(t, err, persistence.ErrStoreUnavailable)
}
