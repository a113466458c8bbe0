package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/common"
	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/events"
	"github.com/mitchelldurbincs/hexwar/internal/persistence"
)

// ErrEditorInactive is returned by brush operations before Enter or Load
var ErrEditorInactive = core.WithKind(core.KindPreconditionFailed, errors.New("editor has no board"))

// Editor paints map templates with an owner/army brush and saves them as
// named maps. It never autosaves.
type Editor struct {
	board   *core.Board
	gateway *persistence.Gateway
	bus     events.Publisher
	maxArmy int
	logger  zerolog.Logger

	brushOwner core.Owner
	brushArmy  int
}

// NewEditor creates an editor. A nil gateway fails every save and load. bus
// may be nil; when set, painted tiles are published as tiles.changed.
func NewEditor(gw *persistence.Gateway, maxArmy int, bus events.Publisher, logger zerolog.Logger) *Editor {
	if gw == nil {
		gw = persistence.NewGateway(nil, logger)
	}
	return &Editor{
		gateway:    gw,
		bus:        bus,
		maxArmy:    maxArmy,
		logger:     logger.With().Str("component", "map_editor").Logger(),
		brushOwner: core.Unused(),
	}
}

// Enter starts a blank map of the given extent with every tile Unused and
// resets the brush to Unused with no army
func (e *Editor) Enter(qRadius, rRadius int) {
	e.board = core.NewBoard(qRadius, rRadius, e.maxArmy)
	e.brushOwner, e.brushArmy = core.Unused(), 0
	e.logger.Info().
		Int("q_radius", qRadius).
		Int("r_radius", rRadius).
		Int("tiles", e.board.Len()).
		Msg("Editor entered")
}

// Board returns a copy of the map being edited, nil before Enter or Load
func (e *Editor) Board() *core.Board {
	if e.board == nil {
		return nil
	}
	return e.board.Clone()
}

// Brush returns the current brush
func (e *Editor) Brush() (core.Owner, int) { return e.brushOwner, e.brushArmy }

// SetBrush sets the owner and army painted by ApplyBrush
func (e *Editor) SetBrush(owner core.Owner, army int) error {
	if id, ok := owner.PlayerID(); ok && !common.IsValidPlayerID(id, common.MaxPlayerCount) {
		return fmt.Errorf("brush player %d outside 1..%d: %w", id, common.MaxPlayerCount, core.ErrInvalidPlayer)
	}
	if army < 0 {
		return fmt.Errorf("brush army must not be negative, got %d", army)
	}
	e.brushOwner, e.brushArmy = owner, army
	return nil
}

// ApplyBrush paints the tile at index: the owner always, the army unless the
// brush owner is Unused
func (e *Editor) ApplyBrush(index int) error {
	if e.board == nil {
		return ErrEditorInactive
	}
	if !e.board.SetOwner(index, e.brushOwner) {
		return core.ErrTileNotFound
	}
	if !e.brushOwner.IsUnused() {
		e.board.SetArmy(index, e.brushArmy)
	}

	if e.bus != nil {
		e.bus.Publish(events.NewTilesChangedEvent("editor", "editor", tileChanges(e.board, []int{index})))
	}
	e.logger.Debug().
		Int("index", index).
		Str("owner", e.brushOwner.String()).
		Int("army", e.board.Army(index)).
		Msg("Brush applied")
	return nil
}

// Save writes the map under name
func (e *Editor) Save(ctx context.Context, name string) error {
	if e.board == nil {
		return ErrEditorInactive
	}
	return e.gateway.SaveMap(ctx, name, e.board)
}

// Load replaces the map being edited with a saved one
func (e *Editor) Load(ctx context.Context, name string) (persistence.MapInfo, error) {
	board, info, err := e.gateway.LoadMap(ctx, name, e.maxArmy)
	if err != nil {
		return persistence.MapInfo{}, err
	}
	e.board = board
	e.logger.Info().Str("map", name).Int("tiles", info.TileCount).Msg("Map loaded into editor")
	return info, nil
}

// List returns the saved maps
func (e *Editor) List(ctx context.Context) ([]persistence.MapInfo, error) {
	return e.gateway.ListMaps(ctx)
}

// Delete removes a saved map
func (e *Editor) Delete(ctx context.Context, name string) error {
	return e.gateway.DeleteMap(ctx, name)
}
