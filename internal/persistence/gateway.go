package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/states"
)

const (
	// AutosaveKey holds the single autosave document
	AutosaveKey = "hexwar_autosave"
	// MapKeyPrefix prefixes every named map key
	MapKeyPrefix = "hexwar_map_"
)

var (
	// ErrNoSavedState is returned when a document is missing, unreadable or
	// corrupt. Callers treat it as "nothing saved".
	ErrNoSavedState = core.WithKind(core.KindPersistenceUnavailable, errors.New("no saved state"))
	// ErrStoreUnavailable wraps write failures and a missing store
	ErrStoreUnavailable = core.WithKind(core.KindPersistenceUnavailable, errors.New("store unavailable"))
	// ErrInvalidMapName is returned for an empty map name
	ErrInvalidMapName = errors.New("map name must not be empty")
)

// MapKey returns the store key of a named map
func MapKey(name string) string { return MapKeyPrefix + name }

// Snapshot is a board together with the turn counters it was saved at
type Snapshot struct {
	Turn  states.TurnState
	Board *core.Board
}

// MapInfo describes a saved map without its tiles
type MapInfo struct {
	Name      string
	SavedAt   time.Time
	TileCount int
}

// Gateway reads and writes autosave and map documents through a Store.
// A nil store makes every read return ErrNoSavedState and every write
// ErrStoreUnavailable.
type Gateway struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewGateway creates a gateway over store
func NewGateway(store Store, logger zerolog.Logger) *Gateway {
	return &Gateway{
		store:  store,
		logger: logger.With().Str("component", "persistence_gateway").Logger(),
		now:    time.Now,
	}
}

// Store returns the underlying store
func (g *Gateway) Store() Store { return g.store }

// SaveSnapshot writes the autosave document
func (g *Gateway) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if snap.Board == nil {
		return errors.New("snapshot has no board")
	}
	doc := AutosaveDocument{
		TurnState: EncodeTurn(snap.Turn),
		Tiles:     EncodeTiles(snap.Board),
	}
	if err := g.put(ctx, AutosaveKey, doc); err != nil {
		return err
	}
	g.logger.Debug().
		Int("round", snap.Turn.RoundNumber).
		Int("active_player", snap.Turn.ActivePlayer).
		Int("tiles", len(doc.Tiles)).
		Msg("Autosave written")
	return nil
}

// LoadSnapshot reads the autosave document. maxArmy is applied to the
// rebuilt board.
func (g *Gateway) LoadSnapshot(ctx context.Context, maxArmy int) (Snapshot, error) {
	var doc AutosaveDocument
	if err := g.get(ctx, AutosaveKey, &doc); err != nil {
		return Snapshot{}, err
	}
	board, err := DecodeTiles(doc.Tiles, maxArmy)
	if err != nil {
		return Snapshot{}, g.corrupt(AutosaveKey, err)
	}
	return Snapshot{Turn: DecodeTurn(doc.TurnState), Board: board}, nil
}

// ClearSnapshot removes the autosave document
func (g *Gateway) ClearSnapshot(ctx context.Context) error {
	if g.store == nil {
		return ErrStoreUnavailable
	}
	if err := g.store.Remove(ctx, AutosaveKey); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// SaveMap writes board as the named map, replacing any map of that name
func (g *Gateway) SaveMap(ctx context.Context, name string, b *core.Board) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidMapName
	}
	doc := MapDocument{
		Name:  name,
		Date:  g.now().UnixMilli(),
		Tiles: EncodeTiles(b),
	}
	if err := g.put(ctx, MapKey(name), doc); err != nil {
		return err
	}
	g.logger.Info().Str("map", name).Int("tiles", len(doc.Tiles)).Msg("Map saved")
	return nil
}

// LoadMap reads the named map
func (g *Gateway) LoadMap(ctx context.Context, name string, maxArmy int) (*core.Board, MapInfo, error) {
	var doc MapDocument
	if err := g.get(ctx, MapKey(name), &doc); err != nil {
		return nil, MapInfo{}, err
	}
	board, err := DecodeTiles(doc.Tiles, maxArmy)
	if err != nil {
		return nil, MapInfo{}, g.corrupt(MapKey(name), err)
	}
	return board, mapInfo(name, doc), nil
}

// ListMaps returns the saved maps sorted by name. Unreadable documents are
// skipped.
func (g *Gateway) ListMaps(ctx context.Context) ([]MapInfo, error) {
	if g.store == nil {
		return nil, ErrStoreUnavailable
	}
	keys, err := g.store.ListKeys(ctx, MapKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	maps := make([]MapInfo, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, MapKeyPrefix)
		var doc MapDocument
		if err := g.get(ctx, key, &doc); err != nil {
			g.logger.Warn().Err(err).Str("map", name).Msg("Skipping unreadable map")
			continue
		}
		maps = append(maps, mapInfo(name, doc))
	}
	return maps, nil
}

// DeleteMap removes the named map
func (g *Gateway) DeleteMap(ctx context.Context, name string) error {
	if g.store == nil {
		return ErrStoreUnavailable
	}
	if err := g.store.Remove(ctx, MapKey(name)); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	g.logger.Info().Str("map", name).Msg("Map deleted")
	return nil
}

func mapInfo(name string, doc MapDocument) MapInfo {
	return MapInfo{
		Name:      name,
		SavedAt:   time.UnixMilli(doc.Date),
		TileCount: len(doc.Tiles),
	}
}

func (g *Gateway) put(ctx context.Context, key string, doc any) error {
	if g.store == nil {
		return ErrStoreUnavailable
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := g.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (g *Gateway) get(ctx context.Context, key string, doc any) error {
	if g.store == nil {
		return ErrNoSavedState
	}
	data, err := g.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			g.logger.Warn().Err(err).Str("key", key).Msg("Read failed")
		}
		return fmt.Errorf("%w: %w", ErrNoSavedState, err)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return g.corrupt(key, err)
	}
	return nil
}

func (g *Gateway) corrupt(key string, err error) error {
	g.logger.Warn().Err(err).Str("key", key).Msg("Corrupt document")
	return fmt.Errorf("%w: %s: %w", ErrNoSavedState, key, err)
}
