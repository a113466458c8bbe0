package mapgen

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
)

// ErrNoStartLocation is returned when a player's start tile cannot be placed
var ErrNoStartLocation = errors.New("no valid start location")

// MapConfig holds configuration for map generation
type MapConfig struct {
	QRadius         int
	RRadius         int
	PlayerCount     int
	BlockedRatio    float64 // fraction of tiles marked Blocked
	NeutralMaxArmy  int     // neutral armies are drawn from [0, NeutralMaxArmy]
	StartArmy       int
	MinStartSpacing int
	MaxArmy         int // board army cap, 0 = unbounded
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig(qRadius, rRadius, players int) MapConfig {
	return MapConfig{
		QRadius:         qRadius,
		RRadius:         rRadius,
		PlayerCount:     players,
		BlockedRatio:    0.1,
		NeutralMaxArmy:  2,
		StartArmy:       5,
		MinStartSpacing: 3,
		MaxArmy:         10,
	}
}

// Validate checks the config for values the generator cannot work with
func (c MapConfig) Validate() error {
	switch {
	case c.QRadius < 0 || c.RRadius < 0:
		return fmt.Errorf("map radius must be non-negative, got (%d,%d)", c.QRadius, c.RRadius)
	case c.PlayerCount < 0:
		return fmt.Errorf("player count must be non-negative, got %d", c.PlayerCount)
	case c.BlockedRatio < 0 || c.BlockedRatio >= 1:
		return fmt.Errorf("blocked ratio must be in [0,1), got %g", c.BlockedRatio)
	case c.NeutralMaxArmy < 0:
		return fmt.Errorf("neutral max army must be non-negative, got %d", c.NeutralMaxArmy)
	case c.StartArmy < 1:
		return fmt.Errorf("start army must be at least 1, got %d", c.StartArmy)
	}
	return nil
}

// Generator handles map generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

// NewGenerator creates a new map generator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// GenerateMap creates a new board with blocked tiles, neutral armies and one
// start tile per player
func (g *Generator) GenerateMap() (*core.Board, error) {
	if err := g.config.Validate(); err != nil {
		return nil, err
	}
	board := core.NewBoard(g.config.QRadius, g.config.RRadius, g.config.MaxArmy)
	board.AssignAll(core.Neutral())

	g.placeBlocked(board)
	g.placeNeutralArmies(board)
	if _, err := g.placeStarts(board); err != nil {
		return nil, err
	}
	return board, nil
}

func (g *Generator) placeBlocked(b *core.Board) {
	want := int(float64(b.Len()) * g.config.BlockedRatio)
	placed := 0

	// Use a maximum attempt counter to avoid infinite loops
	maxAttempts := want * 10
	for attempts := 0; placed < want && attempts < maxAttempts; attempts++ {
		idx := g.rng.Intn(b.Len())
		if b.OwnerOf(idx).IsNeutral() {
			b.SetOwner(idx, core.Blocked())
			b.SetArmy(idx, 0)
			placed++
		}
	}
}

func (g *Generator) placeNeutralArmies(b *core.Board) {
	if g.config.NeutralMaxArmy == 0 {
		return
	}
	for i := 0; i < b.Len(); i++ {
		if b.OwnerOf(i).IsNeutral() {
			b.SetArmy(i, g.rng.Intn(g.config.NeutralMaxArmy+1))
		}
	}
}

func (g *Generator) placeStarts(b *core.Board) ([]StartPlacement, error) {
	placements := make([]StartPlacement, 0, g.config.PlayerCount)

	for pid := 1; pid <= g.config.PlayerCount; pid++ {
		placement, err := g.findStartLocation(b, pid, placements)
		if err != nil {
			return nil, err
		}
		b.SetOwner(placement.Index, core.Player(pid))
		b.SetArmy(placement.Index, g.config.StartArmy)
		placements = append(placements, placement)
	}
	return placements, nil
}

func (g *Generator) findStartLocation(b *core.Board, pid int, existing []StartPlacement) (StartPlacement, error) {
	maxAttempts := b.Len() * 2

	for attempts := 0; attempts < maxAttempts; attempts++ {
		idx := g.rng.Intn(b.Len())
		t, _ := b.Tile(idx)
		if !t.Owner.IsNeutral() {
			continue
		}

		validLocation := true
		for _, other := range existing {
			if core.Distance(t.Coord, other.Coord) < g.config.MinStartSpacing {
				validLocation = false
				break
			}
		}
		if validLocation {
			return StartPlacement{PlayerID: pid, Index: idx, Coord: t.Coord}, nil
		}
	}

	// Fallback: the neutral tile farthest from every placed start
	best, bestDist := -1, -1
	for _, t := range b.Tiles() {
		if !t.Owner.IsNeutral() {
			continue
		}
		nearest := b.Len()
		for _, other := range existing {
			nearest = min(nearest, core.Distance(t.Coord, other.Coord))
		}
		if nearest > bestDist {
			best, bestDist = t.Index, nearest
		}
	}
	if best < 0 {
		return StartPlacement{}, fmt.Errorf("player %d: %w", pid, ErrNoStartLocation)
	}
	t, _ := b.Tile(best)
	return StartPlacement{PlayerID: pid, Index: best, Coord: t.Coord}, nil
}

// StartPlacement tracks where a player's start tile was placed
type StartPlacement struct {
	PlayerID int
	Index    int
	Coord    core.Coordinate
}
