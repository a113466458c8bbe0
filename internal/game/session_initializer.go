package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/dice"
	"github.com/mitchelldurbincs/hexwar/internal/game/events"
	"github.com/mitchelldurbincs/hexwar/internal/game/mapgen"
	"github.com/mitchelldurbincs/hexwar/internal/persistence"
)

// Sources reported in game.started
const (
	SourceNew      = "new"
	SourceMap      = "map"
	SourceAutosave = "autosave"
)

// InitConfig holds everything needed to create sessions
type InitConfig struct {
	Rules core.Rules
	// Map configures new-game generation. PlayerCount and MaxArmy are taken
	// from Rules.
	Map     mapgen.MapConfig
	Roller  dice.Roller
	Gateway *persistence.Gateway // nil disables loading and autosave
	// Autosave subscribes an autosave writer to every session created
	Autosave bool
	Rng      *rand.Rand
	// Subscribers are added to each new session's bus before it starts
	Subscribers []events.Subscriber
	Logger      zerolog.Logger
}

// SessionInitializer creates started sessions from a generated map, a named
// map, or the autosave
type SessionInitializer struct {
	config InitConfig
	logger zerolog.Logger
}

// NewSessionInitializer creates a new session initializer
func NewSessionInitializer(cfg InitConfig) *SessionInitializer {
	if cfg.Rng == nil {
		cfg.Rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	cfg.Map.PlayerCount = cfg.Rules.PlayerCount
	cfg.Map.MaxArmy = cfg.Rules.MaxArmyStrength
	return &SessionInitializer{
		config: cfg,
		logger: cfg.Logger.With().Str("component", "session_initializer").Logger(),
	}
}

// NewGame generates a fresh map and starts a session on it
func (si *SessionInitializer) NewGame(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		si.logger.Error().Err(err).Msg("Session creation cancelled before map generation")
		return nil, err
	}
	board, err := mapgen.NewGenerator(si.config.Map, si.config.Rng).GenerateMap()
	if err != nil {
		return nil, fmt.Errorf("map generation failed: %w", err)
	}
	return si.start(board, nil, SourceNew)
}

// FromMap starts a session on a saved map
func (si *SessionInitializer) FromMap(ctx context.Context, name string) (*Session, error) {
	board, info, err := si.gateway().LoadMap(ctx, name, si.config.Rules.MaxArmyStrength)
	if err != nil {
		return nil, err
	}
	si.logger.Info().
		Str("map", info.Name).
		Time("saved_at", info.SavedAt).
		Int("tiles", info.TileCount).
		Msg("Loaded map")
	return si.start(board, nil, SourceMap)
}

// Resume restores the autosave. A save that does not fit the current rules
// is reported as persistence.ErrNoSavedState.
func (si *SessionInitializer) Resume(ctx context.Context) (*Session, error) {
	snap, err := si.gateway().LoadSnapshot(ctx, si.config.Rules.MaxArmyStrength)
	if err != nil {
		return nil, err
	}
	s, err := si.start(snap.Board, &snap, SourceAutosave)
	if err != nil {
		si.logger.Warn().Err(err).Msg("Autosave does not fit the current rules")
		return nil, fmt.Errorf("%w: %w", persistence.ErrNoSavedState, err)
	}
	return s, nil
}

// ResumeOrNew resumes the autosave when there is one and otherwise starts a
// new game. The flag reports whether the autosave was used.
func (si *SessionInitializer) ResumeOrNew(ctx context.Context) (*Session, bool, error) {
	s, err := si.Resume(ctx)
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, persistence.ErrNoSavedState) {
		return nil, false, err
	}
	si.logger.Info().Err(err).Msg("No usable autosave, starting a new game")
	s, err = si.NewGame(ctx)
	return s, false, err
}

func (si *SessionInitializer) gateway() *persistence.Gateway {
	if si.config.Gateway == nil {
		return persistence.NewGateway(nil, si.logger)
	}
	return si.config.Gateway
}

func (si *SessionInitializer) start(board *core.Board, snap *persistence.Snapshot, source string) (*Session, error) {
	s, err := NewSession(Config{
		Rules:  si.config.Rules,
		Board:  board,
		Roller: si.config.Roller,
		Logger: si.config.Logger,
	})
	if err != nil {
		return nil, err
	}
	if snap != nil {
		if err := s.Restore(snap.Turn); err != nil {
			return nil, err
		}
	}

	for _, sub := range si.config.Subscribers {
		s.Bus().Subscribe(sub)
	}
	if si.config.Autosave && si.config.Gateway != nil {
		s.EnableAutosave(si.config.Gateway)
	}

	if err := s.Start(source); err != nil {
		return nil, fmt.Errorf("session start failed: %w", err)
	}

	si.logger.Info().
		Str("session_id", s.ID()).
		Str("source", source).
		Int("players", si.config.Rules.PlayerCount).
		Int("tiles", board.Len()).
		Msg("Session created successfully")
	return s, nil
}
