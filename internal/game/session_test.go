package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/dice"
	"github.com/mitchelldurbincs/hexwar/internal/game/events"
	"github.com/mitchelldurbincs/hexwar/internal/game/states"
	"github.com/mitchelldurbincs/hexwar/internal/persistence"
	"github.com/mitchelldurbincs/hexwar/internal/testutil"
)

func at(q, r int) core.Coordinate { return core.NewCoordinate(q, r) }

func startSession(t *testing.T, board *core.Board, rules core.Rules, roller dice.Roller) (*Session, *testutil.EventRecorder) {
	t.Helper()
	s, err := NewSession(Config{Rules: rules, Board: board, Roller: roller, Logger: zerolog.Nop()})
	require.NoError(t, err)
	rec := testutil.NewEventRecorder("recorder")
	s.Bus().Subscribe(rec)
	require.NoError(t, s.Start(SourceNew))
	rec.Reset()
	return s, rec
}

func tileAt(t *testing.T, s *Session, c core.Coordinate) core.Tile {
	t.Helper()
	tile, ok := s.TileAt(c)
	require.True(t, ok, "no tile at %s", c)
	return tile
}

func indexAt(t *testing.T, s *Session, c core.Coordinate) int {
	t.Helper()
	idx, ok := s.IndexAt(c)
	require.True(t, ok, "no tile at %s", c)
	return idx
}

func TestNewSession_Validation(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		errIs error
	}{
		{"invalid rules", Config{Rules: core.Rules{PlayerCount: 0, ActionsPerTurn: 1, TurnsPerRound: 1}, Board: core.NewBoard(1, 1, 0)}, core.ErrInvalidRules},
		{"no board", Config{Rules: core.DefaultRules()}, nil},
		{"player outside rules", Config{Rules: core.DefaultRules(), Board: testutil.BuildBoard(t, 1, 1, 0, testutil.P(0, 0, 3, 1))}, core.ErrInvalidPlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Logger = zerolog.Nop()
			_, err := NewSession(tt.cfg)
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
		})
	}

	t.Run("generates an id", func(t *testing.T) {
		s, err := NewSession(Config{Rules: core.DefaultRules(), Board: testutil.DuelBoard(t), Logger: zerolog.Nop()})
		require.NoError(t, err)
		assert.Len(t, s.ID(), 36)
		assert.Equal(t, states.PhaseSetup, s.Phase())
	})
}

func TestSession_Move(t *testing.T) {
	ctx := context.Background()
	s, rec := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)

	require.NoError(t, s.RequestMove(ctx, at(0, 0), at(-1, 0)))

	assert.Equal(t, 1, tileAt(t, s, at(0, 0)).Army)
	dst := tileAt(t, s, at(-1, 0))
	assert.Equal(t, core.Player(1), dst.Owner)
	assert.Equal(t, 3, dst.Army)

	ts := s.TurnState()
	assert.Equal(t, 1, ts.ActionsTaken)
	assert.Equal(t, 1, ts.ActivePlayer)
	assert.Equal(t, 2, s.Remaining().Actions)
	assert.Equal(t, []string{events.TypeMoveExecuted, events.TypeTilesChanged, events.TypeActionConsumed}, rec.Types())
}

func TestSession_AttackDefenderWins(t *testing.T) {
	roller := dice.NewScriptedRoller(core.Outcome{AttackSum: 10, DefendSum: 15})
	s, rec := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), roller)

	require.NoError(t, s.RequestAttack(context.Background(), at(-1, 1), at(0, 1)))

	assert.Equal(t, [][2]int{{3, 5}}, roller.Calls())
	lost := tileAt(t, s, at(-1, 1))
	assert.Equal(t, core.Player(2), lost.Owner)
	assert.Equal(t, 2, lost.Army)
	assert.Equal(t, 1, tileAt(t, s, at(0, 1)).Army)
	assert.Equal(t, 1, s.TurnState().ActionsTaken)

	evs := rec.Events()
	require.NotEmpty(t, evs)
	combat, ok := evs[0].(*events.CombatResolvedEvent)
	require.True(t, ok)
	assert.Equal(t, 2, combat.WinnerID)
	assert.Equal(t, 2, combat.ResultArmy)
}

func TestSession_AttackIgnoresCancellation(t *testing.T) {
	roller := dice.NewDelayedRoller(dice.NewScriptedRoller(core.Outcome{AttackSum: 20, DefendSum: 1}), time.Millisecond)
	s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), roller)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.RequestAttack(ctx, at(0, 0), at(1, 0)))
	assert.Equal(t, core.Player(1), tileAt(t, s, at(1, 0)).Owner)
}

func TestSession_RejectedActions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		roller dice.Roller
		run    func(s *Session) error
		errIs  error
		kind   core.Kind
	}{
		{
			name:  "move into enemy",
			run:   func(s *Session) error { return s.RequestMove(ctx, at(0, 0), at(1, 0)) },
			errIs: core.ErrTargetHostile,
			kind:  core.KindInvalidOperation,
		},
		{
			name:  "move from enemy tile",
			run:   func(s *Session) error { return s.RequestMove(ctx, at(1, 0), at(2, 0)) },
			errIs: core.ErrNotOwned,
			kind:  core.KindInvalidOperation,
		},
		{
			name:  "move off the board",
			run:   func(s *Session) error { return s.RequestMove(ctx, at(0, 0), at(7, 7)) },
			errIs: core.ErrTileNotFound,
			kind:  core.KindNotFound,
		},
		{
			name:   "attack neutral",
			roller: dice.NewScriptedRoller(),
			run:    func(s *Session) error { return s.RequestAttack(ctx, at(0, 0), at(-1, 0)) },
			errIs:  core.ErrTargetNotEnemy,
			kind:   core.KindInvalidOperation,
		},
		{
			name:  "attack without dice",
			run:   func(s *Session) error { return s.RequestAttack(ctx, at(0, 0), at(1, 0)) },
			errIs: core.ErrDiceUnavailable,
			kind:  core.KindPreconditionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), tt.roller)
			before := s.Tiles()

			err := tt.run(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.errIs)
			assert.Equal(t, tt.kind, core.KindOf(err))

			assert.Equal(t, before, s.Tiles(), "rejected actions must not mutate the board")
			assert.Zero(t, s.TurnState().ActionsTaken)
			assert.Equal(t, []string{events.TypeActionRejected}, rec.Types())
		})
	}
}

func TestSession_TurnRotation(t *testing.T) {
	ctx := context.Background()
	s, rec := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)

	require.NoError(t, s.RequestMove(ctx, at(0, 0), at(-1, 0)))
	require.NoError(t, s.RequestMove(ctx, at(-1, 0), at(-2, 0)))
	require.NoError(t, s.RequestMove(ctx, at(-2, 0), at(-2, 1)))

	ts := s.TurnState()
	assert.Equal(t, 2, ts.ActivePlayer)
	assert.Zero(t, ts.ActionsTaken)
	assert.Equal(t, 1, ts.TurnsTaken)
	assert.Equal(t, 1, ts.RoundNumber)
	assert.Equal(t, 1, rec.Count(events.TypeTurnEnded))

	err := s.RequestMove(ctx, at(-2, 1), at(-1, 2))
	assert.ErrorIs(t, err, core.ErrNotOwned, "player 1 is no longer active")
}

func TestSession_RoundEndReinforces(t *testing.T) {
	s, rec := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)

	require.NoError(t, s.EndTurnNow())
	require.NoError(t, s.EndTurnNow())

	ts := s.TurnState()
	assert.Equal(t, 2, ts.RoundNumber)
	assert.Equal(t, 1, ts.ActivePlayer)
	assert.Equal(t, 5, tileAt(t, s, at(0, 0)).Army)
	assert.Equal(t, 4, tileAt(t, s, at(-1, 1)).Army)
	assert.Equal(t, 6, tileAt(t, s, at(1, 0)).Army)
	assert.Equal(t, 6, tileAt(t, s, at(0, 1)).Army)
	assert.Zero(t, tileAt(t, s, at(-1, 0)).Army, "neutral tiles are not reinforced")

	assert.Equal(t, 1, rec.Count(events.TypeRoundEnded))
	assert.Equal(t, 2, rec.Count(events.TypeReinforcementsApplied))
	assert.Equal(t, states.PhasePlayerActing, s.Phase())
}

func TestSession_RoundCapEndsGame(t *testing.T) {
	rules := core.DefaultRules()
	rules.RoundsPerGame = 1
	s, rec := startSession(t, testutil.DuelBoard(t), rules, nil)

	require.NoError(t, s.EndTurnNow())
	require.NoError(t, s.EndTurnNow())

	assert.Equal(t, states.PhaseGameOver, s.Phase())
	assert.Equal(t, 2, s.Winner(), "equal tiles, player 2 has more army")
	assert.Equal(t, "round limit reached", s.EndReason())
	assert.Equal(t, 1, rec.Count(events.TypeGameEnded))

	err := s.RequestMove(context.Background(), at(0, 0), at(-1, 0))
	assert.ErrorIs(t, err, core.ErrGameOver)
	assert.Equal(t, core.KindPreconditionFailed, core.KindOf(err))
	assert.ErrorIs(t, s.EndTurnNow(), core.ErrGameOver)
	assert.ErrorIs(t, s.SelectTile(context.Background(), 0), core.ErrGameOver)
	assert.Nil(t, s.LegalActions())
}

func TestSession_EliminationEndsGame(t *testing.T) {
	board := testutil.BuildBoard(t, 2, 2, 10, testutil.P(0, 0, 1, 4), testutil.P(1, 0, 2, 1))
	roller := dice.NewScriptedRoller(core.Outcome{AttackSum: 20, DefendSum: 1})
	s, rec := startSession(t, board, core.DefaultRules(), roller)

	require.NoError(t, s.RequestAttack(context.Background(), at(0, 0), at(1, 0)))

	assert.Equal(t, states.PhaseGameOver, s.Phase())
	assert.Equal(t, 1, s.Winner())
	assert.Equal(t, "last player standing", s.EndReason())
	assert.Equal(t, 1, rec.Count(events.TypePlayerEliminated))
	assert.Zero(t, rec.Count(events.TypeActionConsumed))

	for _, e := range rec.Events() {
		if pe, ok := e.(*events.PlayerEliminatedEvent); ok {
			assert.Equal(t, 2, pe.PlayerID)
			assert.Equal(t, 1, pe.EliminatedBy)
		}
	}
}

func TestSession_StartOnDecidedBoard(t *testing.T) {
	board := testutil.BuildBoard(t, 1, 1, 0, testutil.P(0, 0, 1, 3))
	s, err := NewSession(Config{Rules: core.DefaultRules(), Board: board, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, s.Start(SourceMap))
	assert.Equal(t, states.PhaseGameOver, s.Phase())
	assert.Equal(t, 1, s.Winner())
}

func TestSession_SelectTile(t *testing.T) {
	ctx := context.Background()

	t.Run("outside movement mode only own tiles", func(t *testing.T) {
		s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)
		err := s.SelectTile(ctx, indexAt(t, s, at(1, 0)))
		assert.ErrorIs(t, err, core.ErrNotOwned)
		err = s.SelectTile(ctx, indexAt(t, s, at(-1, 0)))
		assert.ErrorIs(t, err, core.ErrNotOwned)

		require.NoError(t, s.SelectTile(ctx, indexAt(t, s, at(0, 0))))
		idx, ok := s.Selected()
		assert.True(t, ok)
		assert.Equal(t, indexAt(t, s, at(0, 0)), idx)
		assert.Zero(t, s.TurnState().ActionsTaken)
	})

	t.Run("second click moves", func(t *testing.T) {
		s, rec := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)
		s.SetMovementMode(true)
		require.NoError(t, s.SelectTile(ctx, indexAt(t, s, at(0, 0))))
		require.NoError(t, s.SelectTile(ctx, indexAt(t, s, at(-1, 0))))

		assert.Equal(t, 3, tileAt(t, s, at(-1, 0)).Army)
		_, ok := s.Selected()
		assert.False(t, ok)
		assert.True(t, s.MovementMode())
		assert.Equal(t, 1, s.TurnState().ActionsTaken)
		assert.Equal(t, 2, rec.Count(events.TypeTileSelected), "select then clear")
	})

	t.Run("second click on enemy attacks", func(t *testing.T) {
		roller := dice.NewScriptedRoller(core.Outcome{AttackSum: 10, DefendSum: 15})
		s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), roller)
		s.SetMovementMode(true)
		require.NoError(t, s.SelectTile(ctx, indexAt(t, s, at(-1, 1))))
		require.NoError(t, s.SelectTile(ctx, indexAt(t, s, at(0, 1))))

		assert.Len(t, roller.Calls(), 1)
		assert.Equal(t, core.Player(2), tileAt(t, s, at(-1, 1)).Owner)
	})

	t.Run("source must be own or neutral", func(t *testing.T) {
		s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)
		s.SetMovementMode(true)
		assert.ErrorIs(t, s.SelectTile(ctx, indexAt(t, s, at(1, 0))), core.ErrNotOwned)
		require.NoError(t, s.SelectTile(ctx, indexAt(t, s, at(-1, 0))))
		_, ok := s.Selected()
		assert.True(t, ok)
	})

	t.Run("clicking the source again clears", func(t *testing.T) {
		s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)
		s.SetMovementMode(true)
		src := indexAt(t, s, at(0, 0))
		require.NoError(t, s.SelectTile(ctx, src))
		require.NoError(t, s.SelectTile(ctx, src))
		_, ok := s.Selected()
		assert.False(t, ok)
	})

	t.Run("unknown index", func(t *testing.T) {
		s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)
		err := s.SelectTile(ctx, 999)
		assert.ErrorIs(t, err, core.ErrTileNotFound)
		assert.Equal(t, core.KindNotFound, core.KindOf(err))
	})
}

func TestSession_Previews(t *testing.T) {
	s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)

	_, err := s.MovementPreview(0)
	assert.ErrorIs(t, err, ErrNoSelection)
	_, err = s.AttackPreview(0)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Nil(t, s.Reachable())

	require.NoError(t, s.SelectTile(context.Background(), indexAt(t, s, at(0, 0))))

	t.Run("movement", func(t *testing.T) {
		plan, err := s.MovementPreview(indexAt(t, s, at(-2, 0)))
		require.NoError(t, err)
		assert.Equal(t, 2, plan.Credit)
		require.Len(t, plan.Steps, 3)
		assert.Equal(t, 1, plan.Steps[0].Army)
		assert.Equal(t, 1, plan.Steps[1].Army)
		assert.Equal(t, 2, plan.Steps[2].Army)
		assert.Equal(t, 4, tileAt(t, s, at(0, 0)).Army, "previews do not mutate")

		stored, ok := s.Preview()
		assert.True(t, ok)
		assert.Equal(t, plan.Credit, stored.Credit)

		_, err = s.MovementPreview(indexAt(t, s, at(1, 0)))
		assert.ErrorIs(t, err, core.ErrTargetHostile)
		_, ok = s.Preview()
		assert.False(t, ok)
	})

	t.Run("reachable", func(t *testing.T) {
		reach := s.Reachable()
		assert.Contains(t, reach, indexAt(t, s, at(-1, 0)))
		assert.Contains(t, reach, indexAt(t, s, at(-1, 1)))
		assert.NotContains(t, reach, indexAt(t, s, at(1, 0)))
		assert.NotContains(t, reach, indexAt(t, s, at(0, 1)))
		assert.NotContains(t, reach, indexAt(t, s, at(0, 0)))
	})

	t.Run("attack", func(t *testing.T) {
		p, err := s.AttackPreview(indexAt(t, s, at(1, 0)))
		require.NoError(t, err)
		assert.Equal(t, AttackPreview{From: at(0, 0), To: at(1, 0), AttackerID: 1, DefenderID: 2, AttackerDice: 4, DefenderDice: 5}, p)

		_, err = s.AttackPreview(indexAt(t, s, at(-1, 0)))
		assert.ErrorIs(t, err, core.ErrTargetNotEnemy)
	})
}

func TestSession_PlayerStats(t *testing.T) {
	s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)
	stats := s.PlayerStats()
	require.Len(t, stats, 2)

	assert.Equal(t, 1, stats[0].PlayerID)
	assert.Equal(t, 2, stats[0].TileCount)
	assert.Equal(t, 7, stats[0].TotalArmy)
	assert.Equal(t, 4, stats[0].LargestArmy)
	assert.True(t, stats[0].Alive)
	assert.True(t, stats[0].Active)

	assert.Equal(t, 10, stats[1].TotalArmy)
	assert.False(t, stats[1].Active)
}

func TestSession_Autosave(t *testing.T) {
	ctx := context.Background()
	gw := persistence.NewGateway(persistence.NewMemoryStore(), zerolog.Nop())
	s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)
	sub := s.EnableAutosave(gw)

	require.NoError(t, s.RequestMove(ctx, at(0, 0), at(-1, 0)))
	snap, err := gw.LoadSnapshot(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Turn.ActionsTaken)
	moved, ok := snap.Board.TileAt(at(-1, 0))
	require.True(t, ok)
	assert.Equal(t, core.Player(1), moved.Owner)
	assert.Equal(t, 3, moved.Army)

	require.NoError(t, s.EndTurnNow())
	snap, err = gw.LoadSnapshot(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Turn.ActivePlayer)
	assert.Zero(t, snap.Turn.ActionsTaken)

	saves, failures := sub.Counts()
	assert.Equal(t, 2, saves)
	assert.Zero(t, failures)
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s, _ := startSession(t, testutil.DuelBoard(t), core.DefaultRules(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = s.RequestMove(context.Background(), at(0, 0), at(1, 0))
				return
			}
			_ = s.Tiles()
			_ = s.TurnState()
			_ = s.PlayerStats()
		}(i)
	}
	wg.Wait()
	assert.Zero(t, s.TurnState().ActionsTaken)
}
