package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/common"
	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/dice"
	"github.com/mitchelldurbincs/hexwar/internal/game/events"
	"github.com/mitchelldurbincs/hexwar/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/hexwar/internal/game/processor"
	"github.com/mitchelldurbincs/hexwar/internal/game/rules"
	"github.com/mitchelldurbincs/hexwar/internal/game/states"
	"github.com/mitchelldurbincs/hexwar/internal/persistence"
)

// ErrNoSelection is returned by previews that need a selected source tile
var ErrNoSelection = core.WithKind(core.KindPreconditionFailed, errors.New("no tile selected"))

// Config wires a Session
type Config struct {
	ID     string // generated when empty
	Rules  core.Rules
	Board  *core.Board
	Roller dice.Roller      // nil rejects every attack
	Bus    *events.EventBus // created when nil
	Logger zerolog.Logger
}

// Session is one game: the board, the turn scheduler and the rules it was
// created with, plus the transient selection state of the UI. Every exported
// method takes the session lock, so commands never interleave. An attack
// holds the lock across the dice roll.
type Session struct {
	mu sync.Mutex

	id        string
	rules     core.Rules
	board     *core.Board
	scheduler *states.TurnScheduler
	roller    dice.Roller
	bus       *events.EventBus
	processor *processor.ActionProcessor
	winCheck  *rules.WinConditionChecker
	legal     *rules.LegalMoveCalculator
	logger    zerolog.Logger

	selected     int // -1 when nothing is selected
	movementMode bool
	preview      *core.MovementPlan
}

// Remaining holds the scheduler's remaining counters. Rounds is -1 when the
// game has no round cap.
type Remaining struct {
	Actions int
	Turns   int
	Rounds  int
}

// AttackPreview describes the battle an attack would start
type AttackPreview struct {
	From         core.Coordinate
	To           core.Coordinate
	AttackerID   int
	DefenderID   int
	AttackerDice int
	DefenderDice int
}

// NewSession creates a session in the Setup phase. The board must only hold
// tiles of players 1..Rules.PlayerCount.
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if cfg.Board == nil {
		return nil, errors.New("session requires a board")
	}
	for _, pid := range cfg.Board.ActivePlayers() {
		if !common.IsValidPlayerID(pid, cfg.Rules.PlayerCount) {
			return nil, fmt.Errorf("board holds tiles of player %d in a %d player game: %w",
				pid, cfg.Rules.PlayerCount, core.ErrInvalidPlayer)
		}
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := cfg.Logger.With().Str("session_id", id).Logger()
	bus := cfg.Bus
	if bus == nil {
		bus = events.NewEventBus(logger)
	}

	s := &Session{
		id:        id,
		rules:     cfg.Rules,
		board:     cfg.Board,
		roller:    cfg.Roller,
		bus:       bus,
		processor: processor.NewActionProcessor(logger),
		winCheck:  rules.NewWinConditionChecker(logger, cfg.Rules.PlayerCount),
		legal:     rules.NewLegalMoveCalculator(),
		logger:    logger.With().Str("component", "session").Logger(),
		selected:  -1,
	}

	scheduler, err := states.NewTurnScheduler(states.SchedulerConfig{
		GameID:     id,
		Rules:      cfg.Rules,
		Bus:        bus,
		Reinforcer: NewReinforcementManager(cfg.Board, cfg.Rules, bus, id, logger),
		Judge:      func() int { return s.winCheck.Leader(s.board) },
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	s.scheduler = scheduler
	return s, nil
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Rules returns the rules the session was created with
func (s *Session) Rules() core.Rules { return s.rules }

// Bus returns the event bus the session publishes on. Handlers run while
// the session lock is held and must not call back into the session.
func (s *Session) Bus() *events.EventBus { return s.bus }

// Restore replaces the turn counters with saved ones. Only allowed before
// Start.
func (s *Session) Restore(ts states.TurnState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Restore(ts)
}

// Start begins play and publishes game.started. A board on which the game
// is already decided ends immediately.
func (s *Session) Start(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.scheduler.Start(); err != nil {
		return err
	}
	s.bus.Publish(events.NewGameStartedEvent(s.id, s.rules.PlayerCount, s.board.Len(), source))
	s.logger.Info().
		Str("source", source).
		Int("players", s.rules.PlayerCount).
		Int("tiles", s.board.Len()).
		Int("round", s.scheduler.State().RoundNumber).
		Msg("Game started")

	if s.scheduler.Phase() == states.PhasePlayerActing {
		if over, winner := s.winCheck.CheckGameOver(s.board); over {
			return s.scheduler.EndGame(winner, endReason(winner))
		}
	}
	return nil
}

// EnableAutosave subscribes an autosave writer to the session's bus. Saves
// happen synchronously during event delivery.
func (s *Session) EnableAutosave(gw *persistence.Gateway) *subscribers.AutosaveSubscriber {
	sub := subscribers.NewAutosaveSubscriber("autosave_"+s.id, gw, s.snapshotLocked, s.logger)
	s.bus.Subscribe(sub)
	return sub
}

// RequestMove moves the active player's army from one tile to another
func (s *Session) RequestMove(ctx context.Context, from, to core.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executeLocked(ctx, &core.MoveAction{PlayerID: s.activePlayer(), From: from, To: to})
}

// RequestAttack attacks an adjacent enemy tile. Once started the attack
// ignores cancellation of ctx.
func (s *Session) RequestAttack(ctx context.Context, from, to core.Coordinate) error {
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executeLocked(ctx, &core.AttackAction{PlayerID: s.activePlayer(), From: from, To: to})
}

// SelectTile handles a click on a tile.
//
// Outside movement mode only the active player's tiles can be selected. In
// movement mode the first click picks a source among the player's own and
// neutral tiles; the second click moves there, or attacks when the target
// belongs to an enemy. Clicking the source again clears the selection.
func (s *Session) SelectTile(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAcceptingLocked(); err != nil {
		return err
	}
	player := s.activePlayer()
	tile, ok := s.board.Tile(index)
	if !ok {
		return core.WrapPlayerError(player, "tile selection", core.ErrTileNotFound)
	}

	switch {
	case !s.movementMode:
		if !tile.Owner.Is(player) {
			s.clearSelectionLocked()
			return core.WrapPlayerError(player, "tile selection", core.ErrNotOwned)
		}
		s.selectLocked(index)
	case s.selected < 0:
		if !tile.Owner.Is(player) && !tile.Owner.IsNeutral() {
			return core.WrapPlayerError(player, "tile selection", core.ErrNotOwned)
		}
		s.selectLocked(index)
	case index == s.selected:
		s.clearSelectionLocked()
	default:
		src, _ := s.board.Tile(s.selected)
		if tile.Owner.IsEnemyOf(player) {
			return s.executeLocked(context.WithoutCancel(ctx), &core.AttackAction{PlayerID: player, From: src.Coord, To: tile.Coord})
		}
		return s.executeLocked(ctx, &core.MoveAction{PlayerID: player, From: src.Coord, To: tile.Coord})
	}
	return nil
}

// SetMovementMode toggles movement mode and clears the selection
func (s *Session) SetMovementMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movementMode = on
	s.clearSelectionLocked()
}

// MovementMode reports whether movement mode is on
func (s *Session) MovementMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.movementMode
}

// Selected returns the selected tile index
func (s *Session) Selected() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected >= 0
}

// EndTurnNow ends the active player's turn without spending the remaining
// actions
func (s *Session) EndTurnNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAcceptingLocked(); err != nil {
		return err
	}
	s.clearSelectionLocked()
	s.logger.Info().
		Int("player_id", s.activePlayer()).
		Int("actions_unused", s.scheduler.ActionsRemaining()).
		Msg("Turn ended early")
	return s.scheduler.EndTurn()
}

// Tiles returns a copy of every tile in index order
func (s *Session) Tiles() []core.Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Tiles()
}

// IndexAt returns the index of the tile at c
func (s *Session) IndexAt(c core.Coordinate) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.IndexAt(c)
}

// TileAt returns a copy of the tile at c
func (s *Session) TileAt(c core.Coordinate) (core.Tile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.TileAt(c)
}

// Board returns a deep copy of the board
func (s *Session) Board() *core.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// TurnState returns the scheduler counters
func (s *Session) TurnState() states.TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.State()
}

// Remaining returns the remaining actions, turns and rounds
func (s *Session) Remaining() Remaining {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Remaining{
		Actions: s.scheduler.ActionsRemaining(),
		Turns:   s.scheduler.TurnsRemaining(),
		Rounds:  s.scheduler.RoundsRemaining(),
	}
}

// Phase returns the current phase
func (s *Session) Phase() states.GamePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Phase()
}

// Winner returns the winner once the game is over, 0 otherwise
func (s *Session) Winner() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Winner()
}

// EndReason returns why the game ended
func (s *Session) EndReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.EndReason()
}

// MovementPreview plans a move from the selected tile to target without
// applying it
func (s *Session) MovementPreview(target int) (core.MovementPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.preview = nil
	if s.selected < 0 {
		return core.MovementPlan{}, ErrNoSelection
	}
	src, _ := s.board.Tile(s.selected)
	dst, ok := s.board.Tile(target)
	if !ok {
		return core.MovementPlan{}, core.ErrTileNotFound
	}
	plan, err := core.PlanMovement(s.board, src.Coord, dst.Coord, s.activePlayer())
	if err != nil {
		return core.MovementPlan{}, err
	}
	s.preview = &plan
	return plan, nil
}

// Preview returns the last movement plan computed by MovementPreview for the
// current selection
func (s *Session) Preview() (core.MovementPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return core.MovementPlan{}, false
	}
	return *s.preview, true
}

// Reachable returns the tiles the selected tile's army could be moved to,
// for highlighting
func (s *Session) Reachable() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected < 0 {
		return nil
	}
	src, _ := s.board.Tile(s.selected)
	return core.ReachableSet(s.board, s.selected, s.activePlayer(), src.Army-1)
}

// AttackPreview validates an attack from the selected tile on target and
// reports how many dice each side would roll
func (s *Session) AttackPreview(target int) (AttackPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected < 0 {
		return AttackPreview{}, ErrNoSelection
	}
	src, _ := s.board.Tile(s.selected)
	dst, ok := s.board.Tile(target)
	if !ok {
		return AttackPreview{}, core.ErrTileNotFound
	}
	player := s.activePlayer()
	attacker, defender, err := core.ValidateAttack(s.board, src.Coord, dst.Coord, player)
	if err != nil {
		return AttackPreview{}, err
	}
	defenderID, _ := defender.Owner.PlayerID()
	return AttackPreview{
		From:         attacker.Coord,
		To:           defender.Coord,
		AttackerID:   player,
		DefenderID:   defenderID,
		AttackerDice: attacker.Army,
		DefenderDice: defender.Army,
	}, nil
}

// PlayerStats returns per-player statistics derived from the board
func (s *Session) PlayerStats() []PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computePlayerStats(s.board, s.rules.PlayerCount, s.activePlayer())
}

// LegalActions lists every move and attack the active player could make
func (s *Session) LegalActions() []core.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scheduler.Phase().CanReceiveActions() {
		return nil
	}
	return s.legal.LegalActions(s.board, s.activePlayer())
}

// Snapshot returns the board and counters as they would be autosaved. The
// board is a copy.
func (s *Session) Snapshot() persistence.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return persistence.Snapshot{Turn: s.scheduler.State(), Board: s.board.Clone()}
}

// snapshotLocked is handed to the autosave subscriber, which runs while the
// publishing command holds s.mu.
func (s *Session) snapshotLocked() persistence.Snapshot {
	return persistence.Snapshot{Turn: s.scheduler.State(), Board: s.board}
}

func (s *Session) activePlayer() int {
	return s.scheduler.State().ActivePlayer
}

func (s *Session) checkAcceptingLocked() error {
	phase := s.scheduler.Phase()
	round := s.scheduler.State().RoundNumber
	if phase.IsTerminal() {
		return core.WrapGameStateError(round, phase.String(), core.ErrGameOver)
	}
	if !phase.CanReceiveActions() {
		return core.WrapGameStateError(round, phase.String(), states.ErrNotAcceptingActions)
	}
	return nil
}

// executeLocked runs one action through the processor, publishes what it
// changed, and then either ends the game or counts the action
func (s *Session) executeLocked(ctx context.Context, action core.Action) error {
	if err := s.checkAcceptingLocked(); err != nil {
		return s.rejectLocked(action, err)
	}

	aliveBefore := s.winCheck.AlivePlayers(s.board)
	res, err := s.processor.Process(ctx, s.board, action, s.activePlayer(), s.roller)
	if err != nil {
		return s.rejectLocked(action, err)
	}
	s.clearSelectionLocked()

	round := s.scheduler.State().RoundNumber
	switch {
	case res.Move != nil:
		s.bus.Publish(events.NewMoveExecutedEvent(s.id, *res.Move, round))
	case res.Combat != nil:
		from, to := actionEndpoints(action)
		s.bus.Publish(events.NewCombatResolvedEvent(s.id, from, to, *res.Combat, round))
	}
	s.bus.Publish(events.NewTilesChangedEvent(s.id, core.GetActionType(action), tileChanges(s.board, res.Changed)))

	return s.finishActionLocked(action.GetPlayerID(), aliveBefore)
}

func (s *Session) finishActionLocked(actor int, aliveBefore []int) error {
	round := s.scheduler.State().RoundNumber
	for _, pid := range s.winCheck.Eliminated(s.board, aliveBefore) {
		s.logger.Info().Int("player_id", pid).Int("eliminated_by", actor).Msg("Player eliminated")
		s.bus.Publish(events.NewPlayerEliminatedEvent(s.id, pid, actor, round))
	}
	if over, winner := s.winCheck.CheckGameOver(s.board); over {
		return s.scheduler.EndGame(winner, endReason(winner))
	}
	return s.scheduler.ConsumeAction()
}

func (s *Session) rejectLocked(action core.Action, err error) error {
	s.logger.Warn().
		Err(err).
		Str("action", core.GetActionType(action)).
		Str("kind", core.KindOf(err).String()).
		Msg("Action rejected")
	s.bus.Publish(events.NewActionRejectedEvent(s.id, action.GetPlayerID(), core.GetActionType(action), err, s.scheduler.State().RoundNumber))
	return err
}

func (s *Session) selectLocked(index int) {
	s.selected = index
	s.preview = nil
	s.bus.Publish(events.NewTileSelectedEvent(s.id, s.activePlayer(), index, s.movementMode))
}

func (s *Session) clearSelectionLocked() {
	s.preview = nil
	if s.selected < 0 {
		return
	}
	s.selected = -1
	s.bus.Publish(events.NewTileSelectedEvent(s.id, s.activePlayer(), -1, s.movementMode))
}

func actionEndpoints(action core.Action) (core.Coordinate, core.Coordinate) {
	switch a := action.(type) {
	case *core.MoveAction:
		return a.From, a.To
	case *core.AttackAction:
		return a.From, a.To
	}
	return core.Coordinate{}, core.Coordinate{}
}

func endReason(winner int) string {
	if winner == 0 {
		return "all players eliminated"
	}
	return "last player standing"
}

func tileChanges(b *core.Board, indices []int) []events.TileChange {
	changes := make([]events.TileChange, 0, len(indices))
	for _, idx := range indices {
		t, ok := b.Tile(idx)
		if !ok {
			continue
		}
		changes = append(changes, events.TileChange{Index: idx, Coord: t.Coord, Owner: t.Owner, Army: t.Army})
	}
	return changes
}
