package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	ctx := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp())
	if round := event.Round(); round > 0 {
		ctx = ctx.Int("round", round)
	}
	eventLogger := ctx.Logger()

	logEvent := eventLogger.WithLevel(ls.logLevel)
	if ls.logLevel == zerolog.NoLevel || ls.logLevel == zerolog.Disabled {
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Int("num_players", e.NumPlayers).
			Int("tile_count", e.TileCount).
			Str("source", e.Source)

	case *events.GameEndedEvent:
		logEvent.
			Int("winner", e.Winner).
			Int("final_round", e.FinalRound).
			Str("reason", e.Reason)

	case *events.ActionConsumedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("actions_taken", e.ActionsTaken).
			Int("actions_remaining", e.ActionsRemaining)

	case *events.ActionRejectedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Str("action", e.Action).
			Str("reason", e.Reason)

	case *events.TurnEndedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("next_player", e.NextPlayer).
			Int("turns_taken", e.TurnsTaken)

	case *events.RoundEndedEvent:
		logEvent.
			Int("completed_round", e.CompletedRound).
			Int("next_round", e.NextRound)

	case *events.ReinforcementsAppliedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("tile_count", e.TileCount).
			Int("armies_added", e.ArmiesAdded)

	case *events.MoveExecutedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Str("from", e.From.String()).
			Str("to", e.To.String()).
			Int("path_length", len(e.Path)).
			Int("credit", e.Credit)

	case *events.CombatResolvedEvent:
		logEvent.
			Int("attacker_id", e.AttackerID).
			Int("defender_id", e.DefenderID).
			Str("from", e.From.String()).
			Str("to", e.To.String()).
			Int("attack_sum", e.AttackSum).
			Int("defend_sum", e.DefendSum).
			Int("winner_id", e.WinnerID).
			Int("result_army", e.ResultArmy).
			Bool("tie", e.Tie)

	case *events.TilesChangedEvent:
		logEvent.
			Int("tiles_changed", len(e.Changes)).
			Str("cause", e.Cause)

	case *events.TileSelectedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("index", e.Index).
			Bool("movement_mode", e.MovementMode)

	case *events.PlayerEliminatedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("eliminated_by", e.EliminatedBy)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Game event")
}
