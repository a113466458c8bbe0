package subscribers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/hexwar/internal/game/events"
	"github.com/mitchelldurbincs/hexwar/internal/persistence"
)

// SnapshotFunc returns the current board and turn counters. It is called
// from inside event delivery, so it must not take the lock the publisher
// already holds.
type SnapshotFunc func() persistence.Snapshot

// AutosaveSubscriber writes the autosave document after every counted
// action, turn end, round end and game end. Write failures are logged and
// never reach the publisher.
type AutosaveSubscriber struct {
	id       string
	gateway  *persistence.Gateway
	snapshot SnapshotFunc
	timeout  time.Duration
	logger   zerolog.Logger

	saves    int
	failures int
}

var autosaveEvents = map[string]bool{
	events.TypeActionConsumed: true,
	events.TypeTurnEnded:      true,
	events.TypeRoundEnded:     true,
	events.TypeGameEnded:      true,
}

// NewAutosaveSubscriber creates an autosave subscriber writing through gateway
func NewAutosaveSubscriber(id string, gateway *persistence.Gateway, snapshot SnapshotFunc, logger zerolog.Logger) *AutosaveSubscriber {
	return &AutosaveSubscriber{
		id:       id,
		gateway:  gateway,
		snapshot: snapshot,
		timeout:  5 * time.Second,
		logger:   logger.With().Str("subscriber", "autosave").Logger(),
	}
}

// ID returns the subscriber's unique identifier
func (as *AutosaveSubscriber) ID() string { return as.id }

// InterestedIn reports whether eventType triggers a save
func (as *AutosaveSubscriber) InterestedIn(eventType string) bool {
	return autosaveEvents[eventType]
}

// HandleEvent snapshots the session and writes it
func (as *AutosaveSubscriber) HandleEvent(event events.Event) {
	if as.gateway == nil || as.snapshot == nil {
		return
	}
	snap := as.snapshot()
	if snap.Board == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), as.timeout)
	defer cancel()
	if err := as.gateway.SaveSnapshot(ctx, snap); err != nil {
		as.failures++
		as.logger.Error().
			Err(err).
			Str("event_type", event.Type()).
			Str("game_id", event.GameID()).
			Int("round", snap.Turn.RoundNumber).
			Msg("Autosave failed")
		return
	}
	as.saves++
}

// Counts returns how many saves succeeded and failed
func (as *AutosaveSubscriber) Counts() (saves, failures int) {
	return as.saves, as.failures
}
