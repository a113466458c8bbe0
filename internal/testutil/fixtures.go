package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/events"
)

// Placement puts an owner and army on one coordinate
type Placement struct {
	Q, R  int
	Owner core.Owner
	Army  int
}

// P is shorthand for a player-owned placement
func P(q, r, player, army int) Placement {
	return Placement{Q: q, R: r, Owner: core.Player(player), Army: army}
}

// BuildBoard creates a hexagonal board with every tile Neutral and no army,
// then applies the placements in order
func BuildBoard(t testing.TB, qRadius, rRadius, maxArmy int, placements ...Placement) *core.Board {
	t.Helper()
	b := core.NewBoard(qRadius, rRadius, maxArmy)
	b.AssignAll(core.Neutral())
	for _, p := range placements {
		idx, ok := b.IndexAt(core.NewCoordinate(p.Q, p.R))
		require.True(t, ok, "placement (%d,%d) is off the board", p.Q, p.R)
		b.SetOwner(idx, p.Owner)
		b.SetArmy(idx, p.Army)
	}
	return b
}

// DuelBoard is a radius 2 board with player 1 at (0,0) holding 4 army and
// player 2 at (1,0) and (0,1) holding 5 each, plus player 1 at (-1,1) with 3
func DuelBoard(t testing.TB) *core.Board {
	t.Helper()
	return BuildBoard(t, 2, 2, 10,
		P(0, 0, 1, 4),
		P(-1, 1, 1, 3),
		P(1, 0, 2, 5),
		P(0, 1, 2, 5),
	)
}

// EventRecorder collects every event published on a bus
type EventRecorder struct {
	mu     sync.Mutex
	id     string
	filter map[string]bool
	events []events.Event
}

// NewEventRecorder records the given event types, or everything when none
// are given
func NewEventRecorder(id string, types ...string) *EventRecorder {
	r := &EventRecorder{id: id}
	if len(types) > 0 {
		r.filter = make(map[string]bool, len(types))
		for _, t := range types {
			r.filter[t] = true
		}
	}
	return r
}

func (r *EventRecorder) ID() string { return r.id }

func (r *EventRecorder) InterestedIn(eventType string) bool {
	return r.filter == nil || r.filter[eventType]
}

func (r *EventRecorder) HandleEvent(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns the recorded events in order
func (r *EventRecorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Types returns the recorded event types in order
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type()
	}
	return out
}

// Count returns how many events of eventType were recorded
func (r *EventRecorder) Count(eventType string) int {
	n := 0
	for _, t := range r.Types() {
		if t == eventType {
			n++
		}
	}
	return n
}

// Reset drops everything recorded so far
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
