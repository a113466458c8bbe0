package events

import "time"

// Event is anything published on the bus. Every hexwar event embeds BaseEvent.
type Event interface {
	Type() string
	Timestamp() time.Time
	GameID() string
	// Round is the round the event happened in, 0 when it is not tied to one
	Round() int
}

// BaseEvent carries the fields shared by all events
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Game      string    `json:"game_id"`
	RoundNum  int       `json:"round,omitempty"`
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) GameID() string       { return e.Game }
func (e BaseEvent) Round() int           { return e.RoundNum }

// EventHandler is a function that processes events
type EventHandler func(Event)

// Subscriber receives the events it is interested in. HandleEvent runs on the
// publishing goroutine.
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// Publisher is the side of the bus the game layer talks to
type Publisher interface {
	Publish(Event)
}
