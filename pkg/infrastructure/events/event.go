package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable fact appended to a stream
type Event interface {
	ID() string
	Type() string
	StreamID() string
	Data() any
	Timestamp() time.Time
	Version() int
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

type BaseEvent struct {
	EventID      string    `json:"id"`
	EventType    string    `json:"type"`
	Stream       string    `json:"stream"`
	EventData    any       `json:"data"`
	EventTime    time.Time `json:"timestamp"`
	EventVersion int       `json:"version"`
}

func (e BaseEvent) ID() string           { return e.EventID }
func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) StreamID() string     { return e.Stream }
func (e BaseEvent) Data() any            { return e.EventData }
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }
func (e BaseEvent) Version() int         { return e.EventVersion }

// NewEvent creates an unversioned event; the store assigns the version on append
func NewEvent(eventType, streamID string, data any) Event {
	return BaseEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Stream:    streamID,
		EventData: data,
		EventTime: time.Now().UTC(),
	}
}
