package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// InMemoryEventStore keeps every stream in process memory and fans events
// out to subscribers asynchronously
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
	logger      logrus.FieldLogger
}

func NewInMemoryEventStore(logger logrus.FieldLogger) *InMemoryEventStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		logger:      logger,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()

	versioned := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], versioned)
	s.allEvents = append(s.allEvents, versioned)
	handlers := append([]EventHandler(nil), s.subscribers[versioned.EventType]...)
	s.mutex.Unlock()

	s.logger.WithFields(logrus.Fields{
		"event_id": versioned.EventID,
		"type":     versioned.EventType,
		"stream":   streamID,
		"version":  versioned.EventVersion,
	}).Debug("event appended")

	for _, handler := range handlers {
		if handler.CanHandle(versioned.EventType) {
			go s.dispatch(handler, versioned)
		}
	}

	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := s.streams[streamID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}
	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		kept := handlers[:0:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		s.subscribers[eventType] = kept
	}
	return nil
}

func (s *InMemoryEventStore) dispatch(handler EventHandler, event Event) {
	if err := handler.Handle(event); err != nil {
		s.logger.WithError(err).WithField("type", event.Type()).Warn("event handler failed")
	}
}
