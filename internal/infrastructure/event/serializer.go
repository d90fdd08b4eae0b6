package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/dinehub/backend/internal/domain/shared"
)

// EventSerializer converts domain events to and from the JSON stored in
// outbox rows. Serialization is plain json.Marshal; deserialization needs
// the concrete Go type for each event type string, so every event shape in
// every namespace is registered at startup (see RegisterAllEvents).
type EventSerializer struct {
	mu         sync.RWMutex
	prototypes map[string]reflect.Type
}

// NewEventSerializer creates a new event serializer
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{prototypes: make(map[string]reflect.Type)}
}

// Register maps an event type string to the concrete type of prototype.
// The string must match what EventType() returns on the event; a later
// registration for the same string replaces the earlier one.
func (s *EventSerializer) Register(eventType string, prototype shared.DomainEvent) {
	t := reflect.TypeOf(prototype)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	s.mu.Lock()
	s.prototypes[eventType] = t
	s.mu.Unlock()
}

// Serialize serializes a domain event to JSON bytes
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize rebuilds the concrete event for eventType from its JSON form.
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.prototypes[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event %s: %w", eventType, err)
	}

	event, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("type registered for %s does not implement DomainEvent", eventType)
	}
	return event, nil
}

// IsRegistered checks if an event type is registered
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.prototypes[eventType]
	return ok
}

// RegisteredTypes returns all registered event types
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.prototypes))
	for t := range s.prototypes {
		types = append(types, t)
	}
	return types
}
