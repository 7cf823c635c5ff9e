// Package notify publishes metadata change events. Publishing is fire and
// forget: a failed delivery is logged and never fails the metadata write.
package notify

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSetMetadata    Kind = "SET_METADATA"
	KindDeleteMetadata Kind = "DELETE_METADATA"
)

// Event is the envelope written to the bus.
type Event struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"event_type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// Publisher hands events to a message bus without waiting for delivery.
type Publisher interface {
	Publish(ctx context.Context, kind Kind, payload map[string]any)
}

func NewEvent(kind Kind, payload map[string]any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// Key returns the partition key of the event, "scope:name" when the
// payload names a DID.
func (e *Event) Key() string {
	scope, _ := e.Payload["scope"].(string)
	name, _ := e.Payload["name"].(string)
	if scope == "" && name == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", scope, name)
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Kind, map[string]any) {}

// Memory records published events; used by tests.
type Memory struct {
	mu     sync.Mutex
	events []*Event
}

func (m *Memory) Publish(_ context.Context, kind Kind, payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, NewEvent(kind, payload))
}

// Events returns a snapshot of the recorded events.
func (m *Memory) Events() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.events)
}
