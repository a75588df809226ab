package testutil

import (
	"context"
	"sync"

	"github.com/library/backend/internal/domain/shared"
)

// RecordingEventBus implements shared.EventBus and records every
// published event for assertions.
type RecordingEventBus struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewRecordingEventBus creates an empty recording bus
func NewRecordingEventBus() *RecordingEventBus {
	return &RecordingEventBus{}
}

// Publish records the events
func (b *RecordingEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

// Subscribe is a no-op
func (b *RecordingEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {}

// Unsubscribe is a no-op
func (b *RecordingEventBus) Unsubscribe(handler shared.EventHandler) {}

// Start is a no-op
func (b *RecordingEventBus) Start(ctx context.Context) error { return nil }

// Stop is a no-op
func (b *RecordingEventBus) Stop(ctx context.Context) error { return nil }

// Events returns a copy of everything published so far
func (b *RecordingEventBus) Events() []shared.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]shared.DomainEvent, len(b.events))
	copy(out, b.events)
	return out
}

// EventsOfType returns the published events with the given type
func (b *RecordingEventBus) EventsOfType(eventType string) []shared.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range b.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears the recorded events
func (b *RecordingEventBus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
