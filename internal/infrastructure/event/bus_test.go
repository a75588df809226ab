package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/catalog"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
}

func (h *capturingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *capturingHandler) EventTypes() []string { return h.types }

func (h *capturingHandler) seen() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.events))
	copy(out, h.events)
	return out
}

func newLoanEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	loan, err := lending.NewLoan(uuid.New(), uuid.New(), 14)
	require.NoError(t, err)
	events := loan.DrainEvents()
	require.NotEmpty(t, events)
	return events[0]
}

func TestInMemoryEventBus_PublishToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &capturingHandler{types: []string{lending.EventTypeBookBorrowed}}
	bus.Subscribe(handler)

	event := newLoanEvent(t)
	require.NoError(t, bus.Publish(context.Background(), event))

	seen := handler.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, event.EventID(), seen[0].EventID())
}

func TestInMemoryEventBus_IgnoresUnrelatedTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &capturingHandler{types: []string{catalog.EventTypeBookCreated}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newLoanEvent(t)))
	assert.Empty(t, handler.seen())
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	audit := &capturingHandler{}
	bus.Subscribe(audit)

	book, err := catalog.NewBook("Dune", "Frank Herbert", "9780441172719", "Science Fiction", 412)
	require.NoError(t, err)
	bookEvents := book.DrainEvents()

	require.NoError(t, bus.Publish(context.Background(), bookEvents...))
	require.NoError(t, bus.Publish(context.Background(), newLoanEvent(t)))

	assert.Len(t, audit.seen(), len(bookEvents)+1)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &capturingHandler{types: []string{lending.EventTypeBookBorrowed}, err: errors.New("boom")}
	healthy := &capturingHandler{types: []string{lending.EventTypeBookBorrowed}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newLoanEvent(t)))
	assert.Len(t, healthy.seen(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &capturingHandler{types: []string{lending.EventTypeBookBorrowed}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newLoanEvent(t)))
	assert.Empty(t, handler.seen())
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	specific := &capturingHandler{}
	wildcard := &capturingHandler{}

	registry.Register(specific, lending.EventTypeBookReturned)
	registry.Register(wildcard)

	assert.Len(t, registry.GetHandlers(lending.EventTypeBookReturned), 2)
	assert.Len(t, registry.GetHandlers(lending.EventTypeBookBorrowed), 1)
	assert.Len(t, registry.GetAllHandlers(), 2)

	registry.Unregister(specific)
	assert.Len(t, registry.GetHandlers(lending.EventTypeBookReturned), 1)
}

func TestAuditLogHandler(t *testing.T) {
	handler := NewAuditLogHandler(zap.NewNop())
	assert.Nil(t, handler.EventTypes())
	assert.NoError(t, handler.Handle(context.Background(), newLoanEvent(t)))
}
