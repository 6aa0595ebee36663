package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/stockscan/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Shipment", uuid.New())}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []string
	err        error
	panics     bool
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event.EventType())
	h.mu.Unlock()
	if h.panics {
		panic("handler exploded")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.handled...)
}

func startedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return bus
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := startedBus(t)
	applied := &testHandler{eventTypes: []string{"ScanApplied"}}
	all := &testHandler{}
	bus.Subscribe(applied)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(), newTestEvent("ScanApplied"), newTestEvent("LotCreated"))
	require.NoError(t, err)

	assert.Equal(t, []string{"ScanApplied"}, applied.seen())
	assert.Equal(t, []string{"ScanApplied", "LotCreated"}, all.seen())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := startedBus(t)
	h := &testHandler{eventTypes: []string{"ScanApplied"}}
	bus.Subscribe(h, "ScanAbsorbed")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ScanApplied"), newTestEvent("ScanAbsorbed")))
	assert.Equal(t, []string{"ScanAbsorbed"}, h.seen())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopDelivery(t *testing.T) {
	bus := startedBus(t)
	failing := &testHandler{err: errors.New("boom")}
	panicking := &testHandler{panics: true}
	healthy := &testHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("ScanApplied")))
	})
	assert.Len(t, healthy.seen(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t)
	h := &testHandler{eventTypes: []string{"ScanApplied"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ScanApplied")))
	assert.Empty(t, h.seen())
}

func TestInMemoryEventBus_DropsWhileStopped(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &testHandler{}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ScanApplied"), newTestEvent("LotCreated")))
	assert.Empty(t, h.seen())
	assert.Equal(t, int64(2), bus.Dropped())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ScanApplied")))
	assert.Len(t, h.seen(), 1)
}
