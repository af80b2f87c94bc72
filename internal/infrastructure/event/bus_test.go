package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	TenantID uuid.UUID `json:"tenant_id,omitempty"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type scopedTestEvent struct {
	testEvent
}

func (e *scopedTestEvent) ConcernedTenantID() uuid.UUID { return e.TenantID }

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	seen   []string
	err    error
	panics bool
}

func (h *recordingHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, e.EventType())
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	billHandler := &recordingHandler{types: []string{"BillIssued"}}
	all := &recordingHandler{}
	bus.Subscribe(billHandler)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(), newTestEvent("BillIssued"), newTestEvent("PaymentSubmitted"))
	assert.NoError(t, err)

	assert.Equal(t, []string{"BillIssued"}, billHandler.received())
	assert.Equal(t, []string{"BillIssued", "PaymentSubmitted"}, all.received())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"BillIssued"}}
	bus.Subscribe(h, "BillPaid")

	_ = bus.Publish(context.Background(), newTestEvent("BillIssued"), newTestEvent("BillPaid"))

	assert.Equal(t, []string{"BillPaid"}, h.received())
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{err: errors.New("smtp down")}
	panicking := &recordingHandler{panics: true}
	after := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(after)

	err := bus.Publish(context.Background(), newTestEvent("BillPaid"))

	assert.NoError(t, err)
	assert.Equal(t, []string{"BillPaid"}, failing.received())
	assert.Equal(t, []string{"BillPaid"}, after.received())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"BillPaid", "BillReverted"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("BillPaid"))

	assert.Empty(t, h.received())
	assert.Empty(t, bus.registry.HandlersFor("BillReverted"))
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h)

	assert.NoError(t, bus.Stop(ctx))
	_ = bus.Publish(ctx, newTestEvent("BillPaid"))
	assert.Empty(t, h.received())

	assert.NoError(t, bus.Start(ctx))
	_ = bus.Publish(ctx, newTestEvent("BillPaid"))
	assert.Equal(t, []string{"BillPaid"}, h.received())
}
