package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type testAggregate struct {
	shared.BaseAggregateRoot
}

func newTestAggregate(eventTypes ...string) *testAggregate {
	a := &testAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	for _, t := range eventTypes {
		e := shared.NewBaseDomainEvent(t, "Test", a.ID)
		a.AddDomainEvent(&e)
	}
	return a
}

func TestPublishEvents(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregate("BillIssued")
	b := newTestAggregate("PaymentSubmitted", "BillSlipAttached")

	pub := new(mockPublisher)
	pub.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 3 &&
			events[0].EventType() == "BillIssued" &&
			events[2].EventType() == "BillSlipAttached"
	})).Return(nil).Once()

	PublishEvents(ctx, pub, a, nil, b)

	pub.AssertExpectations(t)
	assert.Empty(t, a.GetDomainEvents())
	assert.Empty(t, b.GetDomainEvents())
}

func TestPublishEvents_SwallowsPublisherError(t *testing.T) {
	ctx := context.Background()
	pub := new(mockPublisher)
	pub.On("Publish", ctx, mock.Anything).Return(errors.New("bus down"))

	assert.NotPanics(t, func() {
		PublishEvents(ctx, pub, newTestAggregate("BillPaid"))
	})
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPublishEvents_NothingToPublish(t *testing.T) {
	pub := new(mockPublisher)
	PublishEvents(context.Background(), pub, newTestAggregate())
	PublishEvents(context.Background(), nil, newTestAggregate("BillPaid"))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestActor_CanAccessTenant(t *testing.T) {
	own := uuid.New()
	admin := Actor{UID: "a1", Role: RoleAdmin}
	renter := Actor{UID: "u1", Role: RoleTenant, TenantID: &own}
	unlinked := Actor{UID: "u2", Role: RoleTenant}

	assert.True(t, admin.CanAccessTenant(uuid.New()))
	assert.True(t, renter.CanAccessTenant(own))
	assert.False(t, renter.CanAccessTenant(uuid.New()))
	assert.False(t, unlinked.CanAccessTenant(own))
}
