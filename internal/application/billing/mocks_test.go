package billing

import (
	"context"
	"sync"

	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByRoomAndMonth(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*billing.Bill, error) {
	args := m.Called(ctx, roomID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAll(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) Count(ctx context.Context, filter billing.BillFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

func (m *MockBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

type stubRoomRepository struct {
	property.RoomRepository
	rooms []*property.Room
}

func (r *stubRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Room, error) {
	for _, room := range r.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return nil, nil
}

func (r *stubRoomRepository) FindAll(ctx context.Context, filter property.RoomFilter) ([]property.Room, error) {
	var out []property.Room
	for _, room := range r.rooms {
		if filter.Status != nil && room.Status != *filter.Status {
			continue
		}
		if filter.BuildingID != nil && room.BuildingID != *filter.BuildingID {
			continue
		}
		out = append(out, *room)
	}
	return out, nil
}

type stubTenantRepository struct {
	property.TenantRepository
	byRoom map[uuid.UUID]*property.Tenant
}

func (r *stubTenantRepository) FindActiveByRoom(ctx context.Context, roomID uuid.UUID) (*property.Tenant, error) {
	return r.byRoom[roomID], nil
}

type stubReadingRepository struct {
	metering.MeterReadingRepository
	readings []*metering.MeterReading
}

func (r *stubReadingRepository) FindByRoomAndMonth(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*metering.MeterReading, error) {
	for _, reading := range r.readings {
		if reading.RoomID == roomID && reading.Month == month {
			return reading, nil
		}
	}
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type stubPaymentRepository struct {
	payment.Repository
	created []*payment.Payment
}

func (r *stubPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	r.created = append(r.created, p)
	return nil
}

type inlineTx struct{}

func (inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
