package property

import (
	"context"
	"sync"
	"time"

	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBuildingRepository struct {
	mock.Mock
}

func (m *MockBuildingRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Building, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Building), args.Error(1)
}

func (m *MockBuildingRepository) FindAll(ctx context.Context, filter property.BuildingFilter) ([]property.Building, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]property.Building), args.Error(1)
}

func (m *MockBuildingRepository) Count(ctx context.Context, filter property.BuildingFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBuildingRepository) Save(ctx context.Context, building *property.Building) error {
	return m.Called(ctx, building).Error(0)
}

func (m *MockBuildingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Room), args.Error(1)
}

func (m *MockRoomRepository) FindAll(ctx context.Context, filter property.RoomFilter) ([]property.Room, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]property.Room), args.Error(1)
}

func (m *MockRoomRepository) Count(ctx context.Context, filter property.RoomFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoomRepository) CountByStatus(ctx context.Context, buildingID *uuid.UUID) (map[property.RoomStatus]int64, error) {
	args := m.Called(ctx, buildingID)
	return args.Get(0).(map[property.RoomStatus]int64), args.Error(1)
}

func (m *MockRoomRepository) ExistsByNumber(ctx context.Context, buildingID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, buildingID, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoomRepository) Create(ctx context.Context, room *property.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *MockRoomRepository) SaveWithLock(ctx context.Context, room *property.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *MockRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByUserID(ctx context.Context, userID string) (*property.Tenant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindActiveByRoom(ctx context.Context, roomID uuid.UUID) (*property.Tenant, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context, filter property.TenantFilter) ([]property.Tenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]property.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Count(ctx context.Context, filter property.TenantFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *property.Tenant) error {
	return m.Called(ctx, tenant).Error(0)
}

func (m *MockTenantRepository) SaveWithLock(ctx context.Context, tenant *property.Tenant) error {
	return m.Called(ctx, tenant).Error(0)
}

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAll(ctx context.Context, filter property.ContractFilter) ([]property.Contract, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]property.Contract), args.Error(1)
}

func (m *MockContractRepository) Count(ctx context.Context, filter property.ContractFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) FindDue(ctx context.Context, now time.Time) ([]property.Contract, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]property.Contract), args.Error(1)
}

func (m *MockContractRepository) Create(ctx context.Context, contract *property.Contract) error {
	return m.Called(ctx, contract).Error(0)
}

func (m *MockContractRepository) SaveWithLock(ctx context.Context, contract *property.Contract) error {
	return m.Called(ctx, contract).Error(0)
}

// inlineTx runs the function directly and records how often it was used
type inlineTx struct {
	calls int
}

func (tx *inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
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
