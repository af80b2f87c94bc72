package metering

import (
	"context"
	"sync"
	"testing"

	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMeterReadingRepository struct {
	mock.Mock
}

func (m *MockMeterReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.MeterReading, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.MeterReading), args.Error(1)
}

func (m *MockMeterReadingRepository) FindByRoomAndMonth(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*metering.MeterReading, error) {
	args := m.Called(ctx, roomID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.MeterReading), args.Error(1)
}

func (m *MockMeterReadingRepository) FindLatestBefore(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*metering.MeterReading, error) {
	args := m.Called(ctx, roomID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.MeterReading), args.Error(1)
}

func (m *MockMeterReadingRepository) FindAll(ctx context.Context, filter metering.ReadingFilter) ([]metering.MeterReading, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]metering.MeterReading), args.Error(1)
}

func (m *MockMeterReadingRepository) Count(ctx context.Context, filter metering.ReadingFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMeterReadingRepository) Create(ctx context.Context, reading *metering.MeterReading) error {
	return m.Called(ctx, reading).Error(0)
}

type stubRoomRepository struct {
	property.RoomRepository
	rooms map[uuid.UUID]*property.Room
}

func (r *stubRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Room, error) {
	return r.rooms[id], nil
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range events {
		p.types = append(p.types, e.EventType())
	}
	return nil
}

var testRates = metering.Rates{Water: decimal.NewFromInt(10), Electric: decimal.NewFromInt(7)}

func setup(t *testing.T) (*ReadingService, *MockMeterReadingRepository, *property.Room, *recordingPublisher) {
	t.Helper()
	room, err := property.NewRoom(uuid.New(), "101", 1, valueobject.NewMoneyTHB(decimal.NewFromInt(5500)))
	require.NoError(t, err)
	readings := new(MockMeterReadingRepository)
	events := &recordingPublisher{}
	rooms := &stubRoomRepository{rooms: map[uuid.UUID]*property.Room{room.ID: room}}
	return NewReadingService(readings, rooms, testRates, events), readings, room, events
}

func priorReading(t *testing.T, room *property.Room, month string, water, electric int64) *metering.MeterReading {
	t.Helper()
	r, err := metering.NewMeterReading(room.BuildingID, room.ID, valueobject.MustParseMonth(month),
		metering.PreviousReadings{Water: decimal.Zero, Electric: decimal.Zero},
		decimal.NewFromInt(water), decimal.NewFromInt(electric), testRates, "admin")
	require.NoError(t, err)
	return r
}

func TestReadingService_RecordReading_UsesLatestPriorReading(t *testing.T) {
	svc, readings, room, events := setup(t)
	month := valueobject.MustParseMonth("2025-01")

	readings.On("FindByRoomAndMonth", mock.Anything, room.ID, month).Return(nil, nil)
	readings.On("FindLatestBefore", mock.Anything, room.ID, month).Return(priorReading(t, room, "2024-12", 120, 1000), nil)
	readings.On("Create", mock.Anything, mock.AnythingOfType("*metering.MeterReading")).Return(nil)

	resp, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		RoomID: room.ID, Month: "2025-01", Water: decimal.NewFromInt(138), Electric: decimal.NewFromInt(1100),
	}, "admin-1")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(resp.Water.Previous))
	assert.True(t, decimal.NewFromInt(18).Equal(resp.Water.Usage))
	assert.True(t, decimal.NewFromInt(180).Equal(resp.Water.Cost))
	assert.True(t, decimal.NewFromInt(100).Equal(resp.Electric.Usage))
	assert.True(t, decimal.NewFromInt(700).Equal(resp.Electric.Cost))
	assert.Equal(t, room.BuildingID, resp.BuildingID)
	assert.Equal(t, "admin-1", resp.RecordedBy)
	assert.Equal(t, []string{metering.EventTypeMeterReadingRecorded}, events.types)
}

func TestReadingService_RecordReading_FirstReadingStartsAtZero(t *testing.T) {
	svc, readings, room, _ := setup(t)
	month := valueobject.MustParseMonth("2025-01")

	readings.On("FindByRoomAndMonth", mock.Anything, room.ID, month).Return(nil, nil)
	readings.On("FindLatestBefore", mock.Anything, room.ID, month).Return(nil, nil)
	readings.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		RoomID: room.ID, Month: "2025-01", Water: decimal.NewFromInt(15), Electric: decimal.NewFromInt(40),
	}, "admin-1")

	require.NoError(t, err)
	assert.True(t, resp.Water.Previous.IsZero())
	assert.True(t, decimal.NewFromInt(15).Equal(resp.Water.Usage))
}

func TestReadingService_RecordReading_Duplicate(t *testing.T) {
	svc, readings, room, events := setup(t)
	month := valueobject.MustParseMonth("2025-01")

	readings.On("FindByRoomAndMonth", mock.Anything, room.ID, month).Return(priorReading(t, room, "2025-01", 138, 1100), nil)

	_, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		RoomID: room.ID, Month: "2025-01", Water: decimal.NewFromInt(140), Electric: decimal.NewFromInt(1200),
	}, "admin-1")

	assert.True(t, shared.IsDuplicate(err))
	readings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, events.types)
}

func TestReadingService_RecordReading_DuplicateRaceCaughtByStore(t *testing.T) {
	svc, readings, room, _ := setup(t)
	month := valueobject.MustParseMonth("2025-01")

	readings.On("FindByRoomAndMonth", mock.Anything, room.ID, month).Return(nil, nil)
	readings.On("FindLatestBefore", mock.Anything, room.ID, month).Return(nil, nil)
	readings.On("Create", mock.Anything, mock.Anything).Return(shared.NewDuplicateError("meter_reading already exists"))

	_, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		RoomID: room.ID, Month: "2025-01", Water: decimal.NewFromInt(1), Electric: decimal.NewFromInt(1),
	}, "admin-1")

	require.True(t, shared.IsDuplicate(err))
	assert.Contains(t, err.Error(), "Room 101")
}

func TestReadingService_RecordReading_CurrentBelowPrevious(t *testing.T) {
	svc, readings, room, _ := setup(t)
	month := valueobject.MustParseMonth("2025-02")

	readings.On("FindByRoomAndMonth", mock.Anything, room.ID, month).Return(nil, nil)
	readings.On("FindLatestBefore", mock.Anything, room.ID, month).Return(priorReading(t, room, "2025-01", 120, 1000), nil)

	_, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		RoomID: room.ID, Month: "2025-02", Water: decimal.NewFromInt(100), Electric: decimal.NewFromInt(1100),
	}, "admin-1")

	assert.True(t, shared.IsValidation(err))
	readings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReadingService_RecordReading_RejectsBadInput(t *testing.T) {
	svc, _, room, _ := setup(t)

	tests := []struct {
		name  string
		req   RecordReadingRequest
		check func(error) bool
	}{
		{"malformed month", RecordReadingRequest{RoomID: room.ID, Month: "2025/01"}, shared.IsValidation},
		{"unknown room", RecordReadingRequest{RoomID: uuid.New(), Month: "2025-01"}, shared.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordReading(context.Background(), tt.req, "admin-1")
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestReadingService_PreviewPrevious(t *testing.T) {
	svc, readings, room, _ := setup(t)
	month := valueobject.MustParseMonth("2025-03")

	readings.On("FindLatestBefore", mock.Anything, room.ID, month).Return(priorReading(t, room, "2025-01", 138, 1100), nil)

	resp, err := svc.PreviewPrevious(context.Background(), room.ID, "2025-03")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(138).Equal(resp.Water))
	assert.True(t, decimal.NewFromInt(1100).Equal(resp.Electric))
	assert.Equal(t, "2025-01", resp.FromMonth)
}
