package property

import (
	"context"
	"testing"

	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildingService_Create(t *testing.T) {
	buildings := new(MockBuildingRepository)
	svc := NewBuildingService(buildings, new(MockRoomRepository))
	buildings.On("Save", mock.Anything, mock.AnythingOfType("*property.Building")).Return(nil)

	resp, err := svc.Create(context.Background(), CreateBuildingRequest{
		Name: "  Baan Suan  ", Address: "Chiang Mai", TotalFloors: 4, AdminUID: "admin-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "Baan Suan", resp.Name)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "admin-1", resp.AdminUID)
}

func TestBuildingService_Update(t *testing.T) {
	buildings := new(MockBuildingRepository)
	svc := NewBuildingService(buildings, new(MockRoomRepository))
	b, err := property.NewBuilding("Old", "", 2, "")
	require.NoError(t, err)

	buildings.On("FindByID", mock.Anything, b.ID).Return(b, nil)
	buildings.On("Save", mock.Anything, b).Return(nil)

	name, status := "New", "inactive"
	resp, err := svc.Update(context.Background(), b.ID, UpdateBuildingRequest{Name: &name, Status: &status})

	require.NoError(t, err)
	assert.Equal(t, "New", resp.Name)
	assert.Equal(t, 2, resp.TotalFloors)
	assert.Equal(t, "inactive", resp.Status)
}

func TestBuildingService_Delete(t *testing.T) {
	b, err := property.NewBuilding("Baan Suan", "", 3, "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		rooms    int64
		wantCode string
	}{
		{"empty building is deleted", 0, ""},
		{"building with rooms is kept", 2, shared.CodeInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildings := new(MockBuildingRepository)
			rooms := new(MockRoomRepository)
			svc := NewBuildingService(buildings, rooms)

			buildings.On("FindByID", mock.Anything, b.ID).Return(b, nil)
			rooms.On("Count", mock.Anything, mock.MatchedBy(func(f property.RoomFilter) bool {
				return f.BuildingID != nil && *f.BuildingID == b.ID
			})).Return(tt.rooms, nil)
			buildings.On("Delete", mock.Anything, b.ID).Return(nil)

			err := svc.Delete(context.Background(), b.ID)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				buildings.AssertCalled(t, "Delete", mock.Anything, b.ID)
				return
			}
			assert.Equal(t, tt.wantCode, shared.CodeOf(err))
			buildings.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
}

func TestBuildingService_GetByID_NotFound(t *testing.T) {
	buildings := new(MockBuildingRepository)
	svc := NewBuildingService(buildings, new(MockRoomRepository))
	id := uuid.New()
	buildings.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.GetByID(context.Background(), id)
	assert.True(t, shared.IsNotFound(err))
}

func TestRoomService_Create(t *testing.T) {
	b, err := property.NewBuilding("Baan Suan", "", 3, "")
	require.NoError(t, err)

	t.Run("creates a vacant room", func(t *testing.T) {
		rooms := new(MockRoomRepository)
		buildings := new(MockBuildingRepository)
		svc := NewRoomService(rooms, buildings, &recordingPublisher{})

		buildings.On("FindByID", mock.Anything, b.ID).Return(b, nil)
		rooms.On("ExistsByNumber", mock.Anything, b.ID, "201", (*uuid.UUID)(nil)).Return(false, nil)
		rooms.On("Create", mock.Anything, mock.AnythingOfType("*property.Room")).Return(nil)

		resp, err := svc.Create(context.Background(), CreateRoomRequest{
			BuildingID: b.ID, Number: "201", Floor: 2, MonthlyRent: decimal.NewFromInt(5500), Description: "corner",
		})

		require.NoError(t, err)
		assert.Equal(t, "vacant", resp.Status)
		assert.Equal(t, "corner", resp.Description)
		assert.True(t, decimal.NewFromInt(5500).Equal(resp.MonthlyRent))
	})

	t.Run("duplicate number", func(t *testing.T) {
		rooms := new(MockRoomRepository)
		buildings := new(MockBuildingRepository)
		svc := NewRoomService(rooms, buildings, &recordingPublisher{})

		buildings.On("FindByID", mock.Anything, b.ID).Return(b, nil)
		rooms.On("ExistsByNumber", mock.Anything, b.ID, "201", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(context.Background(), CreateRoomRequest{BuildingID: b.ID, Number: "201"})

		assert.True(t, shared.IsDuplicate(err))
		rooms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRoomService_SetStatus(t *testing.T) {
	rooms := new(MockRoomRepository)
	events := &recordingPublisher{}
	svc := NewRoomService(rooms, new(MockBuildingRepository), events)
	room := newRoom(t, uuid.New(), "101")

	rooms.On("FindByID", mock.Anything, room.ID).Return(room, nil)
	rooms.On("SaveWithLock", mock.Anything, room).Return(nil)

	resp, err := svc.SetStatus(context.Background(), room.ID, SetRoomStatusRequest{Status: "maintenance"})

	require.NoError(t, err)
	assert.Equal(t, "maintenance", resp.Status)
	assert.Equal(t, []string{property.EventTypeRoomStatusChanged}, events.types())
}

func TestRoomService_Delete_Occupied(t *testing.T) {
	rooms := new(MockRoomRepository)
	svc := NewRoomService(rooms, new(MockBuildingRepository), nil)
	room := newRoom(t, uuid.New(), "101")
	newResident(t, room)

	rooms.On("FindByID", mock.Anything, room.ID).Return(room, nil)

	err := svc.Delete(context.Background(), room.ID)

	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))
	rooms.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
