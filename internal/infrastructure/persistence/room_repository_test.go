package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T, buildingID uuid.UUID, number string) *property.Room {
	t.Helper()
	room, err := property.NewRoom(buildingID, number, 1, valueobject.NewMoneyTHB(decimal.NewFromInt(5500)))
	require.NoError(t, err)
	return room
}

func TestGormRoomRepository_OccupyAndVacate(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRoomRepository(db)
	ctx := context.Background()
	buildingID := uuid.New()

	room := newTestRoom(t, buildingID, "101")
	require.NoError(t, repo.Create(ctx, room))

	tenantID := uuid.New()
	require.NoError(t, room.Occupy(tenantID))
	require.NoError(t, repo.SaveWithLock(ctx, room))

	got, err := repo.FindByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, property.RoomStatusOccupied, got.Status)
	require.NotNil(t, got.TenantID)
	assert.Equal(t, tenantID, *got.TenantID)

	// nil tenant must be written back, not skipped
	require.NoError(t, got.Vacate(tenantID))
	require.NoError(t, repo.SaveWithLock(ctx, got))

	got, err = repo.FindByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TenantID)
	assert.Equal(t, property.RoomStatusVacant, got.Status)
	assert.Equal(t, 3, got.Version)
}

func TestGormRoomRepository_ConcurrentOccupy(t *testing.T) {
	repo := NewGormRoomRepository(newTestDB(t))
	ctx := context.Background()

	room := newTestRoom(t, uuid.New(), "102")
	require.NoError(t, repo.Create(ctx, room))

	first, err := repo.FindByID(ctx, room.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, room.ID)
	require.NoError(t, err)

	require.NoError(t, first.Occupy(uuid.New()))
	require.NoError(t, second.Occupy(uuid.New()))

	require.NoError(t, repo.SaveWithLock(ctx, first))
	err = repo.SaveWithLock(ctx, second)
	assert.True(t, shared.IsConflict(err))
}

func TestGormRoomRepository_Queries(t *testing.T) {
	repo := NewGormRoomRepository(newTestDB(t))
	ctx := context.Background()
	buildingID := uuid.New()

	for _, n := range []string{"101", "102", "201"} {
		require.NoError(t, repo.Create(ctx, newTestRoom(t, buildingID, n)))
	}
	require.NoError(t, repo.Create(ctx, newTestRoom(t, uuid.New(), "101")))

	exists, err := repo.ExistsByNumber(ctx, buildingID, "101", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, newTestRoom(t, buildingID, "101"))
	assert.True(t, shared.IsDuplicate(err))

	counts, err := repo.CountByStatus(ctx, &buildingID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[property.RoomStatusVacant])
	assert.Equal(t, int64(0), counts[property.RoomStatusOccupied])

	filter := property.RoomFilter{BuildingID: &buildingID}
	filter.PageSize = 2
	filter.Page = 2
	filter.OrderBy = "number"
	filter.OrderDir = "asc"
	page, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "201", page[0].Number)

	require.NoError(t, repo.Delete(ctx, page[0].ID))
	assert.True(t, shared.IsNotFound(repo.Delete(ctx, page[0].ID)))
}

func TestGormTenantRepository_OneActivePerRoom(t *testing.T) {
	repo := NewGormTenantRepository(newTestDB(t))
	ctx := context.Background()
	roomID := uuid.New()
	moveIn := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := property.NewTenant(uuid.New(), roomID, property.TenantProfile{Name: "Somchai", UserID: "uid-1"}, moveIn)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := property.NewTenant(uuid.New(), roomID, property.TenantProfile{Name: "Malee"}, moveIn)
	require.NoError(t, err)
	assert.True(t, shared.IsDuplicate(repo.Create(ctx, second)))

	byUser, err := repo.FindByUserID(ctx, "uid-1")
	require.NoError(t, err)
	require.NotNil(t, byUser)
	assert.Equal(t, first.ID, byUser.ID)

	require.NoError(t, first.MoveOut(moveIn.AddDate(0, 6, 0)))
	require.NoError(t, repo.SaveWithLock(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	active, err := repo.FindActiveByRoom(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
}
