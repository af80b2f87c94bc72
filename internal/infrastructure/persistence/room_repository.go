package persistence

import (
	"context"
	"errors"

	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoomRepository implements property.RoomRepository using GORM
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID finds a room by its ID
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Room, error) {
	var model models.RoomModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err, "room")
	}
	return model.ToDomain(), nil
}

// FindAll finds all rooms matching the filter
func (r *GormRoomRepository) FindAll(ctx context.Context, filter property.RoomFilter) ([]property.Room, error) {
	var rows []models.RoomModel
	q := orderAndPage(r.applyFilter(conn(ctx, r.db).Model(&models.RoomModel{}), filter), filter.Filter, RoomSortFields, "number")
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateError(err, "room")
	}
	out := make([]property.Room, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts rooms matching the filter
func (r *GormRoomRepository) Count(ctx context.Context, filter property.RoomFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&models.RoomModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "room")
	}
	return count, nil
}

// CountByStatus returns room counts grouped by status
func (r *GormRoomRepository) CountByStatus(ctx context.Context, buildingID *uuid.UUID) (map[property.RoomStatus]int64, error) {
	var rows []struct {
		Status property.RoomStatus
		Count  int64
	}
	q := conn(ctx, r.db).Model(&models.RoomModel{}).Select("status, COUNT(*) AS count").Group("status")
	if buildingID != nil {
		q = q.Where("building_id = ?", *buildingID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, translateError(err, "room")
	}

	counts := make(map[property.RoomStatus]int64, len(property.AllRoomStatuses))
	for _, s := range property.AllRoomStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ExistsByNumber checks whether a room number is taken within a building
func (r *GormRoomRepository) ExistsByNumber(ctx context.Context, buildingID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := conn(ctx, r.db).Model(&models.RoomModel{}).Where("building_id = ? AND number = ?", buildingID, number)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translateError(err, "room")
	}
	return count > 0, nil
}

// Create inserts a new room
func (r *GormRoomRepository) Create(ctx context.Context, room *property.Room) error {
	return translateError(conn(ctx, r.db).Create(models.RoomModelFromDomain(room)).Error, "room")
}

// SaveWithLock updates the room only if its stored version still matches
func (r *GormRoomRepository) SaveWithLock(ctx context.Context, room *property.Room) error {
	expected := room.Version
	model := models.RoomModelFromDomain(room)
	model.Version = expected + 1
	if err := updateWithVersion(conn(ctx, r.db), model, room.ID, expected, "room"); err != nil {
		return err
	}
	room.Version = model.Version
	room.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes a room
func (r *GormRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.RoomModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "room")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("room")
	}
	return nil
}

func (r *GormRoomRepository) applyFilter(q *gorm.DB, filter property.RoomFilter) *gorm.DB {
	if filter.BuildingID != nil {
		q = q.Where("building_id = ?", *filter.BuildingID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Floor != nil {
		q = q.Where("floor = ?", *filter.Floor)
	}
	if filter.Search != "" {
		q = q.Where("number LIKE ?", "%"+filter.Search+"%")
	}
	return q
}
