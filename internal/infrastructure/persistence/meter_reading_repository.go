package persistence

import (
	"context"
	"errors"

	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/dormdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMeterReadingRepository implements metering.MeterReadingRepository using GORM.
// Months are stored as YYYY-MM, so string comparison orders them.
type GormMeterReadingRepository struct {
	db *gorm.DB
}

// NewGormMeterReadingRepository creates a new GormMeterReadingRepository
func NewGormMeterReadingRepository(db *gorm.DB) *GormMeterReadingRepository {
	return &GormMeterReadingRepository{db: db}
}

// FindByID finds a reading by its ID
func (r *GormMeterReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.MeterReading, error) {
	return r.first(conn(ctx, r.db).Where("id = ?", id))
}

// FindByRoomAndMonth finds the reading of a room for a month
func (r *GormMeterReadingRepository) FindByRoomAndMonth(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*metering.MeterReading, error) {
	return r.first(conn(ctx, r.db).Where("room_id = ? AND month = ?", roomID, month.String()))
}

// FindLatestBefore finds the most recent reading of a room strictly before month
func (r *GormMeterReadingRepository) FindLatestBefore(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*metering.MeterReading, error) {
	return r.first(conn(ctx, r.db).
		Where("room_id = ? AND month < ?", roomID, month.String()).
		Order("month DESC"))
}

func (r *GormMeterReadingRepository) first(q *gorm.DB) (*metering.MeterReading, error) {
	var model models.MeterReadingModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err, "meter reading")
	}
	return model.ToDomain(), nil
}

// FindAll finds readings matching the filter, newest month first by default
func (r *GormMeterReadingRepository) FindAll(ctx context.Context, filter metering.ReadingFilter) ([]metering.MeterReading, error) {
	var rows []models.MeterReadingModel
	q := orderAndPage(r.applyFilter(conn(ctx, r.db).Model(&models.MeterReadingModel{}), filter), filter.Filter, ReadingSortFields, "month")
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateError(err, "meter reading")
	}
	out := make([]metering.MeterReading, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts readings matching the filter
func (r *GormMeterReadingRepository) Count(ctx context.Context, filter metering.ReadingFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&models.MeterReadingModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "meter reading")
	}
	return count, nil
}

// Create inserts a reading. The (room_id, month) unique index turns a second
// reading for the same month into a duplicate error.
func (r *GormMeterReadingRepository) Create(ctx context.Context, reading *metering.MeterReading) error {
	err := conn(ctx, r.db).Create(models.MeterReadingModelFromDomain(reading)).Error
	return translateError(err, "meter reading for "+reading.Month.String())
}

func (r *GormMeterReadingRepository) applyFilter(q *gorm.DB, filter metering.ReadingFilter) *gorm.DB {
	if filter.BuildingID != nil {
		q = q.Where("building_id = ?", *filter.BuildingID)
	}
	if filter.RoomID != nil {
		q = q.Where("room_id = ?", *filter.RoomID)
	}
	if filter.Month != nil {
		q = q.Where("month = ?", filter.Month.String())
	}
	return q
}
