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

// GormBuildingRepository implements property.BuildingRepository using GORM
type GormBuildingRepository struct {
	db *gorm.DB
}

// NewGormBuildingRepository creates a new GormBuildingRepository
func NewGormBuildingRepository(db *gorm.DB) *GormBuildingRepository {
	return &GormBuildingRepository{db: db}
}

// FindByID finds a building by its ID
func (r *GormBuildingRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Building, error) {
	var model models.BuildingModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err, "building")
	}
	return model.ToDomain(), nil
}

// FindAll finds all buildings matching the filter
func (r *GormBuildingRepository) FindAll(ctx context.Context, filter property.BuildingFilter) ([]property.Building, error) {
	var rows []models.BuildingModel
	q := orderAndPage(r.applyFilter(conn(ctx, r.db).Model(&models.BuildingModel{}), filter), filter.Filter, BuildingSortFields, "name")
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateError(err, "building")
	}
	out := make([]property.Building, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts buildings matching the filter
func (r *GormBuildingRepository) Count(ctx context.Context, filter property.BuildingFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&models.BuildingModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "building")
	}
	return count, nil
}

// Save creates or updates a building
func (r *GormBuildingRepository) Save(ctx context.Context, building *property.Building) error {
	return translateError(conn(ctx, r.db).Save(models.BuildingModelFromDomain(building)).Error, "building")
}

// Delete removes a building
func (r *GormBuildingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&models.BuildingModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "building")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("building")
	}
	return nil
}

func (r *GormBuildingRepository) applyFilter(q *gorm.DB, filter property.BuildingFilter) *gorm.DB {
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR address LIKE ?", like, like)
	}
	return q
}
