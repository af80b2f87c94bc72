package persistence

import (
	"context"
	"errors"

	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTenantRepository implements property.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Tenant, error) {
	return r.first(conn(ctx, r.db).Where("id = ?", id))
}

// FindByUserID finds the active tenant linked to an auth uid
func (r *GormTenantRepository) FindByUserID(ctx context.Context, userID string) (*property.Tenant, error) {
	return r.first(conn(ctx, r.db).Where("user_id = ? AND status = ?", userID, property.TenantStatusActive))
}

// FindActiveByRoom finds the active tenant of a room
func (r *GormTenantRepository) FindActiveByRoom(ctx context.Context, roomID uuid.UUID) (*property.Tenant, error) {
	return r.first(conn(ctx, r.db).Where("room_id = ? AND status = ?", roomID, property.TenantStatusActive))
}

func (r *GormTenantRepository) first(q *gorm.DB) (*property.Tenant, error) {
	var model models.TenantModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err, "tenant")
	}
	return model.ToDomain(), nil
}

// FindAll finds all tenants matching the filter
func (r *GormTenantRepository) FindAll(ctx context.Context, filter property.TenantFilter) ([]property.Tenant, error) {
	var rows []models.TenantModel
	q := orderAndPage(r.applyFilter(conn(ctx, r.db).Model(&models.TenantModel{}), filter), filter.Filter, TenantSortFields, "name")
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateError(err, "tenant")
	}
	out := make([]property.Tenant, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts tenants matching the filter
func (r *GormTenantRepository) Count(ctx context.Context, filter property.TenantFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&models.TenantModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "tenant")
	}
	return count, nil
}

// Create inserts a new tenant; a second active tenant for a room is rejected
// by the partial unique index.
func (r *GormTenantRepository) Create(ctx context.Context, tenant *property.Tenant) error {
	return translateError(conn(ctx, r.db).Create(models.TenantModelFromDomain(tenant)).Error, "active tenant for room")
}

// SaveWithLock updates the tenant only if its stored version still matches
func (r *GormTenantRepository) SaveWithLock(ctx context.Context, tenant *property.Tenant) error {
	expected := tenant.Version
	model := models.TenantModelFromDomain(tenant)
	model.Version = expected + 1
	if err := updateWithVersion(conn(ctx, r.db), model, tenant.ID, expected, "tenant"); err != nil {
		return err
	}
	tenant.Version = model.Version
	tenant.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormTenantRepository) applyFilter(q *gorm.DB, filter property.TenantFilter) *gorm.DB {
	if filter.BuildingID != nil {
		q = q.Where("building_id = ?", *filter.BuildingID)
	}
	if filter.RoomID != nil {
		q = q.Where("room_id = ?", *filter.RoomID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}
	return q
}
