package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContractRepository implements property.ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Contract, error) {
	var model models.ContractModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err, "contract")
	}
	return model.ToDomain(), nil
}

// FindAll finds all contracts matching the filter
func (r *GormContractRepository) FindAll(ctx context.Context, filter property.ContractFilter) ([]property.Contract, error) {
	q := orderAndPage(r.applyFilter(conn(ctx, r.db).Model(&models.ContractModel{}), filter), filter.Filter, ContractSortFields, "end_date")
	return r.find(q)
}

// Count counts contracts matching the filter
func (r *GormContractRepository) Count(ctx context.Context, filter property.ContractFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&models.ContractModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "contract")
	}
	return count, nil
}

// FindDue finds active contracts that ended before now
func (r *GormContractRepository) FindDue(ctx context.Context, now time.Time) ([]property.Contract, error) {
	q := conn(ctx, r.db).
		Where("status = ? AND end_date < ?", property.ContractStatusActive, now.UTC()).
		Order("end_date ASC")
	return r.find(q)
}

func (r *GormContractRepository) find(q *gorm.DB) ([]property.Contract, error) {
	var rows []models.ContractModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateError(err, "contract")
	}
	out := make([]property.Contract, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a new contract
func (r *GormContractRepository) Create(ctx context.Context, contract *property.Contract) error {
	return translateError(conn(ctx, r.db).Create(models.ContractModelFromDomain(contract)).Error, "contract")
}

// SaveWithLock updates the contract only if its stored version still matches
func (r *GormContractRepository) SaveWithLock(ctx context.Context, contract *property.Contract) error {
	expected := contract.Version
	model := models.ContractModelFromDomain(contract)
	model.Version = expected + 1
	if err := updateWithVersion(conn(ctx, r.db), model, contract.ID, expected, "contract"); err != nil {
		return err
	}
	contract.Version = model.Version
	contract.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormContractRepository) applyFilter(q *gorm.DB, filter property.ContractFilter) *gorm.DB {
	if filter.RoomID != nil {
		q = q.Where("room_id = ?", *filter.RoomID)
	}
	if filter.TenantID != nil {
		q = q.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	return q
}
