package persistence

import (
	"context"
	"errors"

	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/dormdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	return r.first(conn(ctx, r.db).Where("id = ?", id))
}

// FindByRoomAndMonth finds the bill of a room for a month
func (r *GormBillRepository) FindByRoomAndMonth(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*billing.Bill, error) {
	return r.first(conn(ctx, r.db).Where("room_id = ? AND month = ?", roomID, month.String()))
}

func (r *GormBillRepository) first(q *gorm.DB) (*billing.Bill, error) {
	var model models.BillModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err, "bill")
	}
	return model.ToDomain(), nil
}

// FindAll finds bills matching the filter
func (r *GormBillRepository) FindAll(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, error) {
	var rows []models.BillModel
	q := orderAndPage(r.applyFilter(conn(ctx, r.db).Model(&models.BillModel{}), filter), filter.Filter, BillSortFields, "created_at")
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateError(err, "bill")
	}
	out := make([]billing.Bill, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts bills matching the filter
func (r *GormBillRepository) Count(ctx context.Context, filter billing.BillFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&models.BillModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "bill")
	}
	return count, nil
}

// Create inserts a bill; (room_id, month) is unique
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	err := conn(ctx, r.db).Create(models.BillModelFromDomain(bill)).Error
	return translateError(err, "bill for "+bill.Month.String())
}

// SaveWithLock updates the bill only if its stored version still matches
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	expected := bill.Version
	model := models.BillModelFromDomain(bill)
	model.Version = expected + 1
	if err := updateWithVersion(conn(ctx, r.db), model, bill.ID, expected, "bill"); err != nil {
		return err
	}
	bill.Version = model.Version
	bill.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormBillRepository) applyFilter(q *gorm.DB, filter billing.BillFilter) *gorm.DB {
	if filter.BuildingID != nil {
		q = q.Where("building_id = ?", *filter.BuildingID)
	}
	if filter.RoomID != nil {
		q = q.Where("room_id = ?", *filter.RoomID)
	}
	if filter.TenantID != nil {
		q = q.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Month != nil {
		q = q.Where("month = ?", filter.Month.String())
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.DueBefore != nil {
		q = q.Where("due_date < ?", filter.DueBefore.UTC())
	}
	if filter.DueNotBefore != nil {
		q = q.Where("due_date >= ?", filter.DueNotBefore.UTC())
	}
	if filter.PaidFrom != nil {
		q = q.Where("paid_at >= ?", filter.PaidFrom.UTC())
	}
	if filter.PaidTo != nil {
		q = q.Where("paid_at < ?", filter.PaidTo.UTC())
	}
	return q
}
