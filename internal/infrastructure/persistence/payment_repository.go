package persistence

import (
	"context"
	"errors"

	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/dormdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err, "payment")
	}
	return model.ToDomain(), nil
}

// FindAll finds payments matching the filter, newest first by default
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter payment.Filter) ([]payment.Payment, error) {
	var rows []models.PaymentModel
	q := orderAndPage(r.applyFilter(conn(ctx, r.db).Model(&models.PaymentModel{}), filter), filter.Filter, PaymentSortFields, "created_at")
	if err := q.Find(&rows).Error; err != nil {
		return nil, translateError(err, "payment")
	}
	out := make([]payment.Payment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter payment.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(conn(ctx, r.db).Model(&models.PaymentModel{}), filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "payment")
	}
	return count, nil
}

// Totals aggregates count and amount per status
func (r *GormPaymentRepository) Totals(ctx context.Context, filter payment.Filter) (payment.Totals, error) {
	var rows []struct {
		Status payment.Status
		Count  int64
		Amount decimal.NullDecimal
	}
	q := r.applyFilter(conn(ctx, r.db).Model(&models.PaymentModel{}), filter).
		Select("status, COUNT(*) AS count, SUM(amount) AS amount").
		Group("status")
	if err := q.Scan(&rows).Error; err != nil {
		return payment.Totals{}, translateError(err, "payment")
	}

	totals := payment.NewTotals()
	for _, row := range rows {
		totals.Count[row.Status] = row.Count
		if row.Amount.Valid {
			totals.Amount[row.Status] = row.Amount.Decimal
		}
	}
	return totals, nil
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return translateError(conn(ctx, r.db).Create(models.PaymentModelFromDomain(p)).Error, "payment")
}

// SaveWithLock updates the payment only if its stored version still matches
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *payment.Payment) error {
	expected := p.Version
	model := models.PaymentModelFromDomain(p)
	model.Version = expected + 1
	if err := updateWithVersion(conn(ctx, r.db), model, p.ID, expected, "payment"); err != nil {
		return err
	}
	p.Version = model.Version
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormPaymentRepository) applyFilter(q *gorm.DB, filter payment.Filter) *gorm.DB {
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.BillID != nil {
		q = q.Where("bill_id = ?", *filter.BillID)
	}
	if filter.TenantID != nil {
		q = q.Where("tenant_id = ?", *filter.TenantID)
	}
	return q
}
