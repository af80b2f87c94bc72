package payment

import (
	"context"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter defines filtering options for payment queries
type Filter struct {
	shared.Filter
	Status   *Status
	BillID   *uuid.UUID
	TenantID *uuid.UUID
}

// Repository defines the interface for payment persistence
type Repository interface {
	// FindByID finds a payment by ID, nil if absent
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindAll finds payments matching the filter, newest first
	FindAll(ctx context.Context, filter Filter) ([]Payment, error)

	// Count counts payments matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Totals aggregates count and amount per status
	Totals(ctx context.Context, filter Filter) (Totals, error)

	// Create inserts a payment
	Create(ctx context.Context, payment *Payment) error

	// SaveWithLock updates the payment with a version check
	SaveWithLock(ctx context.Context, payment *Payment) error
}
