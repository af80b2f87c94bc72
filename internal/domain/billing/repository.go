package billing

import (
	"context"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BillFilter defines filtering options for bill queries.
// Status and the due bounds are persisted-column criteria; build them from a
// presented status with CriteriaFor.
type BillFilter struct {
	shared.Filter
	BuildingID   *uuid.UUID
	RoomID       *uuid.UUID
	TenantID     *uuid.UUID
	Month        *valueobject.Month
	Status       *BillStatus
	DueBefore    *time.Time
	DueNotBefore *time.Time
	PaidFrom     *time.Time
	PaidTo       *time.Time
}

// ApplyCriteria copies status criteria into the filter
func (f *BillFilter) ApplyCriteria(c StatusCriteria) {
	status := c.Status
	f.Status = &status
	f.DueBefore = c.DueBefore
	f.DueNotBefore = c.DueNotBefore
}

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	// FindByID finds a bill by ID, nil if absent
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindByRoomAndMonth finds the bill of a room for a month, nil if absent
	FindByRoomAndMonth(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*Bill, error)

	// FindAll finds bills matching the filter; PageSize 0 returns every match
	FindAll(ctx context.Context, filter BillFilter) ([]Bill, error)

	// Count counts bills matching the filter
	Count(ctx context.Context, filter BillFilter) (int64, error)

	// Create inserts a bill; a second bill for the same room and month fails
	// with a duplicate error
	Create(ctx context.Context, bill *Bill) error

	// SaveWithLock updates the bill with a version check
	SaveWithLock(ctx context.Context, bill *Bill) error
}
