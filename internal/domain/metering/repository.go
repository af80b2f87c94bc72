package metering

import (
	"context"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ReadingFilter defines filtering options for reading queries
type ReadingFilter struct {
	shared.Filter
	BuildingID *uuid.UUID
	RoomID     *uuid.UUID
	Month      *valueobject.Month
}

// MeterReadingRepository defines the interface for meter reading persistence
type MeterReadingRepository interface {
	// FindByID finds a reading by ID, nil if absent
	FindByID(ctx context.Context, id uuid.UUID) (*MeterReading, error)

	// FindByRoomAndMonth finds the reading of a room for a month, nil if absent
	FindByRoomAndMonth(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*MeterReading, error)

	// FindLatestBefore finds the most recent reading of a room strictly before month, nil if none
	FindLatestBefore(ctx context.Context, roomID uuid.UUID, month valueobject.Month) (*MeterReading, error)

	// FindAll finds readings matching the filter, newest month first
	FindAll(ctx context.Context, filter ReadingFilter) ([]MeterReading, error)

	// Count counts readings matching the filter
	Count(ctx context.Context, filter ReadingFilter) (int64, error)

	// Create inserts a reading; a second reading for the same room and month
	// fails with a duplicate error
	Create(ctx context.Context, reading *MeterReading) error
}
