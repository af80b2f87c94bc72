package property

import (
	"context"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BuildingFilter defines filtering options for building queries
type BuildingFilter struct {
	shared.Filter
	Status *BuildingStatus
}

// RoomFilter defines filtering options for room queries
type RoomFilter struct {
	shared.Filter
	BuildingID *uuid.UUID
	Status     *RoomStatus
	Floor      *int
}

// TenantFilter defines filtering options for tenant queries
type TenantFilter struct {
	shared.Filter
	BuildingID *uuid.UUID
	RoomID     *uuid.UUID
	Status     *TenantStatus
}

// ContractFilter defines filtering options for contract queries
type ContractFilter struct {
	shared.Filter
	RoomID   *uuid.UUID
	TenantID *uuid.UUID
	Status   *ContractStatus
}

// BuildingRepository defines the interface for building persistence
type BuildingRepository interface {
	// FindByID finds a building by ID, nil if absent
	FindByID(ctx context.Context, id uuid.UUID) (*Building, error)

	// FindAll finds buildings matching the filter
	FindAll(ctx context.Context, filter BuildingFilter) ([]Building, error)

	// Count counts buildings matching the filter
	Count(ctx context.Context, filter BuildingFilter) (int64, error)

	// Save creates or updates a building
	Save(ctx context.Context, building *Building) error

	// Delete removes a building
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoomRepository defines the interface for room persistence
type RoomRepository interface {
	// FindByID finds a room by ID, nil if absent
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindAll finds rooms matching the filter
	FindAll(ctx context.Context, filter RoomFilter) ([]Room, error)

	// Count counts rooms matching the filter
	Count(ctx context.Context, filter RoomFilter) (int64, error)

	// CountByStatus returns room counts per status, optionally for one building
	CountByStatus(ctx context.Context, buildingID *uuid.UUID) (map[RoomStatus]int64, error)

	// ExistsByNumber checks for a room number within a building, ignoring excludeID
	ExistsByNumber(ctx context.Context, buildingID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error)

	// Create inserts a new room
	Create(ctx context.Context, room *Room) error

	// SaveWithLock updates the room if its version is unchanged (compare-and-swap)
	SaveWithLock(ctx context.Context, room *Room) error

	// Delete removes a room
	Delete(ctx context.Context, id uuid.UUID) error
}

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByID finds a tenant by ID, nil if absent
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByUserID finds the active tenant linked to an auth uid, nil if absent
	FindByUserID(ctx context.Context, userID string) (*Tenant, error)

	// FindActiveByRoom finds the active tenant of a room, nil if absent
	FindActiveByRoom(ctx context.Context, roomID uuid.UUID) (*Tenant, error)

	// FindAll finds tenants matching the filter
	FindAll(ctx context.Context, filter TenantFilter) ([]Tenant, error)

	// Count counts tenants matching the filter
	Count(ctx context.Context, filter TenantFilter) (int64, error)

	// Create inserts a new tenant
	Create(ctx context.Context, tenant *Tenant) error

	// SaveWithLock updates the tenant with a version check
	SaveWithLock(ctx context.Context, tenant *Tenant) error
}

// ContractRepository defines the interface for contract persistence
type ContractRepository interface {
	// FindByID finds a contract by ID, nil if absent
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindAll finds contracts matching the filter
	FindAll(ctx context.Context, filter ContractFilter) ([]Contract, error)

	// Count counts contracts matching the filter
	Count(ctx context.Context, filter ContractFilter) (int64, error)

	// FindDue finds active contracts whose end date is before now
	FindDue(ctx context.Context, now time.Time) ([]Contract, error)

	// Create inserts a new contract
	Create(ctx context.Context, contract *Contract) error

	// SaveWithLock updates the contract with a version check
	SaveWithLock(ctx context.Context, contract *Contract) error
}
