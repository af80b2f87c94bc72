package property

import (
	"fmt"
	"strings"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoomStatus represents the occupancy status of a room
type RoomStatus string

const (
	RoomStatusVacant      RoomStatus = "vacant"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
	RoomStatusReserved    RoomStatus = "reserved"
)

// AllRoomStatuses lists every room status in display order
var AllRoomStatuses = []RoomStatus{
	RoomStatusVacant,
	RoomStatusOccupied,
	RoomStatusMaintenance,
	RoomStatusReserved,
}

// IsValid checks if the status is a valid RoomStatus
func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomStatusVacant, RoomStatusOccupied, RoomStatusMaintenance, RoomStatusReserved:
		return true
	}
	return false
}

// String returns the string representation of RoomStatus
func (s RoomStatus) String() string {
	return string(s)
}

// CanOccupy returns true if a tenant can move into a room in this status
func (s RoomStatus) CanOccupy() bool {
	return s == RoomStatusVacant || s == RoomStatusReserved
}

// Room is a rentable unit within a building.
// Room owns the occupancy pointer to its tenant; occupancy changes are
// persisted with a version compare-and-swap.
type Room struct {
	shared.BaseAggregateRoot
	BuildingID  uuid.UUID
	Number      string
	Floor       int
	Status      RoomStatus
	MonthlyRent decimal.Decimal
	TenantID    *uuid.UUID
	Description string
}

// NewRoom creates a new vacant room
func NewRoom(buildingID uuid.UUID, number string, floor int, rent valueobject.Money) (*Room, error) {
	if buildingID == uuid.Nil {
		return nil, shared.NewValidationError("Building ID cannot be empty")
	}
	r := &Room{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuildingID:        buildingID,
		Status:            RoomStatusVacant,
	}
	if err := r.UpdateDetails(number, floor, rent, ""); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateDetails replaces number, floor, rent and description
func (r *Room) UpdateDetails(number string, floor int, rent valueobject.Money, description string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return shared.NewValidationError("Room number cannot be empty")
	}
	if len(number) > 20 {
		return shared.NewValidationError("Room number cannot exceed 20 characters")
	}
	if floor < 0 {
		return shared.NewValidationError("Floor cannot be negative")
	}
	if rent.IsNegative() {
		return shared.NewValidationError("Monthly rent cannot be negative")
	}
	r.Number = number
	r.Floor = floor
	r.MonthlyRent = rent.RoundMinor().Amount()
	r.Description = strings.TrimSpace(description)
	r.Touch()
	return nil
}

// SetStatus changes the status of an unoccupied room.
// Occupied is reached only through Occupy.
func (r *Room) SetStatus(status RoomStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid room status: %s", status))
	}
	if status == RoomStatusOccupied {
		return shared.NewValidationError("Rooms become occupied only when a tenant moves in")
	}
	if r.TenantID != nil {
		return shared.NewInvalidStateError(fmt.Sprintf("Room %s has a tenant, move the tenant out first", r.Number))
	}
	if r.Status == status {
		return nil
	}
	old := r.Status
	r.Status = status
	r.Touch()
	r.AddDomainEvent(NewRoomStatusChangedEvent(r, old))
	return nil
}

// Occupy assigns a tenant to the room
func (r *Room) Occupy(tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return shared.NewValidationError("Tenant ID cannot be empty")
	}
	if !r.Status.CanOccupy() || r.TenantID != nil {
		return shared.NewInvalidStateError(fmt.Sprintf("Room %s is %s and cannot take a tenant", r.Number, r.Status))
	}
	old := r.Status
	r.Status = RoomStatusOccupied
	r.TenantID = &tenantID
	r.Touch()
	r.AddDomainEvent(NewRoomStatusChangedEvent(r, old))
	return nil
}

// Vacate releases the room held by tenantID
func (r *Room) Vacate(tenantID uuid.UUID) error {
	if r.TenantID == nil || *r.TenantID != tenantID {
		return shared.NewInvalidStateError(fmt.Sprintf("Room %s is not occupied by this tenant", r.Number))
	}
	old := r.Status
	r.Status = RoomStatusVacant
	r.TenantID = nil
	r.Touch()
	r.AddDomainEvent(NewRoomStatusChangedEvent(r, old))
	return nil
}

// IsOccupied reports whether the room currently holds a tenant
func (r *Room) IsOccupied() bool {
	return r.Status == RoomStatusOccupied && r.TenantID != nil
}

// GetMonthlyRentMoney returns the rent as Money
func (r *Room) GetMonthlyRentMoney() valueobject.Money {
	return valueobject.NewMoneyTHB(r.MonthlyRent)
}
