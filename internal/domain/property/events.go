package property

import (
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type names
const (
	AggregateTypeRoom     = "Room"
	AggregateTypeTenant   = "Tenant"
	AggregateTypeContract = "Contract"
)

// Event type names
const (
	EventTypeRoomStatusChanged  = "RoomStatusChanged"
	EventTypeTenantMovedIn      = "TenantMovedIn"
	EventTypeTenantReassigned   = "TenantReassigned"
	EventTypeTenantMovedOut     = "TenantMovedOut"
	EventTypeContractCreated    = "ContractCreated"
	EventTypeContractTerminated = "ContractTerminated"
	EventTypeContractExpired    = "ContractExpired"
)

// RoomStatusChangedEvent is raised when a room's occupancy status changes
type RoomStatusChangedEvent struct {
	shared.BaseDomainEvent
	RoomID     uuid.UUID  `json:"room_id"`
	BuildingID uuid.UUID  `json:"building_id"`
	RoomNumber string     `json:"room_number"`
	OldStatus  RoomStatus `json:"old_status"`
	NewStatus  RoomStatus `json:"new_status"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
}

// NewRoomStatusChangedEvent creates a new RoomStatusChangedEvent
func NewRoomStatusChangedEvent(r *Room, old RoomStatus) *RoomStatusChangedEvent {
	return &RoomStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoomStatusChanged, AggregateTypeRoom, r.ID),
		RoomID:          r.ID,
		BuildingID:      r.BuildingID,
		RoomNumber:      r.Number,
		OldStatus:       old,
		NewStatus:       r.Status,
		TenantID:        r.TenantID,
	}
}

// TenantEvent carries the state of a tenant after a move
type TenantEvent struct {
	shared.BaseDomainEvent
	TenantID   uuid.UUID  `json:"tenant_id"`
	BuildingID uuid.UUID  `json:"building_id"`
	RoomID     uuid.UUID  `json:"room_id"`
	FromRoomID *uuid.UUID `json:"from_room_id,omitempty"`
	Name       string     `json:"name"`
	At         time.Time  `json:"at"`
}

// ConcernedTenantID returns the tenant the event is about
func (e *TenantEvent) ConcernedTenantID() uuid.UUID {
	return e.TenantID
}

func newTenantEvent(eventType string, t *Tenant, at time.Time) *TenantEvent {
	return &TenantEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTenant, t.ID),
		TenantID:        t.ID,
		BuildingID:      t.BuildingID,
		RoomID:          t.RoomID,
		Name:            t.Name,
		At:              at,
	}
}

// NewTenantMovedInEvent creates the event raised by NewTenant
func NewTenantMovedInEvent(t *Tenant) *TenantEvent {
	return newTenantEvent(EventTypeTenantMovedIn, t, t.MoveInDate)
}

// NewTenantReassignedEvent creates the event raised by Reassign
func NewTenantReassignedEvent(t *Tenant, from uuid.UUID) *TenantEvent {
	e := newTenantEvent(EventTypeTenantReassigned, t, time.Now())
	e.FromRoomID = &from
	return e
}

// NewTenantMovedOutEvent creates the event raised by MoveOut
func NewTenantMovedOutEvent(t *Tenant) *TenantEvent {
	at := time.Now()
	if t.MoveOutDate != nil {
		at = *t.MoveOutDate
	}
	return newTenantEvent(EventTypeTenantMovedOut, t, at)
}

// ContractEvent is raised on contract lifecycle changes
type ContractEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID      `json:"contract_id"`
	RoomID     uuid.UUID      `json:"room_id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	Status     ContractStatus `json:"status"`
	EndDate    time.Time      `json:"end_date"`
}

// ConcernedTenantID returns the tenant party of the contract
func (e *ContractEvent) ConcernedTenantID() uuid.UUID {
	return e.TenantID
}

// NewContractEvent creates a ContractEvent of the given type
func NewContractEvent(eventType string, c *Contract) *ContractEvent {
	return &ContractEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeContract, c.ID),
		ContractID:      c.ID,
		RoomID:          c.RoomID,
		TenantID:        c.TenantID,
		Status:          c.Status,
		EndDate:         c.EndDate,
	}
}
