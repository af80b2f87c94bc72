package property

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantStatus represents whether a tenant still lives in the building
type TenantStatus string

const (
	TenantStatusActive TenantStatus = "active"
	TenantStatusLeft   TenantStatus = "left"
)

// IsValid checks if the status is a valid TenantStatus
func (s TenantStatus) IsValid() bool {
	return s == TenantStatusActive || s == TenantStatusLeft
}

// String returns the string representation of TenantStatus
func (s TenantStatus) String() string {
	return string(s)
}

// TenantProfile holds the editable personal fields of a tenant
type TenantProfile struct {
	Name             string
	Phone            string
	Email            string
	IDCard           string
	EmergencyContact string
	Notes            string
	// UserID is the auth provider uid used for self-service access.
	UserID string
}

func (p TenantProfile) normalized() (TenantProfile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.IDCard = strings.TrimSpace(p.IDCard)
	p.UserID = strings.TrimSpace(p.UserID)
	if p.Name == "" {
		return p, shared.NewValidationError("Tenant name cannot be empty")
	}
	if len(p.Name) > 200 {
		return p, shared.NewValidationError("Tenant name cannot exceed 200 characters")
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return p, shared.NewValidationError(fmt.Sprintf("Invalid email address: %s", p.Email))
		}
	}
	return p, nil
}

// Tenant is a person renting a room
type Tenant struct {
	shared.BaseAggregateRoot
	BuildingID uuid.UUID
	RoomID     uuid.UUID
	TenantProfile
	MoveInDate  time.Time
	MoveOutDate *time.Time
	Status      TenantStatus
}

// NewTenant creates an active tenant assigned to roomID.
// The room itself is updated by the caller within the same transaction.
func NewTenant(buildingID, roomID uuid.UUID, profile TenantProfile, moveIn time.Time) (*Tenant, error) {
	if buildingID == uuid.Nil {
		return nil, shared.NewValidationError("Building ID cannot be empty")
	}
	if roomID == uuid.Nil {
		return nil, shared.NewValidationError("Room selection is required")
	}
	if moveIn.IsZero() {
		return nil, shared.NewValidationError("Move-in date is required")
	}
	p, err := profile.normalized()
	if err != nil {
		return nil, err
	}
	t := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuildingID:        buildingID,
		RoomID:            roomID,
		TenantProfile:     p,
		MoveInDate:        moveIn,
		Status:            TenantStatusActive,
	}
	t.AddDomainEvent(NewTenantMovedInEvent(t))
	return t, nil
}

// IsActive reports whether the tenant still occupies a room
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// UpdateProfile replaces the personal fields
func (t *Tenant) UpdateProfile(profile TenantProfile) error {
	p, err := profile.normalized()
	if err != nil {
		return err
	}
	t.TenantProfile = p
	t.Touch()
	return nil
}

// Reassign moves an active tenant to another room
func (t *Tenant) Reassign(roomID uuid.UUID) error {
	if !t.IsActive() {
		return shared.NewInvalidStateError("Cannot reassign a tenant who has left")
	}
	if roomID == uuid.Nil {
		return shared.NewValidationError("Room selection is required")
	}
	if roomID == t.RoomID {
		return shared.NewValidationError("Tenant already lives in this room")
	}
	from := t.RoomID
	t.RoomID = roomID
	t.Touch()
	t.AddDomainEvent(NewTenantReassignedEvent(t, from))
	return nil
}

// MoveOut marks the tenant as left
func (t *Tenant) MoveOut(at time.Time) error {
	if !t.IsActive() {
		return shared.NewInvalidStateError("Tenant has already left")
	}
	if at.IsZero() {
		return shared.NewValidationError("Move-out date is required")
	}
	if at.Before(t.MoveInDate) {
		return shared.NewValidationError("Move-out date cannot be before move-in date")
	}
	t.Status = TenantStatusLeft
	t.MoveOutDate = &at
	t.Touch()
	t.AddDomainEvent(NewTenantMovedOutEvent(t))
	return nil
}
