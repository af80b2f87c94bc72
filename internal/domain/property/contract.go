package property

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle state of a lease contract
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusExpired    ContractStatus = "expired"
	ContractStatusTerminated ContractStatus = "terminated"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusActive, ContractStatusExpired, ContractStatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the contract can no longer change
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusExpired || s == ContractStatusTerminated
}

// Contract is a lease between a tenant and a room
type Contract struct {
	shared.BaseAggregateRoot
	RoomID       uuid.UUID
	TenantID     uuid.UUID
	StartDate    time.Time
	EndDate      time.Time
	MonthlyRent  decimal.Decimal
	Deposit      decimal.Decimal
	Terms        string
	Status       ContractStatus
	TerminatedAt *time.Time
}

// NewContract creates an active contract
func NewContract(roomID, tenantID uuid.UUID, start, end time.Time, rent, deposit valueobject.Money, terms string) (*Contract, error) {
	if roomID == uuid.Nil {
		return nil, shared.NewValidationError("Room ID cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID cannot be empty")
	}
	if start.IsZero() || end.IsZero() {
		return nil, shared.NewValidationError("Contract start and end dates are required")
	}
	if !end.After(start) {
		return nil, shared.NewValidationError("Contract end date must be after start date")
	}
	if rent.IsNegative() || deposit.IsNegative() {
		return nil, shared.NewValidationError("Rent and deposit cannot be negative")
	}
	c := &Contract{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RoomID:            roomID,
		TenantID:          tenantID,
		StartDate:         start,
		EndDate:           end,
		MonthlyRent:       rent.RoundMinor().Amount(),
		Deposit:           deposit.RoundMinor().Amount(),
		Terms:             strings.TrimSpace(terms),
		Status:            ContractStatusActive,
	}
	c.AddDomainEvent(NewContractEvent(EventTypeContractCreated, c))
	return c, nil
}

// Terminate ends an active contract early
func (c *Contract) Terminate(at time.Time) error {
	if c.Status != ContractStatusActive {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot terminate contract in %s status", c.Status))
	}
	c.Status = ContractStatusTerminated
	c.TerminatedAt = &at
	c.Touch()
	c.AddDomainEvent(NewContractEvent(EventTypeContractTerminated, c))
	return nil
}

// IsDue reports whether an active contract has passed its end date
func (c *Contract) IsDue(now time.Time) bool {
	return c.Status == ContractStatusActive && c.EndDate.Before(now)
}

// Expire marks an active contract past its end date as expired
func (c *Contract) Expire(now time.Time) error {
	if !c.IsDue(now) {
		return shared.NewInvalidStateError("Contract is not past its end date")
	}
	c.Status = ContractStatusExpired
	c.Touch()
	c.AddDomainEvent(NewContractEvent(EventTypeContractExpired, c))
	return nil
}

// DaysLeft returns whole days until the end date, never negative
func (c *Contract) DaysLeft(now time.Time) int {
	d := c.EndDate.Sub(now).Hours() / 24
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d))
}
