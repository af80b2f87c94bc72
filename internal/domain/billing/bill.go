package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the status of a bill.
// BillStatusOverdue is never persisted; see DeriveBillStatus.
type BillStatus string

const (
	BillStatusUnpaid  BillStatus = "unpaid"
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
	BillStatusOverdue BillStatus = "overdue"
)

// AllBillStatuses lists every status a bill can be presented with
var AllBillStatuses = []BillStatus{BillStatusUnpaid, BillStatusPending, BillStatusPaid, BillStatusOverdue}

// IsValid checks if the status is a valid presented status
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusUnpaid, BillStatusPending, BillStatusPaid, BillStatusOverdue:
		return true
	}
	return false
}

// IsPersisted returns true for statuses that may be stored on a bill
func (s BillStatus) IsPersisted() bool {
	return s == BillStatusUnpaid || s == BillStatusPending || s == BillStatusPaid
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the bill can no longer change
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusPaid
}

// CanAttachSlip returns true if a tenant may submit a slip in this status
func (s BillStatus) CanAttachSlip() bool {
	return s == BillStatusUnpaid
}

// Charges are the parts a bill total is made of
type Charges struct {
	Rent     valueobject.Money
	Water    valueobject.Money
	Electric valueobject.Money
	Other    valueobject.Money
}

// Total returns rent + water + electric + other, exactly
func (c Charges) Total() (valueobject.Money, error) {
	return valueobject.Sum(c.Rent, c.Water, c.Electric, c.Other)
}

func (c Charges) validate() error {
	for name, m := range map[string]valueobject.Money{
		"rent": c.Rent, "water": c.Water, "electric": c.Electric, "other": c.Other,
	} {
		if m.IsNegative() {
			return shared.NewValidationError(fmt.Sprintf("%s amount cannot be negative", name))
		}
	}
	return nil
}

// Bill is a monthly charge record combining rent and utility costs for a
// tenant's room. TotalAmount always equals the sum of the four parts.
type Bill struct {
	shared.BaseAggregateRoot
	BuildingID     uuid.UUID
	RoomID         uuid.UUID
	TenantID       uuid.UUID
	Month          valueobject.Month
	RentAmount     decimal.Decimal
	WaterAmount    decimal.Decimal
	ElectricAmount decimal.Decimal
	OtherAmount    decimal.Decimal
	TotalAmount    decimal.Decimal
	DueDate        time.Time
	Status         BillStatus
	PaidAt         *time.Time
	PaidBy         string
	SlipURL        string
	Notes          string
}

// NewBill creates a bill. It starts unpaid, or pending when a slip is
// already attached awaiting verification.
func NewBill(
	buildingID, roomID, tenantID uuid.UUID,
	month valueobject.Month,
	charges Charges,
	dueDate time.Time,
	slipURL, notes string,
) (*Bill, error) {
	if roomID == uuid.Nil {
		return nil, shared.NewValidationError("Room selection is required")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant selection is required")
	}
	if month.IsZero() {
		return nil, shared.NewValidationError("Month is required")
	}
	if dueDate.IsZero() {
		return nil, shared.NewValidationError("Due date is required")
	}
	if err := charges.validate(); err != nil {
		return nil, err
	}
	charges = Charges{
		Rent:     charges.Rent.RoundMinor(),
		Water:    charges.Water.RoundMinor(),
		Electric: charges.Electric.RoundMinor(),
		Other:    charges.Other.RoundMinor(),
	}
	total, err := charges.Total()
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	b := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuildingID:        buildingID,
		RoomID:            roomID,
		TenantID:          tenantID,
		Month:             month,
		RentAmount:        charges.Rent.Amount(),
		WaterAmount:       charges.Water.Amount(),
		ElectricAmount:    charges.Electric.Amount(),
		OtherAmount:       charges.Other.Amount(),
		TotalAmount:       total.Amount(),
		DueDate:           dueDate,
		Status:            BillStatusUnpaid,
		SlipURL:           strings.TrimSpace(slipURL),
		Notes:             strings.TrimSpace(notes),
	}
	if b.SlipURL != "" {
		b.Status = BillStatusPending
	}

	b.AddDomainEvent(NewBillEvent(EventTypeBillIssued, b))
	return b, nil
}

// AttachSlip records a submitted payment slip: unpaid -> pending
func (b *Bill) AttachSlip(slipURL string) error {
	if !b.Status.CanAttachSlip() {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot submit a slip for a bill in %s status", b.Status))
	}
	slipURL = strings.TrimSpace(slipURL)
	if slipURL == "" {
		return shared.NewValidationError("Slip reference is required")
	}
	b.SlipURL = slipURL
	b.Status = BillStatusPending
	b.Touch()
	b.AddDomainEvent(NewBillEvent(EventTypeBillSlipAttached, b))
	return nil
}

// MarkPaid finalizes a bill after its payment was approved: pending -> paid
func (b *Bill) MarkPaid(at time.Time, by string) error {
	if b.Status != BillStatusPending {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot mark bill paid in %s status", b.Status))
	}
	return b.pay(at, by)
}

// ConfirmPaid records a direct admin confirmation, e.g. a cash payment: unpaid -> paid
func (b *Bill) ConfirmPaid(at time.Time, by string) error {
	if b.Status != BillStatusUnpaid {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot confirm payment of a bill in %s status", b.Status))
	}
	return b.pay(at, by)
}

func (b *Bill) pay(at time.Time, by string) error {
	if at.Before(b.CreatedAt) {
		return shared.NewValidationError("Paid time cannot be before the bill was created")
	}
	b.Status = BillStatusPaid
	b.PaidAt = &at
	b.PaidBy = by
	b.Touch()
	b.AddDomainEvent(NewBillEvent(EventTypeBillPaid, b))
	return nil
}

// RevertToUnpaid returns a pending bill to unpaid after its slip was
// rejected. An unpaid bill stays unpaid.
func (b *Bill) RevertToUnpaid() error {
	switch b.Status {
	case BillStatusUnpaid:
		return nil
	case BillStatusPending:
		b.Status = BillStatusUnpaid
		b.Touch()
		b.AddDomainEvent(NewBillEvent(EventTypeBillReverted, b))
		return nil
	default:
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot revert a bill in %s status", b.Status))
	}
}

// EffectiveStatus is DeriveBillStatus applied to this bill
func (b *Bill) EffectiveStatus(now time.Time) BillStatus {
	return DeriveBillStatus(b, now)
}

// GetTotalMoney returns the total as Money
func (b *Bill) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyTHB(b.TotalAmount)
}
