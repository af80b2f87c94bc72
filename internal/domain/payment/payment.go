package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the verification status of a payment
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// AllStatuses lists every payment status
var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected}

// IsValid checks if the status is a valid payment Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once the payment has been verified
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanVerify returns true if the payment may be approved or rejected
func (s Status) CanVerify() bool {
	return s == StatusPending
}

// Method is how the tenant paid
type Method string

const (
	MethodQR       Method = "qr"
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
)

// IsValid checks if the payment method is valid
func (m Method) IsValid() bool {
	switch m {
	case MethodQR, MethodCash, MethodTransfer:
		return true
	}
	return false
}

// Payment is tenant-submitted proof of payment for a bill, subject to
// admin verification
type Payment struct {
	shared.BaseAggregateRoot
	BillID       uuid.UUID
	TenantID     uuid.UUID
	Amount       decimal.Decimal
	Method       Method
	SlipURL      string
	Status       Status
	SubmittedBy  string
	VerifiedAt   *time.Time
	VerifiedBy   string
	RejectReason string
}

// NewPayment creates a pending payment for a bill
func NewPayment(billID, tenantID uuid.UUID, amount valueobject.Money, method Method, slipURL, submittedBy string) (*Payment, error) {
	if billID == uuid.Nil {
		return nil, shared.NewValidationError("Bill ID cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID cannot be empty")
	}
	if !amount.Amount().IsPositive() {
		return nil, shared.NewValidationError("Amount must be positive")
	}
	if method == "" {
		method = MethodQR
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid payment method: %s", method))
	}
	slipURL = strings.TrimSpace(slipURL)
	if slipURL == "" {
		return nil, shared.NewValidationError("Payment slip is required")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillID:            billID,
		TenantID:          tenantID,
		Amount:            amount.RoundMinor().Amount(),
		Method:            method,
		SlipURL:           slipURL,
		Status:            StatusPending,
		SubmittedBy:       submittedBy,
	}
	p.AddDomainEvent(NewPaymentEvent(EventTypePaymentSubmitted, p))
	return p, nil
}

// Approve verifies the payment. Only pending payments can be approved.
func (p *Payment) Approve(at time.Time, by string) error {
	if !p.Status.CanVerify() {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot approve payment in %s status", p.Status))
	}
	p.Status = StatusApproved
	p.VerifiedAt = &at
	p.VerifiedBy = by
	p.Touch()
	p.AddDomainEvent(NewPaymentEvent(EventTypePaymentApproved, p))
	return nil
}

// Reject declines the payment so the tenant can resubmit.
// Only pending payments can be rejected.
func (p *Payment) Reject(at time.Time, by, reason string) error {
	if !p.Status.CanVerify() {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot reject payment in %s status", p.Status))
	}
	p.Status = StatusRejected
	p.VerifiedAt = &at
	p.VerifiedBy = by
	p.RejectReason = strings.TrimSpace(reason)
	p.Touch()
	p.AddDomainEvent(NewPaymentEvent(EventTypePaymentRejected, p))
	return nil
}

// GetAmountMoney returns the amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyTHB(p.Amount)
}

// Totals aggregates payments per status
type Totals struct {
	Count  map[Status]int64
	Amount map[Status]decimal.Decimal
}

// NewTotals returns zeroed totals for every status
func NewTotals() Totals {
	t := Totals{
		Count:  make(map[Status]int64, len(AllStatuses)),
		Amount: make(map[Status]decimal.Decimal, len(AllStatuses)),
	}
	for _, s := range AllStatuses {
		t.Count[s] = 0
		t.Amount[s] = decimal.Zero
	}
	return t
}
