package payment

import (
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypePayment is the aggregate type name of Payment
const AggregateTypePayment = "Payment"

// Event type names
const (
	EventTypePaymentSubmitted = "PaymentSubmitted"
	EventTypePaymentApproved  = "PaymentApproved"
	EventTypePaymentRejected  = "PaymentRejected"
)

// PaymentEvent carries a snapshot of a payment after a lifecycle change
type PaymentEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID       `json:"payment_id"`
	BillID       uuid.UUID       `json:"bill_id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       Method          `json:"method"`
	Status       Status          `json:"status"`
	VerifiedAt   *time.Time      `json:"verified_at,omitempty"`
	RejectReason string          `json:"reject_reason,omitempty"`
}

// ConcernedTenantID returns the paying tenant
func (e *PaymentEvent) ConcernedTenantID() uuid.UUID {
	return e.TenantID
}

// NewPaymentEvent creates a PaymentEvent of the given type
func NewPaymentEvent(eventType string, p *Payment) *PaymentEvent {
	return &PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		BillID:          p.BillID,
		TenantID:        p.TenantID,
		Amount:          p.Amount,
		Method:          p.Method,
		Status:          p.Status,
		VerifiedAt:      p.VerifiedAt,
		RejectReason:    p.RejectReason,
	}
}
