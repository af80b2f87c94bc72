package billing

import (
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeBill is the aggregate type name of Bill
const AggregateTypeBill = "Bill"

// Event type names
const (
	EventTypeBillIssued       = "BillIssued"
	EventTypeBillSlipAttached = "BillSlipAttached"
	EventTypeBillPaid         = "BillPaid"
	EventTypeBillReverted     = "BillReverted"
)

// BillEvent carries a snapshot of a bill after a lifecycle change
type BillEvent struct {
	shared.BaseDomainEvent
	BillID      uuid.UUID       `json:"bill_id"`
	BuildingID  uuid.UUID       `json:"building_id"`
	RoomID      uuid.UUID       `json:"room_id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Month       string          `json:"month"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	DueDate     time.Time       `json:"due_date"`
	Status      BillStatus      `json:"status"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

// ConcernedTenantID returns the billed tenant
func (e *BillEvent) ConcernedTenantID() uuid.UUID {
	return e.TenantID
}

// NewBillEvent creates a BillEvent of the given type
func NewBillEvent(eventType string, b *Bill) *BillEvent {
	return &BillEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeBill, b.ID),
		BillID:          b.ID,
		BuildingID:      b.BuildingID,
		RoomID:          b.RoomID,
		TenantID:        b.TenantID,
		Month:           b.Month.String(),
		TotalAmount:     b.TotalAmount,
		DueDate:         b.DueDate,
		Status:          b.Status,
		PaidAt:          b.PaidAt,
	}
}
