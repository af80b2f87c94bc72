package billing

import (
	"time"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateBillRequest represents a request to bill one room for a month.
// Rent and utility charges are computed by the service.
type GenerateBillRequest struct {
	RoomID   uuid.UUID       `json:"room_id" binding:"required"`
	Month    string          `json:"month" binding:"required,month"`
	OtherFee decimal.Decimal `json:"other_fee"`
	DueDate  *time.Time      `json:"due_date"`
	SlipURL  string          `json:"slip_url" binding:"omitempty,max=1024"`
	Notes    string          `json:"notes" binding:"omitempty,max=2000"`
}

// RunMonthlyRequest bills every occupied room, optionally of one building
type RunMonthlyRequest struct {
	BuildingID *uuid.UUID      `json:"building_id"`
	Month      string          `json:"month" binding:"required,month"`
	OtherFee   decimal.Decimal `json:"other_fee"`
}

// RunFailure is a room the monthly run could not bill
type RunFailure struct {
	RoomID     uuid.UUID `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	Error      string    `json:"error"`
}

// RunResult reports the outcome of a monthly run
type RunResult struct {
	Month    string       `json:"month"`
	Created  int          `json:"created"`
	Skipped  int          `json:"skipped"`
	Failures []RunFailure `json:"failures"`
}

// BillListFilter represents query parameters for listing bills.
// Status is matched against the presented status, so overdue is accepted.
type BillListFilter struct {
	appshared.ListQuery
	BuildingID *uuid.UUID `form:"-"`
	RoomID     *uuid.UUID `form:"-"`
	TenantID   *uuid.UUID `form:"-"`
	Month      string     `form:"month" binding:"omitempty,month"`
	Status     string     `form:"status" binding:"omitempty,oneof=unpaid pending paid overdue"`
}

// BillResponse represents a bill in API responses. Status is the presented
// status at response time.
type BillResponse struct {
	ID             uuid.UUID       `json:"id"`
	BuildingID     uuid.UUID       `json:"building_id"`
	RoomID         uuid.UUID       `json:"room_id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	Month          string          `json:"month"`
	RentAmount     decimal.Decimal `json:"rent_amount"`
	WaterAmount    decimal.Decimal `json:"water_amount"`
	ElectricAmount decimal.Decimal `json:"electric_amount"`
	OtherAmount    decimal.Decimal `json:"other_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DueDate        time.Time       `json:"due_date"`
	Status         string          `json:"status"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	PaidBy         string          `json:"paid_by,omitempty"`
	SlipURL        string          `json:"slip_url,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToBillResponse converts a domain Bill to a response as seen at now
func ToBillResponse(b *billing.Bill, now time.Time) BillResponse {
	return BillResponse{
		ID:             b.ID,
		BuildingID:     b.BuildingID,
		RoomID:         b.RoomID,
		TenantID:       b.TenantID,
		Month:          b.Month.String(),
		RentAmount:     b.RentAmount,
		WaterAmount:    b.WaterAmount,
		ElectricAmount: b.ElectricAmount,
		OtherAmount:    b.OtherAmount,
		TotalAmount:    b.TotalAmount,
		DueDate:        b.DueDate,
		Status:         billing.DeriveBillStatus(b, now).String(),
		PaidAt:         b.PaidAt,
		PaidBy:         b.PaidBy,
		SlipURL:        b.SlipURL,
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
		Version:        b.Version,
	}
}

// SummaryResponse aggregates bills by presented status
type SummaryResponse struct {
	Count       int64            `json:"count"`
	ByStatus    map[string]int64 `json:"by_status"`
	Collected   decimal.Decimal  `json:"collected"`
	Outstanding decimal.Decimal  `json:"outstanding"`
}

// ToSummaryResponse converts a domain Summary to a response
func ToSummaryResponse(s billing.Summary) SummaryResponse {
	byStatus := make(map[string]int64, len(s.ByStatus))
	for st, n := range s.ByStatus {
		byStatus[st.String()] = n
	}
	return SummaryResponse{
		Count:       s.Count,
		ByStatus:    byStatus,
		Collected:   s.Collected,
		Outstanding: s.Outstanding,
	}
}
