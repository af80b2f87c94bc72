package payment

import (
	"time"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SlipUploadRequest asks for a presigned upload URL for a bill's slip
type SlipUploadRequest struct {
	FileName    string `json:"file_name" binding:"omitempty,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// SlipUploadResponse tells the client where to PUT the file and which
// slip URL to submit afterwards
type SlipUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Method    string    `json:"method"`
	SlipURL   string    `json:"slip_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubmitPaymentRequest submits proof of payment for a bill.
// Amount defaults to the bill total, method to qr.
type SubmitPaymentRequest struct {
	BillID  uuid.UUID        `json:"bill_id" binding:"required"`
	SlipURL string           `json:"slip_url" binding:"required,max=1024"`
	Amount  *decimal.Decimal `json:"amount"`
	Method  string           `json:"method" binding:"omitempty,oneof=qr cash transfer"`
}

// RejectPaymentRequest carries the reason shown to the tenant
type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// PaymentListFilter represents query parameters for listing payments
type PaymentListFilter struct {
	appshared.ListQuery
	Status   string     `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	BillID   *uuid.UUID `form:"-"`
	TenantID *uuid.UUID `form:"-"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	BillID       uuid.UUID       `json:"bill_id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	SlipURL      string          `json:"slip_url"`
	SlipViewURL  string          `json:"slip_view_url,omitempty"`
	Status       string          `json:"status"`
	SubmittedBy  string          `json:"submitted_by,omitempty"`
	VerifiedAt   *time.Time      `json:"verified_at,omitempty"`
	VerifiedBy   string          `json:"verified_by,omitempty"`
	RejectReason string          `json:"reject_reason,omitempty"`
	BillStatus   string          `json:"bill_status,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToPaymentResponse converts a domain Payment to a response
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		BillID:       p.BillID,
		TenantID:     p.TenantID,
		Amount:       p.Amount,
		Method:       string(p.Method),
		SlipURL:      p.SlipURL,
		Status:       p.Status.String(),
		SubmittedBy:  p.SubmittedBy,
		VerifiedAt:   p.VerifiedAt,
		VerifiedBy:   p.VerifiedBy,
		RejectReason: p.RejectReason,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// SummaryResponse is the receipts overview
type SummaryResponse struct {
	PendingCount   int64           `json:"pending_count"`
	ApprovedCount  int64           `json:"approved_count"`
	RejectedCount  int64           `json:"rejected_count"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
}

// ToSummaryResponse converts domain totals to a response
func ToSummaryResponse(t payment.Totals) SummaryResponse {
	return SummaryResponse{
		PendingCount:   t.Count[payment.StatusPending],
		ApprovedCount:  t.Count[payment.StatusApproved],
		RejectedCount:  t.Count[payment.StatusRejected],
		PendingAmount:  t.Amount[payment.StatusPending],
		ApprovedAmount: t.Amount[payment.StatusApproved],
	}
}
