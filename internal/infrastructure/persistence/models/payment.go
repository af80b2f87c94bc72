package models

import (
	"time"

	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for submitted payments
type PaymentModel struct {
	AggregateModel
	BillID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method       payment.Method  `gorm:"type:varchar(20);not null;default:'qr'"`
	SlipURL      string          `gorm:"type:text"`
	Status       payment.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	SubmittedBy  string          `gorm:"type:varchar(128)"`
	VerifiedAt   *time.Time
	VerifiedBy   string `gorm:"type:varchar(128)"`
	RejectReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BillID:            m.BillID,
		TenantID:          m.TenantID,
		Amount:            m.Amount,
		Method:            m.Method,
		SlipURL:           m.SlipURL,
		Status:            m.Status,
		SubmittedBy:       m.SubmittedBy,
		VerifiedAt:        m.VerifiedAt,
		VerifiedBy:        m.VerifiedBy,
		RejectReason:      m.RejectReason,
	}
}

// FromDomain populates the model from a domain Payment
func (m *PaymentModel) FromDomain(p *payment.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.BillID = p.BillID
	m.TenantID = p.TenantID
	m.Amount = p.Amount
	m.Method = p.Method
	m.SlipURL = p.SlipURL
	m.Status = p.Status
	m.SubmittedBy = p.SubmittedBy
	m.VerifiedAt = p.VerifiedAt
	m.VerifiedBy = p.VerifiedBy
	m.RejectReason = p.RejectReason
}

// PaymentModelFromDomain creates a model from a domain Payment
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// AllModels lists every model for AutoMigrate in tests and local tooling
func AllModels() []any {
	return []any{
		&BuildingModel{},
		&RoomModel{},
		&TenantModel{},
		&ContractModel{},
		&MeterReadingModel{},
		&BillModel{},
		&PaymentModel{},
	}
}
