package models

import (
	"time"

	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for monthly bills.
// Only persisted statuses are stored; overdue is never written.
type BillModel struct {
	AggregateModel
	BuildingID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	RoomID         uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_bills_room_month,priority:1"`
	TenantID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	Month          string             `gorm:"type:varchar(7);not null;uniqueIndex:idx_bills_room_month,priority:2;index"`
	RentAmount     decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	WaterAmount    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	ElectricAmount decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	OtherAmount    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	TotalAmount    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	DueDate        time.Time          `gorm:"not null;index"`
	Status         billing.BillStatus `gorm:"type:varchar(20);not null;default:'unpaid';index"`
	PaidAt         *time.Time
	PaidBy         string `gorm:"type:varchar(128)"`
	SlipURL        string `gorm:"type:text"`
	Notes          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the model to a domain Bill
func (m *BillModel) ToDomain() *billing.Bill {
	return &billing.Bill{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BuildingID:        m.BuildingID,
		RoomID:            m.RoomID,
		TenantID:          m.TenantID,
		Month:             monthOf(m.Month),
		RentAmount:        m.RentAmount,
		WaterAmount:       m.WaterAmount,
		ElectricAmount:    m.ElectricAmount,
		OtherAmount:       m.OtherAmount,
		TotalAmount:       m.TotalAmount,
		DueDate:           m.DueDate,
		Status:            m.Status,
		PaidAt:            m.PaidAt,
		PaidBy:            m.PaidBy,
		SlipURL:           m.SlipURL,
		Notes:             m.Notes,
	}
}

// FromDomain populates the model from a domain Bill
func (m *BillModel) FromDomain(b *billing.Bill) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BuildingID = b.BuildingID
	m.RoomID = b.RoomID
	m.TenantID = b.TenantID
	m.Month = b.Month.String()
	m.RentAmount = b.RentAmount
	m.WaterAmount = b.WaterAmount
	m.ElectricAmount = b.ElectricAmount
	m.OtherAmount = b.OtherAmount
	m.TotalAmount = b.TotalAmount
	m.DueDate = b.DueDate.UTC()
	m.Status = b.Status
	m.PaidAt = utcPtr(b.PaidAt)
	m.PaidBy = b.PaidBy
	m.SlipURL = b.SlipURL
	m.Notes = b.Notes
}

// BillModelFromDomain creates a model from a domain Bill
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}
