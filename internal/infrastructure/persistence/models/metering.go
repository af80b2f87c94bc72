package models

import (
	"time"

	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeterReadingModel is the persistence model for monthly meter readings.
// Usage and cost columns are denormalized for reporting queries.
type MeterReadingModel struct {
	AggregateModel
	BuildingID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RoomID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_meter_readings_room_month,priority:1"`
	Month            string          `gorm:"type:varchar(7);not null;uniqueIndex:idx_meter_readings_room_month,priority:2"`
	WaterPrevious    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	WaterCurrent     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	WaterRate        decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	WaterCost        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ElectricPrevious decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ElectricCurrent  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ElectricRate     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	ElectricCost     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RecordedBy       string          `gorm:"type:varchar(128)"`
	RecordedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MeterReadingModel) TableName() string {
	return "meter_readings"
}

// ToDomain converts the model to a domain MeterReading
func (m *MeterReadingModel) ToDomain() *metering.MeterReading {
	return &metering.MeterReading{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BuildingID:        m.BuildingID,
		RoomID:            m.RoomID,
		Month:             monthOf(m.Month),
		Water: metering.UtilityReading{
			Previous: m.WaterPrevious,
			Current:  m.WaterCurrent,
			Rate:     m.WaterRate,
		},
		Electric: metering.UtilityReading{
			Previous: m.ElectricPrevious,
			Current:  m.ElectricCurrent,
			Rate:     m.ElectricRate,
		},
		RecordedBy: m.RecordedBy,
		RecordedAt: m.RecordedAt,
	}
}

// FromDomain populates the model from a domain MeterReading
func (m *MeterReadingModel) FromDomain(r *metering.MeterReading) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.BuildingID = r.BuildingID
	m.RoomID = r.RoomID
	m.Month = r.Month.String()
	m.WaterPrevious = r.Water.Previous
	m.WaterCurrent = r.Water.Current
	m.WaterRate = r.Water.Rate
	m.WaterCost = r.WaterCost().Amount()
	m.ElectricPrevious = r.Electric.Previous
	m.ElectricCurrent = r.Electric.Current
	m.ElectricRate = r.Electric.Rate
	m.ElectricCost = r.ElectricCost().Amount()
	m.RecordedBy = r.RecordedBy
	m.RecordedAt = r.RecordedAt
}

// MeterReadingModelFromDomain creates a model from a domain MeterReading
func MeterReadingModelFromDomain(r *metering.MeterReading) *MeterReadingModel {
	m := &MeterReadingModel{}
	m.FromDomain(r)
	return m
}
