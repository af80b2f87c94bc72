package metering

import (
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeMeterReading is the aggregate type name of MeterReading
const AggregateTypeMeterReading = "MeterReading"

// EventTypeMeterReadingRecorded is raised when a reading is saved
const EventTypeMeterReadingRecorded = "MeterReadingRecorded"

// MeterReadingRecordedEvent is raised when a new reading is recorded
type MeterReadingRecordedEvent struct {
	shared.BaseDomainEvent
	ReadingID     uuid.UUID       `json:"reading_id"`
	BuildingID    uuid.UUID       `json:"building_id"`
	RoomID        uuid.UUID       `json:"room_id"`
	Month         string          `json:"month"`
	WaterUsage    decimal.Decimal `json:"water_usage"`
	ElectricUsage decimal.Decimal `json:"electric_usage"`
}

// NewMeterReadingRecordedEvent creates a new MeterReadingRecordedEvent
func NewMeterReadingRecordedEvent(r *MeterReading) *MeterReadingRecordedEvent {
	return &MeterReadingRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeterReadingRecorded, AggregateTypeMeterReading, r.ID),
		ReadingID:       r.ID,
		BuildingID:      r.BuildingID,
		RoomID:          r.RoomID,
		Month:           r.Month.String(),
		WaterUsage:      r.Water.Usage(),
		ElectricUsage:   r.Electric.Usage(),
	}
}
