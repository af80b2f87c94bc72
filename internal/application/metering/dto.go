package metering

import (
	"time"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordReadingRequest represents this month's meter values for a room.
// Previous values and rates are filled in by the service.
type RecordReadingRequest struct {
	RoomID   uuid.UUID       `json:"room_id" binding:"required"`
	Month    string          `json:"month" binding:"required,month"`
	Water    decimal.Decimal `json:"water"`
	Electric decimal.Decimal `json:"electric"`
}

// ReadingListFilter represents query parameters for listing readings
type ReadingListFilter struct {
	appshared.ListQuery
	BuildingID *uuid.UUID `form:"-"`
	RoomID     *uuid.UUID `form:"-"`
	Month      string     `form:"month" binding:"omitempty,month"`
}

// UtilityResponse is one utility's part of a reading
type UtilityResponse struct {
	Previous decimal.Decimal `json:"previous"`
	Current  decimal.Decimal `json:"current"`
	Usage    decimal.Decimal `json:"usage"`
	Rate     decimal.Decimal `json:"rate"`
	Cost     decimal.Decimal `json:"cost"`
}

func toUtilityResponse(u metering.UtilityReading) UtilityResponse {
	return UtilityResponse{
		Previous: u.Previous,
		Current:  u.Current,
		Usage:    u.Usage(),
		Rate:     u.Rate,
		Cost:     u.Cost().Amount(),
	}
}

// ReadingResponse represents a meter reading in API responses
type ReadingResponse struct {
	ID         uuid.UUID       `json:"id"`
	BuildingID uuid.UUID       `json:"building_id"`
	RoomID     uuid.UUID       `json:"room_id"`
	Month      string          `json:"month"`
	Water      UtilityResponse `json:"water"`
	Electric   UtilityResponse `json:"electric"`
	RecordedBy string          `json:"recorded_by,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// ToReadingResponse converts a domain MeterReading to a response
func ToReadingResponse(r *metering.MeterReading) ReadingResponse {
	return ReadingResponse{
		ID:         r.ID,
		BuildingID: r.BuildingID,
		RoomID:     r.RoomID,
		Month:      r.Month.String(),
		Water:      toUtilityResponse(r.Water),
		Electric:   toUtilityResponse(r.Electric),
		RecordedBy: r.RecordedBy,
		RecordedAt: r.RecordedAt,
	}
}

// PreviousResponse holds the values a new reading for Month would start from
type PreviousResponse struct {
	RoomID    uuid.UUID       `json:"room_id"`
	Month     string          `json:"month"`
	Water     decimal.Decimal `json:"water"`
	Electric  decimal.Decimal `json:"electric"`
	FromMonth string          `json:"from_month,omitempty"`
}
