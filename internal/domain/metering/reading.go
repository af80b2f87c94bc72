package metering

import (
	"fmt"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Utility identifies a metered utility
type Utility string

const (
	UtilityWater    Utility = "water"
	UtilityElectric Utility = "electric"
)

// ReadingScale and RateScale are the decimal places stored for meter values
// and unit prices
const (
	ReadingScale = 2
	RateScale    = 4
)

// Rates are per-unit prices for each utility
type Rates struct {
	Water    decimal.Decimal
	Electric decimal.Decimal
}

// Validate checks that both rates are non-negative
func (r Rates) Validate() error {
	if r.Water.IsNegative() || r.Electric.IsNegative() {
		return shared.NewValidationError("Utility rates cannot be negative")
	}
	if !r.Water.Equal(r.Water.Round(RateScale)) || !r.Electric.Equal(r.Electric.Round(RateScale)) {
		return shared.NewValidationError(fmt.Sprintf("Utility rates allow at most %d decimal places", RateScale))
	}
	return nil
}

// UtilityReading is one meter's previous and current values for a month
type UtilityReading struct {
	Previous decimal.Decimal
	Current  decimal.Decimal
	Rate     decimal.Decimal
}

// Usage returns current minus previous
func (u UtilityReading) Usage() decimal.Decimal {
	return u.Current.Sub(u.Previous)
}

// Cost returns usage times rate, rounded to the minor currency unit
func (u UtilityReading) Cost() valueobject.Money {
	return valueobject.NewMoneyTHB(u.Usage().Mul(u.Rate)).RoundMinor()
}

func (u UtilityReading) validate(utility Utility) error {
	if u.Current.IsNegative() || u.Previous.IsNegative() {
		return shared.NewValidationError(fmt.Sprintf("%s readings cannot be negative", utility))
	}
	if !u.Current.Equal(u.Current.Round(ReadingScale)) {
		return shared.NewValidationError(fmt.Sprintf(
			"%s reading %s has more than %d decimal places", utility, u.Current.String(), ReadingScale))
	}
	if u.Current.LessThan(u.Previous) {
		return shared.NewValidationError(fmt.Sprintf(
			"current %s reading %s is less than previous reading %s",
			utility, u.Current.String(), u.Previous.String()))
	}
	return nil
}

// PreviousReadings are the values a new reading starts from
type PreviousReadings struct {
	Water    decimal.Decimal
	Electric decimal.Decimal
}

// PreviousFrom seeds the previous values from the latest earlier reading,
// or zero for a room with no history.
func PreviousFrom(last *MeterReading) PreviousReadings {
	if last == nil {
		return PreviousReadings{Water: decimal.Zero, Electric: decimal.Zero}
	}
	return PreviousReadings{Water: last.Water.Current, Electric: last.Electric.Current}
}

// MeterReading is a recorded water/electric snapshot for a room in a month.
// There is at most one reading per room and month.
type MeterReading struct {
	shared.BaseAggregateRoot
	BuildingID uuid.UUID
	RoomID     uuid.UUID
	Month      valueobject.Month
	Water      UtilityReading
	Electric   UtilityReading
	RecordedBy string
	RecordedAt time.Time
}

// NewMeterReading validates and creates a reading.
// Nothing is persisted when validation fails.
func NewMeterReading(
	buildingID, roomID uuid.UUID,
	month valueobject.Month,
	prev PreviousReadings,
	waterCurrent, electricCurrent decimal.Decimal,
	rates Rates,
	recordedBy string,
) (*MeterReading, error) {
	if roomID == uuid.Nil {
		return nil, shared.NewValidationError("Room selection is required")
	}
	if month.IsZero() {
		return nil, shared.NewValidationError("Month is required")
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	r := &MeterReading{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuildingID:        buildingID,
		RoomID:            roomID,
		Month:             month,
		Water:             UtilityReading{Previous: prev.Water, Current: waterCurrent, Rate: rates.Water},
		Electric:          UtilityReading{Previous: prev.Electric, Current: electricCurrent, Rate: rates.Electric},
		RecordedBy:        recordedBy,
	}
	r.RecordedAt = r.CreatedAt

	if err := r.Water.validate(UtilityWater); err != nil {
		return nil, err
	}
	if err := r.Electric.validate(UtilityElectric); err != nil {
		return nil, err
	}

	r.AddDomainEvent(NewMeterReadingRecordedEvent(r))
	return r, nil
}

// WaterCost returns the water charge for the month
func (r *MeterReading) WaterCost() valueobject.Money {
	return r.Water.Cost()
}

// ElectricCost returns the electricity charge for the month
func (r *MeterReading) ElectricCost() valueobject.Money {
	return r.Electric.Cost()
}
