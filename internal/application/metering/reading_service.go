package metering

import (
	"context"
	"fmt"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ReadingService records and queries monthly meter readings
type ReadingService struct {
	readingRepo metering.MeterReadingRepository
	roomRepo    property.RoomRepository
	rates       metering.Rates
	events      shared.EventPublisher
}

// NewReadingService creates a new ReadingService with the configured rates
func NewReadingService(
	readingRepo metering.MeterReadingRepository,
	roomRepo property.RoomRepository,
	rates metering.Rates,
	events shared.EventPublisher,
) *ReadingService {
	return &ReadingService{
		readingRepo: readingRepo,
		roomRepo:    roomRepo,
		rates:       rates,
		events:      events,
	}
}

// Rates returns the per-unit prices applied to new readings
func (s *ReadingService) Rates() metering.Rates {
	return s.rates
}

// RecordReading stores this month's meter values for a room. Previous values
// come from the room's latest earlier reading, or zero for a new room.
// A second reading for the same room and month is a duplicate error; a
// current value below the previous one is a validation error. Nothing is
// written when either check fails.
func (s *ReadingService) RecordReading(ctx context.Context, req RecordReadingRequest, recordedBy string) (*ReadingResponse, error) {
	month, err := valueobject.ParseMonth(req.Month)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	room, err := s.roomRepo.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, shared.NewNotFoundError("room")
	}

	existing, err := s.readingRepo.FindByRoomAndMonth(ctx, room.ID, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateReading(room, month)
	}

	last, err := s.readingRepo.FindLatestBefore(ctx, room.ID, month)
	if err != nil {
		return nil, err
	}

	reading, err := metering.NewMeterReading(
		room.BuildingID, room.ID, month,
		metering.PreviousFrom(last),
		req.Water, req.Electric,
		s.rates, recordedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := s.readingRepo.Create(ctx, reading); err != nil {
		if shared.IsDuplicate(err) {
			return nil, duplicateReading(room, month)
		}
		return nil, err
	}

	appshared.PublishEvents(ctx, s.events, reading)
	resp := ToReadingResponse(reading)
	return &resp, nil
}

// PreviewPrevious returns the previous values a reading for month would use
func (s *ReadingService) PreviewPrevious(ctx context.Context, roomID uuid.UUID, monthKey string) (*PreviousResponse, error) {
	month, err := valueobject.ParseMonth(monthKey)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	last, err := s.readingRepo.FindLatestBefore(ctx, roomID, month)
	if err != nil {
		return nil, err
	}

	prev := metering.PreviousFrom(last)
	resp := &PreviousResponse{
		RoomID:   roomID,
		Month:    month.String(),
		Water:    prev.Water,
		Electric: prev.Electric,
	}
	if last != nil {
		resp.FromMonth = last.Month.String()
	}
	return resp, nil
}

// GetByID retrieves a reading
func (s *ReadingService) GetByID(ctx context.Context, id uuid.UUID) (*ReadingResponse, error) {
	r, err := s.readingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, shared.NewNotFoundError("meter reading")
	}
	resp := ToReadingResponse(r)
	return &resp, nil
}

// List retrieves readings, newest month first
func (s *ReadingService) List(ctx context.Context, filter ReadingListFilter) ([]ReadingResponse, int64, error) {
	domainFilter := metering.ReadingFilter{
		Filter:     filter.ToFilter("month"),
		BuildingID: filter.BuildingID,
		RoomID:     filter.RoomID,
	}
	if filter.Month != "" {
		month, err := valueobject.ParseMonth(filter.Month)
		if err != nil {
			return nil, 0, shared.NewValidationError(err.Error())
		}
		domainFilter.Month = &month
	}

	readings, err := s.readingRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.readingRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ReadingResponse, len(readings))
	for i := range readings {
		out[i] = ToReadingResponse(&readings[i])
	}
	return out, total, nil
}

func duplicateReading(room *property.Room, month valueobject.Month) error {
	return shared.NewDuplicateError(fmt.Sprintf("Room %s already has a reading for %s", room.Number, month))
}
