package property

import (
	"context"
	"fmt"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// RoomService handles room registry operations
type RoomService struct {
	roomRepo     property.RoomRepository
	buildingRepo property.BuildingRepository
	events       shared.EventPublisher
}

// NewRoomService creates a new RoomService
func NewRoomService(
	roomRepo property.RoomRepository,
	buildingRepo property.BuildingRepository,
	events shared.EventPublisher,
) *RoomService {
	return &RoomService{roomRepo: roomRepo, buildingRepo: buildingRepo, events: events}
}

// Create adds a vacant room to a building
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*RoomResponse, error) {
	building, err := s.buildingRepo.FindByID(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, shared.NewNotFoundError("building")
	}

	if err := s.ensureNumberFree(ctx, req.BuildingID, req.Number, nil); err != nil {
		return nil, err
	}

	room, err := property.NewRoom(req.BuildingID, req.Number, req.Floor, valueobject.NewMoneyTHB(req.MonthlyRent))
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := room.UpdateDetails(room.Number, room.Floor, room.GetMonthlyRentMoney(), req.Description); err != nil {
			return nil, err
		}
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}
	resp := ToRoomResponse(room)
	return &resp, nil
}

// GetByID retrieves a room
func (s *RoomService) GetByID(ctx context.Context, id uuid.UUID) (*RoomResponse, error) {
	room, err := loadRoom(ctx, s.roomRepo, id)
	if err != nil {
		return nil, err
	}
	resp := ToRoomResponse(room)
	return &resp, nil
}

// List retrieves rooms
func (s *RoomService) List(ctx context.Context, filter RoomListFilter) ([]RoomResponse, int64, error) {
	domainFilter := property.RoomFilter{
		Filter:     filter.ToFilter("number"),
		BuildingID: filter.BuildingID,
		Floor:      filter.Floor,
	}
	if filter.OrderDir == "" {
		domainFilter.OrderDir = "asc"
	}
	if filter.Status != "" {
		st := property.RoomStatus(filter.Status)
		domainFilter.Status = &st
	}

	rooms, err := s.roomRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.roomRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]RoomResponse, len(rooms))
	for i := range rooms {
		out[i] = ToRoomResponse(&rooms[i])
	}
	return out, total, nil
}

// Update changes room details. Occupancy is untouched.
func (s *RoomService) Update(ctx context.Context, id uuid.UUID, req UpdateRoomRequest) (*RoomResponse, error) {
	room, err := loadRoom(ctx, s.roomRepo, id)
	if err != nil {
		return nil, err
	}

	number, floor, rent, desc := room.Number, room.Floor, room.GetMonthlyRentMoney(), room.Description
	if req.Number != nil && *req.Number != room.Number {
		if err := s.ensureNumberFree(ctx, room.BuildingID, *req.Number, &room.ID); err != nil {
			return nil, err
		}
		number = *req.Number
	}
	if req.Floor != nil {
		floor = *req.Floor
	}
	if req.MonthlyRent != nil {
		rent = valueobject.NewMoneyTHB(*req.MonthlyRent)
	}
	if req.Description != nil {
		desc = *req.Description
	}
	if err := room.UpdateDetails(number, floor, rent, desc); err != nil {
		return nil, err
	}

	if err := s.roomRepo.SaveWithLock(ctx, room); err != nil {
		return nil, err
	}
	resp := ToRoomResponse(room)
	return &resp, nil
}

// SetStatus moves an unoccupied room between vacant, maintenance and reserved
func (s *RoomService) SetStatus(ctx context.Context, id uuid.UUID, req SetRoomStatusRequest) (*RoomResponse, error) {
	room, err := loadRoom(ctx, s.roomRepo, id)
	if err != nil {
		return nil, err
	}
	if err := room.SetStatus(property.RoomStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.roomRepo.SaveWithLock(ctx, room); err != nil {
		return nil, err
	}
	appshared.PublishEvents(ctx, s.events, room)

	resp := ToRoomResponse(room)
	return &resp, nil
}

// Delete removes a room without a tenant
func (s *RoomService) Delete(ctx context.Context, id uuid.UUID) error {
	room, err := loadRoom(ctx, s.roomRepo, id)
	if err != nil {
		return err
	}
	if room.TenantID != nil {
		return shared.NewInvalidStateError(fmt.Sprintf("Room %s is occupied and cannot be deleted", room.Number))
	}
	return s.roomRepo.Delete(ctx, id)
}

func (s *RoomService) ensureNumberFree(ctx context.Context, buildingID uuid.UUID, number string, excludeID *uuid.UUID) error {
	exists, err := s.roomRepo.ExistsByNumber(ctx, buildingID, number, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDuplicateError(fmt.Sprintf("Room %s already exists in this building", number))
	}
	return nil
}

func loadRoom(ctx context.Context, repo property.RoomRepository, id uuid.UUID) (*property.Room, error) {
	room, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, shared.NewNotFoundError("room")
	}
	return room, nil
}
