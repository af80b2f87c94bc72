package property

import (
	"context"

	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BuildingService handles building registry operations
type BuildingService struct {
	buildingRepo property.BuildingRepository
	roomRepo     property.RoomRepository
}

// NewBuildingService creates a new BuildingService
func NewBuildingService(buildingRepo property.BuildingRepository, roomRepo property.RoomRepository) *BuildingService {
	return &BuildingService{buildingRepo: buildingRepo, roomRepo: roomRepo}
}

// Create registers a new building
func (s *BuildingService) Create(ctx context.Context, req CreateBuildingRequest) (*BuildingResponse, error) {
	b, err := property.NewBuilding(req.Name, req.Address, req.TotalFloors, req.AdminUID)
	if err != nil {
		return nil, err
	}
	if err := s.buildingRepo.Save(ctx, b); err != nil {
		return nil, err
	}
	resp := ToBuildingResponse(b)
	return &resp, nil
}

// GetByID retrieves a building
func (s *BuildingService) GetByID(ctx context.Context, id uuid.UUID) (*BuildingResponse, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBuildingResponse(b)
	return &resp, nil
}

// List retrieves buildings
func (s *BuildingService) List(ctx context.Context, filter BuildingListFilter) ([]BuildingResponse, int64, error) {
	domainFilter := property.BuildingFilter{Filter: filter.ToFilter("name")}
	if filter.Status != "" {
		st := property.BuildingStatus(filter.Status)
		domainFilter.Status = &st
	}

	buildings, err := s.buildingRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.buildingRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]BuildingResponse, len(buildings))
	for i := range buildings {
		out[i] = ToBuildingResponse(&buildings[i])
	}
	return out, total, nil
}

// Update changes building details and status
func (s *BuildingService) Update(ctx context.Context, id uuid.UUID, req UpdateBuildingRequest) (*BuildingResponse, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	name, address, floors := b.Name, b.Address, b.TotalFloors
	if req.Name != nil {
		name = *req.Name
	}
	if req.Address != nil {
		address = *req.Address
	}
	if req.TotalFloors != nil {
		floors = *req.TotalFloors
	}
	if err := b.Update(name, address, floors); err != nil {
		return nil, err
	}
	if req.Status != nil {
		if err := b.SetStatus(property.BuildingStatus(*req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.buildingRepo.Save(ctx, b); err != nil {
		return nil, err
	}
	resp := ToBuildingResponse(b)
	return &resp, nil
}

// Delete removes a building that has no rooms
func (s *BuildingService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	rooms, err := s.roomRepo.Count(ctx, property.RoomFilter{BuildingID: &id})
	if err != nil {
		return err
	}
	if rooms > 0 {
		return shared.NewInvalidStateError("Building still has rooms, remove them first")
	}
	return s.buildingRepo.Delete(ctx, id)
}

func (s *BuildingService) load(ctx context.Context, id uuid.UUID) (*property.Building, error) {
	b, err := s.buildingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, shared.NewNotFoundError("building")
	}
	return b, nil
}

