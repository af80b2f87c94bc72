package property

import (
	"context"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantService handles tenancy. Every operation that touches a room's
// occupancy writes the room and the tenant in one transaction, and each room
// write is a version compare-and-swap.
type TenantService struct {
	tenantRepo   property.TenantRepository
	roomRepo     property.RoomRepository
	contractRepo property.ContractRepository
	tx           appshared.TxManager
	events       shared.EventPublisher
	now          appshared.Clock
}

// NewTenantService creates a new TenantService
func NewTenantService(
	tenantRepo property.TenantRepository,
	roomRepo property.RoomRepository,
	contractRepo property.ContractRepository,
	tx appshared.TxManager,
	events shared.EventPublisher,
) *TenantService {
	return &TenantService{
		tenantRepo:   tenantRepo,
		roomRepo:     roomRepo,
		contractRepo: contractRepo,
		tx:           tx,
		events:       events,
		now:          appshared.SystemClock,
	}
}

// MoveIn registers a tenant and marks the room occupied
func (s *TenantService) MoveIn(ctx context.Context, req MoveInRequest) (*TenantResponse, error) {
	var tenant *property.Tenant
	var room *property.Room

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		room, err = loadRoom(ctx, s.roomRepo, req.RoomID)
		if err != nil {
			return err
		}
		tenant, err = property.NewTenant(room.BuildingID, room.ID, req.toDomain(), req.MoveInDate)
		if err != nil {
			return err
		}
		if err := room.Occupy(tenant.ID); err != nil {
			return err
		}
		if err := s.tenantRepo.Create(ctx, tenant); err != nil {
			return err
		}
		return s.roomRepo.SaveWithLock(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	appshared.PublishEvents(ctx, s.events, tenant, room)
	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// Reassign moves an active tenant to another vacant room of the same building
func (s *TenantService) Reassign(ctx context.Context, id uuid.UUID, req ReassignRequest) (*TenantResponse, error) {
	var tenant *property.Tenant
	var from, to *property.Room

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if tenant, err = s.load(ctx, id); err != nil {
			return err
		}
		if to, err = loadRoom(ctx, s.roomRepo, req.RoomID); err != nil {
			return err
		}
		if to.BuildingID != tenant.BuildingID {
			return shared.NewValidationError("Tenants can only be reassigned within their building")
		}
		if from, err = loadRoom(ctx, s.roomRepo, tenant.RoomID); err != nil {
			return err
		}

		if err := tenant.Reassign(to.ID); err != nil {
			return err
		}
		if err := from.Vacate(tenant.ID); err != nil {
			return err
		}
		if err := to.Occupy(tenant.ID); err != nil {
			return err
		}

		if err := s.roomRepo.SaveWithLock(ctx, from); err != nil {
			return err
		}
		if err := s.roomRepo.SaveWithLock(ctx, to); err != nil {
			return err
		}
		return s.tenantRepo.SaveWithLock(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}

	appshared.PublishEvents(ctx, s.events, tenant, from, to)
	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// MoveOut ends a tenancy, vacates the room and terminates the tenant's
// active contracts
func (s *TenantService) MoveOut(ctx context.Context, id uuid.UUID, req MoveOutRequest) (*TenantResponse, error) {
	at := s.now()
	if req.MoveOutDate != nil {
		at = *req.MoveOutDate
	}

	var tenant *property.Tenant
	var room *property.Room
	var contracts []property.Contract

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if tenant, err = s.load(ctx, id); err != nil {
			return err
		}
		if err := tenant.MoveOut(at); err != nil {
			return err
		}

		room, err = s.roomRepo.FindByID(ctx, tenant.RoomID)
		if err != nil {
			return err
		}
		if room != nil && room.TenantID != nil && *room.TenantID == tenant.ID {
			if err := room.Vacate(tenant.ID); err != nil {
				return err
			}
			if err := s.roomRepo.SaveWithLock(ctx, room); err != nil {
				return err
			}
		}

		active := property.ContractStatusActive
		contracts, err = s.contractRepo.FindAll(ctx, property.ContractFilter{TenantID: &tenant.ID, Status: &active})
		if err != nil {
			return err
		}
		for i := range contracts {
			if err := contracts[i].Terminate(at); err != nil {
				return err
			}
			if err := s.contractRepo.SaveWithLock(ctx, &contracts[i]); err != nil {
				return err
			}
		}

		return s.tenantRepo.SaveWithLock(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}

	aggregates := []shared.AggregateRoot{tenant}
	if room != nil {
		aggregates = append(aggregates, room)
	}
	for i := range contracts {
		aggregates = append(aggregates, &contracts[i])
	}
	appshared.PublishEvents(ctx, s.events, aggregates...)

	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// UpdateProfile replaces a tenant's personal fields
func (s *TenantService) UpdateProfile(ctx context.Context, id uuid.UUID, req TenantProfileRequest) (*TenantResponse, error) {
	tenant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.UpdateProfile(req.toDomain()); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		return nil, err
	}
	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// GetByID retrieves a tenant
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// List retrieves tenants; Search matches name, phone or email
func (s *TenantService) List(ctx context.Context, filter TenantListFilter) ([]TenantResponse, int64, error) {
	domainFilter := property.TenantFilter{
		Filter:     filter.ToFilter("created_at"),
		BuildingID: filter.BuildingID,
		RoomID:     filter.RoomID,
	}
	if filter.Status != "" {
		st := property.TenantStatus(filter.Status)
		domainFilter.Status = &st
	}

	tenants, err := s.tenantRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tenantRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]TenantResponse, len(tenants))
	for i := range tenants {
		out[i] = ToTenantResponse(&tenants[i])
	}
	return out, total, nil
}

// ResolveActor links an authenticated renter to their active tenant record.
// Admins pass through unchanged; a renter with no active record is forbidden.
func (s *TenantService) ResolveActor(ctx context.Context, uid, role string) (appshared.Actor, error) {
	actor := appshared.Actor{UID: uid, Role: role}
	if actor.IsAdmin() {
		return actor, nil
	}
	tenant, err := s.tenantRepo.FindByUserID(ctx, uid)
	if err != nil {
		return actor, err
	}
	if tenant == nil {
		return actor, shared.ErrForbidden
	}
	actor.TenantID = &tenant.ID
	return actor, nil
}

func (s *TenantService) load(ctx context.Context, id uuid.UUID) (*property.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewNotFoundError("tenant")
	}
	return tenant, nil
}

