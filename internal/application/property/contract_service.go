package property

import (
	"context"
	"errors"
	"fmt"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/dormdesk/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContractService handles lease contracts
type ContractService struct {
	contractRepo property.ContractRepository
	tenantRepo   property.TenantRepository
	roomRepo     property.RoomRepository
	events       shared.EventPublisher
	now          appshared.Clock
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo property.ContractRepository,
	tenantRepo property.TenantRepository,
	roomRepo property.RoomRepository,
	events shared.EventPublisher,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		tenantRepo:   tenantRepo,
		roomRepo:     roomRepo,
		events:       events,
		now:          appshared.SystemClock,
	}
}

// Create signs a contract for a tenant living in the room
func (s *ContractService) Create(ctx context.Context, req CreateContractRequest) (*ContractResponse, error) {
	room, err := loadRoom(ctx, s.roomRepo, req.RoomID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewNotFoundError("tenant")
	}
	if !tenant.IsActive() || tenant.RoomID != room.ID {
		return nil, shared.NewValidationError(fmt.Sprintf("Tenant %s does not live in room %s", tenant.Name, room.Number))
	}

	rent := room.GetMonthlyRentMoney()
	if req.MonthlyRent != nil {
		rent = valueobject.NewMoneyTHB(*req.MonthlyRent)
	}

	c, err := property.NewContract(room.ID, tenant.ID, req.StartDate, req.EndDate, rent,
		valueobject.NewMoneyTHB(req.Deposit), req.Terms)
	if err != nil {
		return nil, err
	}
	if err := s.contractRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	appshared.PublishEvents(ctx, s.events, c)
	resp := ToContractResponse(c, s.now())
	return &resp, nil
}

// GetByID retrieves a contract
func (s *ContractService) GetByID(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToContractResponse(c, s.now())
	return &resp, nil
}

// List retrieves contracts
func (s *ContractService) List(ctx context.Context, filter ContractListFilter) ([]ContractResponse, int64, error) {
	domainFilter := property.ContractFilter{
		Filter:   filter.ToFilter("end_date"),
		RoomID:   filter.RoomID,
		TenantID: filter.TenantID,
	}
	if filter.Status != "" {
		st := property.ContractStatus(filter.Status)
		domainFilter.Status = &st
	}

	contracts, err := s.contractRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contractRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	out := make([]ContractResponse, len(contracts))
	for i := range contracts {
		out[i] = ToContractResponse(&contracts[i], now)
	}
	return out, total, nil
}

// Terminate ends an active contract early
func (s *ContractService) Terminate(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := c.Terminate(now); err != nil {
		return nil, err
	}
	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	appshared.PublishEvents(ctx, s.events, c)
	resp := ToContractResponse(c, now)
	return &resp, nil
}

// ExpireDue marks every active contract past its end date as expired.
// Each contract is saved on its own; failures are collected and returned
// together after the sweep.
func (s *ContractService) ExpireDue(ctx context.Context) (ExpireResult, error) {
	now := s.now()
	due, err := s.contractRepo.FindDue(ctx, now)
	if err != nil {
		return ExpireResult{}, err
	}

	var result ExpireResult
	var errs []error
	for i := range due {
		c := &due[i]
		if err := c.Expire(now); err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("contract %s: %w", c.ID, err))
			continue
		}
		if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("contract %s: %w", c.ID, err))
			continue
		}
		result.Expired++
		appshared.PublishEvents(ctx, s.events, c)
	}

	logger.FromContext(ctx).Info("contract expiry sweep finished",
		zap.Int("expired", result.Expired),
		zap.Int("failed", result.Failed),
	)
	return result, errors.Join(errs...)
}

func (s *ContractService) load(ctx context.Context, id uuid.UUID) (*property.Contract, error) {
	c, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.NewNotFoundError("contract")
	}
	return c, nil
}
