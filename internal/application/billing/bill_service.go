package billing

import (
	"context"
	"fmt"
	"time"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/dormdesk/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Settings are the billing rules taken from configuration
type Settings struct {
	// DueDay is the day of the following month a bill falls due
	DueDay   int
	Location *time.Location
}

// DueDate returns the default due date of a bill for month
func (s Settings) DueDate(month valueobject.Month) time.Time {
	day := s.DueDay
	if day <= 0 {
		day = 5
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return month.Next().DayOf(day, loc).UTC()
}

// BillService generates bills and serves bill queries
type BillService struct {
	billRepo    billing.BillRepository
	paymentRepo payment.Repository
	roomRepo    property.RoomRepository
	tenantRepo  property.TenantRepository
	readingRepo metering.MeterReadingRepository
	tx          appshared.TxManager
	events      shared.EventPublisher
	settings    Settings
	now         appshared.Clock
}

// NewBillService creates a new BillService
func NewBillService(
	billRepo billing.BillRepository,
	paymentRepo payment.Repository,
	roomRepo property.RoomRepository,
	tenantRepo property.TenantRepository,
	readingRepo metering.MeterReadingRepository,
	tx appshared.TxManager,
	events shared.EventPublisher,
	settings Settings,
) *BillService {
	return &BillService{
		billRepo:    billRepo,
		paymentRepo: paymentRepo,
		roomRepo:    roomRepo,
		tenantRepo:  tenantRepo,
		readingRepo: readingRepo,
		tx:          tx,
		events:      events,
		settings:    settings,
		now:         appshared.SystemClock,
	}
}

// Generate bills a room for a month. Rent comes from the room, water and
// electricity from the month's meter reading (zero when none was recorded).
// A bill issued with a slip starts pending together with a pending payment
// for that slip, so it is verified like any submitted slip.
func (s *BillService) Generate(ctx context.Context, req GenerateBillRequest) (*BillResponse, error) {
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

	bill, err := s.issue(ctx, room, month, req.OtherFee, req.DueDate, req.SlipURL, req.Notes)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill, s.now())
	return &resp, nil
}

// RunMonthly bills every occupied room for a month. Rooms already billed
// are skipped; a failing room is reported and the run carries on.
func (s *BillService) RunMonthly(ctx context.Context, req RunMonthlyRequest) (*RunResult, error) {
	month, err := valueobject.ParseMonth(req.Month)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	occupied := property.RoomStatusOccupied
	rooms, err := s.roomRepo.FindAll(ctx, property.RoomFilter{
		Filter:     shared.Filter{OrderBy: "number", OrderDir: "asc"},
		BuildingID: req.BuildingID,
		Status:     &occupied,
	})
	if err != nil {
		return nil, err
	}

	result := &RunResult{Month: month.String(), Failures: []RunFailure{}}
	for i := range rooms {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		room := &rooms[i]
		_, err := s.issue(ctx, room, month, req.OtherFee, nil, "", "")
		switch {
		case err == nil:
			result.Created++
		case shared.IsDuplicate(err):
			result.Skipped++
		default:
			result.Failures = append(result.Failures, RunFailure{
				RoomID:     room.ID,
				RoomNumber: room.Number,
				Error:      err.Error(),
			})
		}
	}

	logger.FromContext(ctx).Info("monthly billing run finished",
		zap.String("month", result.Month),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failures)),
	)
	return result, nil
}

func (s *BillService) issue(
	ctx context.Context,
	room *property.Room,
	month valueobject.Month,
	otherFee decimal.Decimal,
	dueDate *time.Time,
	slipURL, notes string,
) (*billing.Bill, error) {
	tenant, err := s.tenantRepo.FindActiveByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if !room.IsOccupied() || tenant == nil {
		return nil, shared.NewValidationError(fmt.Sprintf("Room %s has no active tenant to bill", room.Number))
	}

	existing, err := s.billRepo.FindByRoomAndMonth(ctx, room.ID, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateBill(room, month)
	}

	charges := billing.Charges{
		Rent:     room.GetMonthlyRentMoney(),
		Water:    valueobject.ZeroTHB(),
		Electric: valueobject.ZeroTHB(),
		Other:    valueobject.NewMoneyTHB(otherFee),
	}
	reading, err := s.readingRepo.FindByRoomAndMonth(ctx, room.ID, month)
	if err != nil {
		return nil, err
	}
	if reading != nil {
		charges.Water = reading.WaterCost()
		charges.Electric = reading.ElectricCost()
	}

	due := s.settings.DueDate(month)
	if dueDate != nil {
		due = dueDate.UTC()
	}

	bill, err := billing.NewBill(room.BuildingID, room.ID, tenant.ID, month, charges, due, slipURL, notes)
	if err != nil {
		return nil, err
	}

	var slipPayment *payment.Payment
	if bill.Status == billing.BillStatusPending {
		slipPayment, err = payment.NewPayment(bill.ID, tenant.ID, bill.GetTotalMoney(), payment.MethodQR, bill.SlipURL, "")
		if err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.billRepo.Create(ctx, bill); err != nil {
			return err
		}
		if slipPayment != nil {
			return s.paymentRepo.Create(ctx, slipPayment)
		}
		return nil
	})
	if err != nil {
		if shared.IsDuplicate(err) {
			return nil, duplicateBill(room, month)
		}
		return nil, err
	}

	issued := []shared.AggregateRoot{bill}
	if slipPayment != nil {
		issued = append(issued, slipPayment)
	}
	appshared.PublishEvents(ctx, s.events, issued...)
	return bill, nil
}

// Get retrieves a bill the actor may see
func (s *BillService) Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*BillResponse, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessTenant(b.TenantID) {
		return nil, shared.NewNotFoundError("bill")
	}
	resp := ToBillResponse(b, s.now())
	return &resp, nil
}

// List retrieves bills; renters only see their own
func (s *BillService) List(ctx context.Context, actor appshared.Actor, filter BillListFilter) ([]BillResponse, int64, error) {
	now := s.now()
	domainFilter, err := s.toDomainFilter(actor, filter, now)
	if err != nil {
		return nil, 0, err
	}
	domainFilter.Filter = filter.ToFilter("due_date")

	bills, err := s.billRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.billRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]BillResponse, len(bills))
	for i := range bills {
		out[i] = ToBillResponse(&bills[i], now)
	}
	return out, total, nil
}

// Summary aggregates every bill matching the filter; paging is ignored
func (s *BillService) Summary(ctx context.Context, actor appshared.Actor, filter BillListFilter) (*SummaryResponse, error) {
	now := s.now()
	domainFilter, err := s.toDomainFilter(actor, filter, now)
	if err != nil {
		return nil, err
	}
	bills, err := s.billRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	resp := ToSummaryResponse(billing.Summarize(bills, now))
	return &resp, nil
}

// ConfirmPaid records a payment made outside the slip workflow, such as cash
func (s *BillService) ConfirmPaid(ctx context.Context, id uuid.UUID, adminUID string) (*BillResponse, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := b.ConfirmPaid(now, adminUID); err != nil {
		return nil, err
	}
	if err := s.billRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}

	appshared.PublishEvents(ctx, s.events, b)
	resp := ToBillResponse(b, now)
	return &resp, nil
}

func (s *BillService) toDomainFilter(actor appshared.Actor, filter BillListFilter, now time.Time) (billing.BillFilter, error) {
	f := billing.BillFilter{
		BuildingID: filter.BuildingID,
		RoomID:     filter.RoomID,
		TenantID:   filter.TenantID,
	}
	if !actor.IsAdmin() {
		if actor.TenantID == nil {
			return f, shared.ErrForbidden
		}
		f.TenantID = actor.TenantID
	}
	if filter.Month != "" {
		month, err := valueobject.ParseMonth(filter.Month)
		if err != nil {
			return f, shared.NewValidationError(err.Error())
		}
		f.Month = &month
	}
	if filter.Status != "" {
		status := billing.BillStatus(filter.Status)
		if !status.IsValid() {
			return f, shared.NewValidationError(fmt.Sprintf("Invalid bill status: %s", filter.Status))
		}
		f.ApplyCriteria(billing.CriteriaFor(status, now))
	}
	return f, nil
}

func (s *BillService) load(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	b, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, shared.NewNotFoundError("bill")
	}
	return b, nil
}

func duplicateBill(room *property.Room, month valueobject.Month) error {
	return shared.NewDuplicateError(fmt.Sprintf("Room %s is already billed for %s", room.Number, month))
}
