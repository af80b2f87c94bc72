// Package report builds the admin dashboard figures.
package report

import (
	"context"
	"time"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevenueMonths is how many bill months the revenue trend covers
const RevenueMonths = 6

// RoomStats counts rooms per status
type RoomStats struct {
	Total         int64           `json:"total"`
	Occupied      int64           `json:"occupied"`
	Vacant        int64           `json:"vacant"`
	Maintenance   int64           `json:"maintenance"`
	Reserved      int64           `json:"reserved"`
	OccupancyRate decimal.Decimal `json:"occupancy_rate"`
}

// MonthRevenue is billed and collected totals for one bill month
type MonthRevenue struct {
	Month     string          `json:"month"`
	Billed    decimal.Decimal `json:"billed"`
	Collected decimal.Decimal `json:"collected"`
}

// DashboardResponse is the admin overview
type DashboardResponse struct {
	GeneratedAt   time.Time        `json:"generated_at"`
	BuildingID    *uuid.UUID       `json:"building_id,omitempty"`
	Rooms         RoomStats        `json:"rooms"`
	ActiveTenants int64            `json:"active_tenants"`
	BillsByStatus map[string]int64 `json:"bills_by_status"`
	Outstanding   decimal.Decimal  `json:"outstanding"`
	PaidThisMonth decimal.Decimal  `json:"paid_this_month"`
	// PendingPayments counts slips awaiting verification
	PendingPayments int64          `json:"pending_payments"`
	Revenue         []MonthRevenue `json:"revenue"`
}

// DashboardService computes dashboard figures from the repositories
type DashboardService struct {
	roomRepo   property.RoomRepository
	tenantRepo property.TenantRepository
	billRepo   billing.BillRepository
	loc        *time.Location
	now        appshared.Clock
}

// NewDashboardService creates a DashboardService; loc defines "this month"
func NewDashboardService(
	roomRepo property.RoomRepository,
	tenantRepo property.TenantRepository,
	billRepo billing.BillRepository,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		roomRepo:   roomRepo,
		tenantRepo: tenantRepo,
		billRepo:   billRepo,
		loc:        loc,
		now:        appshared.SystemClock,
	}
}

// Dashboard returns the overview for one building, or all when buildingID is nil
func (s *DashboardService) Dashboard(ctx context.Context, buildingID *uuid.UUID) (*DashboardResponse, error) {
	now := s.now()

	counts, err := s.roomRepo.CountByStatus(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	active := property.TenantStatusActive
	tenants, err := s.tenantRepo.Count(ctx, property.TenantFilter{BuildingID: buildingID, Status: &active})
	if err != nil {
		return nil, err
	}

	bills, err := s.billRepo.FindAll(ctx, billing.BillFilter{BuildingID: buildingID})
	if err != nil {
		return nil, err
	}
	summary := billing.Summarize(bills, now)

	paidThisMonth, err := s.paidWithin(ctx, buildingID, valueobject.MonthOf(now.In(s.loc)))
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(summary.ByStatus))
	for st, n := range summary.ByStatus {
		byStatus[st.String()] = n
	}

	return &DashboardResponse{
		GeneratedAt:     now,
		BuildingID:      buildingID,
		Rooms:           roomStats(counts),
		ActiveTenants:   tenants,
		BillsByStatus:   byStatus,
		Outstanding:     summary.Outstanding,
		PaidThisMonth:   paidThisMonth,
		PendingPayments: summary.ByStatus[billing.BillStatusPending],
		Revenue:         revenueTrend(bills, valueobject.MonthOf(now.In(s.loc)), RevenueMonths),
	}, nil
}

// paidWithin sums bills whose payment was recorded during month
func (s *DashboardService) paidWithin(ctx context.Context, buildingID *uuid.UUID, month valueobject.Month) (decimal.Decimal, error) {
	paid := billing.BillStatusPaid
	from := month.Start(s.loc).UTC()
	to := month.Next().Start(s.loc).UTC()
	bills, err := s.billRepo.FindAll(ctx, billing.BillFilter{
		BuildingID: buildingID,
		Status:     &paid,
		PaidFrom:   &from,
		PaidTo:     &to,
	})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range bills {
		total = total.Add(bills[i].TotalAmount)
	}
	return total, nil
}

func roomStats(counts map[property.RoomStatus]int64) RoomStats {
	st := RoomStats{
		Occupied:      counts[property.RoomStatusOccupied],
		Vacant:        counts[property.RoomStatusVacant],
		Maintenance:   counts[property.RoomStatusMaintenance],
		Reserved:      counts[property.RoomStatusReserved],
		OccupancyRate: decimal.Zero,
	}
	st.Total = st.Occupied + st.Vacant + st.Maintenance + st.Reserved
	if st.Total > 0 {
		st.OccupancyRate = decimal.NewFromInt(st.Occupied).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(st.Total)).
			Round(2)
	}
	return st
}

// revenueTrend groups bills by bill month for the n months ending at last,
// oldest first. Months without bills are reported as zero.
func revenueTrend(bills []billing.Bill, last valueobject.Month, n int) []MonthRevenue {
	months := make([]valueobject.Month, n)
	m := last
	for i := n - 1; i >= 0; i-- {
		months[i] = m
		m = m.Prev()
	}

	index := make(map[valueobject.Month]int, n)
	out := make([]MonthRevenue, n)
	for i, month := range months {
		index[month] = i
		out[i] = MonthRevenue{Month: month.String(), Billed: decimal.Zero, Collected: decimal.Zero}
	}
	for i := range bills {
		b := &bills[i]
		pos, ok := index[b.Month]
		if !ok {
			continue
		}
		out[pos].Billed = out[pos].Billed.Add(b.TotalAmount)
		if b.Status == billing.BillStatusPaid {
			out[pos].Collected = out[pos].Collected.Add(b.TotalAmount)
		}
	}
	return out
}
