package report

import (
	"context"
	"testing"
	"time"

	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRooms struct {
	property.RoomRepository
	counts      map[property.RoomStatus]int64
	gotBuilding *uuid.UUID
}

func (r *stubRooms) CountByStatus(ctx context.Context, buildingID *uuid.UUID) (map[property.RoomStatus]int64, error) {
	r.gotBuilding = buildingID
	return r.counts, nil
}

type stubTenants struct {
	property.TenantRepository
	active int64
}

func (r *stubTenants) Count(ctx context.Context, filter property.TenantFilter) (int64, error) {
	if filter.Status == nil || *filter.Status != property.TenantStatusActive {
		return 0, nil
	}
	return r.active, nil
}

// stubBills applies the persisted-column filters the dashboard uses
type stubBills struct {
	billing.BillRepository
	bills []billing.Bill
}

func (r *stubBills) FindAll(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, error) {
	var out []billing.Bill
	for _, b := range r.bills {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.PaidFrom != nil && (b.PaidAt == nil || b.PaidAt.Before(*filter.PaidFrom)) {
			continue
		}
		if filter.PaidTo != nil && (b.PaidAt == nil || !b.PaidAt.Before(*filter.PaidTo)) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func dashBill(t *testing.T, month string, total int64, due time.Time) *billing.Bill {
	t.Helper()
	b, err := billing.NewBill(uuid.New(), uuid.New(), uuid.New(), valueobject.MustParseMonth(month), billing.Charges{
		Rent:     valueobject.NewMoneyTHB(decimal.NewFromInt(total)),
		Water:    valueobject.ZeroTHB(),
		Electric: valueobject.ZeroTHB(),
		Other:    valueobject.ZeroTHB(),
	}, due, "", "")
	require.NoError(t, err)
	b.CreatedAt = due.AddDate(0, -1, 0)
	return b
}

func TestDashboardService_Dashboard(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	paidInMarch := dashBill(t, "2025-02", 6000, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, paidInMarch.ConfirmPaid(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), "admin"))
	paidInFeb := dashBill(t, "2025-01", 5000, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, paidInFeb.ConfirmPaid(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), "admin"))
	overdue := dashBill(t, "2025-02", 4000, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	pending := dashBill(t, "2025-03", 3000, time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, pending.AttachSlip("https://cdn.test/slips/p.png"))
	ancient := dashBill(t, "2024-01", 100, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))

	rooms := &stubRooms{counts: map[property.RoomStatus]int64{
		property.RoomStatusOccupied:    3,
		property.RoomStatusVacant:      2,
		property.RoomStatusMaintenance: 1,
	}}
	svc := NewDashboardService(rooms, &stubTenants{active: 3},
		&stubBills{bills: []billing.Bill{*paidInMarch, *paidInFeb, *overdue, *pending, *ancient}}, time.UTC)
	svc.now = func() time.Time { return now }

	buildingID := uuid.New()
	d, err := svc.Dashboard(context.Background(), &buildingID)
	require.NoError(t, err)

	assert.Equal(t, &buildingID, rooms.gotBuilding)
	assert.Equal(t, int64(6), d.Rooms.Total)
	assert.Equal(t, "50", d.Rooms.OccupancyRate.String())
	assert.Equal(t, int64(3), d.ActiveTenants)
	assert.Equal(t, int64(2), d.BillsByStatus["paid"])
	assert.Equal(t, int64(2), d.BillsByStatus["overdue"])
	assert.Equal(t, int64(1), d.BillsByStatus["pending"])
	assert.Equal(t, int64(0), d.BillsByStatus["unpaid"])
	assert.Equal(t, int64(1), d.PendingPayments)
	assert.Equal(t, "7100.00", d.Outstanding.StringFixed(2))
	assert.Equal(t, "6000.00", d.PaidThisMonth.StringFixed(2))

	require.Len(t, d.Revenue, RevenueMonths)
	assert.Equal(t, "2024-10", d.Revenue[0].Month)
	last := d.Revenue[RevenueMonths-1]
	assert.Equal(t, "2025-03", last.Month)
	assert.Equal(t, "3000.00", last.Billed.StringFixed(2))
	feb := d.Revenue[RevenueMonths-2]
	assert.Equal(t, "10000.00", feb.Billed.StringFixed(2))
	assert.Equal(t, "6000.00", feb.Collected.StringFixed(2))
}

func TestRoomStats_OccupancyRate(t *testing.T) {
	tests := []struct {
		name   string
		counts map[property.RoomStatus]int64
		want   string
	}{
		{"no rooms", nil, "0"},
		{"all occupied", map[property.RoomStatus]int64{property.RoomStatusOccupied: 4}, "100"},
		{"one of three", map[property.RoomStatus]int64{property.RoomStatusOccupied: 1, property.RoomStatusVacant: 2}, "33.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roomStats(tt.counts).OccupancyRate.String())
		})
	}
}
