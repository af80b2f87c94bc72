package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates a set of bills by presented status
type Summary struct {
	Count       int64
	ByStatus    map[BillStatus]int64
	Collected   decimal.Decimal
	Outstanding decimal.Decimal
}

// Summarize aggregates bills at instant now. Collected sums totals of bills
// persisted as paid; outstanding sums totals whose presented status is not paid.
// Counts use the presented status, so an overdue bill is counted once as overdue.
func Summarize(bills []Bill, now time.Time) Summary {
	s := Summary{
		ByStatus:    make(map[BillStatus]int64, len(AllBillStatuses)),
		Collected:   decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, st := range AllBillStatuses {
		s.ByStatus[st] = 0
	}
	for i := range bills {
		b := &bills[i]
		s.Count++
		derived := DeriveBillStatus(b, now)
		s.ByStatus[derived]++
		if b.Status == BillStatusPaid {
			s.Collected = s.Collected.Add(b.TotalAmount)
		}
		if derived != BillStatusPaid {
			s.Outstanding = s.Outstanding.Add(b.TotalAmount)
		}
	}
	return s
}
