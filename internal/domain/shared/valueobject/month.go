package valueobject

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month is a billing period key in YYYY-MM form.
// Lexical order of the string form equals chronological order.
type Month struct {
	year  int
	month time.Month
}

// ParseMonth parses a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return Month{year: t.Year(), month: t.Month()}, nil
}

// MustParseMonth is ParseMonth for constants in tests and fixtures.
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{year: t.Year(), month: t.Month()}
}

// IsZero reports whether the month is unset
func (m Month) IsZero() bool {
	return m.year == 0
}

// String returns the YYYY-MM key
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

// Before reports whether m is earlier than other
func (m Month) Before(other Month) bool {
	if m.year != other.year {
		return m.year < other.year
	}
	return m.month < other.month
}

// Next returns the following month
func (m Month) Next() Month {
	return MonthOf(m.Start(time.UTC).AddDate(0, 1, 0))
}

// Prev returns the preceding month
func (m Month) Prev() Month {
	return MonthOf(m.Start(time.UTC).AddDate(0, -1, 0))
}

// Start returns midnight of the first day of the month in loc.
func (m Month) Start(loc *time.Location) time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, loc)
}

// DayOf returns midnight of the given day within the month, clamped to the
// last day of the month.
func (m Month) DayOf(day int, loc *time.Location) time.Time {
	if day < 1 {
		day = 1
	}
	last := m.Next().Start(loc).AddDate(0, 0, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(m.year, m.month, day, 0, 0, 0, 0, loc)
}
