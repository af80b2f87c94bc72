package billing

import "time"

// DeriveBillStatus returns the status presented for a bill at instant now.
// An unpaid bill whose due date is strictly before now is overdue; every
// other bill is presented with its persisted status. The persisted status is
// never changed by this.
func DeriveBillStatus(b *Bill, now time.Time) BillStatus {
	if b.Status == BillStatusUnpaid && b.DueDate.Before(now) {
		return BillStatusOverdue
	}
	return b.Status
}

// StatusCriteria is a derived status expressed over persisted columns, for
// filtering in storage queries.
type StatusCriteria struct {
	Status       BillStatus
	DueBefore    *time.Time
	DueNotBefore *time.Time
}

// CriteriaFor translates a presented status into StatusCriteria at instant
// now. It selects exactly the bills for which DeriveBillStatus returns derived.
func CriteriaFor(derived BillStatus, now time.Time) StatusCriteria {
	switch derived {
	case BillStatusOverdue:
		return StatusCriteria{Status: BillStatusUnpaid, DueBefore: &now}
	case BillStatusUnpaid:
		return StatusCriteria{Status: BillStatusUnpaid, DueNotBefore: &now}
	default:
		return StatusCriteria{Status: derived}
	}
}

// Matches reports whether a bill satisfies the criteria
func (c StatusCriteria) Matches(b *Bill) bool {
	if b.Status != c.Status {
		return false
	}
	if c.DueBefore != nil && !b.DueDate.Before(*c.DueBefore) {
		return false
	}
	if c.DueNotBefore != nil && b.DueDate.Before(*c.DueNotBefore) {
		return false
	}
	return true
}
