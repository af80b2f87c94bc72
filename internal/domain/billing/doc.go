// Package billing models monthly room bills.
//
// A Bill is issued once per room and month with rent, water, electric and
// other charges. Its stored status moves unpaid -> pending -> paid, or back
// to unpaid when a slip is rejected. Overdue is presented, never stored:
// DeriveBillStatus computes it from the due date, and CriteriaFor turns a
// presented status back into column filters for storage queries.
package billing
