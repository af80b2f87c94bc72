package persistence

import (
	"strings"

	"github.com/dormdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BuildingSortFields contains allowed sort fields for buildings
var BuildingSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
}

// RoomSortFields contains allowed sort fields for rooms
var RoomSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"number":       true,
	"floor":        true,
	"status":       true,
	"monthly_rent": true,
}

// TenantSortFields contains allowed sort fields for tenants
var TenantSortFields = map[string]bool{
	"created_at":   true,
	"name":         true,
	"move_in_date": true,
	"status":       true,
}

// ContractSortFields contains allowed sort fields for contracts
var ContractSortFields = map[string]bool{
	"created_at": true,
	"start_date": true,
	"end_date":   true,
	"status":     true,
}

// ReadingSortFields contains allowed sort fields for meter readings
var ReadingSortFields = map[string]bool{
	"month":       true,
	"recorded_at": true,
}

// BillSortFields contains allowed sort fields for bills
var BillSortFields = map[string]bool{
	"created_at":   true,
	"month":        true,
	"due_date":     true,
	"total_amount": true,
	"paid_at":      true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"created_at":  true,
	"amount":      true,
	"verified_at": true,
}

// orderAndPage applies whitelisted ordering and offset pagination.
// A PageSize of zero or less returns every row.
func orderAndPage(q *gorm.DB, f shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(f.OrderBy, allowed, defaultField)
	q = q.Order(field + " " + ValidateSortOrder(f.OrderDir)).Order("id ASC")
	if f.PageSize > 0 {
		q = q.Offset(f.Offset()).Limit(f.PageSize)
	}
	return q
}
