package shared

import (
	"strings"

	"github.com/dormdesk/backend/internal/domain/shared"
)

// Paging defaults and limits for list endpoints
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery is the paging and sorting part of every list request
type ListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,max=50"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ToFilter converts the query into a repository filter with defaults applied
func (q ListQuery) ToFilter(defaultOrderBy string) shared.Filter {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: strings.ToLower(q.OrderDir),
		Search:   strings.TrimSpace(q.Search),
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.OrderBy == "" {
		f.OrderBy = defaultOrderBy
	}
	if f.OrderDir == "" {
		f.OrderDir = "desc"
	}
	return f
}
