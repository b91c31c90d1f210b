package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-timesheet-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// GetPaginationParams extracts page and page_size from the query string.
// page_size is clamped to MaxPageSize; malformed values fall back to defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < constants.MinPage {
		page = constants.MinPage
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil {
		pageSize = constants.DefaultPageSize
	}

	return NewPaginationParams(page, pageSize)
}

// NewPaginationParams normalizes page and pageSize into bounds and computes the offset.
func NewPaginationParams(page, pageSize int) PaginationParams {
	if page < constants.MinPage {
		page = constants.MinPage
	}
	if pageSize < constants.MinPageSize {
		pageSize = constants.MinPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// TotalPages returns the number of pages needed for total items.
func (p PaginationParams) TotalPages(total int64) int {
	if p.PageSize <= 0 {
		return 0
	}
	pages := int(total) / p.PageSize
	if int(total)%p.PageSize > 0 {
		pages++
	}
	return pages
}
