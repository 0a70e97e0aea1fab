package store

import "math"

// PaginationParams contains parameters for paginated queries
type PaginationParams struct {
	Page     int    // Current page number (1-indexed)
	PageSize int    // Number of items per page
	Search   string // Search keyword
}

// PaginationResult contains pagination metadata
type PaginationResult struct {
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	HasPrev     bool  `json:"has_prev"`
	HasNext     bool  `json:"has_next"`
	PrevPage    int   `json:"prev_page,omitempty"`
	NextPage    int   `json:"next_page,omitempty"`
}

// NewPaginationParams creates a new PaginationParams with default values
func NewPaginationParams(page, pageSize int, search string) PaginationParams {
	// Default to page 1 if invalid
	if page < 1 {
		page = 1
	}

	// Default to 20 items per page, max 100
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
	}
}

// CalculatePagination calculates pagination metadata
func CalculatePagination(total int64, currentPage, pageSize int) PaginationResult {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	// Ensure current page is within bounds
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages && totalPages > 0 {
		currentPage = totalPages
	}

	hasPrev := currentPage > 1
	hasNext := currentPage < totalPages

	prevPage := max(currentPage-1, 1)
	nextPage := min(currentPage+1, totalPages)

	return PaginationResult{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: currentPage,
		PageSize:    pageSize,
		HasPrev:     hasPrev,
		HasNext:     hasNext,
		PrevPage:    prevPage,
		NextPage:    nextPage,
	}
}
