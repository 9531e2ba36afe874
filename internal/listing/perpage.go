package listing

import (
	"strconv"
	"strings"
)

// Page size preference, stored as user meta the way the host stores the posts screen option.
const (
	PerPageMetaKey = "edit_post_per_page"
	DefaultPerPage = 20
	MinPerPage     = 1
	MaxPerPage     = 999
)

// ResolvePerPage turns a stored preference into a page size: a positive integer is
// used as is (capped at MaxPerPage), anything else yields DefaultPerPage.
func ResolvePerPage(stored string, ok bool) int {
	if !ok {
		return DefaultPerPage
	}
	n, err := strconv.Atoi(strings.TrimSpace(stored))
	if err != nil || n < MinPerPage {
		return DefaultPerPage
	}
	return min(n, MaxPerPage)
}

// ClampPerPage bounds a submitted screen option value.
func ClampPerPage(n int) int {
	return max(MinPerPage, min(n, MaxPerPage))
}

// Pagination describes where the current page sits in the result set.
type Pagination struct {
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
}

// NewPagination clamps page into range for total items split perPage at a time.
func NewPagination(page, perPage, total int) Pagination {
	if perPage < MinPerPage {
		perPage = DefaultPerPage
	}
	pages := (total + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	return Pagination{Page: page, PerPage: perPage, TotalItems: total, TotalPages: pages}
}

// Offset is the number of rows before the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
