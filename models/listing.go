package models

import "strings"

type ListFilter string

const (
	FilterAll        ListFilter = "all"
	FilterFeatured   ListFilter = "featured"
	FilterRecent     ListFilter = "recent"
	FilterPopular    ListFilter = "popular"
	FilterAIMatch    ListFilter = "ai-match"
	FilterLiked      ListFilter = "liked"
	FilterBookmarked ListFilter = "bookmarked"
)

// ParseListFilter maps unknown or empty values to FilterAll.
func ParseListFilter(s string) ListFilter {
	switch f := ListFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterFeatured, FilterRecent, FilterPopular, FilterAIMatch, FilterLiked, FilterBookmarked:
		return f
	}
	return FilterAll
}

type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortPopular SortKey = "popular"
	SortLikes   SortKey = "likes"
	SortMatch   SortKey = "match"
)

// ParseSortKey maps unknown or empty values to SortNewest.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortPopular, SortLikes, SortMatch:
		return k
	}
	return SortNewest
}

// ListParams is the raw query string of the listing endpoint. Everything is
// bound as a string so malformed numbers fall back to defaults instead of failing.
type ListParams struct {
	Search string `form:"search"`
	Filter string `form:"filter"`
	SDG    string `form:"sdg"`
	Page   string `form:"page"`
	Limit  string `form:"limit"`
	SortBy string `form:"sortBy"`
	UserID string `form:"userId"`
	Status string `form:"status"`
}

type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalCount      int64 `json:"totalCount"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagination computes page metadata; totalPages is ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalCount:      total,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// AppliedFilters echoes the listing parameters after normalization.
type AppliedFilters struct {
	Search string   `json:"search"`
	Filter string   `json:"filter"`
	SDG    string   `json:"sdg"`
	SortBy string   `json:"sortBy"`
	UserID string   `json:"userId,omitempty"`
	Status []Status `json:"status"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
}

type ListResponse struct {
	Projects   []ProjectSummary `json:"projects"`
	Pagination Pagination       `json:"pagination"`
	Filters    AppliedFilters   `json:"filters"`
}
