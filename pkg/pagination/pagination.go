package pagination

import (
	"net/http"
	"strconv"
)

const (
	defaultPerPage = 50
	maxPerPage     = 100
)

// Params is a 1-based page request. Zero or out-of-range values are
// normalized by FromRequest and DefaultParams, so a Params obtained
// through either is always safe to feed into a LIMIT/OFFSET query.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns the first page at the default size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: defaultPerPage}
}

// FromRequest reads page and per_page from the query string. Values that
// are missing, malformed, or out of range fall back to the defaults.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	return Params{
		Page:    clamp(q.Get("page"), 1, 0, 1),
		PerPage: clamp(q.Get("per_page"), 1, maxPerPage, defaultPerPage),
	}
}

// clamp parses raw and keeps it within [min, max]; max of 0 means
// unbounded. Anything unparseable becomes fallback.
func clamp(raw string, min, max, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// Offset converts the 1-based page into a row offset.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Result wraps one page of data with enough metadata for clients to walk
// the full set.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult assembles a Result from one page of rows and the total row
// count the query reported.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	perPage := params.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	totalPages := (totalCount + perPage - 1) / perPage

	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1 && totalCount > 0,
	}
}
