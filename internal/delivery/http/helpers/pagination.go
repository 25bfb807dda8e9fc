package helpers

import (
	"net/http"
	"strconv"

	"eventseating/internal/domain"
)

// ParsePagination reads ?page= and ?page_size=. Missing or non-numeric values fall
// back to the first page at domain.DefaultPageSize; oversized pages are clamped.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return domain.NewPagination(page, size)
}

// PaginationMeta accompanies every paged list (events, guests, invitees).
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta describes the page that was served out of total rows.
func NewPaginationMeta(page domain.PaginationParams, total int) PaginationMeta {
	return PaginationMeta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}
}
