package domain

// Page size bounds shared by every list. Guest and invitee lists grow with CSV
// imports, so they are always read one page at a time.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// PaginationParams selects one page of a list in the repository's order.
type PaginationParams struct {
	Page     int
	PageSize int
}

// NewPagination builds clamped params from raw page and size values.
func NewPagination(page, pageSize int) PaginationParams {
	return PaginationParams{Page: page, PageSize: pageSize}.Normalize()
}

// Normalize returns p with Page at least 1 and PageSize in [1, MaxPageSize].
// A zero or negative PageSize becomes DefaultPageSize.
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is the number of rows before the page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages is how many pages of this size hold total rows.
func (p PaginationParams) TotalPages(total int) int {
	if p.PageSize < 1 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}
