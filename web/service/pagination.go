package service

// DefaultPerPage is the page size used by the admin listings.
const DefaultPerPage = 25

// Page carries one page of results plus the totals the templates and the
// public API need to render pagers.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

// Pages returns the number of available pages.
func (p Page[T]) Pages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

func (p Page[T]) HasNext() bool {
	return p.Page < p.Pages()
}

// clampPage normalizes a requested page/perPage pair. An absent or invalid
// perPage falls back to DefaultPerPage; explicit values are capped at
// maxPerPage.
func clampPage(page, perPage, maxPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func offsetFor(page, perPage int) int {
	return (page - 1) * perPage
}
