package utils

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// Page is one page of a larger ordered result.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
}

// Paginate returns the 1-based page of items. Paging is opt-in: when both
// page and pageSize are zero every item is returned as a single page.
// Otherwise a missing page means 1, a missing size means DefaultPageSize and
// sizes above MaxPageSize are capped.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	total := len(items)

	if page <= 0 && pageSize <= 0 {
		all := make([]T, total)
		copy(all, items)
		return Page[T]{Items: all, Total: total, Page: 1, PageSize: total}
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	// Compare before multiplying; huge page numbers would overflow.
	start := total
	if page-1 <= total/pageSize {
		start = min((page-1)*pageSize, total)
	}
	end := min(start+pageSize, total)

	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return Page[T]{
		Items:    pageItems,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  page > 1,
	}
}
