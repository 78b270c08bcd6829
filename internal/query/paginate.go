package query

// Default page sizes.
const (
	DefaultLimit             = 20
	DefaultNotificationLimit = 12
)

// Pagination is the caller's page request. Page is 1-indexed.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PageInfo describes the slice returned by Paginate.
type PageInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one slice of a filtered result set.
type Page[T any] struct {
	Items      []T      `json:"data"`
	Pagination PageInfo `json:"pagination"`
}

// Paginate counts items before slicing. A page past the end yields an empty,
// non-nil slice.
func Paginate[T any](items []T, p Pagination, defaultLimit int) Page[T] {
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	total := len(items)
	info := PageInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: total / limit,
	}
	if total%limit != 0 {
		info.TotalPages++
	}

	if page > info.TotalPages {
		return Page[T]{Items: []T{}, Pagination: info}
	}
	start := (page - 1) * limit
	end := min(start+limit, total)
	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{Items: out, Pagination: info}
}
