package domain

// Page limits shared by the HTTP and search layers.
const (
	DefaultReservationPageSize = 20
	DefaultHotelPageSize       = 10
	MaxPageSize                = 100
)

// PaginationParams carries page/limit values from the HTTP layer to the search layer.
// Page is 1-indexed. Limit is capped at MaxPageSize by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to page=1 and the given default limit.
// The limit is capped at MaxPageSize to prevent runaway responses.
func NewPaginationParams(page, limit *int, defaultLimit int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: defaultLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > MaxPageSize {
			p.Limit = MaxPageSize
		}
	}
	return p
}

// Offset returns the zero-based item offset of the first item on the page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of a filtered, sorted result set.
type Page[T any] struct {
	Items       []T
	Total       int
	Page        int
	Limit       int
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// Paginate slices one page out of the full result set.
// TotalPages is ceil(total/limit); when limit or total is zero there are no
// pages and both navigation flags are false. Items is never nil.
func Paginate[T any](all []T, p PaginationParams) Page[T] {
	out := Page[T]{Items: []T{}, Total: len(all), Page: p.Page, Limit: p.Limit}
	if p.Limit <= 0 || out.Total == 0 || p.Page < 1 {
		return out
	}

	out.TotalPages = (out.Total + p.Limit - 1) / p.Limit
	out.HasNext = p.Page < out.TotalPages
	out.HasPrevious = p.Page > 1

	// Past the last page; also keeps Offset from overflowing on huge pages.
	if p.Page > out.TotalPages {
		return out
	}
	start := p.Offset()
	end := min(start+p.Limit, out.Total)
	out.Items = append(out.Items, all[start:end]...)
	return out
}
