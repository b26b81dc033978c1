package handler

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hotelmate/backend/internal/domain"
)

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type pageResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

func toPageResponse[A, B any](p domain.Page[A], conv func(A) B) pageResponse[B] {
	return pageResponse[B]{
		Data: mapSlice(p.Items, conv),
		Pagination: Pagination{
			Page:        p.Page,
			Limit:       p.Limit,
			Total:       p.Total,
			TotalPages:  p.TotalPages,
			HasNext:     p.HasNext,
			HasPrevious: p.HasPrevious,
		},
	}
}

// mapSlice converts every element; the result is never nil so it encodes as [].
func mapSlice[A, B any](in []A, conv func(A) B) []B {
	out := make([]B, len(in))
	for i, v := range in {
		out[i] = conv(v)
	}
	return out
}

func parseDecimal(name string, s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a decimal number", domain.ErrValidation, name)
	}
	return &d, nil
}

func parseDate(name string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", domain.ErrValidation, name)
	}
	return &t, nil
}
