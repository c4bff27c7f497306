package repository

import (
	"errors"
	"strings"
)

const (
	// DefaultLimit is the page size used when a query does not set one.
	DefaultLimit = 100
	// MaxLimit is the largest page a query may request.
	MaxLimit = 1000
)

// ErrInvalidPagination is returned for a negative skip or a limit outside 1..MaxLimit.
var ErrInvalidPagination = errors.New("invalid pagination")

// Query selects a page of products. Zero-valued filters are not applied.
type Query struct {
	Skip  int
	Limit int

	Category string
	Search   string
	// LowStockBelow keeps only products whose quantity is strictly lower. Zero disables it.
	LowStockBelow int
}

func NewQuery() *Query {
	return &Query{Limit: DefaultLimit}
}

func (q *Query) WithCategory(category string) *Query {
	q.Category = strings.TrimSpace(category)
	return q
}

func (q *Query) WithSearch(search string) *Query {
	q.Search = strings.TrimSpace(search)
	return q
}

func (q *Query) WithLowStockBelow(threshold int) *Query {
	q.LowStockBelow = threshold
	return q
}

// ApplyPagination validates skip and limit. A zero limit selects DefaultLimit.
func (q *Query) ApplyPagination(skip, limit int) error {
	if skip < 0 {
		return errors.Join(ErrInvalidPagination, errors.New("skip must be greater than or equal to 0"))
	}
	if limit < 0 || limit > MaxLimit {
		return errors.Join(ErrInvalidPagination, errors.New("limit must be between 1 and 1000"))
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	q.Skip = skip
	q.Limit = limit
	return nil
}

// EffectiveLimit returns Limit clamped to 1..MaxLimit, defaulting to DefaultLimit.
func (q Query) EffectiveLimit() int {
	switch {
	case q.Limit <= 0:
		return DefaultLimit
	case q.Limit > MaxLimit:
		return MaxLimit
	default:
		return q.Limit
	}
}
