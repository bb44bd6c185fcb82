package storefront

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/gateway"
)

const (
	DefaultListLimit   = 12
	DefaultSearchLimit = 20
	MaxLimit           = 100
	MaxPage            = 100000
	MaxSearchLength    = 200
)

// ListFilters is the closed set of options a product listing accepts
type ListFilters struct {
	Page        int
	Limit       int
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
	SortBy      gateway.SortOrder
}

// DefaultListFilters returns page 1 of 12 newest products
func DefaultListFilters() ListFilters {
	return ListFilters{Page: 1, Limit: DefaultListLimit, SortBy: gateway.SortNewest}
}

// Validate rejects out of range values instead of clamping them
func (f ListFilters) Validate() error {
	if err := ValidateWindow(f.Page, f.Limit); err != nil {
		return err
	}
	if _, ok := gateway.ParseSortOrder(string(f.SortBy)); !ok {
		return apperror.Validation("sortBy", "must be one of newest, oldest, price_asc, price_desc")
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return apperror.Validation("minPrice", "must not be negative")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return apperror.Validation("maxPrice", "must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return apperror.Validation("minPrice", "must not be greater than maxPrice")
	}
	return nil
}

func (f ListFilters) query() gateway.ProductQuery {
	sort, _ := gateway.ParseSortOrder(string(f.SortBy))
	return gateway.ProductQuery{
		MinPrice:    f.MinPrice,
		MaxPrice:    f.MaxPrice,
		InStockOnly: f.InStockOnly,
		Sort:        sort,
		Offset:      Offset(f.Page, f.Limit),
		Limit:       f.Limit,
	}
}

// SearchFilters is the closed set of options a product search accepts
type SearchFilters struct {
	Query string
	Page  int
	Limit int
}

// DefaultSearchFilters returns page 1 of 20 results for query
func DefaultSearchFilters(query string) SearchFilters {
	return SearchFilters{Query: query, Page: 1, Limit: DefaultSearchLimit}
}

// Validate rejects a blank query and out of range paging
func (f SearchFilters) Validate() error {
	q := strings.TrimSpace(f.Query)
	if q == "" {
		return apperror.Validation("q", "is required")
	}
	if len(q) > MaxSearchLength {
		return apperror.Validation("q", "is too long")
	}
	return ValidateWindow(f.Page, f.Limit)
}

// ValidateWindow checks a 1-indexed page and a page size
func ValidateWindow(page, limit int) error {
	if page <= 0 {
		return apperror.Validation("page", "must be greater than 0")
	}
	if page > MaxPage {
		return apperror.Validation("page", "is too large")
	}
	if limit <= 0 {
		return apperror.Validation("limit", "must be greater than 0")
	}
	if limit > MaxLimit {
		return apperror.Validation("limit", "must be at most 100")
	}
	return nil
}

// Offset is the number of rows before page
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// Pagination describes where a page sits in the full result
type Pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	Pages           int64 `json:"pages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagination derives the page metadata for page of limit items out of total
func NewPagination(page, limit int, total int64) Pagination {
	off := int64(Offset(page, limit))
	return Pagination{
		Page:            page,
		Limit:           limit,
		Total:           total,
		Pages:           (total + int64(limit) - 1) / int64(limit),
		HasNextPage:     off+int64(limit) < total,
		HasPreviousPage: off > 0,
	}
}
