package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/suteetoe/storefront/internal/apperror"
)

// queryParams reads a closed set of query parameters. Unknown or repeated
// parameters are rejected instead of ignored.
type queryParams struct {
	values url.Values
}

func parseQuery(c echo.Context, allowed ...string) (*queryParams, error) {
	values := c.QueryParams()
	known := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		known[name] = true
	}
	for name, vs := range values {
		if !known[name] {
			return nil, apperror.Validation(name, "unknown query parameter")
		}
		if len(vs) > 1 {
			return nil, apperror.Validation(name, "must be given at most once")
		}
	}
	return &queryParams{values: values}, nil
}

func (q *queryParams) has(name string) bool {
	_, ok := q.values[name]
	return ok
}

func (q *queryParams) str(name string) string {
	return strings.TrimSpace(q.values.Get(name))
}

// integer returns def when name is absent; a present value must parse
func (q *queryParams) integer(name string, def int) (int, error) {
	if !q.has(name) {
		return def, nil
	}
	n, err := strconv.Atoi(q.str(name))
	if err != nil {
		return 0, apperror.Validation(name, "must be an integer")
	}
	return n, nil
}

func (q *queryParams) boolean(name string) (bool, error) {
	if !q.has(name) {
		return false, nil
	}
	b, err := strconv.ParseBool(q.str(name))
	if err != nil {
		return false, apperror.Validation(name, "must be true or false")
	}
	return b, nil
}

func (q *queryParams) decimal(name string) (*decimal.Decimal, error) {
	if !q.has(name) {
		return nil, nil
	}
	d, err := decimal.NewFromString(q.str(name))
	if err != nil {
		return nil, apperror.Validation(name, "must be a number")
	}
	return &d, nil
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Validation(name, "must be a UUID")
	}
	return id, nil
}

// bind decodes the JSON body into v
func bind(c echo.Context, v interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return apperror.Validation("body", "malformed JSON body")
	}
	return nil
}
