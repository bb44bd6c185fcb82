// Package storefront serves the public, read mostly side of a store: product
// listing, search and detail, the store profile, and checkout. Each operation
// validates its input, resolves the tenant, runs the publication guard and
// only then touches tenant data.
package storefront

import (
	"context"
	"errors"
	"strings"

	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/gateway"
	"github.com/suteetoe/storefront/internal/guard"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/tenancy"
	"github.com/suteetoe/storefront/internal/validation"
	"github.com/suteetoe/storefront/pkg/logger"
	"github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
)

// Directory resolves subdomains to tenants
type Directory interface {
	LookupBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error)
}

// Catalog is the tenant scoped data the storefront reads and writes.
// *gateway.Gateway implements it.
type Catalog interface {
	ListProducts(ctx context.Context, tenant *model.Tenant, q gateway.ProductQuery) ([]model.Product, int64, error)
	ProductBySlug(ctx context.Context, tenant *model.Tenant, slug string, statuses ...model.ProductStatus) (*model.Product, error)
	Setting(ctx context.Context, tenant *model.Tenant) (*model.Setting, error)
	PlaceOrder(ctx context.Context, tenant *model.Tenant, draft gateway.OrderDraft) (*model.Order, error)
}

var _ Catalog = (*gateway.Gateway)(nil)

// storefront shoppers only ever see ACTIVE products
var visibleStatuses = []model.ProductStatus{model.ProductActive}

// Service implements the storefront queries
type Service struct {
	directory Directory
	catalog   Catalog
}

// NewService creates a storefront service
func NewService(directory Directory, catalog Catalog) *Service {
	return &Service{directory: directory, catalog: catalog}
}

// ProductPage is one page of a listing or search
type ProductPage struct {
	Products   []model.Product  `json:"products"`
	Pagination Pagination       `json:"pagination"`
	Visibility guard.Visibility `json:"-"`
}

// ProductDetail is a single product
type ProductDetail struct {
	Product    *model.Product
	Visibility guard.Visibility
}

// StoreProfile is the public face of a store
type StoreProfile struct {
	Tenant     *model.Tenant
	Setting    *model.Setting
	Visibility guard.Visibility
}

// visibleTenant resolves the accessed store and applies the publication guard
func (s *Service) visibleTenant(ctx context.Context, access tenancy.Access) (*model.Tenant, guard.Visibility, error) {
	if access.Subdomain == "" {
		return nil, guard.Visibility{}, apperror.ErrTenantNotFound
	}
	tenant, err := s.directory.LookupBySubdomain(ctx, access.Subdomain)
	if err != nil {
		return nil, guard.Visibility{}, err
	}
	visibility, err := guard.AssertVisible(tenant, access)
	if err != nil {
		logger.FromContext(ctx).Debug("Store hidden by publication guard",
			zap.String("subdomain", tenant.Subdomain),
			zap.Bool("anonymous", access.Anonymous()))
		return nil, guard.Visibility{}, err
	}
	return tenant, visibility, nil
}

func record(operation string, err error) {
	if err == nil {
		prometheus.RecordStorefrontQuery(operation, "ok")
		return
	}
	prometheus.RecordStorefrontQuery(operation, apperror.KindOf(err).String())
}

// ListProducts returns a page of the store's ACTIVE products
func (s *Service) ListProducts(ctx context.Context, access tenancy.Access, f ListFilters) (page *ProductPage, err error) {
	defer func() { record("list", err) }()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	tenant, visibility, err := s.visibleTenant(ctx, access)
	if err != nil {
		return nil, err
	}

	q := f.query()
	q.Statuses = visibleStatuses
	products, total, err := s.catalog.ListProducts(ctx, tenant, q)
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Products:   products,
		Pagination: NewPagination(f.Page, f.Limit, total),
		Visibility: visibility,
	}, nil
}

// SearchProducts matches the query case-insensitively against name,
// description and SKU of the store's ACTIVE products
func (s *Service) SearchProducts(ctx context.Context, access tenancy.Access, f SearchFilters) (page *ProductPage, err error) {
	defer func() { record("search", err) }()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	tenant, visibility, err := s.visibleTenant(ctx, access)
	if err != nil {
		return nil, err
	}

	products, total, err := s.catalog.ListProducts(ctx, tenant, gateway.ProductQuery{
		Statuses: visibleStatuses,
		Search:   strings.TrimSpace(f.Query),
		Sort:     gateway.SortNewest,
		Offset:   Offset(f.Page, f.Limit),
		Limit:    f.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{
		Products:   products,
		Pagination: NewPagination(f.Page, f.Limit, total),
		Visibility: visibility,
	}, nil
}

// ProductBySlug returns an ACTIVE product of the store. An unknown store, a
// hidden store, an unknown slug and a non-ACTIVE product all produce the same
// ErrProductNotFound.
func (s *Service) ProductBySlug(ctx context.Context, access tenancy.Access, slug string) (detail *ProductDetail, err error) {
	defer func() { record("detail", err) }()

	slug = strings.ToLower(strings.TrimSpace(slug))
	if !validation.IsSlug(slug) {
		return nil, apperror.Validation("slug", "must be lowercase letters and digits separated by single hyphens")
	}

	tenant, visibility, err := s.visibleTenant(ctx, access)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindNotFound, apperror.KindForbidden:
			return nil, apperror.ErrProductNotFound
		}
		return nil, err
	}

	product, err := s.catalog.ProductBySlug(ctx, tenant, slug, visibleStatuses...)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: product, Visibility: visibility}, nil
}

// Storefront returns the store's public profile and branding. A store that
// has not configured branding yet is returned without a setting.
func (s *Service) Storefront(ctx context.Context, access tenancy.Access) (profile *StoreProfile, err error) {
	defer func() { record("profile", err) }()

	tenant, visibility, err := s.visibleTenant(ctx, access)
	if err != nil {
		return nil, err
	}

	setting, err := s.catalog.Setting(ctx, tenant)
	if err != nil && !errors.Is(err, apperror.ErrSettingNotFound) {
		return nil, err
	}
	return &StoreProfile{Tenant: tenant, Setting: setting, Visibility: visibility}, nil
}

// PlaceOrder checks out a cart on a published store. Preview and owner
// access open a store for browsing only.
func (s *Service) PlaceOrder(ctx context.Context, access tenancy.Access, draft gateway.OrderDraft) (order *model.Order, err error) {
	defer func() { record("order", err) }()

	tenant, visibility, err := s.visibleTenant(ctx, access)
	if err != nil {
		return nil, err
	}
	if visibility.Bypassed {
		return nil, apperror.ErrTenantForbidden
	}

	order, err = s.catalog.PlaceOrder(ctx, tenant, draft)
	if err != nil {
		return nil, err
	}
	prometheus.RecordOrderPlaced()
	return order, nil
}
