// Package testutil provides an in-memory database with the production schema
// and fixtures shared by the package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database migrated with every model.
// One connection serialises writers the way row locks would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.MigrateModels(db, model.All()...))
	return db
}

// TenantOption customises a fixture tenant
type TenantOption func(*model.Tenant)

// Published marks the fixture tenant published
func Published() TenantOption {
	return func(t *model.Tenant) {
		now := time.Now()
		t.Published = true
		t.PublishedAt = &now
	}
}

// OwnedBy sets the fixture tenant's owner
func OwnedBy(owner uuid.UUID) TenantOption {
	return func(t *model.Tenant) { t.OwnerID = owner }
}

// CreateTenant inserts a tenant fixture
func CreateTenant(t testing.TB, db *gorm.DB, subdomain string, opts ...TenantOption) *model.Tenant {
	t.Helper()

	tenant := &model.Tenant{
		Subdomain: subdomain,
		OwnerID:   uuid.New(),
		Name:      subdomain + " store",
		Email:     subdomain + "@example.com",
	}
	for _, opt := range opts {
		opt(tenant)
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// ProductOption customises a fixture product
type ProductOption func(*model.Product)

// WithStatus sets the product status
func WithStatus(s model.ProductStatus) ProductOption {
	return func(p *model.Product) { p.Status = s }
}

// WithPrice sets the product price
func WithPrice(price string) ProductOption {
	return func(p *model.Product) { p.Price = decimal.RequireFromString(price) }
}

// WithStock turns on inventory tracking with qty units
func WithStock(qty int) ProductOption {
	return func(p *model.Product) {
		p.TrackInventory = true
		p.Quantity = qty
	}
}

// WithName sets the product name
func WithName(name string) ProductOption {
	return func(p *model.Product) { p.Name = name }
}

// WithDescription sets the product description
func WithDescription(d string) ProductOption {
	return func(p *model.Product) { p.Description = d }
}

// WithSKU sets the product SKU
func WithSKU(sku string) ProductOption {
	return func(p *model.Product) { p.SKU = sku }
}

// CreatedAt pins the creation time
func CreatedAt(ts time.Time) ProductOption {
	return func(p *model.Product) { p.CreatedAt = ts }
}

// CreateProduct inserts an ACTIVE product fixture for tenant
func CreateProduct(t testing.TB, db *gorm.DB, tenant *model.Tenant, slug string, opts ...ProductOption) *model.Product {
	t.Helper()

	p := &model.Product{
		TenantID: tenant.ID,
		Name:     slug,
		Slug:     slug,
		Price:    decimal.NewFromInt(10),
		Status:   model.ProductActive,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
