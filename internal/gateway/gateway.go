// Package gateway is the only path to tenant owned rows (products, settings,
// orders). Every method takes a resolved *model.Tenant and every query it
// issues is conjoined with that tenant's id; tenant ids supplied by callers
// in inputs are ignored.
package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway scopes entity access to a tenant
type Gateway struct {
	db *gorm.DB
}

// New creates a gateway over db
func New(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

// tenantColumn is qualified with the statement's table so preloads and joins stay unambiguous
var tenantColumn = clause.Column{Table: clause.CurrentTable, Name: "tenant_id"}

// scoped binds db to tenant's rows. It is the single place the tenant predicate is built.
func scoped(db *gorm.DB, tenant *model.Tenant) *gorm.DB {
	return db.Where(clause.Eq{Column: tenantColumn, Value: tenant.ID})
}

// session starts a tenant scoped statement on model m
func (g *Gateway) session(ctx context.Context, tenant *model.Tenant, m interface{}) (*gorm.DB, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	return scoped(g.db.WithContext(ctx).Model(m), tenant), nil
}

func requireTenant(tenant *model.Tenant) error {
	if tenant == nil || tenant.ID == uuid.Nil {
		return apperror.ErrTenantNotFound
	}
	return nil
}
