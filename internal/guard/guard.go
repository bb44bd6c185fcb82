// Package guard decides whether a store may be shown to the current caller.
package guard

import (
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/tenancy"
	"github.com/suteetoe/storefront/prometheus"
)

// Visibility describes why a store was allowed through
type Visibility struct {
	// Bypassed is true when the store is unpublished and the viewer owns it
	Bypassed bool
}

// AssertVisible lets published stores through for everyone. Unpublished
// stores are visible only to their owner, on the store host or through a
// preview path; everybody else gets ErrTenantForbidden. A preview path alone
// opens nothing.
func AssertVisible(tenant *model.Tenant, access tenancy.Access) (Visibility, error) {
	if tenant == nil {
		return Visibility{}, apperror.ErrTenantNotFound
	}
	if tenant.Published {
		prometheus.RecordGuardDecision("visible")
		return Visibility{}, nil
	}
	if tenant.IsOwnedBy(access.ViewerID) {
		prometheus.RecordGuardDecision("bypassed")
		return Visibility{Bypassed: true}, nil
	}
	prometheus.RecordGuardDecision("forbidden")
	return Visibility{}, apperror.ErrTenantForbidden
}
