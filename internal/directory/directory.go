// Package directory maps subdomains and owners to tenants and owns tenant
// registration and publication.
package directory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/storage"
	"github.com/suteetoe/storefront/internal/validation"
	"github.com/suteetoe/storefront/pkg/logger"
	"github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Directory is the tenant lookup and registration contract
type Directory interface {
	LookupBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error)
	LookupByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Tenant, error)
	Create(ctx context.Context, in CreateTenantInput) (*model.Tenant, error)
	Publish(ctx context.Context, tenant *model.Tenant) (*model.Tenant, error)
}

// CreateTenantInput is what an owner supplies to register a store
type CreateTenantInput struct {
	OwnerID   uuid.UUID `json:"-" validate:"required"`
	Subdomain string    `json:"subdomain" validate:"required,subdomain"`
	Name      string    `json:"name" validate:"required,max=255"`
	Email     string    `json:"email" validate:"required,email,max=255"`
}

// Repository is the gorm backed Directory
type Repository struct {
	db       *gorm.DB
	reserved map[string]struct{}
}

var _ Directory = (*Repository)(nil)

// NewRepository creates a directory over db. Subdomains in reserved can never be registered.
func NewRepository(db *gorm.DB, reserved []string) *Repository {
	r := &Repository{db: db, reserved: make(map[string]struct{}, len(reserved))}
	for _, s := range reserved {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			r.reserved[s] = struct{}{}
		}
	}
	return r
}

// LookupBySubdomain returns the tenant registered under subdomain.
// Absence, including a subdomain that could never be registered, is ErrTenantNotFound.
func (r *Repository) LookupBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	subdomain = strings.ToLower(subdomain)
	if !validation.IsSubdomain(subdomain) {
		prometheus.RecordDirectoryLookup("db", "not_found")
		return nil, apperror.ErrTenantNotFound
	}
	defer storage.Track("tenant_lookup_subdomain")()

	var tenant model.Tenant
	err := r.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&tenant).Error
	return r.found(&tenant, err, "subdomain", subdomain)
}

// LookupByOwner returns the tenant owned by ownerID
func (r *Repository) LookupByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Tenant, error) {
	if ownerID == uuid.Nil {
		return nil, apperror.ErrTenantNotFound
	}
	defer storage.Track("tenant_lookup_owner")()

	var tenant model.Tenant
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&tenant).Error
	return r.found(&tenant, err, "owner_id", ownerID.String())
}

func (r *Repository) found(tenant *model.Tenant, err error, by, value string) (*model.Tenant, error) {
	switch {
	case err == nil:
		prometheus.RecordDirectoryLookup("db", "hit")
		return tenant, nil
	case storage.IsNotFound(err):
		prometheus.RecordDirectoryLookup("db", "not_found")
		return nil, apperror.ErrTenantNotFound
	default:
		prometheus.RecordDirectoryLookup("db", "error")
		return nil, errors.Wrapf(err, "failed to look up tenant by %s %q", by, value)
	}
}

// Create registers a new, unpublished tenant. The pre-checks only produce a
// friendlier error; the unique indexes on subdomain and owner_id decide races.
func (r *Repository) Create(ctx context.Context, in CreateTenantInput) (*model.Tenant, error) {
	log := logger.FromContext(ctx)
	prometheus.RecordTenantOperation("create")

	in.Subdomain = strings.ToLower(strings.TrimSpace(in.Subdomain))
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, ok := r.reserved[in.Subdomain]; ok {
		return nil, apperror.Validation("subdomain", "is reserved")
	}

	if _, err := r.LookupByOwner(ctx, in.OwnerID); err == nil {
		return nil, errOwnerHasTenant(nil)
	} else if !errors.Is(err, apperror.ErrTenantNotFound) {
		return nil, err
	}
	if _, err := r.LookupBySubdomain(ctx, in.Subdomain); err == nil {
		return nil, errSubdomainTaken(nil)
	} else if !errors.Is(err, apperror.ErrTenantNotFound) {
		return nil, err
	}

	tenant := &model.Tenant{
		Subdomain: in.Subdomain,
		OwnerID:   in.OwnerID,
		Name:      in.Name,
		Email:     in.Email,
		Published: false,
	}

	done := storage.Track("tenant_insert")
	err := r.db.WithContext(ctx).Create(tenant).Error
	done()
	if err != nil {
		if storage.IsUniqueViolation(err) {
			log.Warn("Tenant registration lost a uniqueness race",
				zap.String("subdomain", in.Subdomain),
				zap.String("owner_id", in.OwnerID.String()))
			return nil, r.conflictFor(ctx, in, err)
		}
		return nil, errors.Wrap(err, "failed to create tenant")
	}

	log.Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("subdomain", tenant.Subdomain),
		zap.String("owner_id", tenant.OwnerID.String()))
	return tenant, nil
}

// conflictFor works out which unique index rejected the insert
func (r *Repository) conflictFor(ctx context.Context, in CreateTenantInput, cause error) error {
	if _, err := r.LookupByOwner(ctx, in.OwnerID); err == nil {
		return errOwnerHasTenant(cause)
	}
	return errSubdomainTaken(cause)
}

func errOwnerHasTenant(cause error) error {
	return apperror.Conflict("owner_has_tenant", "this account already owns a store", cause)
}

func errSubdomainTaken(cause error) error {
	return apperror.Conflict("subdomain_taken", "subdomain is already taken", cause)
}

// Publish moves tenant from unpublished to published. Publishing an already
// published tenant is a no-op; there is no way back.
func (r *Repository) Publish(ctx context.Context, tenant *model.Tenant) (*model.Tenant, error) {
	if tenant == nil {
		return nil, apperror.ErrTenantNotFound
	}
	prometheus.RecordTenantOperation("publish")
	defer storage.Track("tenant_publish")()

	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("id = ? AND published = ?", tenant.ID, false).
		Updates(map[string]interface{}{"published": true, "published_at": now, "updated_at": now})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "failed to publish tenant")
	}

	var updated model.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", tenant.ID).First(&updated).Error; err != nil {
		if storage.IsNotFound(err) {
			return nil, apperror.ErrTenantNotFound
		}
		return nil, errors.Wrap(err, "failed to reload tenant")
	}

	if res.RowsAffected > 0 {
		logger.FromContext(ctx).Info("Tenant published",
			zap.String("tenant_id", updated.ID.String()),
			zap.String("subdomain", updated.Subdomain))
	}
	return &updated, nil
}
