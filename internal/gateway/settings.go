package gateway

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/storage"
	"github.com/suteetoe/storefront/internal/validation"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssetInput references an uploaded file
type AssetInput struct {
	URL      string `json:"url" validate:"required,url,max=2048"`
	PublicID string `json:"public_id" validate:"required,max=255"`
}

// SettingInput is the owner editable branding of a store
type SettingInput struct {
	PrimaryColor   string      `json:"primary_color" validate:"omitempty,hexcolor,max=7"`
	SecondaryColor string      `json:"secondary_color" validate:"omitempty,hexcolor,max=7"`
	AccentColor    string      `json:"accent_color" validate:"omitempty,hexcolor,max=7"`
	HeroTitle      string      `json:"hero_title" validate:"max=255"`
	HeroSubtitle   string      `json:"hero_subtitle" validate:"max=500"`
	AboutText      string      `json:"about_text" validate:"max=20000"`
	Logo           *AssetInput `json:"logo"`
	Favicon        *AssetInput `json:"favicon"`
}

func (in *SettingInput) normalize() error {
	in.PrimaryColor = strings.ToLower(strings.TrimSpace(in.PrimaryColor))
	in.SecondaryColor = strings.ToLower(strings.TrimSpace(in.SecondaryColor))
	in.AccentColor = strings.ToLower(strings.TrimSpace(in.AccentColor))
	in.HeroTitle = strings.TrimSpace(in.HeroTitle)
	in.HeroSubtitle = strings.TrimSpace(in.HeroSubtitle)
	return validation.Struct(in)
}

func (in *SettingInput) apply(s *model.Setting) {
	s.PrimaryColor = in.PrimaryColor
	s.SecondaryColor = in.SecondaryColor
	s.AccentColor = in.AccentColor
	s.HeroTitle = in.HeroTitle
	s.HeroSubtitle = in.HeroSubtitle
	s.AboutText = in.AboutText
}

// Setting returns tenant's branding with its logo and favicon
func (g *Gateway) Setting(ctx context.Context, tenant *model.Tenant) (*model.Setting, error) {
	db, err := g.session(ctx, tenant, &model.Setting{})
	if err != nil {
		return nil, err
	}
	defer storage.Track("setting_get")()

	var setting model.Setting
	if err := db.Preload("Logo").Preload("Favicon").First(&setting).Error; err != nil {
		if storage.IsNotFound(err) {
			return nil, apperror.ErrSettingNotFound
		}
		return nil, errors.Wrap(err, "failed to load setting")
	}
	return &setting, nil
}

// CreateSetting creates tenant's branding. A store has at most one setting;
// the unique index on tenant_id rejects a second one.
func (g *Gateway) CreateSetting(ctx context.Context, tenant *model.Tenant, in SettingInput) (*model.Setting, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	defer storage.Track("setting_insert")()

	setting := &model.Setting{TenantID: tenant.ID}
	in.apply(setting)

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if setting.Logo, err = createAsset(tx, in.Logo); err != nil {
			return err
		}
		if setting.Favicon, err = createAsset(tx, in.Favicon); err != nil {
			return err
		}
		setting.LogoID = assetID(setting.Logo)
		setting.FaviconID = assetID(setting.Favicon)

		if err := tx.Omit("Logo", "Favicon").Create(setting).Error; err != nil {
			if storage.IsUniqueViolation(err) {
				return apperror.Conflict("setting_exists", "store settings already exist", err)
			}
			return errors.Wrap(err, "failed to create setting")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Store settings created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("setting_id", setting.ID.String()))
	return setting, nil
}

// UpdateSetting overwrites tenant's branding. Applying the same input twice
// leaves the same state. A logo or favicon whose URL changed gets a new asset
// row; the previous row is kept.
func (g *Gateway) UpdateSetting(ctx context.Context, tenant *model.Tenant, in SettingInput) (*model.Setting, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	defer storage.Track("setting_update")()

	log := logger.FromContext(ctx)
	var setting model.Setting
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := scoped(tx.Model(&model.Setting{}), tenant).
			Preload("Logo").Preload("Favicon").
			First(&setting).Error
		if err != nil {
			if storage.IsNotFound(err) {
				return apperror.ErrSettingNotFound
			}
			return errors.Wrap(err, "failed to load setting")
		}

		in.apply(&setting)

		if assetChanged(setting.Logo, in.Logo) {
			if setting.Logo != nil {
				log.Info("Replacing store logo", zap.String("previous_asset_id", setting.Logo.ID.String()))
			}
			if setting.Logo, err = createAsset(tx, in.Logo); err != nil {
				return err
			}
			setting.LogoID = assetID(setting.Logo)
		}
		if assetChanged(setting.Favicon, in.Favicon) {
			if setting.Favicon != nil {
				log.Info("Replacing store favicon", zap.String("previous_asset_id", setting.Favicon.ID.String()))
			}
			if setting.Favicon, err = createAsset(tx, in.Favicon); err != nil {
				return err
			}
			setting.FaviconID = assetID(setting.Favicon)
		}

		return errors.Wrap(scoped(tx.Model(&setting), tenant).Updates(map[string]interface{}{
			"primary_color":   setting.PrimaryColor,
			"secondary_color": setting.SecondaryColor,
			"accent_color":    setting.AccentColor,
			"hero_title":      setting.HeroTitle,
			"hero_subtitle":   setting.HeroSubtitle,
			"about_text":      setting.AboutText,
			"logo_id":         setting.LogoID,
			"favicon_id":      setting.FaviconID,
		}).Error, "failed to update setting")
	})
	if err != nil {
		return nil, err
	}

	log.Info("Store settings updated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("setting_id", setting.ID.String()))
	return &setting, nil
}

// assetChanged reports whether the requested asset differs from the current one
func assetChanged(current *model.Asset, in *AssetInput) bool {
	switch {
	case in == nil:
		return current != nil
	case current == nil:
		return true
	default:
		return current.URL != in.URL || current.PublicID != in.PublicID
	}
}

func createAsset(tx *gorm.DB, in *AssetInput) (*model.Asset, error) {
	if in == nil {
		return nil, nil
	}
	asset := &model.Asset{URL: in.URL, PublicID: in.PublicID}
	if err := tx.Create(asset).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create asset")
	}
	return asset, nil
}

func assetID(a *model.Asset) *uuid.UUID {
	if a == nil {
		return nil
	}
	id := a.ID
	return &id
}
