package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus is the lifecycle state of a product
type ProductStatus string

const (
	ProductDraft    ProductStatus = "DRAFT"
	ProductActive   ProductStatus = "ACTIVE"
	ProductArchived ProductStatus = "ARCHIVED"
)

// Valid reports whether s is one of the known statuses
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductDraft, ProductActive, ProductArchived:
		return true
	}
	return false
}

// Product belongs to exactly one tenant. Slugs are unique per tenant only,
// so a slug lookup without the tenant is meaningless. Deletes are hard so a
// removed product frees its slug.
type Product struct {
	ID             uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID           `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_slug,priority:1;index:idx_products_tenant_status,priority:1"`
	Name           string              `json:"name" gorm:"type:varchar(255);not null"`
	Slug           string              `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_tenant_slug,priority:2"`
	Description    string              `json:"description" gorm:"type:text"`
	Price          decimal.Decimal     `json:"price" gorm:"type:numeric(12,2);not null"`
	CompareAtPrice decimal.NullDecimal `json:"compare_at_price" gorm:"type:numeric(12,2)"`
	SKU            string              `json:"sku" gorm:"type:varchar(100)"`
	Status         ProductStatus       `json:"status" gorm:"type:varchar(16);not null;default:DRAFT;index:idx_products_tenant_status,priority:2"`
	Quantity       int                 `json:"quantity" gorm:"not null;default:0"`
	TrackInventory bool                `json:"track_inventory" gorm:"not null;default:false"`
	Featured       bool                `json:"featured" gorm:"not null;default:false"`
	FeaturedImage  string              `json:"featured_image" gorm:"type:varchar(2048)"`
	Variants       []ProductVariant    `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// BeforeCreate assigns the id
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// InStock reports whether the product can be sold right now
func (p *Product) InStock() bool {
	return !p.TrackInventory || p.Quantity > 0
}

// ProductVariant is a purchasable variation of a product (size, colour)
type ProductVariant struct {
	ID        uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID           `json:"-" gorm:"type:uuid;index;not null"`
	Name      string              `json:"name" gorm:"type:varchar(255);not null"`
	SKU       string              `json:"sku" gorm:"type:varchar(100)"`
	Price     decimal.NullDecimal `json:"price" gorm:"type:numeric(12,2)"`
	Quantity  int                 `json:"quantity" gorm:"not null;default:0"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// BeforeCreate assigns the id
func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
