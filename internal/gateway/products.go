package gateway

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/storage"
	"github.com/suteetoe/storefront/internal/validation"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SortOrder is a product listing order
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

// ParseSortOrder accepts the four known orders; "" means newest
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "":
		return SortNewest, true
	case SortNewest, SortOldest, SortPriceAsc, SortPriceDesc:
		return SortOrder(s), true
	}
	return "", false
}

// clauses always end with id so pages are stable when the sort key ties
func (o SortOrder) clauses() []string {
	switch o {
	case SortOldest:
		return []string{"created_at ASC", "id ASC"}
	case SortPriceAsc:
		return []string{"price ASC", "id ASC"}
	case SortPriceDesc:
		return []string{"price DESC", "id ASC"}
	default:
		return []string{"created_at DESC", "id ASC"}
	}
}

// ProductQuery filters a tenant's products. Zero values mean "no filter",
// except Limit which must be positive.
type ProductQuery struct {
	Statuses     []model.ProductStatus
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	InStockOnly  bool
	FeaturedOnly bool
	Search       string
	Sort         SortOrder
	Offset       int
	Limit        int
}

// ListProducts returns one page of tenant's products matching q and the total
// number of matches. Count and fetch run in one transaction.
func (g *Gateway) ListProducts(ctx context.Context, tenant *model.Tenant, q ProductQuery) ([]model.Product, int64, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, 0, err
	}
	if q.Limit <= 0 {
		return nil, 0, apperror.Validation("limit", "must be positive")
	}
	if q.Offset < 0 {
		return nil, 0, apperror.Validation("offset", "must not be negative")
	}
	defer storage.Track("product_list")()

	var (
		products []model.Product
		total    int64
	)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		filtered := func() *gorm.DB {
			return applyProductFilters(scoped(tx.Model(&model.Product{}), tenant), q)
		}

		if err := filtered().Count(&total).Error; err != nil {
			return errors.Wrap(err, "failed to count products")
		}
		if total == 0 || int64(q.Offset) >= total {
			return nil
		}

		find := filtered()
		for _, c := range q.Sort.clauses() {
			find = find.Order(c)
		}
		return errors.Wrap(find.Offset(q.Offset).Limit(q.Limit).Find(&products).Error, "failed to list products")
	})
	if err != nil {
		return nil, 0, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, total, nil
}

func applyProductFilters(db *gorm.DB, q ProductQuery) *gorm.DB {
	if len(q.Statuses) == 1 {
		db = db.Where("status = ?", q.Statuses[0])
	} else if len(q.Statuses) > 1 {
		db = db.Where("status IN ?", q.Statuses)
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}
	if q.InStockOnly {
		db = db.Where("(track_inventory = ? OR quantity > ?)", false, 0)
	}
	if q.FeaturedOnly {
		db = db.Where("featured = ?", true)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := "%" + storage.EscapeLike(strings.ToLower(term)) + "%"
		db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}
	return db
}

// ProductBySlug returns tenant's product with slug. When statuses are given
// the product must be in one of them; otherwise it is reported as not found.
func (g *Gateway) ProductBySlug(ctx context.Context, tenant *model.Tenant, slug string, statuses ...model.ProductStatus) (*model.Product, error) {
	db, err := g.session(ctx, tenant, &model.Product{})
	if err != nil {
		return nil, err
	}
	defer storage.Track("product_by_slug")()

	db = applyProductFilters(db.Where("slug = ?", slug), ProductQuery{Statuses: statuses})

	var product model.Product
	if err := db.Preload("Variants").First(&product).Error; err != nil {
		return nil, productLookupErr(err)
	}
	return &product, nil
}

// ProductByID returns tenant's product with id, in any status
func (g *Gateway) ProductByID(ctx context.Context, tenant *model.Tenant, id uuid.UUID) (*model.Product, error) {
	db, err := g.session(ctx, tenant, &model.Product{})
	if err != nil {
		return nil, err
	}
	defer storage.Track("product_by_id")()

	var product model.Product
	if err := db.Where("id = ?", id).Preload("Variants").First(&product).Error; err != nil {
		return nil, productLookupErr(err)
	}
	return &product, nil
}

func productLookupErr(err error) error {
	if storage.IsNotFound(err) {
		return apperror.ErrProductNotFound
	}
	return errors.Wrap(err, "failed to load product")
}

// VariantInput describes one product variant
type VariantInput struct {
	Name     string           `json:"name" validate:"required,max=255"`
	SKU      string           `json:"sku" validate:"max=100"`
	Price    *decimal.Decimal `json:"price"`
	Quantity int              `json:"quantity" validate:"gte=0"`
}

// ProductInput is the owner editable part of a product
type ProductInput struct {
	Name           string              `json:"name" validate:"required,max=255"`
	Slug           string              `json:"slug" validate:"omitempty,slug,max=255"`
	Description    string              `json:"description" validate:"max=20000"`
	Price          decimal.Decimal     `json:"price"`
	CompareAtPrice *decimal.Decimal    `json:"compare_at_price"`
	SKU            string              `json:"sku" validate:"max=100"`
	Status         model.ProductStatus `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	Quantity       int                 `json:"quantity" validate:"gte=0"`
	TrackInventory bool                `json:"track_inventory"`
	Featured       bool                `json:"featured"`
	FeaturedImage  string              `json:"featured_image" validate:"omitempty,url,max=2048"`
	Variants       []VariantInput      `json:"variants" validate:"max=100,dive"`
}

// normalize fills defaults and validates the input
func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	if in.Slug == "" {
		in.Slug = validation.Slugify(in.Name)
	}
	if in.Status == "" {
		in.Status = model.ProductDraft
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.Slug == "" {
		return apperror.Validation("slug", "is required")
	}
	if in.Price.IsNegative() {
		return apperror.Validation("price", "must not be negative")
	}
	if in.CompareAtPrice != nil && in.CompareAtPrice.IsNegative() {
		return apperror.Validation("compare_at_price", "must not be negative")
	}
	for _, v := range in.Variants {
		if v.Price != nil && v.Price.IsNegative() {
			return apperror.Validation("variants.price", "must not be negative")
		}
	}
	return nil
}

func (in *ProductInput) apply(p *model.Product) {
	p.Name = in.Name
	p.Slug = in.Slug
	p.Description = in.Description
	p.Price = in.Price
	p.CompareAtPrice = nullDecimal(in.CompareAtPrice)
	p.SKU = in.SKU
	p.Status = in.Status
	p.Quantity = in.Quantity
	p.TrackInventory = in.TrackInventory
	p.Featured = in.Featured
	p.FeaturedImage = in.FeaturedImage
}

func (in *ProductInput) variants(productID uuid.UUID) []model.ProductVariant {
	out := make([]model.ProductVariant, 0, len(in.Variants))
	for _, v := range in.Variants {
		out = append(out, model.ProductVariant{
			ProductID: productID,
			Name:      strings.TrimSpace(v.Name),
			SKU:       v.SKU,
			Price:     nullDecimal(v.Price),
			Quantity:  v.Quantity,
		})
	}
	return out
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func slugConflict(cause error) error {
	return apperror.Conflict("slug_taken", "a product with this slug already exists in the store", cause)
}

// CreateProduct adds a product to tenant
func (g *Gateway) CreateProduct(ctx context.Context, tenant *model.Tenant, in ProductInput) (*model.Product, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	defer storage.Track("product_insert")()

	product := &model.Product{ID: uuid.New(), TenantID: tenant.ID}
	in.apply(product)
	product.Variants = in.variants(product.ID)

	if err := g.db.WithContext(ctx).Create(product).Error; err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, slugConflict(err)
		}
		return nil, errors.Wrap(err, "failed to create product")
	}

	logger.FromContext(ctx).Info("Product created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
		zap.String("status", string(product.Status)))
	return product, nil
}

// UpdateProduct replaces the editable fields and variants of tenant's product id
func (g *Gateway) UpdateProduct(ctx context.Context, tenant *model.Tenant, id uuid.UUID, in ProductInput) (*model.Product, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	defer storage.Track("product_update")()

	var product model.Product
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scoped(tx.Model(&model.Product{}), tenant).Where("id = ?", id).First(&product).Error; err != nil {
			return productLookupErr(err)
		}

		in.apply(&product)
		if err := tx.Omit("Variants").Save(&product).Error; err != nil {
			if storage.IsUniqueViolation(err) {
				return slugConflict(err)
			}
			return errors.Wrap(err, "failed to update product")
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductVariant{}).Error; err != nil {
			return errors.Wrap(err, "failed to replace variants")
		}
		product.Variants = in.variants(product.ID)
		if len(product.Variants) > 0 {
			if err := tx.Create(&product.Variants).Error; err != nil {
				return errors.Wrap(err, "failed to replace variants")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Product updated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("status", string(product.Status)))
	return &product, nil
}

// DeleteProduct removes tenant's product id and its variants
func (g *Gateway) DeleteProduct(ctx context.Context, tenant *model.Tenant, id uuid.UUID) error {
	db, err := g.session(ctx, tenant, &model.Product{})
	if err != nil {
		return err
	}
	defer storage.Track("product_delete")()

	res := db.Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return apperror.ErrProductNotFound
	}

	logger.FromContext(ctx).Info("Product deleted",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("product_id", id.String()))
	return nil
}
