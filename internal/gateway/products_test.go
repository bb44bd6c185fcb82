package gateway

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/testutil"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Gateway, *gorm.DB) {
	db := testutil.NewDB(t)
	return New(db), db
}

func slugs(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Slug)
	}
	return out
}

func TestNilTenantIsRejected(t *testing.T) {
	g, _ := setup(t)
	ctx := context.Background()

	_, _, err := g.ListProducts(ctx, nil, ProductQuery{Limit: 10})
	assert.ErrorIs(t, err, apperror.ErrTenantNotFound)

	_, err = g.ProductBySlug(ctx, &model.Tenant{}, "mug")
	assert.ErrorIs(t, err, apperror.ErrTenantNotFound)

	_, err = g.Setting(ctx, nil)
	assert.ErrorIs(t, err, apperror.ErrTenantNotFound)

	_, err = g.PlaceOrder(ctx, nil, OrderDraft{})
	assert.ErrorIs(t, err, apperror.ErrTenantNotFound)
}

func TestProductBySlugIsolatedPerTenant(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	cafe := testutil.CreateTenant(t, db, "cafe")
	studio := testutil.CreateTenant(t, db, "studio")
	cafeMug := testutil.CreateProduct(t, db, cafe, "mug", testutil.WithName("Cafe mug"))
	studioMug := testutil.CreateProduct(t, db, studio, "mug", testutil.WithName("Studio mug"))
	testutil.CreateProduct(t, db, studio, "print")

	got, err := g.ProductBySlug(ctx, cafe, "mug")
	require.NoError(t, err)
	assert.Equal(t, cafeMug.ID, got.ID)

	got, err = g.ProductBySlug(ctx, studio, "mug")
	require.NoError(t, err)
	assert.Equal(t, studioMug.ID, got.ID)

	_, err = g.ProductBySlug(ctx, cafe, "print")
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)

	_, err = g.ProductByID(ctx, cafe, studioMug.ID)
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestProductBySlugStatusFilter(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	tenant := testutil.CreateTenant(t, db, "cafe")
	testutil.CreateProduct(t, db, tenant, "draft-mug", testutil.WithStatus(model.ProductDraft))

	_, err := g.ProductBySlug(ctx, tenant, "draft-mug", model.ProductActive)
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)

	got, err := g.ProductBySlug(ctx, tenant, "draft-mug")
	require.NoError(t, err)
	assert.Equal(t, model.ProductDraft, got.Status)
}

func TestListProductsScopesAndFilters(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	cafe := testutil.CreateTenant(t, db, "cafe")
	other := testutil.CreateTenant(t, db, "other")

	testutil.CreateProduct(t, db, cafe, "espresso", testutil.WithPrice("3.50"))
	testutil.CreateProduct(t, db, cafe, "latte", testutil.WithPrice("4.75"), testutil.WithStock(0))
	testutil.CreateProduct(t, db, cafe, "beans", testutil.WithPrice("18.00"), testutil.WithStock(5))
	testutil.CreateProduct(t, db, cafe, "secret", testutil.WithStatus(model.ProductDraft))
	testutil.CreateProduct(t, db, other, "espresso", testutil.WithPrice("1.00"))

	active := []model.ProductStatus{model.ProductActive}
	low := decimal.RequireFromString("4")
	high := decimal.RequireFromString("20")

	tests := []struct {
		name  string
		query ProductQuery
		want  []string
	}{
		{name: "active only", query: ProductQuery{Statuses: active, Sort: SortPriceAsc}, want: []string{"espresso", "latte", "beans"}},
		{name: "all statuses", query: ProductQuery{Sort: SortPriceAsc}, want: []string{"espresso", "latte", "secret", "beans"}},
		{name: "min price", query: ProductQuery{Statuses: active, MinPrice: &low, Sort: SortPriceAsc}, want: []string{"latte", "beans"}},
		{name: "max price", query: ProductQuery{Statuses: active, MaxPrice: &low, Sort: SortPriceAsc}, want: []string{"espresso"}},
		{name: "price range", query: ProductQuery{Statuses: active, MinPrice: &low, MaxPrice: &high, Sort: SortPriceDesc}, want: []string{"beans", "latte"}},
		{name: "in stock", query: ProductQuery{Statuses: active, InStockOnly: true, Sort: SortPriceAsc}, want: []string{"espresso", "beans"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.query.Limit = 50
			products, total, err := g.ListProducts(ctx, cafe, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slugs(products))
			assert.Equal(t, int64(len(tt.want)), total)
			for _, p := range products {
				assert.Equal(t, cafe.ID, p.TenantID)
			}
		})
	}
}

func TestListProductsSortAndPaginate(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	tenant := testutil.CreateTenant(t, db, "cafe")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		testutil.CreateProduct(t, db, tenant, fmt.Sprintf("item-%d", i), testutil.CreatedAt(base.Add(time.Duration(i)*time.Hour)))
	}

	var seen []string
	for offset := 0; offset < 7; offset += 3 {
		page, total, err := g.ListProducts(ctx, tenant, ProductQuery{Sort: SortNewest, Offset: offset, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(7), total)
		seen = append(seen, slugs(page)...)
	}
	assert.Equal(t, []string{"item-6", "item-5", "item-4", "item-3", "item-2", "item-1", "item-0"}, seen)

	oldest, _, err := g.ListProducts(ctx, tenant, ProductQuery{Sort: SortOldest, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"item-0", "item-1"}, slugs(oldest))

	past, total, err := g.ListProducts(ctx, tenant, ProductQuery{Offset: 30, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Empty(t, past)
	assert.NotNil(t, past)
}

func TestListProductsPriceTieBreakIsStable(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	tenant := testutil.CreateTenant(t, db, "cafe")
	for i := 0; i < 6; i++ {
		testutil.CreateProduct(t, db, tenant, fmt.Sprintf("same-%d", i), testutil.WithPrice("5"))
	}

	first, _, err := g.ListProducts(ctx, tenant, ProductQuery{Sort: SortPriceAsc, Limit: 3})
	require.NoError(t, err)
	second, _, err := g.ListProducts(ctx, tenant, ProductQuery{Sort: SortPriceAsc, Offset: 3, Limit: 3})
	require.NoError(t, err)

	all := append(slugs(first), slugs(second)...)
	assert.ElementsMatch(t, []string{"same-0", "same-1", "same-2", "same-3", "same-4", "same-5"}, all)
}

func TestListProductsSearch(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	tenant := testutil.CreateTenant(t, db, "studio")
	other := testutil.CreateTenant(t, db, "other")
	testutil.CreateProduct(t, db, tenant, "tee", testutil.WithName("Organic Tee"), testutil.WithDescription("100% cotton"))
	testutil.CreateProduct(t, db, tenant, "hoodie", testutil.WithName("Hoodie"), testutil.WithDescription("1000 stitches"))
	testutil.CreateProduct(t, db, tenant, "cap", testutil.WithName("Cap"), testutil.WithSKU("CAP_RED"))
	testutil.CreateProduct(t, db, tenant, "capsule", testutil.WithName("Capsule"), testutil.WithSKU("CAPXRED"))
	testutil.CreateProduct(t, db, other, "other-tee", testutil.WithName("Organic Tee"))

	tests := []struct {
		term string
		want []string
	}{
		{term: "organic", want: []string{"tee"}},
		{term: "ORGANIC", want: []string{"tee"}},
		{term: "100%", want: []string{"tee"}},
		{term: "cap_", want: []string{"cap"}},
		{term: "stitch", want: []string{"hoodie"}},
		{term: "nothing", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			products, total, err := g.ListProducts(ctx, tenant, ProductQuery{Search: tt.term, Limit: 20})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, slugs(products))
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestListProductsRejectsBadWindow(t *testing.T) {
	g, db := setup(t)
	tenant := testutil.CreateTenant(t, db, "cafe")

	_, _, err := g.ListProducts(context.Background(), tenant, ProductQuery{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, _, err = g.ListProducts(context.Background(), tenant, ProductQuery{Offset: -1, Limit: 1})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCreateProduct(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	cafe := testutil.CreateTenant(t, db, "cafe")
	studio := testutil.CreateTenant(t, db, "studio")

	price := decimal.RequireFromString("12.50")
	product, err := g.CreateProduct(ctx, cafe, ProductInput{
		Name:  "House Blend Beans",
		Price: price,
		Variants: []VariantInput{
			{Name: "250g", Quantity: 4},
			{Name: "1kg", Price: &price, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "house-blend-beans", product.Slug)
	assert.Equal(t, model.ProductDraft, product.Status)
	assert.Equal(t, cafe.ID, product.TenantID)

	loaded, err := g.ProductByID(ctx, cafe, product.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Variants, 2)
	assert.True(t, price.Equal(loaded.Price))

	_, err = g.CreateProduct(ctx, cafe, ProductInput{Name: "House blend beans", Price: price})
	assert.ErrorIs(t, err, apperror.Conflict("slug_taken", "", nil))

	// same slug in another store is fine
	_, err = g.CreateProduct(ctx, studio, ProductInput{Name: "House Blend Beans", Price: price})
	require.NoError(t, err)
}

func TestCreateProductValidation(t *testing.T) {
	g, db := setup(t)
	tenant := testutil.CreateTenant(t, db, "cafe")

	tests := []struct {
		name  string
		in    ProductInput
		field string
	}{
		{name: "missing name", in: ProductInput{}, field: "name"},
		{name: "bad slug", in: ProductInput{Name: "Mug", Slug: "Mug Cup!"}, field: "slug"},
		{name: "bad status", in: ProductInput{Name: "Mug", Status: "SOLD"}, field: "status"},
		{name: "negative price", in: ProductInput{Name: "Mug", Price: decimal.NewFromInt(-1)}, field: "price"},
		{name: "negative quantity", in: ProductInput{Name: "Mug", Quantity: -3}, field: "quantity"},
		{name: "symbols only", in: ProductInput{Name: "!!!"}, field: "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.CreateProduct(context.Background(), tenant, tt.in)
			appErr := apperror.As(err)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	cafe := testutil.CreateTenant(t, db, "cafe")
	studio := testutil.CreateTenant(t, db, "studio")
	mug := testutil.CreateProduct(t, db, cafe, "mug")
	testutil.CreateProduct(t, db, cafe, "cup")
	poster := testutil.CreateProduct(t, db, studio, "print")

	updated, err := g.UpdateProduct(ctx, cafe, mug.ID, ProductInput{
		Name:     "Big Mug",
		Slug:     "big-mug",
		Price:    decimal.NewFromInt(15),
		Status:   model.ProductArchived,
		Variants: []VariantInput{{Name: "Blue"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "big-mug", updated.Slug)
	assert.Equal(t, model.ProductArchived, updated.Status)

	_, err = g.UpdateProduct(ctx, cafe, mug.ID, ProductInput{Name: "Big Mug", Variants: []VariantInput{{Name: "Red"}, {Name: "Green"}}})
	require.NoError(t, err)
	loaded, err := g.ProductByID(ctx, cafe, mug.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Variants, 2)

	_, err = g.UpdateProduct(ctx, cafe, mug.ID, ProductInput{Name: "Cup", Slug: "cup"})
	assert.ErrorIs(t, err, apperror.Conflict("slug_taken", "", nil))

	// another store's product id is invisible
	_, err = g.UpdateProduct(ctx, cafe, poster.ID, ProductInput{Name: "Stolen"})
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)

	untouched, err := g.ProductByID(ctx, studio, poster.ID)
	require.NoError(t, err)
	assert.Equal(t, "print", untouched.Name)
}

func TestDeleteProduct(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	cafe := testutil.CreateTenant(t, db, "cafe")
	studio := testutil.CreateTenant(t, db, "studio")
	mug := testutil.CreateProduct(t, db, cafe, "mug")
	poster := testutil.CreateProduct(t, db, studio, "print")

	assert.ErrorIs(t, g.DeleteProduct(ctx, cafe, poster.ID), apperror.ErrProductNotFound)
	_, err := g.ProductByID(ctx, studio, poster.ID)
	require.NoError(t, err)

	require.NoError(t, g.DeleteProduct(ctx, cafe, mug.ID))
	_, err = g.ProductBySlug(ctx, cafe, "mug")
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)

	assert.ErrorIs(t, g.DeleteProduct(ctx, cafe, mug.ID), apperror.ErrProductNotFound)
	assert.ErrorIs(t, g.DeleteProduct(ctx, cafe, uuid.New()), apperror.ErrProductNotFound)
}

func TestDeletedProductFreesSlug(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	cafe := testutil.CreateTenant(t, db, "cafe")
	price := decimal.RequireFromString("8")
	mug, err := g.CreateProduct(ctx, cafe, ProductInput{
		Name:     "Mug",
		Price:    price,
		Variants: []VariantInput{{Name: "Blue", Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, g.DeleteProduct(ctx, cafe, mug.ID))

	var variants int64
	require.NoError(t, db.Model(&model.ProductVariant{}).Where("product_id = ?", mug.ID).Count(&variants).Error)
	assert.Zero(t, variants)

	again, err := g.CreateProduct(ctx, cafe, ProductInput{Name: "Mug", Price: price})
	require.NoError(t, err)
	assert.Equal(t, "mug", again.Slug)
	assert.NotEqual(t, mug.ID, again.ID)
}

func TestParseSortOrder(t *testing.T) {
	for _, s := range []string{"newest", "oldest", "price_asc", "price_desc"} {
		got, ok := ParseSortOrder(s)
		assert.True(t, ok)
		assert.Equal(t, SortOrder(s), got)
	}
	got, ok := ParseSortOrder("")
	assert.True(t, ok)
	assert.Equal(t, SortNewest, got)

	_, ok = ParseSortOrder("cheapest")
	assert.False(t, ok)
}
