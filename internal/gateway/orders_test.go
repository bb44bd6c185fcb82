package gateway

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/testutil"
)

func draft(lines ...OrderLine) OrderDraft {
	return OrderDraft{CustomerName: "Ann", CustomerEmail: "Ann@Example.com", Items: lines}
}

func TestPlaceOrder(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	tenant := testutil.CreateTenant(t, db, "cafe")
	testutil.CreateProduct(t, db, tenant, "beans", testutil.WithPrice("12.50"), testutil.WithStock(5))
	testutil.CreateProduct(t, db, tenant, "mug", testutil.WithPrice("8"))

	order, err := g.PlaceOrder(ctx, tenant, draft(
		OrderLine{Slug: "beans", Quantity: 2},
		OrderLine{Slug: "mug", Quantity: 1},
		OrderLine{Slug: "BEANS", Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "ann@example.com", order.CustomerEmail)
	assert.Equal(t, "45.50", order.Total.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Contains(t, order.Number, "ORD-")

	beans, err := g.ProductBySlug(ctx, tenant, "beans")
	require.NoError(t, err)
	assert.Equal(t, 2, beans.Quantity)

	loaded, err := g.Order(ctx, tenant, order.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 2)
	assert.Equal(t, "45.50", loaded.Total.StringFixed(2))
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	tenant := testutil.CreateTenant(t, db, "cafe")
	testutil.CreateProduct(t, db, tenant, "beans", testutil.WithStock(5))
	testutil.CreateProduct(t, db, tenant, "filters", testutil.WithStock(1))

	_, err := g.PlaceOrder(ctx, tenant, draft(
		OrderLine{Slug: "beans", Quantity: 3},
		OrderLine{Slug: "filters", Quantity: 2},
	))
	assert.ErrorIs(t, err, apperror.Conflict("insufficient_stock", "", nil))

	beans, err := g.ProductBySlug(ctx, tenant, "beans")
	require.NoError(t, err)
	assert.Equal(t, 5, beans.Quantity)

	_, total, err := g.Orders(ctx, tenant, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPlaceOrderOnlyActiveProductsOfTenant(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	cafe := testutil.CreateTenant(t, db, "cafe")
	studio := testutil.CreateTenant(t, db, "studio")
	testutil.CreateProduct(t, db, cafe, "draft-mug", testutil.WithStatus(model.ProductDraft))
	testutil.CreateProduct(t, db, studio, "print")

	_, err := g.PlaceOrder(ctx, cafe, draft(OrderLine{Slug: "draft-mug", Quantity: 1}))
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)

	_, err = g.PlaceOrder(ctx, cafe, draft(OrderLine{Slug: "print", Quantity: 1}))
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestPlaceOrderValidation(t *testing.T) {
	g, db := setup(t)
	tenant := testutil.CreateTenant(t, db, "cafe")

	tests := []struct {
		name  string
		in    OrderDraft
		field string
	}{
		{name: "no items", in: draft(), field: "items"},
		{name: "zero quantity", in: draft(OrderLine{Slug: "mug"}), field: "quantity"},
		{name: "bad slug", in: draft(OrderLine{Slug: "no such/slug", Quantity: 1}), field: "slug"},
		{name: "bad email", in: OrderDraft{CustomerName: "Ann", CustomerEmail: "ann", Items: []OrderLine{{Slug: "mug", Quantity: 1}}}, field: "customer_email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.PlaceOrder(context.Background(), tenant, tt.in)
			appErr := apperror.As(err)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestOrdersIsolatedPerTenant(t *testing.T) {
	g, db := setup(t)
	ctx := context.Background()

	cafe := testutil.CreateTenant(t, db, "cafe")
	studio := testutil.CreateTenant(t, db, "studio")
	testutil.CreateProduct(t, db, cafe, "mug")
	testutil.CreateProduct(t, db, studio, "print")

	cafeOrder, err := g.PlaceOrder(ctx, cafe, draft(OrderLine{Slug: "mug", Quantity: 1}))
	require.NoError(t, err)
	_, err = g.PlaceOrder(ctx, studio, draft(OrderLine{Slug: "print", Quantity: 2}))
	require.NoError(t, err)

	orders, total, err := g.Orders(ctx, cafe, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, cafeOrder.ID, orders[0].ID)
	assert.Len(t, orders[0].Items, 1)

	_, err = g.Order(ctx, studio, cafeOrder.ID)
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)

	_, err = g.Order(ctx, cafe, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)

	_, _, err = g.Orders(ctx, cafe, 0, 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
