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

// OrderLine asks for quantity units of the product with slug
type OrderLine struct {
	Slug     string `json:"slug" validate:"required,slug"`
	Quantity int    `json:"quantity" validate:"gt=0,lte=1000"`
}

// OrderDraft is a customer's checkout request
type OrderDraft struct {
	CustomerName  string      `json:"customer_name" validate:"required,max=255"`
	CustomerEmail string      `json:"customer_email" validate:"required,email,max=255"`
	Items         []OrderLine `json:"items" validate:"required,min=1,max=100,dive"`
}

func (d *OrderDraft) normalize() error {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.CustomerEmail = strings.ToLower(strings.TrimSpace(d.CustomerEmail))
	for i := range d.Items {
		d.Items[i].Slug = strings.ToLower(strings.TrimSpace(d.Items[i].Slug))
	}
	return validation.Struct(d)
}

// merged sums quantities of repeated slugs, keeping first-seen order
func (d *OrderDraft) merged() []OrderLine {
	index := make(map[string]int, len(d.Items))
	lines := make([]OrderLine, 0, len(d.Items))
	for _, item := range d.Items {
		if i, ok := index[item.Slug]; ok {
			lines[i].Quantity += item.Quantity
			continue
		}
		index[item.Slug] = len(lines)
		lines = append(lines, item)
	}
	return lines
}

func insufficientStock(slug string) error {
	return apperror.Conflict("insufficient_stock", "not enough stock for "+slug, nil)
}

// PlaceOrder creates a PENDING order on tenant. Every line must name an ACTIVE
// product of tenant; tracked inventory is decremented in the same transaction
// and only if enough units remain.
func (g *Gateway) PlaceOrder(ctx context.Context, tenant *model.Tenant, draft OrderDraft) (*model.Order, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := draft.normalize(); err != nil {
		return nil, err
	}
	defer storage.Track("order_insert")()

	order := &model.Order{
		TenantID:      tenant.ID,
		CustomerName:  draft.CustomerName,
		CustomerEmail: draft.CustomerEmail,
		Status:        model.OrderPending,
		Total:         decimal.Zero,
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range draft.merged() {
			var product model.Product
			err := scoped(tx.Model(&model.Product{}), tenant).
				Where("slug = ? AND status = ?", line.Slug, model.ProductActive).
				First(&product).Error
			if err != nil {
				return productLookupErr(err)
			}

			if product.TrackInventory {
				res := scoped(tx.Model(&model.Product{}), tenant).
					Where("id = ? AND quantity >= ?", product.ID, line.Quantity).
					UpdateColumn("quantity", gorm.Expr("quantity - ?", line.Quantity))
				if res.Error != nil {
					return errors.Wrap(res.Error, "failed to reserve stock")
				}
				if res.RowsAffected == 0 {
					return insufficientStock(line.Slug)
				}
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			order.Items = append(order.Items, model.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  line.Quantity,
				LineTotal: lineTotal,
			})
			order.Total = order.Total.Add(lineTotal)
		}

		return errors.Wrap(tx.Create(order).Error, "failed to create order")
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Order placed",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)))
	return order, nil
}

// Orders lists tenant's orders, newest first, and the total count
func (g *Gateway) Orders(ctx context.Context, tenant *model.Tenant, offset, limit int) ([]model.Order, int64, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		return nil, 0, apperror.Validation("limit", "must be positive")
	}
	if offset < 0 {
		return nil, 0, apperror.Validation("offset", "must not be negative")
	}
	defer storage.Track("order_list")()

	var (
		orders []model.Order
		total  int64
	)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scoped(tx.Model(&model.Order{}), tenant).Count(&total).Error; err != nil {
			return errors.Wrap(err, "failed to count orders")
		}
		return errors.Wrap(scoped(tx.Model(&model.Order{}), tenant).
			Preload("Items").
			Order("created_at DESC").Order("id ASC").
			Offset(offset).Limit(limit).
			Find(&orders).Error, "failed to list orders")
	})
	if err != nil {
		return nil, 0, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, total, nil
}

// Order returns tenant's order id with its items
func (g *Gateway) Order(ctx context.Context, tenant *model.Tenant, id uuid.UUID) (*model.Order, error) {
	db, err := g.session(ctx, tenant, &model.Order{})
	if err != nil {
		return nil, err
	}
	defer storage.Track("order_get")()

	var order model.Order
	if err := db.Where("id = ?", id).Preload("Items").First(&order).Error; err != nil {
		if storage.IsNotFound(err) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to load order")
	}
	return &order, nil
}
