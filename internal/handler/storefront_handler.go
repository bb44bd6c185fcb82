package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/gateway"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/storefront"
	"github.com/suteetoe/storefront/internal/tenancy"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
)

// StorefrontHandler serves the public store API. The store is whatever the
// tenant middleware resolved for the request, never a request parameter.
type StorefrontHandler struct {
	svc *storefront.Service
}

// NewStorefrontHandler creates the handler
func NewStorefrontHandler(svc *storefront.Service) *StorefrontHandler {
	return &StorefrontHandler{svc: svc}
}

// Register mounts the storefront routes on g
func (h *StorefrontHandler) Register(g *echo.Group) {
	g.GET("", h.Profile)
	g.GET("/products", h.ListProducts)
	g.GET("/products/search", h.SearchProducts)
	g.GET("/products/:slug", h.GetProduct)
	g.POST("/orders", h.PlaceOrder)
}

func access(c echo.Context) (tenancy.Access, error) {
	a, ok := tenancy.AccessFrom(c.Request().Context())
	if !ok {
		return tenancy.Access{}, apperror.ErrTenantNotFound
	}
	return a, nil
}

// ListProducts handles GET /products
func (h *StorefrontHandler) ListProducts(c echo.Context) error {
	q, err := parseQuery(c, "page", "limit", "minPrice", "maxPrice", "inStockOnly", "sortBy")
	if err != nil {
		return err
	}

	f := storefront.DefaultListFilters()
	if f.Page, err = q.integer("page", f.Page); err != nil {
		return err
	}
	if f.Limit, err = q.integer("limit", f.Limit); err != nil {
		return err
	}
	if f.MinPrice, err = q.decimal("minPrice"); err != nil {
		return err
	}
	if f.MaxPrice, err = q.decimal("maxPrice"); err != nil {
		return err
	}
	if f.InStockOnly, err = q.boolean("inStockOnly"); err != nil {
		return err
	}
	if q.has("sortBy") {
		f.SortBy = gateway.SortOrder(q.str("sortBy"))
	}

	a, err := access(c)
	if err != nil {
		return err
	}
	page, err := h.svc.ListProducts(c.Request().Context(), a, f)
	if err != nil {
		return err
	}
	return okVisible(c, page, page.Visibility)
}

// SearchProducts handles GET /products/search
func (h *StorefrontHandler) SearchProducts(c echo.Context) error {
	q, err := parseQuery(c, "q", "page", "limit")
	if err != nil {
		return err
	}

	f := storefront.DefaultSearchFilters(q.str("q"))
	if f.Page, err = q.integer("page", f.Page); err != nil {
		return err
	}
	if f.Limit, err = q.integer("limit", f.Limit); err != nil {
		return err
	}

	a, err := access(c)
	if err != nil {
		return err
	}
	page, err := h.svc.SearchProducts(c.Request().Context(), a, f)
	if err != nil {
		return err
	}
	return okVisible(c, page, page.Visibility)
}

// GetProduct handles GET /products/:slug
func (h *StorefrontHandler) GetProduct(c echo.Context) error {
	if _, err := parseQuery(c); err != nil {
		return err
	}
	a, err := access(c)
	if err != nil {
		return err
	}
	detail, err := h.svc.ProductBySlug(c.Request().Context(), a, c.Param("slug"))
	if err != nil {
		return err
	}
	return okVisible(c, detail.Product, detail.Visibility)
}

// storeProfile is the public view of a tenant
type storeProfile struct {
	Name      string         `json:"name"`
	Subdomain string         `json:"subdomain"`
	Published bool           `json:"published"`
	Setting   *model.Setting `json:"setting"`
}

// Profile handles GET / (store profile and branding)
func (h *StorefrontHandler) Profile(c echo.Context) error {
	if _, err := parseQuery(c); err != nil {
		return err
	}
	a, err := access(c)
	if err != nil {
		return err
	}
	profile, err := h.svc.Storefront(c.Request().Context(), a)
	if err != nil {
		return err
	}
	return okVisible(c, storeProfile{
		Name:      profile.Tenant.Name,
		Subdomain: profile.Tenant.Subdomain,
		Published: profile.Tenant.Published,
		Setting:   profile.Setting,
	}, profile.Visibility)
}

// PlaceOrder handles POST /orders
func (h *StorefrontHandler) PlaceOrder(c echo.Context) error {
	var draft gateway.OrderDraft
	if err := bind(c, &draft); err != nil {
		return err
	}
	a, err := access(c)
	if err != nil {
		return err
	}

	order, err := h.svc.PlaceOrder(c.Request().Context(), a, draft)
	if err != nil {
		return err
	}

	logger.FromEcho(c).Info("Storefront order accepted",
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number))
	return ok(c, http.StatusCreated, order)
}
