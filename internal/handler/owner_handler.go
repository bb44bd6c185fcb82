package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/directory"
	"github.com/suteetoe/storefront/internal/gateway"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/storefront"
	"github.com/suteetoe/storefront/internal/tenancy"
	"github.com/suteetoe/storefront/pkg/logger"
	"github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
)

// OwnerHandler serves the dashboard API. The tenant a call works on is always
// the one owned by the authenticated user; ids and subdomains in request
// bodies never select it.
type OwnerHandler struct {
	directory directory.Directory
	gateway   *gateway.Gateway
}

// NewOwnerHandler creates the handler
func NewOwnerHandler(dir directory.Directory, gw *gateway.Gateway) *OwnerHandler {
	return &OwnerHandler{directory: dir, gateway: gw}
}

// Register mounts the owner routes on g, which must require authentication
func (h *OwnerHandler) Register(g *echo.Group) {
	g.POST("", h.CreateTenant)

	me := g.Group("/me")
	me.GET("", h.GetTenant)
	me.POST("/publish", h.PublishTenant)

	me.GET("/settings", h.GetSetting)
	me.POST("/settings", h.CreateSetting)
	me.PUT("/settings", h.UpdateSetting)

	me.GET("/products", h.ListProducts)
	me.POST("/products", h.CreateProduct)
	me.GET("/products/:id", h.GetProduct)
	me.PUT("/products/:id", h.UpdateProduct)
	me.DELETE("/products/:id", h.DeleteProduct)

	me.GET("/orders", h.ListOrders)
	me.GET("/orders/:id", h.GetOrder)
}

func viewer(c echo.Context) (tenancy.Viewer, error) {
	v := tenancy.ViewerFrom(c.Request().Context())
	if !v.Authenticated() {
		return tenancy.Viewer{}, apperror.ErrUnauthenticated
	}
	return v, nil
}

// ownTenant loads the caller's tenant
func (h *OwnerHandler) ownTenant(c echo.Context) (*model.Tenant, error) {
	v, err := viewer(c)
	if err != nil {
		return nil, err
	}
	return h.directory.LookupByOwner(c.Request().Context(), v.UserID)
}

// CreateTenant handles POST /api/tenants
func (h *OwnerHandler) CreateTenant(c echo.Context) error {
	log := logger.FromEcho(c)

	v, err := viewer(c)
	if err != nil {
		return err
	}
	if !model.Role(v.Role).CanOwnTenant() {
		log.Warn("Tenant creation by non owner role", zap.String("role", v.Role))
		return apperror.ErrNotOwner
	}

	var in directory.CreateTenantInput
	if err := bind(c, &in); err != nil {
		return err
	}
	in.OwnerID = v.UserID

	tenant, err := h.directory.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, tenant)
}

// GetTenant handles GET /api/tenants/me
func (h *OwnerHandler) GetTenant(c echo.Context) error {
	prometheus.RecordTenantOperation("access")

	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, tenant)
}

// PublishTenant handles POST /api/tenants/me/publish
func (h *OwnerHandler) PublishTenant(c echo.Context) error {
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	published, err := h.directory.Publish(c.Request().Context(), tenant)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, published)
}

// GetSetting handles GET /api/tenants/me/settings
func (h *OwnerHandler) GetSetting(c echo.Context) error {
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	setting, err := h.gateway.Setting(c.Request().Context(), tenant)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, setting)
}

// CreateSetting handles POST /api/tenants/me/settings
func (h *OwnerHandler) CreateSetting(c echo.Context) error {
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	var in gateway.SettingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	setting, err := h.gateway.CreateSetting(c.Request().Context(), tenant, in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, setting)
}

// UpdateSetting handles PUT /api/tenants/me/settings
func (h *OwnerHandler) UpdateSetting(c echo.Context) error {
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	var in gateway.SettingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	setting, err := h.gateway.UpdateSetting(c.Request().Context(), tenant, in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, setting)
}

// ownerProductPage is the dashboard product listing
type ownerProductPage struct {
	Products   []model.Product       `json:"products"`
	Pagination storefront.Pagination `json:"pagination"`
}

// ListProducts handles GET /api/tenants/me/products. Owners see every status.
func (h *OwnerHandler) ListProducts(c echo.Context) error {
	q, err := parseQuery(c, "page", "limit", "status", "q", "sortBy")
	if err != nil {
		return err
	}
	page, limit, err := window(q, storefront.DefaultSearchLimit)
	if err != nil {
		return err
	}

	query := gateway.ProductQuery{
		Search: q.str("q"),
		Offset: storefront.Offset(page, limit),
		Limit:  limit,
	}
	if q.has("status") {
		status := model.ProductStatus(q.str("status"))
		if !status.Valid() {
			return apperror.Validation("status", "must be one of DRAFT, ACTIVE, ARCHIVED")
		}
		query.Statuses = []model.ProductStatus{status}
	}
	sort, valid := gateway.ParseSortOrder(q.str("sortBy"))
	if !valid {
		return apperror.Validation("sortBy", "must be one of newest, oldest, price_asc, price_desc")
	}
	query.Sort = sort

	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	products, total, err := h.gateway.ListProducts(c.Request().Context(), tenant, query)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, ownerProductPage{
		Products:   products,
		Pagination: storefront.NewPagination(page, limit, total),
	})
}

// window reads and validates page and limit
func window(q *queryParams, defaultLimit int) (int, int, error) {
	page, err := q.integer("page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := q.integer("limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if err := storefront.ValidateWindow(page, limit); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// CreateProduct handles POST /api/tenants/me/products
func (h *OwnerHandler) CreateProduct(c echo.Context) error {
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	var in gateway.ProductInput
	if err := bind(c, &in); err != nil {
		return err
	}
	product, err := h.gateway.CreateProduct(c.Request().Context(), tenant, in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, product)
}

// GetProduct handles GET /api/tenants/me/products/:id
func (h *OwnerHandler) GetProduct(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	product, err := h.gateway.ProductByID(c.Request().Context(), tenant, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, product)
}

// UpdateProduct handles PUT /api/tenants/me/products/:id
func (h *OwnerHandler) UpdateProduct(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	var in gateway.ProductInput
	if err := bind(c, &in); err != nil {
		return err
	}
	product, err := h.gateway.UpdateProduct(c.Request().Context(), tenant, id, in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/tenants/me/products/:id
func (h *OwnerHandler) DeleteProduct(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	if err := h.gateway.DeleteProduct(c.Request().Context(), tenant, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ownerOrderPage is the dashboard order listing
type ownerOrderPage struct {
	Orders     []model.Order         `json:"orders"`
	Pagination storefront.Pagination `json:"pagination"`
}

// ListOrders handles GET /api/tenants/me/orders
func (h *OwnerHandler) ListOrders(c echo.Context) error {
	q, err := parseQuery(c, "page", "limit")
	if err != nil {
		return err
	}
	page, limit, err := window(q, storefront.DefaultSearchLimit)
	if err != nil {
		return err
	}
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	orders, total, err := h.gateway.Orders(c.Request().Context(), tenant, storefront.Offset(page, limit), limit)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, ownerOrderPage{
		Orders:     orders,
		Pagination: storefront.NewPagination(page, limit, total),
	})
}

// GetOrder handles GET /api/tenants/me/orders/:id
func (h *OwnerHandler) GetOrder(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	tenant, err := h.ownTenant(c)
	if err != nil {
		return err
	}
	order, err := h.gateway.Order(c.Request().Context(), tenant, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, order)
}
