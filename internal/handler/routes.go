package handler

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/storefront/internal/account"
	"github.com/suteetoe/storefront/internal/directory"
	"github.com/suteetoe/storefront/internal/gateway"
	"github.com/suteetoe/storefront/internal/middleware"
	"github.com/suteetoe/storefront/internal/storefront"
	"github.com/suteetoe/storefront/internal/tenancy"
	"github.com/suteetoe/storefront/pkg/jwtutil"
	"github.com/suteetoe/storefront/pkg/logger"
	"github.com/suteetoe/storefront/pkg/metrics"
	"gorm.io/gorm"
)

const (
	// StorePath is where the storefront API is mounted on store hosts
	StorePath = "/api/store"
	// TenantsPath is where the owner API is mounted
	TenantsPath = "/api/tenants"
	// AuthPath is where sign up and sign in are mounted
	AuthPath = "/api/auth"

	bodyLimit = "1M"
)

// Dependencies are the components the router wires together
type Dependencies struct {
	ServiceName string
	DB          *gorm.DB
	Directory   directory.Directory
	Gateway     *gateway.Gateway
	Accounts    *account.Service
	Resolver    *tenancy.Resolver
	JWT         *jwtutil.JWTUtil
	// Limiter and Metrics are optional
	Limiter *middleware.RateLimiter
	Metrics *metrics.HTTPMetrics
}

// NewRouter builds the echo instance serving every route
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(middleware.RequestIDMiddleware())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(logger.Middleware())

	health := NewHealthHandler(d.ServiceName, d.DB)
	e.GET("/health", health.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	store := []echo.MiddlewareFunc{middleware.TenantResolution(d.Resolver)}
	if d.Limiter != nil {
		store = append(store, d.Limiter.Middleware())
	}
	store = append(store, middleware.OptionalAuth(d.JWT))

	shop := NewStorefrontHandler(storefront.NewService(d.Directory, d.Gateway))
	shop.Register(e.Group(StorePath, store...))
	shop.Register(e.Group(d.Resolver.PreviewPrefix()+"/:subdomain"+StorePath, store...))

	NewAuthHandler(d.Accounts).Register(e.Group(AuthPath))

	owner := NewOwnerHandler(d.Directory, d.Gateway)
	owner.Register(e.Group(TenantsPath, middleware.RequireAuth(d.JWT)))

	return e
}
