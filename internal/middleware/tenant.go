package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/internal/tenancy"
	"github.com/suteetoe/storefront/pkg/logger"
	"github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
)

// ResolutionKey is the echo context key holding the tenancy.Resolution
const ResolutionKey = "tenant_resolution"

// TenantResolution resolves the request's tenant context exactly once, from
// the Host header and the raw request path, and stores it on the echo and
// request contexts. Downstream code reads it and never resolves again.
func TenantResolution(resolver *tenancy.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := resolver.Resolve(req.Host, req.URL.Path)
			prometheus.RecordResolution(res.Kind.String())

			c.Set(ResolutionKey, res)
			c.SetRequest(req.WithContext(tenancy.WithResolution(req.Context(), res)))

			fields := []zap.Field{zap.String("context", res.Kind.String())}
			if res.HasTenant() {
				fields = append(fields, zap.String("subdomain", res.Subdomain))
			}
			logger.Attach(c, logger.FromEcho(c).With(fields...))

			return next(c)
		}
	}
}

// ResolutionFrom returns the resolution stored by TenantResolution
func ResolutionFrom(c echo.Context) tenancy.Resolution {
	if res, ok := c.Get(ResolutionKey).(tenancy.Resolution); ok {
		return res
	}
	return tenancy.ResolutionFrom(c.Request().Context())
}
