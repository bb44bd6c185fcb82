package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	store *echomiddleware.RateLimiterMemoryStore
}

// NewRateLimiter allows rps requests per second per client with the given burst.
// Buckets unused for idle are dropped.
func NewRateLimiter(rps float64, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: idle,
		}),
	}
}

// Allow reports whether key may make a request now
func (r *RateLimiter) Allow(key string) bool {
	ok, _ := r.store.Allow(key)
	return ok
}

// Middleware limits requests per client IP
func (r *RateLimiter) Middleware() echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, ip string, err error) error {
			logger.FromEcho(c).Warn("Rate limit exceeded", zap.String("ip", ip))
			return &echo.HTTPError{
				Code:     http.StatusTooManyRequests,
				Message:  "too many requests",
				Internal: err,
			}
		},
	})
}
