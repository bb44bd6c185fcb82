package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/tenancy"
	"github.com/suteetoe/storefront/pkg/jwtutil"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
)

// ClaimsKey is the echo context key holding the validated *jwtutil.UserClaims
const ClaimsKey = "user"

// OptionalAuth attaches the viewer when a bearer token is present. Requests
// without one continue anonymously; a present but invalid token is rejected.
func OptionalAuth(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return auth(jwtUtil, false)
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return auth(jwtUtil, true)
}

func auth(jwtUtil *jwtutil.JWTUtil, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if required {
					log.Warn("Missing authorization header")
					return apperror.ErrUnauthenticated
				}
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				log.Warn("Invalid authorization header format")
				return apperror.ErrUnauthenticated
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return apperror.ErrUnauthenticated
			}
			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				log.Warn("Token carries a malformed user id", zap.String("user_id", claims.UserID))
				return apperror.ErrUnauthenticated
			}

			c.Set(ClaimsKey, claims)
			req := c.Request()
			c.SetRequest(req.WithContext(tenancy.WithViewer(req.Context(), tenancy.Viewer{
				UserID: userID,
				Email:  claims.Email,
				Role:   claims.Role,
			})))
			logger.Attach(c, log.With(zap.String("user_id", claims.UserID)))

			log.Debug("JWT token validated successfully",
				zap.String("user_id", claims.UserID),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}
