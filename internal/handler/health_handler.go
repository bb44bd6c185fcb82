package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler reports liveness, and database reachability when asked
type HealthHandler struct {
	service string
	db      *gorm.DB
}

// NewHealthHandler creates the handler. db may be nil, in which case
// ?check=db reports the database as unavailable.
func NewHealthHandler(service string, db *gorm.DB) *HealthHandler {
	return &HealthHandler{service: service, db: db}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	response := echo.Map{
		"status":  "healthy",
		"service": h.service,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if c.QueryParam("check") != "db" {
		return c.JSON(http.StatusOK, response)
	}

	log := logger.FromEcho(c)
	if h.db == nil {
		response["status"] = "error"
		response["db_status"] = "unavailable"
		return c.JSON(http.StatusServiceUnavailable, response)
	}
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		log.Error("Database ping error", zap.Error(err))
		response["status"] = "error"
		response["db_status"] = "error"
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	response["db_status"] = "ok"
	return c.JSON(http.StatusOK, response)
}
