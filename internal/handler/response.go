package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/guard"
	"github.com/suteetoe/storefront/pkg/logger"
	"go.uber.org/zap"
)

// UnpublishedNotice is shown to owners and previewers of a store that is not live yet
const UnpublishedNotice = "This store is not published yet. Only you can see it."

// Envelope is the body of every API response
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Notice  string      `json:"notice,omitempty"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// okVisible adds the unpublished notice when the guard let the caller through on a bypass
func okVisible(c echo.Context, data interface{}, v guard.Visibility) error {
	env := Envelope{Success: true, Data: data}
	if v.Bypassed {
		env.Notice = UnpublishedNotice
	}
	return c.JSON(http.StatusOK, env)
}

// ErrorHandler renders errors returned by handlers and middleware in the
// response envelope. Internal errors are logged and replaced by a generic message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	log := logger.FromEcho(c)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.String("code", body.Code), zap.Int("status", status))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, Envelope{Success: false, Error: body})
	}
	if err != nil {
		log.Error("Failed to write error response", zap.Error(err))
	}
}

func errorResponse(err error) (int, *ErrorBody) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok && httpErr.Code < http.StatusInternalServerError {
			msg = s
		}
		return httpErr.Code, &ErrorBody{Code: httpCode(httpErr.Code), Message: msg}
	}

	appErr := apperror.As(err)
	status := appErr.Kind.HTTPStatus()
	if appErr.Kind == apperror.KindInternal {
		return status, &ErrorBody{Code: "internal_error", Message: "internal error"}
	}
	return status, &ErrorBody{Code: appErr.Code, Message: appErr.Message, Field: appErr.Field}
}

func httpCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "route_not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusRequestEntityTooLarge:
		return "body_too_large"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusBadRequest:
		return "bad_request"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return "http_error"
}
