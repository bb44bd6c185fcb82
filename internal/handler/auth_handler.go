package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/storefront/internal/account"
)

// AuthHandler signs users up and in
type AuthHandler struct {
	accounts *account.Service
}

// NewAuthHandler creates the handler
func NewAuthHandler(accounts *account.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register mounts the auth routes on g
func (h *AuthHandler) Register(g *echo.Group) {
	g.POST("/register", h.SignUp)
	g.POST("/login", h.Login)
}

// SignUp handles POST /api/auth/register
func (h *AuthHandler) SignUp(c echo.Context) error {
	var in account.RegisterInput
	if err := bind(c, &in); err != nil {
		return err
	}
	user, err := h.accounts.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var in account.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}
	session, err := h.accounts.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, session)
}
