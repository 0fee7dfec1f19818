package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mini_shop/internal/service"
	"github.com/Skotchmaster/mini_shop/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	var req transport.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.Svc.Register(c.Request().Context(), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, transport.TokenResponse{Token: token})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.Svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.TokenResponse{Token: token})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("invalid request body: %w", service.ErrValidation)
	}
	return c.Validate(req)
}
