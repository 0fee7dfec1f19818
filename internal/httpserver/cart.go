package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mini_shop/internal/middleware/auth"
	"github.com/Skotchmaster/mini_shop/internal/service"
	"github.com/Skotchmaster/mini_shop/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	var req transport.AddToCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cart, err := h.Svc.AddToCart(c.Request().Context(), auth.IdentityFrom(c), req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	cart, err := h.Svc.GetCart(c.Request().Context(), auth.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) CalculateTotal(c echo.Context) error {
	total, err := h.Svc.CalculateTotal(c.Request().Context(), auth.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transport.TotalResponse{Total: total.InexactFloat64()})
}
