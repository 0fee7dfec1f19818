package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/mini_shop/internal/db"
	"github.com/Skotchmaster/mini_shop/internal/middleware/auth"
)

type Deps struct {
	DB       *gorm.DB
	Verifier auth.Verifier
	Auth     *AuthHTTP
	Products *ProductHTTP
	Cart     *CartHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
		}
		return c.NoContent(http.StatusOK)
	})

	e.POST("/register", d.Auth.Register)
	e.POST("/login", d.Auth.Login)
	e.GET("/products", d.Products.ListProducts)

	requireAuth := auth.RequireAuth(d.Verifier)

	e.POST("/add-product", d.Products.AddProduct, requireAuth, auth.RequireAdmin)

	e.POST("/add-to-cart", d.Cart.AddToCart, requireAuth)
	e.GET("/get-cart", d.Cart.GetCart, requireAuth)
	e.GET("/calculate-total", d.Cart.CalculateTotal, requireAuth)
}
