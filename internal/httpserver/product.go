package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mini_shop/internal/middleware/auth"
	"github.com/Skotchmaster/mini_shop/internal/service"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

// AddProduct accepts multipart fields name, description, price and up to
// service.MaxProductImages files under "images".
func (h *ProductHTTP) AddProduct(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return fmt.Errorf("multipart form expected: %w", service.ErrValidation)
		}
		return fmt.Errorf("read multipart form: %v: %w", err, service.ErrValidation)
	}

	priceRaw := strings.TrimSpace(c.FormValue("price"))
	if priceRaw == "" {
		return fmt.Errorf("price is required: %w", service.ErrValidation)
	}
	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil {
		return fmt.Errorf("price %q is not a number: %w", priceRaw, service.ErrValidation)
	}

	files := form.File["images"]
	if len(files) > service.MaxProductImages {
		return fmt.Errorf("at most %d images allowed, got %d: %w", service.MaxProductImages, len(files), service.ErrValidation)
	}
	images := make([][]byte, 0, len(files))
	for _, fh := range files {
		data, err := readFile(fh)
		if err != nil {
			return fmt.Errorf("read image %q: %w", fh.Filename, err)
		}
		images = append(images, data)
	}

	prod, err := h.Svc.AddProduct(c.Request().Context(), auth.IdentityFrom(c), service.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       price,
		Images:      images,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHTTP) ListProducts(c echo.Context) error {
	items, err := h.Svc.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
