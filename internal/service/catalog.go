package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Skotchmaster/mini_shop/internal/events"
	"github.com/Skotchmaster/mini_shop/internal/logging"
	"github.com/Skotchmaster/mini_shop/internal/models"
)

const MaxProductImages = 5

var textPolicy = bluemonday.StrictPolicy()

type ProductStore interface {
	CreateProduct(ctx context.Context, prod *models.Product) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	ProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error)
}

// ProductInput is a product as submitted by an admin; Images hold raw file bytes.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Images      [][]byte
}

type CatalogService struct {
	Products ProductStore
	Events   events.Publisher
}

func NewCatalogService(products ProductStore, pub events.Publisher) *CatalogService {
	return &CatalogService{
		Products: products,
		Events:   pub,
	}
}

func (s *CatalogService) AddProduct(ctx context.Context, id *Identity, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.add_product")

	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if !id.IsAdmin() {
		l.Warn("add_product_denied", "user_id", id.ID, "role", id.Role)
		return nil, fmt.Errorf("admin role required: %w", ErrForbidden)
	}

	name := sanitize(in.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		return nil, validationf("price must be a non-negative number")
	}
	if len(in.Images) > MaxProductImages {
		return nil, validationf("at most %d images allowed, got %d", MaxProductImages, len(in.Images))
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		images = append(images, base64.StdEncoding.EncodeToString(img))
	}

	prod := models.Product{
		Name:        name,
		Description: sanitize(in.Description),
		Images:      images,
		Price:       in.Price,
	}
	if err := s.Products.CreateProduct(ctx, &prod); err != nil {
		l.Error("add_product_error", "error", err)
		return nil, fmt.Errorf("create product: %w", err)
	}

	publish(ctx, s.Events, events.TopicProduct, fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price,
		"userID":    id.ID,
	})

	l.Info("add_product_success", "product_id", prod.ID, "images", len(images))
	return &prod, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	items, err := s.Products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

// sanitize strips markup; plain-text entities like "&" survive unescaped.
func sanitize(v string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(v)))
}
