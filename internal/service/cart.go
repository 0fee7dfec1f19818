package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mini_shop/internal/events"
	"github.com/Skotchmaster/mini_shop/internal/logging"
	"github.com/Skotchmaster/mini_shop/internal/models"
	"github.com/Skotchmaster/mini_shop/internal/repo"
)

type CartStore interface {
	GetCart(ctx context.Context, userID uint) (*models.Cart, error)
	AppendCartLine(ctx context.Context, userID uint, line models.CartLine) (*models.Cart, error)
}

type CartService struct {
	Carts    CartStore
	Products ProductStore
	Events   events.Publisher
}

// AddToCart appends a line to the caller's cart, creating the cart on first use.
// Lines are never merged: adding the same product twice yields two lines.
func (s *CartService) AddToCart(ctx context.Context, id *Identity, productID uint, quantity int) (*models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add")

	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if productID == 0 {
		return nil, validationf("productId is required")
	}
	if quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}

	cart, err := s.Carts.AppendCartLine(ctx, id.ID, models.CartLine{ProductID: productID, Quantity: quantity})
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			l.Warn("add_to_cart_conflict", "user_id", id.ID)
			return nil, fmt.Errorf("cart for user %d: %w", id.ID, ErrConflict)
		}
		l.Error("add_to_cart_error", "error", err)
		return nil, fmt.Errorf("append cart line: %w", err)
	}

	publish(ctx, s.Events, events.TopicCart, fmt.Sprint(id.ID), map[string]any{
		"type":      "cart_line_added",
		"userID":    id.ID,
		"productID": productID,
		"quantity":  quantity,
	})

	l.Info("add_to_cart_success", "user_id", id.ID, "lines", len(cart.Products))
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, id *Identity) (*models.Cart, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	cart, err := s.Carts.GetCart(ctx, id.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("cart: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// CalculateTotal sums price*quantity over every line of the caller's cart.
// A line whose product no longer exists fails the whole calculation.
func (s *CartService) CalculateTotal(ctx context.Context, id *Identity) (decimal.Decimal, error) {
	l := logging.FromContext(ctx).With("svc", "cart.total")

	cart, err := s.GetCart(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	ids := make([]uint, 0, len(cart.Products))
	for _, line := range cart.Products {
		ids = append(ids, line.ProductID)
	}
	products, err := s.Products.ProductsByIDs(ctx, ids)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load products: %w", err)
	}

	total := decimal.Zero
	for _, line := range cart.Products {
		p, ok := products[line.ProductID]
		if !ok {
			l.Warn("calculate_total_error", "user_id", id.ID, "product_id", line.ProductID)
			return decimal.Zero, fmt.Errorf("product %d: %w", line.ProductID, ErrNotFound)
		}
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total, nil
}
