package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/mini_shop/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

// AppendCartLine creates the user's cart with a single line, or appends line
// to the existing one. On postgres the cart row is locked for the duration of
// the read-modify-write.
func (r *GormRepo) AppendCartLine(ctx context.Context, userID uint, line models.CartLine) (*models.Cart, error) {
	var cart models.Cart

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		err := q.Where("user_id = ?", userID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart = models.Cart{
				UserID:   userID,
				Products: []models.CartLine{line},
			}
			return tx.Create(&cart).Error
		}
		if err != nil {
			return err
		}

		cart.Products = append(cart.Products, line)
		return tx.Model(&cart).Update("products", cart.Products).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}
