package models

import "gorm.io/datatypes"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type Product struct {
	ID          uint                        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string                      `gorm:"not null"                 json:"name"`
	Description string                      `gorm:"not null;default:''"      json:"description"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	Price       float64                     `gorm:"not null"                 json:"price"`
}

// CartLine is one entry of a cart; lines for the same product are kept separate.
type CartLine struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type Cart struct {
	ID       uint                          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   uint                          `gorm:"uniqueIndex;not null"     json:"user_id"`
	Products datatypes.JSONSlice[CartLine] `json:"products"`
}

func (Cart) TableName() string {
	return "shopping_carts"
}
