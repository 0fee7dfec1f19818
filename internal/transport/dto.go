package transport

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin customer"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AddToCartRequest struct {
	ProductID uint `json:"productId" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type TotalResponse struct {
	Total float64 `json:"total"`
}
