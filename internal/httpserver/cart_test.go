package httpserver_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/mini_shop/internal/models"
	"github.com/Skotchmaster/mini_shop/internal/transport"
)

func TestAddToCart_TwoCallsTwoLines(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "")

	body := transport.AddToCartRequest{ProductID: 7, Quantity: 1}
	rec := env.doJSON(t, http.MethodPost, "/add-to-cart", body, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.doJSON(t, http.MethodPost, "/add-to-cart", body, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/get-cart", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart models.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Len(t, cart.Products, 2)
	assert.Contains(t, rec.Body.String(), `"productId":7`)
}

func TestAddToCart_Validation(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "")

	rec := env.doJSON(t, http.MethodPost, "/add-to-cart", map[string]int{"productId": 1, "quantity": 0}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/add-to-cart", map[string]int{"productId": -1, "quantity": 1}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/add-to-cart", map[string]int{"quantity": 1}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_NotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "")

	rec := env.doJSON(t, http.MethodGet, "/get-cart", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/calculate-total", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.register(t, "admin", models.RoleAdmin)
	customer := env.register(t, "carol", models.RoleCustomer)

	rec := env.do(productForm(t, map[string]string{"name": "Book", "price": "10.00"}), admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var prod models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prod))

	rec = env.doJSON(t, http.MethodPost, "/add-to-cart", transport.AddToCartRequest{ProductID: prod.ID, Quantity: 3}, customer)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/calculate-total", nil, customer)
	require.Equal(t, http.StatusOK, rec.Code)
	var total transport.TotalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &total))
	assert.Equal(t, 30.0, total.Total)
}

func TestCalculateTotal_DanglingProduct(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "alice", "")

	rec := env.doJSON(t, http.MethodPost, "/add-to-cart", transport.AddToCartRequest{ProductID: 99, Quantity: 1}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/calculate-total", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, errorMessage(t, rec), fmt.Sprint(99))
}
