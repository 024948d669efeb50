package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vn33/ecom-backend/internal/models"
)

func TestAddItemAccumulatesQuantity(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)
	product := env.seedProduct("mug", decimal.RequireFromString("10.00"))

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/add_item", map[string]any{
		"product_id": product.ID,
		"quantity":   2,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = env.doJSONRequest(http.MethodPost, "/cart/add_item", map[string]any{
		"product_id": product.ID,
		"quantity":   3,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, env.DB.Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, 5, items[0].Quantity)
	require.True(t, items[0].Price.Equal(decimal.RequireFromString("10.00")))
}

func TestAddItemKeepsFirstSnapshotPrice(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)
	product := env.seedProduct("mug", decimal.RequireFromString("10.00"))

	_, c := env.doJSONRequest(http.MethodPost, "/cart/add_item", map[string]any{
		"product_id": product.ID,
		"quantity":   1,
		"price":      "5.50",
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))

	// a later add with a different price only bumps the quantity
	_, c = env.doJSONRequest(http.MethodPost, "/cart/add_item", map[string]any{
		"product_id": product.ID,
		"quantity":   1,
		"price":      "9.90",
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))

	var items []models.CartItem
	require.NoError(t, env.DB.Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Quantity)
	require.True(t, items[0].Price.Equal(decimal.RequireFromString("5.50")))
}

func TestAddItemProductWithoutPrice(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)

	product := models.Product{Name: "bare", Category: "misc"}
	require.NoError(t, env.DB.Create(&product).Error)

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/add_item", map[string]any{
		"product_id": product.ID,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Product has no price", body["message"])
}

func TestUpdateItemQuantityZeroRemoves(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)
	product := env.seedProduct("mug", decimal.RequireFromString("10.00"))

	_, c := env.doJSONRequest(http.MethodPost, "/cart/add_item", map[string]any{
		"product_id": product.ID,
		"quantity":   4,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/update_item_quantity", map[string]any{
		"product_id": product.ID,
		"quantity":   0,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.UpdateItemQuantity(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count)

	rec, c = env.doJSONRequest(http.MethodGet, "/cart/details", nil)
	asUser(c, user)
	require.NoError(t, env.Cart.GetCart(c))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Cart is empty", body["message"])
}

func TestUpdateItemQuantityOverwrites(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)
	product := env.seedProduct("mug", decimal.RequireFromString("10.00"))

	_, c := env.doJSONRequest(http.MethodPost, "/cart/add_item", map[string]any{
		"product_id": product.ID,
		"quantity":   4,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/update_item_quantity", map[string]any{
		"product_id": product.ID,
		"quantity":   9,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.UpdateItemQuantity(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, env.DB.Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, 9, items[0].Quantity)
}

func TestUpdateItemQuantityMissingProduct(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)
	product := env.seedProduct("mug", decimal.RequireFromString("10.00"))

	_, c := env.doJSONRequest(http.MethodPost, "/cart/add_item", map[string]any{
		"product_id": product.ID,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/update_item_quantity", map[string]any{
		"product_id": product.ID + 100,
		"quantity":   1,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.UpdateItemQuantity(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)
	product := env.seedProduct("mug", decimal.RequireFromString("10.00"))

	_, c := env.doJSONRequest(http.MethodPost, "/cart/add_item", map[string]any{
		"product_id": product.ID,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.AddItem(c))

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/remove_item", map[string]any{
		"product_id": product.ID,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.RemoveItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// removing again reports the item is gone
	rec, c = env.doJSONRequest(http.MethodPost, "/cart/remove_item", map[string]any{
		"product_id": product.ID,
	})
	asUser(c, user)
	require.NoError(t, env.Cart.RemoveItem(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCartEmpty(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)

	rec, c := env.doJSONRequest(http.MethodGet, "/cart/details", nil)
	asUser(c, user)
	require.NoError(t, env.Cart.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Cart is empty", body["message"])
}
