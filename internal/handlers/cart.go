package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vn33/ecom-backend/internal/models"
)

// CartHandler mutates carts without in-process locking: concurrent requests
// for the same user's cart are last-write-wins at the store layer.
type CartHandler struct {
	DB *gorm.DB
}

func (h *CartHandler) loadCart(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := h.DB.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, _, err := requireUser(c)
	if err != nil {
		return err
	}

	cart, err := h.loadCart(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(cart.Items) == 0) {
		return c.JSON(http.StatusOK, echo.Map{"message": "Cart is empty"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	userID, _, err := requireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint             `json:"product_id"`
		Quantity  int              `json:"quantity"`
		Price     *decimal.Decimal `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Product ID is required"})
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	// price omitted: snapshot the product's first variant price
	var price decimal.Decimal
	if req.Price != nil {
		price = *req.Price
	} else {
		var product models.Product
		if err := h.DB.First(&product, req.ProductID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "Failed to fetch product price",
				"details": err.Error(),
			})
		}
		p, ok := product.FirstVariantPrice()
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Product has no price"})
		}
		price = p
	}

	var cart models.Cart
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			cart = models.Cart{UserID: userID}
			if err := tx.Create(&cart).Error; err != nil {
				return err
			}
		}

		// merge into an existing line item; the snapshot price from the
		// first insert is kept
		for i := range cart.Items {
			if cart.Items[i].ProductID == req.ProductID {
				cart.Items[i].Quantity += req.Quantity
				return tx.Save(&cart.Items[i]).Error
			}
		}

		item := models.CartItem{
			CartID:    cart.ID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     price,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		cart.Items = append(cart.Items, item)
		return nil
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Item added to cart",
		"cart":    cart,
	})
}

func (h *CartHandler) UpdateItemQuantity(c echo.Context) error {
	userID, _, err := requireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 || req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Product ID and new quantity are required"})
	}

	cart, err := h.loadCart(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"message": "Cart is empty"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	found := false
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID != req.ProductID {
				continue
			}
			found = true
			if *req.Quantity > 0 {
				cart.Items[i].Quantity = *req.Quantity
				return tx.Save(&cart.Items[i]).Error
			}
			// quantity <= 0 removes the line item
			if err := tx.Delete(&cart.Items[i]).Error; err != nil {
				return err
			}
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
		return nil
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found in cart"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Cart updated successfully",
		"cart":    cart,
	})
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, _, err := requireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Product ID is required"})
	}

	cart, err := h.loadCart(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"message": "Cart is empty"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	res := h.DB.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).Delete(&models.CartItem{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found in cart"})
	}

	remaining := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ProductID != req.ProductID {
			remaining = append(remaining, it)
		}
	}
	cart.Items = remaining

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Item removed from cart",
		"cart":    cart,
	})
}
