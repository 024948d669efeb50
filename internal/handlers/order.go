package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vn33/ecom-backend/internal/logging"
	"github.com/vn33/ecom-backend/internal/models"
	"github.com/vn33/ecom-backend/internal/mykafka"
	"github.com/vn33/ecom-backend/internal/notify"
)

var hundred = decimal.NewFromInt(100)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// CreateOrder places an order from the caller's cart: it totals the line
// items, applies an optional coupon, persists the order with a snapshot of
// the cart items, and clears the cart — all in one transaction. The
// notification publish happens after commit and is fire-and-forget.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, role, err := requireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		CouponCode string `json:"coupon_code"`
	}
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
	}

	var order models.Order
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(cart.Items) == 0) {
			return echo.NewHTTPError(http.StatusBadRequest, "Cart is empty")
		}
		if err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			items = append(items, models.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
			})
		}

		discount := decimal.Zero
		if req.CouponCode != "" {
			var coupon models.Coupon
			if err := tx.Where("code = ?", req.CouponCode).First(&coupon).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "Invalid coupon code")
				}
				return err
			}
			if !coupon.EligibleFor(role) {
				return echo.NewHTTPError(http.StatusBadRequest, "You are not eligible to use this coupon")
			}
			if coupon.Expired(time.Now()) {
				return echo.NewHTTPError(http.StatusBadRequest, "Coupon expired")
			}
			discount = total.Mul(decimal.NewFromInt(int64(coupon.DiscountPercent))).Div(hundred).Round(2)
		}

		order = models.Order{
			UserID:          userID,
			Items:           items,
			TotalAmount:     total,
			DiscountApplied: discount,
			FinalAmount:     total.Sub(discount),
			Status:          models.OrderStatusPending,
			CreatedAt:       time.Now().UTC(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publishOrderCreated(c, &order)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// publishOrderCreated enqueues the notification without blocking the
// response. A publish failure is logged and never rolls back the order.
func (h *OrderHandler) publishOrderCreated(c echo.Context, order *models.Order) {
	if h.Producer == nil {
		return
	}

	l := logging.FromContext(c.Request().Context())
	event := notify.OrderCreated{
		Type:        notify.TypeOrderCreated,
		OrderID:     order.ID,
		UserID:      order.UserID,
		FinalAmount: order.FinalAmount.StringFixed(2),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		key := fmt.Sprint(order.ID)
		if err := h.Producer.PublishEvent(ctx, mykafka.OrderEventsTopic, key, event); err != nil {
			l.Error("order notification publish failed", "order_id", order.ID, "error", err)
		}
	}()
}

func (h *OrderHandler) TrackOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var order models.Order
	if err := h.DB.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Order not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"order": order})
}
