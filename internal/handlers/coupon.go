package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vn33/ecom-backend/internal/models"
)

type CouponHandler struct {
	DB *gorm.DB
}

// parseExpiry accepts ISO-8601 timestamps with or without a zone offset.
// Zone-less values are taken as UTC.
func parseExpiry(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (h *CouponHandler) GetAllCoupons(c echo.Context) error {
	var coupons []models.Coupon
	if err := h.DB.Find(&coupons).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Coupons retrieved successfully",
		"coupons": coupons,
	})
}

func (h *CouponHandler) CreateCoupon(c echo.Context) error {
	var req struct {
		Code            string        `json:"code"`
		DiscountPercent int           `json:"discount_percent"`
		Expiry          string        `json:"expiry"`
		EligibleRoles   []models.Role `json:"eligible_roles"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input", "details": "code is required"})
	}

	expiry, err := parseExpiry(req.Expiry)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "Invalid input",
			"details": err.Error(),
		})
	}

	roles := req.EligibleRoles
	if len(roles) == 0 {
		roles = []models.Role{models.RoleCustomer}
	}

	var existing models.Coupon
	if err := h.DB.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "Coupon creation failed",
			"details": "code already exists",
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	coupon := models.Coupon{
		Code:            req.Code,
		DiscountPercent: req.DiscountPercent,
		Expiry:          expiry,
		EligibleRoles:   roles,
	}
	if err := h.DB.Create(&coupon).Error; err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "Coupon creation failed",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Coupon created successfully",
		"coupon":  coupon,
	})
}

func (h *CouponHandler) UpdateCoupon(c echo.Context) error {
	code := c.Param("code")

	var req struct {
		DiscountPercent *int          `json:"discount_percent"`
		Expiry          *string       `json:"expiry"`
		EligibleRoles   []models.Role `json:"eligible_roles"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var coupon models.Coupon
	if err := h.DB.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Coupon not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.DiscountPercent != nil {
		coupon.DiscountPercent = *req.DiscountPercent
	}
	if req.Expiry != nil {
		expiry, err := parseExpiry(*req.Expiry)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "Coupon update failed",
				"details": err.Error(),
			})
		}
		coupon.Expiry = expiry
	}
	if req.EligibleRoles != nil {
		coupon.EligibleRoles = req.EligibleRoles
	}

	if err := h.DB.Save(&coupon).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Coupon updated successfully",
		"coupon":  coupon,
	})
}

func (h *CouponHandler) DeleteCoupon(c echo.Context) error {
	code := c.Param("code")

	var coupon models.Coupon
	if err := h.DB.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Coupon not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&coupon).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Coupon deleted successfully"})
}

// GetMyCoupons returns coupons the caller's role is eligible for that have
// not expired. The role filter runs in Go because eligible_roles is a JSON
// column.
func (h *CouponHandler) GetMyCoupons(c echo.Context) error {
	_, role, err := requireUser(c)
	if err != nil {
		return err
	}

	var coupons []models.Coupon
	if err := h.DB.Where("expiry >= ?", time.Now().UTC()).Find(&coupons).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	eligible := make([]models.Coupon, 0, len(coupons))
	for _, coupon := range coupons {
		if coupon.EligibleFor(role) {
			eligible = append(eligible, coupon)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Coupons retrieved successfully",
		"coupons": eligible,
	})
}
