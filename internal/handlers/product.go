package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vn33/ecom-backend/internal/models"
	"github.com/vn33/ecom-backend/internal/mykafka"
	"github.com/vn33/ecom-backend/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	publish(c, h.Producer, "product_events", fmt.Sprint(event["product_id"]), event)
}

type productPayload struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Category    *string                 `json:"category"`
	Variants    []models.ProductVariant `json:"variants"`
	Images      []string                `json:"images"`
}

func validateVariants(variants []models.ProductVariant) map[string]string {
	for _, v := range variants {
		if v.SKU == "" {
			return map[string]string{"variants": "sku is required"}
		}
		if v.Stock < 0 {
			return map[string]string{"variants": "stock must be >= 0"}
		}
		if v.Price.IsNegative() {
			return map[string]string{"variants": "price must be >= 0"}
		}
	}
	return nil
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	perPage := parseIntDefault(c.QueryParam("per_page"), util.DefaultPageSize)

	offset, limit := util.Calculate(page, perPage)

	var total int64
	if err := h.DB.Model(&models.Product{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var products []models.Product
	if err := h.DB.Order("id ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"page":        page,
		"per_page":    limit,
		"total":       total,
		"total_pages": util.TotalPages(total, limit),
		"products":    products,
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	errs := map[string]string{}
	if req.Name == nil || *req.Name == "" {
		errs["name"] = "Missing data for required field."
	}
	if req.Category == nil || *req.Category == "" {
		errs["category"] = "Missing data for required field."
	}
	if verrs := validateVariants(req.Variants); verrs != nil {
		for k, v := range verrs {
			errs[k] = v
		}
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input", "errors": errs})
	}

	product := models.Product{
		Name:     *req.Name,
		Category: *req.Category,
		Variants: req.Variants,
		Images:   req.Images,
	}
	if req.Description != nil {
		product.Description = *req.Description
	}

	if err := h.DB.Create(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req productPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if verrs := validateVariants(req.Variants); verrs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input", "errors": verrs})
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// partial update, only fields present in the payload
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Variants != nil {
		product.Variants = req.Variants
	}
	if req.Images != nil {
		product.Images = req.Images
	}

	if err := h.DB.Save(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":       "product_deleted",
		"product_id": product.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
