package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/vn33/ecom-backend/internal/handlers"
	"github.com/vn33/ecom-backend/internal/metrics"
	authmw "github.com/vn33/ecom-backend/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *handlers.CartHandler
	CouponHandler  *handlers.CouponHandler
	OrderHandler   *handlers.OrderHandler
	SearchHandler  *handlers.SearchHandler
	AuthMW         *authmw.AuthMiddleware
	ServiceName    string

	// DisableRateLimits is set by tests that drive handlers through the
	// full router.
	DisableRateLimits bool
}

// perMinute builds an in-memory rate limiter middleware with the given
// requests-per-minute ceiling, answering 429 on breach.
func perMinute(d *Deps, n float64) echo.MiddlewareFunc {
	if d.DisableRateLimits {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(n / 60.0),
		Burst:     int(n),
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"message": "Rate limit exceeded. Please try again later.",
				"error":   "Too Many Requests",
			})
		},
	})
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", metrics.Handler())

	auth := e.Group("/auth", perMinute(d, 5))
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/refresh_access_token", d.AuthHandler.RefreshAccessToken)
	auth.GET("/logout", d.AuthHandler.LogOut)
	auth.GET("/protected", d.AuthHandler.Protected, d.AuthMW.RequireAuth)

	products := e.Group("/products")
	products.GET("/all_products", d.ProductHandler.GetProducts, perMinute(d, 5))
	products.GET("/search", d.SearchHandler.Search, perMinute(d, 10))
	products.GET("/:id", d.ProductHandler.GetProduct, perMinute(d, 10))
	products.POST("/create_product", d.ProductHandler.CreateProduct, perMinute(d, 3), d.AuthMW.RequireAdmin)
	products.PUT("/update_product/:id", d.ProductHandler.UpdateProduct, perMinute(d, 3), d.AuthMW.RequireAdmin)
	products.DELETE("/delete_product/:id", d.ProductHandler.DeleteProduct, perMinute(d, 2), d.AuthMW.RequireAdmin)

	cart := e.Group("/cart", perMinute(d, 5), d.AuthMW.RequireAuth)
	cart.GET("/details", d.CartHandler.GetCart)
	cart.POST("/add_item", d.CartHandler.AddItem)
	cart.POST("/update_item_quantity", d.CartHandler.UpdateItemQuantity)
	cart.POST("/remove_item", d.CartHandler.RemoveItem)

	coupons := e.Group("/coupons", perMinute(d, 5))
	coupons.GET("/all", d.CouponHandler.GetAllCoupons, d.AuthMW.RequireAdmin)
	coupons.POST("/create", d.CouponHandler.CreateCoupon, d.AuthMW.RequireAdmin)
	coupons.PUT("/update/:code", d.CouponHandler.UpdateCoupon, d.AuthMW.RequireAdmin)
	coupons.DELETE("/delete/:code", d.CouponHandler.DeleteCoupon, d.AuthMW.RequireAdmin)
	coupons.GET("/my_coupons", d.CouponHandler.GetMyCoupons, d.AuthMW.RequireAuth)

	orders := e.Group("/orders", perMinute(d, 5), d.AuthMW.RequireAuth)
	orders.POST("/create", d.OrderHandler.CreateOrder)
	orders.GET("/:id", d.OrderHandler.TrackOrder)
}
