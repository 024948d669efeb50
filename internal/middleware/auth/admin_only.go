package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vn33/ecom-backend/internal/service/token"
)

// RequireAdmin is RequireAuth plus an admin capability check.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *token.Claims) error {
		if !claims.Role.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}
