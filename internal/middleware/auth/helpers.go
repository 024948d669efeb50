package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vn33/ecom-backend/internal/models"
	"github.com/vn33/ecom-backend/internal/service/token"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextEmail  = "email"
	ContextJTI    = "jti"
)

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	if raw == "" {
		return "", errors.New("empty bearer token")
	}
	return raw, nil
}

func setUserContext(c echo.Context, claims *token.Claims) error {
	id, err := claims.UserID()
	if err != nil {
		return err
	}
	c.Set(ContextUserID, id)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextJTI, claims.ID)
	return nil
}

func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ContextUserID).(uint)
	return id, ok
}

func UserRole(c echo.Context) (models.Role, bool) {
	role, ok := c.Get(ContextRole).(models.Role)
	return role, ok
}

func UserEmail(c echo.Context) (string, bool) {
	email, ok := c.Get(ContextEmail).(string)
	return email, ok
}
