package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vn33/ecom-backend/internal/service/token"
)

type AuthMiddleware struct {
	Tokens *token.TokenService
}

func NewAuthMiddleware(tokens *token.TokenService) *AuthMiddleware {
	return &AuthMiddleware{Tokens: tokens}
}

type ValidatorFunc func(claims *token.Claims) error

// RequireAuth admits requests carrying a valid, unexpired, unrevoked access
// token and stores the user id, role and email in the echo context.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AuthMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := BearerToken(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "The token is missing")
		}

		claims, err := m.Tokens.ParseAccess(raw)
		if err != nil {
			if errors.Is(err, token.ErrTokenRevoked) {
				return echo.NewHTTPError(http.StatusUnauthorized, "The token has been revoked")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "The token is invalid")
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}

		if err := setUserContext(c, claims); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "The token is invalid")
		}
		return next(c)
	}
}
