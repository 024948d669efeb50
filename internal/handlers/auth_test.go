package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/vn33/ecom-backend/internal/models"
	"github.com/vn33/ecom-backend/internal/service/token"
)

func TestRegisterCreatesUser(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
		"role":     "customer",
	})
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, env.DB.Where("email = ?", "alice@example.com").First(&user).Error)
	require.Equal(t, models.RoleCustomer, user.Role)
	require.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice@example.com", models.RoleCustomer)

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
		"role":     "customer",
	})
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusConflict, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		payload map[string]string
		field   string
	}{
		{"bad email", map[string]string{"email": "not-an-email", "password": "secret123", "role": "customer"}, "email"},
		{"short password", map[string]string{"email": "bob@example.com", "password": "abc", "role": "customer"}, "password"},
		{"unknown role", map[string]string{"email": "bob@example.com", "password": "secret123", "role": "superuser"}, "role"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, c := env.doJSONRequest(http.MethodPost, "/auth/register", tc.payload)
			require.NoError(t, env.Auth.Register(c))
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body struct {
				Errors map[string]string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Contains(t, body.Errors, tc.field)
		})
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RolePrimeCustomer)

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tokens token.Pair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	claims, err := env.Tokens.ParseAccess(body.Tokens.AccessToken)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, user.ID, id)
	require.Equal(t, models.RolePrimeCustomer, claims.Role)

	refreshClaims, err := env.Tokens.ParseRefresh(body.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice@example.com", models.RoleCustomer)

	_, c := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	err := env.Auth.Login(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestLogoutRevokesPermanently(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)

	pair, err := env.Tokens.IssuePair(user)
	require.NoError(t, err)

	rec, c := env.doJSONRequest(http.MethodGet, "/auth/logout", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+pair.AccessToken)
	require.NoError(t, env.Auth.LogOut(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = env.Tokens.ParseAccess(pair.AccessToken)
	require.ErrorIs(t, err, token.ErrTokenRevoked)

	// a second logout with the same token is rejected
	_, c = env.doJSONRequest(http.MethodGet, "/auth/logout", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+pair.AccessToken)
	err = env.Auth.LogOut(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleCustomer)

	pair, err := env.Tokens.IssuePair(user)
	require.NoError(t, err)

	rec, c := env.doJSONRequest(http.MethodGet, "/auth/refresh_access_token", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+pair.RefreshToken)
	require.NoError(t, env.Auth.RefreshAccessToken(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh token.Pair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))
	_, err = env.Tokens.ParseAccess(fresh.AccessToken)
	require.NoError(t, err)

	// the presented refresh token cannot be replayed
	_, err = env.Tokens.ParseRefresh(pair.RefreshToken)
	require.ErrorIs(t, err, token.ErrTokenRevoked)
}

func TestProtectedEchoesClaims(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice@example.com", models.RoleAdmin)

	rec, c := env.doJSONRequest(http.MethodGet, "/auth/protected", nil)
	asUser(c, user)
	require.NoError(t, env.Auth.Protected(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Role  models.Role `json:"role"`
		Email string      `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, models.RoleAdmin, body.Role)
	require.Equal(t, "alice@example.com", body.Email)
}
