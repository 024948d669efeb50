package handlers

import (
	"errors"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vn33/ecom-backend/internal/hash"
	authmw "github.com/vn33/ecom-backend/internal/middleware/auth"
	"github.com/vn33/ecom-backend/internal/models"
	"github.com/vn33/ecom-backend/internal/service/token"
)

const minPasswordLength = 6

type AuthHandler struct {
	DB     *gorm.DB
	Tokens *token.TokenService
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func validateRegister(req *registerRequest) map[string]string {
	errs := map[string]string{}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs["email"] = "Not a valid email address."
	}
	if len(req.Password) < minPasswordLength {
		errs["password"] = "Shorter than minimum length 6."
	}
	if !models.Role(req.Role).Valid() {
		errs["role"] = "Must be one of: customer, admin, prime_customer."
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if errs := validateRegister(&req); errs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "Invalid input",
			"errors":  errs,
		})
	}

	var existing models.User
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"message": "Email already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         models.Role(req.Role),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	pair, err := h.Tokens.IssuePair(&user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create tokens")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged in successfully",
		"tokens":  pair,
		"user":    user,
	})
}

// RefreshAccessToken trades a valid refresh token for a new pair. The
// presented refresh token's jti is revoked so it cannot be replayed.
func (h *AuthHandler) RefreshAccessToken(c echo.Context) error {
	raw, err := authmw.BearerToken(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "The token is missing")
	}

	claims, err := h.Tokens.ParseRefresh(raw)
	if err != nil {
		if errors.Is(err, token.ErrTokenRevoked) {
			return echo.NewHTTPError(http.StatusUnauthorized, "The token has been revoked")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "The token is invalid")
	}

	userID, err := claims.UserID()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "The token is invalid")
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "The token is invalid")
	}

	if err := h.Tokens.Revoke(claims.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pair, err := h.Tokens.IssuePair(&user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create tokens")
	}

	return c.JSON(http.StatusOK, pair)
}

// LogOut revokes the presented token, access or refresh. Revocation is
// permanent; there is no un-revoke.
func (h *AuthHandler) LogOut(c echo.Context) error {
	raw, err := authmw.BearerToken(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "The token is missing")
	}

	tokenType := token.TypeAccess
	claims, err := h.Tokens.ParseAccess(raw)
	if err != nil {
		tokenType = token.TypeRefresh
		claims, err = h.Tokens.ParseRefresh(raw)
	}
	if err != nil {
		if errors.Is(err, token.ErrTokenRevoked) {
			return echo.NewHTTPError(http.StatusUnauthorized, "The token has been revoked")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "The token is invalid")
	}

	if err := h.Tokens.Revoke(claims.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": tokenType + " token revoked and Logout successfully",
	})
}

// Protected is a smoke route for the auth middleware: it echoes the role and
// email claims back to the caller.
func (h *AuthHandler) Protected(c echo.Context) error {
	role, _ := authmw.UserRole(c)
	email, _ := authmw.UserEmail(c)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Protected route accessed",
		"role":    role,
		"email":   email,
	})
}
