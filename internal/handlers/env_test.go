package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vn33/ecom-backend/internal/hash"
	authmw "github.com/vn33/ecom-backend/internal/middleware/auth"
	"github.com/vn33/ecom-backend/internal/models"
	"github.com/vn33/ecom-backend/internal/service/token"
)

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	DB      *gorm.DB
	Tokens  *token.TokenService
	Auth    *AuthHandler
	Product *ProductHandler
	Cart    *CartHandler
	Coupon  *CouponHandler
	Order   *OrderHandler
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RevokedToken{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}

	return &testEnv{
		T:       t,
		E:       echo.New(),
		DB:      db,
		Tokens:  tokens,
		Auth:    &AuthHandler{DB: db, Tokens: tokens},
		Product: &ProductHandler{DB: db},
		Cart:    &CartHandler{DB: db},
		Coupon:  &CouponHandler{DB: db},
		Order:   &OrderHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(method, target string, payload any) (*httptest.ResponseRecorder, echo.Context) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(env.T, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createUser(email string, role models.Role) *models.User {
	pwHash, err := hash.HashPassword("password")
	require.NoError(env.T, err)

	user := models.User{Email: email, PasswordHash: pwHash, Role: role}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return &user
}

// asUser seeds the context the way the auth middleware would after a
// successful token check.
func asUser(c echo.Context, user *models.User) {
	c.Set(authmw.ContextUserID, user.ID)
	c.Set(authmw.ContextRole, user.Role)
	c.Set(authmw.ContextEmail, user.Email)
}
