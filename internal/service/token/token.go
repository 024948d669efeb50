package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vn33/ecom-backend/internal/models"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	AccessTTL  = 30 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims are the signed facts carried by both access and refresh tokens:
// subject is the user id, plus role and email.
type Claims struct {
	Role  models.Role `json:"role"`
	Email string      `json:"email"`
	Type  string      `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return uint(id), nil
}

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (t *TokenService) sign(user *models.User, typ string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role:  user.Role,
		Email: user.Email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// IssuePair creates a fresh access+refresh token pair for the user.
func (t *TokenService) IssuePair(user *models.User) (*Pair, error) {
	access, err := t.sign(user, TypeAccess, AccessTTL, t.JWTSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := t.sign(user, TypeRefresh, RefreshTTL, t.RefreshSecret)
	if err != nil {
		return nil, err
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func parse(raw string, typ string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: not a %s token", ErrInvalidToken, typ)
	}
	return &claims, nil
}

// ParseAccess validates signature and expiry of an access token and checks
// its jti against the revocation set.
func (t *TokenService) ParseAccess(raw string) (*Claims, error) {
	claims, err := parse(raw, TypeAccess, t.JWTSecret)
	if err != nil {
		return nil, err
	}
	return t.checkRevoked(claims)
}

func (t *TokenService) ParseRefresh(raw string) (*Claims, error) {
	claims, err := parse(raw, TypeRefresh, t.RefreshSecret)
	if err != nil {
		return nil, err
	}
	return t.checkRevoked(claims)
}

func (t *TokenService) checkRevoked(claims *Claims) (*Claims, error) {
	revoked, err := t.IsRevoked(claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (t *TokenService) IsRevoked(jti string) (bool, error) {
	var count int64
	if err := t.DB.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, fmt.Errorf("revocation lookup: %w", err)
	}
	return count > 0, nil
}

// Revoke records the jti in the revocation set. There is no un-revoke.
func (t *TokenService) Revoke(jti string) error {
	entry := models.RevokedToken{JTI: jti, RevokedAt: time.Now().UTC()}
	if err := t.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
