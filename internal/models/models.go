package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer      Role = "customer"
	RoleAdmin         Role = "admin"
	RolePrimeCustomer Role = "prime_customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RolePrimeCustomer:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         Role   `gorm:"not null"                 json:"role"`
}

// RevokedToken is the revocation set: a token whose jti is present here is
// rejected regardless of signature validity. Entries are never removed.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null" json:"jti"`
	RevokedAt time.Time `gorm:"not null"             json:"revoked_at"`
}

type ProductVariant struct {
	SKU   string          `json:"sku"`
	Stock int             `json:"stock"`
	Price decimal.Decimal `json:"price"`
}

type Product struct {
	ID          uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string           `gorm:"not null;index"           json:"name"`
	Description string           `json:"description"`
	Category    string           `gorm:"not null;index"           json:"category"`
	Variants    []ProductVariant `gorm:"serializer:json"          json:"variants"`
	Images      []string         `gorm:"serializer:json"          json:"images"`
}

// FirstVariantPrice returns the price of the first variant, used as the
// default snapshot price when a cart item is added without an explicit price.
func (p *Product) FirstVariantPrice() (decimal.Decimal, bool) {
	if len(p.Variants) == 0 {
		return decimal.Zero, false
	}
	return p.Variants[0].Price, true
}

type CartItem struct {
	ID        uint            `gorm:"primaryKey"         json:"id"`
	CartID    uint            `gorm:"index;not null"     json:"-"`
	ProductID uint            `gorm:"not null"           json:"product_id"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
}

// Cart holds one user's line items. The price on each item is a snapshot
// taken at add time and is never re-resolved from the catalog.
type Cart struct {
	ID     uint       `gorm:"primaryKey"                  json:"id"`
	UserID uint       `gorm:"uniqueIndex;not null"        json:"user_id"`
	Items  []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

type Coupon struct {
	ID              uint      `gorm:"primaryKey"           json:"id"`
	Code            string    `gorm:"uniqueIndex;not null" json:"code"`
	DiscountPercent int       `gorm:"not null"             json:"discount_percent"`
	Expiry          time.Time `gorm:"not null"             json:"expiry"`
	EligibleRoles   []Role    `gorm:"serializer:json"      json:"eligible_roles"`
}

// EligibleFor reports whether the given role may use this coupon. An empty
// eligible_roles list means the coupon is open to every role.
func (c *Coupon) EligibleFor(role Role) bool {
	if len(c.EligibleRoles) == 0 {
		return true
	}
	for _, r := range c.EligibleRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Expired compares the coupon expiry against now, both normalized to UTC.
func (c *Coupon) Expired(now time.Time) bool {
	return c.Expiry.UTC().Before(now.UTC())
}

const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
)

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"         json:"id"`
	OrderID   uint            `gorm:"index;not null"     json:"-"`
	ProductID uint            `gorm:"not null"           json:"product_id"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey"                  json:"id"`
	UserID          uint            `gorm:"index;not null"              json:"user_id"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2)"          json:"total_amount"`
	DiscountApplied decimal.Decimal `gorm:"type:numeric(12,2)"          json:"discount_applied"`
	FinalAmount     decimal.Decimal `gorm:"type:numeric(12,2)"          json:"final_amount"`
	Status          string          `gorm:"not null"                    json:"status"`
	CreatedAt       time.Time       `gorm:"not null"                    json:"created_at"`
}
