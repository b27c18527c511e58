package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/pos-backend/pkg/enums"
)

// Coupon is a single-use discount voucher. Loyalty rewards are coupons bound
// to the customer who earned them.
type Coupon struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code        string             `gorm:"column:code;not null;uniqueIndex:idx_coupons_code"`
	Kind        enums.DiscountKind `gorm:"column:kind;not null"`
	AmountCents *int64             `gorm:"column:amount_cents"`
	Percent     *decimal.Decimal   `gorm:"column:percent;type:numeric(5,2)"`
	CustomerID  *uuid.UUID         `gorm:"column:customer_id;type:uuid"`
	IsLoyalty   bool               `gorm:"column:is_loyalty;not null;default:false"`
	IsActive    bool               `gorm:"column:is_active;not null;default:true"`
	IsUsed      bool               `gorm:"column:is_used;not null;default:false"`
	UsedAt      *time.Time         `gorm:"column:used_at"`
	UsedSaleID  *uuid.UUID         `gorm:"column:used_sale_id;type:uuid"`
	ExpiresAt   *time.Time         `gorm:"column:expires_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the coupon has an expiry in the past.
func (c Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// IsRedeemable reports whether the coupon can still be applied to a sale.
func (c Coupon) IsRedeemable(now time.Time) bool {
	return c.IsActive && !c.IsUsed && !c.IsExpired(now)
}
