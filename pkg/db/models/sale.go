package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/pos-backend/pkg/enums"
)

// Sale is an open tab or a settled checkout. Totals are only populated once
// the sale settles.
type Sale struct {
	ID                    uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	TabName               *string              `gorm:"column:tab_name"`
	CustomerID            *uuid.UUID           `gorm:"column:customer_id;type:uuid"`
	Status                enums.SaleStatus     `gorm:"column:status;not null;default:open"`
	PaymentMethod         *enums.PaymentMethod `gorm:"column:payment_method"`
	CouponID              *uuid.UUID           `gorm:"column:coupon_id;type:uuid"`
	ManualDiscountKind    *enums.DiscountKind  `gorm:"column:manual_discount_kind"`
	ManualDiscountCents   *int64               `gorm:"column:manual_discount_cents"`
	ManualDiscountPercent *decimal.Decimal     `gorm:"column:manual_discount_percent;type:numeric(5,2)"`
	SubtotalCents         int64                `gorm:"column:subtotal_cents;not null;default:0"`
	DiscountCents         int64                `gorm:"column:discount_cents;not null;default:0"`
	TotalCents            int64                `gorm:"column:total_cents;not null;default:0"`
	SettledAt             *time.Time           `gorm:"column:settled_at"`
	Items                 []SaleItem           `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// SaleItem snapshots a product line at the moment it was added to the sale.
type SaleItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SaleID         uuid.UUID `gorm:"column:sale_id;type:uuid;not null"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int64     `gorm:"column:line_total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
