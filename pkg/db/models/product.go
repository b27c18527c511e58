package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a sellable catalog item with live stock counters.
type Product struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	SKU        *string   `gorm:"column:sku"`
	Barcode    *string   `gorm:"column:barcode"`
	Category   *string   `gorm:"column:category"`
	PriceCents int64     `gorm:"column:price_cents;not null"`
	CostCents  int64     `gorm:"column:cost_cents;not null;default:0"`
	// ControlsStock marks whether the inventory count is tracked. Items sold
	// by weight carry no meaningful count and skip stock reconciliation.
	ControlsStock bool      `gorm:"column:controls_stock;not null;default:true"`
	CurrentStock  int       `gorm:"column:current_stock;not null;default:0"`
	MinStock      int       `gorm:"column:min_stock;not null;default:0"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLowStock reports whether the product sits at or below its minimum level.
func (p Product) IsLowStock() bool {
	return p.MinStock > 0 && p.CurrentStock <= p.MinStock
}
