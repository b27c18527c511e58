package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaflow/pos-backend/pkg/enums"
)

// StockMovement is an immutable audit entry for every stock level change.
type StockMovement struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID               `gorm:"column:product_id;type:uuid;not null"`
	SaleID        *uuid.UUID              `gorm:"column:sale_id;type:uuid"`
	Type          enums.StockMovementType `gorm:"column:type;not null"`
	Quantity      int                     `gorm:"column:quantity;not null"`
	PreviousStock int                     `gorm:"column:previous_stock;not null"`
	NewStock      int                     `gorm:"column:new_stock;not null"`
	Reason        *string                 `gorm:"column:reason"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
}
