package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaflow/pos-backend/pkg/enums"
)

// FinancialTransaction records money in or out of the business. Settled sales
// write an income row automatically; expenses are entered by hand.
type FinancialTransaction struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Type        enums.TransactionType `gorm:"column:type;not null"`
	Description string                `gorm:"column:description;not null"`
	Category    *string               `gorm:"column:category"`
	AmountCents int64                 `gorm:"column:amount_cents;not null"`
	SaleID      *uuid.UUID            `gorm:"column:sale_id;type:uuid"`
	OccurredAt  time.Time             `gorm:"column:occurred_at;not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
