package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/pos-backend/pkg/config"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
	"github.com/vendaflow/pos-backend/pkg/money"
)

var maxPercent = decimal.NewFromInt(100)

// LineItem is a single cart line before aggregation.
type LineItem struct {
	ProductID      uuid.UUID
	ProductName    string
	Quantity       int
	UnitPriceCents int64
	// LineTotalCents is the persisted line subtotal. When set it is
	// authoritative over quantity times unit price, so weighed items with an
	// operator-entered price keep the total that was rung up. Zero means
	// derive it.
	LineTotalCents int64
}

// Discount describes one discount to apply against a sale subtotal.
type Discount struct {
	Kind        enums.DiscountKind
	AmountCents int64
	Percent     decimal.Decimal
	Label       string
}

// Totals is the settled money breakdown for a sale.
type Totals struct {
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
}

// Engine aggregates cart lines and resolves discounts into final totals.
type Engine struct {
	allowStacking bool
	clampPercent  bool
}

func NewEngine(cfg config.PricingConfig) *Engine {
	return &Engine{
		allowStacking: cfg.AllowStacking,
		clampPercent:  cfg.ClampPercent,
	}
}

// Aggregate merges duplicate product lines, summing quantities and line
// totals. Order of first appearance is preserved so receipts stay stable.
func (e *Engine) Aggregate(items []LineItem) ([]LineItem, error) {
	merged := make([]LineItem, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be positive for product %q", item.ProductName))
		}
		if item.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unit price cannot be negative for product %q", item.ProductName))
		}
		if item.LineTotalCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line total cannot be negative for product %q", item.ProductName))
		}
		if item.LineTotalCents == 0 {
			item.LineTotalCents = int64(item.Quantity) * item.UnitPriceCents
		}

		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity += item.Quantity
			merged[pos].LineTotalCents += item.LineTotalCents
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	return merged, nil
}

// Compute aggregates the cart and resolves the discounts into totals.
// Percentage discounts apply to the full subtotal; fixed discounts apply at
// face value and are never reduced to fit the subtotal. The recorded
// discount is the raw sum; only the final total is floored at zero.
func (e *Engine) Compute(items []LineItem, discounts []Discount) ([]LineItem, Totals, error) {
	merged, err := e.Aggregate(items)
	if err != nil {
		return nil, Totals{}, err
	}
	if len(merged) == 0 {
		return nil, Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "sale has no items")
	}

	var subtotal int64
	for _, item := range merged {
		subtotal += item.LineTotalCents
	}

	applicable := discounts
	if !e.allowStacking && len(discounts) > 1 {
		applicable = discounts[:1]
	}

	var discountTotal int64
	for _, discount := range applicable {
		amount, err := e.resolve(subtotal, discount)
		if err != nil {
			return nil, Totals{}, err
		}
		discountTotal += amount
	}

	totals := Totals{
		SubtotalCents: subtotal,
		DiscountCents: discountTotal,
		TotalCents:    money.ClampNonNegative(subtotal - discountTotal),
	}
	return merged, totals, nil
}

// Amount resolves one discount against a subtotal. Callers wanting the final
// combined breakdown should still go through Compute, which owns the
// stacking rule.
func (e *Engine) Amount(subtotalCents int64, discount Discount) (int64, error) {
	return e.resolve(subtotalCents, discount)
}

func (e *Engine) resolve(subtotalCents int64, discount Discount) (int64, error) {
	switch discount.Kind {
	case enums.DiscountKindFixed:
		if discount.AmountCents < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "fixed discount cannot be negative")
		}
		return discount.AmountCents, nil

	case enums.DiscountKindPercent:
		percent := discount.Percent
		if percent.IsNegative() {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "percent discount cannot be negative")
		}
		if percent.GreaterThan(maxPercent) {
			if !e.clampPercent {
				return 0, pkgerrors.New(pkgerrors.CodeValidation, "percent discount cannot exceed 100")
			}
			percent = maxPercent
		}
		return money.PercentOf(subtotalCents, percent), nil

	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown discount kind %q", discount.Kind))
	}
}
