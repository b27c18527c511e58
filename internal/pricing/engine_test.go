package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/pos-backend/pkg/config"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
)

func defaultEngine() *Engine {
	return NewEngine(config.PricingConfig{AllowStacking: true, ClampPercent: true})
}

func TestCompute_FixedDiscount(t *testing.T) {
	engine := defaultEngine()
	items := []LineItem{
		{ProductID: uuid.New(), ProductName: "Coffee", Quantity: 2, UnitPriceCents: 1000},
	}
	discounts := []Discount{
		{Kind: enums.DiscountKindFixed, AmountCents: 500},
	}

	_, totals, err := engine.Compute(items, discounts)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if totals.SubtotalCents != 2000 {
		t.Fatalf("subtotal = %d, want 2000", totals.SubtotalCents)
	}
	if totals.DiscountCents != 500 {
		t.Fatalf("discount = %d, want 500", totals.DiscountCents)
	}
	if totals.TotalCents != 1500 {
		t.Fatalf("total = %d, want 1500", totals.TotalCents)
	}
}

func TestCompute_PercentDiscount(t *testing.T) {
	engine := defaultEngine()
	items := []LineItem{
		{ProductID: uuid.New(), Quantity: 1, UnitPriceCents: 3550},
	}
	discounts := []Discount{
		{Kind: enums.DiscountKindPercent, Percent: decimal.NewFromInt(10)},
	}

	_, totals, err := engine.Compute(items, discounts)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	// 10% of 35.50 is 3.55
	if totals.DiscountCents != 355 {
		t.Fatalf("discount = %d, want 355", totals.DiscountCents)
	}
	if totals.TotalCents != 3195 {
		t.Fatalf("total = %d, want 3195", totals.TotalCents)
	}
}

func TestCompute_FixedDiscountExceedsSubtotal(t *testing.T) {
	engine := defaultEngine()
	items := []LineItem{
		{ProductID: uuid.New(), Quantity: 2, UnitPriceCents: 1000},
	}
	discounts := []Discount{
		{Kind: enums.DiscountKindFixed, AmountCents: 3000},
	}

	_, totals, err := engine.Compute(items, discounts)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	// The fixed amount is recorded at face value; only the total is floored.
	if totals.DiscountCents != 3000 {
		t.Fatalf("discount = %d, want 3000", totals.DiscountCents)
	}
	if totals.TotalCents != 0 {
		t.Fatalf("total = %d, want 0", totals.TotalCents)
	}
}

func TestCompute_PrefersPersistedLineTotals(t *testing.T) {
	engine := defaultEngine()
	weighed := uuid.New()
	items := []LineItem{
		// A weighed item rung up at 12.34 regardless of its per-kilo price.
		{ProductID: weighed, ProductName: "Queijo", Quantity: 1, UnitPriceCents: 4000, LineTotalCents: 1234},
		{ProductID: uuid.New(), ProductName: "Pao", Quantity: 2, UnitPriceCents: 500},
	}

	merged, totals, err := engine.Compute(items, nil)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if totals.SubtotalCents != 2234 {
		t.Fatalf("subtotal = %d, want 2234", totals.SubtotalCents)
	}
	if merged[0].LineTotalCents != 1234 {
		t.Fatalf("persisted line total not preserved: %+v", merged[0])
	}
}

func TestAggregate_SumsLineTotalsOnMerge(t *testing.T) {
	engine := defaultEngine()
	productID := uuid.New()
	items := []LineItem{
		{ProductID: productID, ProductName: "Queijo", Quantity: 1, UnitPriceCents: 4000, LineTotalCents: 1200},
		{ProductID: productID, ProductName: "Queijo", Quantity: 1, UnitPriceCents: 4000, LineTotalCents: 800},
	}

	merged, err := engine.Aggregate(items)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(merged))
	}
	if merged[0].Quantity != 2 || merged[0].LineTotalCents != 2000 {
		t.Fatalf("unexpected merged line: %+v", merged[0])
	}
}

func TestCompute_StackedDiscounts(t *testing.T) {
	engine := defaultEngine()
	items := []LineItem{
		{ProductID: uuid.New(), Quantity: 1, UnitPriceCents: 10000},
	}
	discounts := []Discount{
		{Kind: enums.DiscountKindPercent, Percent: decimal.NewFromInt(10)},
		{Kind: enums.DiscountKindFixed, AmountCents: 500},
	}

	_, totals, err := engine.Compute(items, discounts)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if totals.DiscountCents != 1500 {
		t.Fatalf("discount = %d, want 1500", totals.DiscountCents)
	}
	if totals.TotalCents != 8500 {
		t.Fatalf("total = %d, want 8500", totals.TotalCents)
	}
}

func TestCompute_StackingDisabledUsesFirstDiscount(t *testing.T) {
	engine := NewEngine(config.PricingConfig{AllowStacking: false, ClampPercent: true})
	items := []LineItem{
		{ProductID: uuid.New(), Quantity: 1, UnitPriceCents: 10000},
	}
	discounts := []Discount{
		{Kind: enums.DiscountKindFixed, AmountCents: 500},
		{Kind: enums.DiscountKindPercent, Percent: decimal.NewFromInt(50)},
	}

	_, totals, err := engine.Compute(items, discounts)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if totals.DiscountCents != 500 {
		t.Fatalf("discount = %d, want 500 (first discount only)", totals.DiscountCents)
	}
}

func TestCompute_PercentOver100(t *testing.T) {
	items := []LineItem{
		{ProductID: uuid.New(), Quantity: 1, UnitPriceCents: 4200},
	}
	discounts := []Discount{
		{Kind: enums.DiscountKindPercent, Percent: decimal.NewFromInt(150)},
	}

	clamping := defaultEngine()
	_, totals, err := clamping.Compute(items, discounts)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if totals.TotalCents != 0 {
		t.Fatalf("total = %d, want 0 after clamping to 100%%", totals.TotalCents)
	}

	strict := NewEngine(config.PricingConfig{AllowStacking: true, ClampPercent: false})
	if _, _, err := strict.Compute(items, discounts); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without clamping, got %v", err)
	}
}

func TestAggregate_MergesDuplicateProducts(t *testing.T) {
	engine := defaultEngine()
	productID := uuid.New()
	items := []LineItem{
		{ProductID: productID, ProductName: "Soda", Quantity: 1, UnitPriceCents: 450},
		{ProductID: uuid.New(), ProductName: "Chips", Quantity: 1, UnitPriceCents: 700},
		{ProductID: productID, ProductName: "Soda", Quantity: 2, UnitPriceCents: 450},
	}

	merged, err := engine.Aggregate(items)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if len(merged) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(merged))
	}
	if merged[0].ProductName != "Soda" || merged[0].Quantity != 3 {
		t.Fatalf("unexpected first line: %+v", merged[0])
	}
}

func TestCompute_RejectsInvalidLines(t *testing.T) {
	engine := defaultEngine()

	cases := []struct {
		name  string
		items []LineItem
	}{
		{"empty cart", nil},
		{"zero quantity", []LineItem{{ProductID: uuid.New(), Quantity: 0, UnitPriceCents: 100}}},
		{"negative price", []LineItem{{ProductID: uuid.New(), Quantity: 1, UnitPriceCents: -1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := engine.Compute(tc.items, nil)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
