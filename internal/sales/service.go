package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/internal/coupons"
	"github.com/vendaflow/pos-backend/internal/finance"
	"github.com/vendaflow/pos-backend/internal/notifications"
	"github.com/vendaflow/pos-backend/internal/pricing"
	"github.com/vendaflow/pos-backend/internal/products"
	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
	"github.com/vendaflow/pos-backend/pkg/logger"
	"github.com/vendaflow/pos-backend/pkg/metrics"
	"github.com/vendaflow/pos-backend/pkg/money"
	"github.com/vendaflow/pos-backend/pkg/pagination"
)

// Service manages open tabs and runs checkout settlement.
type Service interface {
	Open(ctx context.Context, params OpenParams) (*models.Sale, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	AddItem(ctx context.Context, params AddItemParams) (*models.Sale, error)
	UpdateItemQuantity(ctx context.Context, saleID, itemID uuid.UUID, quantity int) (*models.Sale, error)
	RemoveItem(ctx context.Context, saleID, itemID uuid.UUID) (*models.Sale, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Preview(ctx context.Context, params PreviewParams) (*PreviewResult, error)
	Settle(ctx context.Context, params SettleParams) (*models.Sale, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Deps bundles the collaborators settlement needs.
type Deps struct {
	Repo          Repository
	Products      products.Repository
	Coupons       coupons.Service
	CouponRepo    coupons.Repository
	Finance       finance.Repository
	Notifications notifications.Service
	Tx            txRunner
	Engine        *pricing.Engine
	Loyalty       *coupons.LoyaltyPolicy
	Metrics       *metrics.SettlementMetrics
	Logger        *logger.Logger
}

type service struct {
	deps Deps
}

// saleLedgerCategory is the ledger category every settlement income row
// carries, so finance summaries can separate sales from other income.
const saleLedgerCategory = "Vendas"

// OpenParams starts a new tab, optionally pre-loaded with cart lines.
type OpenParams struct {
	TabName    *string
	CustomerID *uuid.UUID
	Items      []CartLine
}

// CartLine references a product and the quantity to add. UnitPriceCents
// overrides the catalog price when set, which is how weighed items get the
// price that was actually rung up.
type CartLine struct {
	ProductID      uuid.UUID
	Quantity       int
	UnitPriceCents *int64
}

// AddItemParams adds one cart line to an open sale.
type AddItemParams struct {
	SaleID         uuid.UUID
	ProductID      uuid.UUID
	Quantity       int
	UnitPriceCents *int64
}

// ListParams configures sale pagination.
type ListParams struct {
	Limit      int
	Cursor     string
	Status     enums.SaleStatus
	CustomerID uuid.UUID
}

// ListResult wraps a sale page and the cursor for the next one.
type ListResult struct {
	Items  []models.Sale `json:"items"`
	Cursor string        `json:"cursor"`
}

// ManualDiscount is an operator-entered discount applied at the register,
// independent of any coupon.
type ManualDiscount struct {
	Kind        enums.DiscountKind
	AmountCents *int64
	Percent     *decimal.Decimal
}

func (m ManualDiscount) toDiscount() (pricing.Discount, error) {
	switch m.Kind {
	case enums.DiscountKindFixed:
		if m.AmountCents == nil || *m.AmountCents <= 0 {
			return pricing.Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "manual fixed discount requires a positive amount")
		}
		return pricing.Discount{Kind: m.Kind, AmountCents: *m.AmountCents, Label: "manual"}, nil
	case enums.DiscountKindPercent:
		if m.Percent == nil || !m.Percent.IsPositive() {
			return pricing.Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "manual percent discount requires a positive percent")
		}
		return pricing.Discount{Kind: m.Kind, Percent: *m.Percent, Label: "manual"}, nil
	default:
		return pricing.Discount{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown discount kind %q", m.Kind))
	}
}

// PreviewParams computes totals for an open sale without touching state.
type PreviewParams struct {
	SaleID     uuid.UUID
	CouponCode *string
	Manual     *ManualDiscount
}

// PreviewResult is the would-be settlement breakdown.
type PreviewResult struct {
	SaleID              uuid.UUID      `json:"sale_id"`
	SubtotalCents       int64          `json:"subtotal_cents"`
	DiscountCents       int64          `json:"discount_cents"`
	CouponDiscountCents int64          `json:"coupon_discount_cents"`
	ManualDiscountCents int64          `json:"manual_discount_cents"`
	TotalCents          int64          `json:"total_cents"`
	CouponCode          *string        `json:"coupon_code,omitempty"`
	Formatted           string         `json:"formatted_total"`
	Totals              pricing.Totals `json:"-"`
}

// SettleParams completes an open sale.
type SettleParams struct {
	SaleID        uuid.UUID
	PaymentMethod enums.PaymentMethod
	CouponCode    *string
	Manual        *ManualDiscount
}

// NewService wires sales dependencies.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sales repository required")
	case deps.Products == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	case deps.Coupons == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "coupons service required")
	case deps.CouponRepo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "coupons repository required")
	case deps.Finance == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "finance repository required")
	case deps.Notifications == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	case deps.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case deps.Engine == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pricing engine required")
	case deps.Loyalty == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "loyalty policy required")
	case deps.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{deps: deps}, nil
}

func (s *service) Open(ctx context.Context, params OpenParams) (*models.Sale, error) {
	sale := &models.Sale{
		TabName:    params.TabName,
		CustomerID: params.CustomerID,
		Status:     enums.SaleStatusOpen,
	}

	for _, line := range params.Items {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if line.UnitPriceCents != nil && *line.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		product, err := s.loadProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		sale.Items = mergeLine(sale.Items, product, line.Quantity, line.UnitPriceCents)
	}

	if err := s.deps.Repo.Create(ctx, sale); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open sale")
	}

	ctx = s.deps.Logger.WithSaleID(ctx, sale.ID.String())
	s.deps.Logger.Info(ctx, "sale opened")
	return sale, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	sale, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listSalesParams{
		Limit:      params.Limit,
		Status:     params.Status,
		CustomerID: params.CustomerID,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.deps.Repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) AddItem(ctx context.Context, params AddItemParams) (*models.Sale, error) {
	if params.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	if params.UnitPriceCents != nil && *params.UnitPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	sale, err := s.openSale(ctx, params.SaleID)
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}

	price := product.PriceCents
	if params.UnitPriceCents != nil {
		price = *params.UnitPriceCents
	}

	// Adding the same product again grows the existing line instead of
	// duplicating it.
	for i := range sale.Items {
		if sale.Items[i].ProductID == product.ID {
			sale.Items[i].Quantity += params.Quantity
			if params.UnitPriceCents != nil {
				sale.Items[i].UnitPriceCents = price
			}
			sale.Items[i].LineTotalCents = int64(sale.Items[i].Quantity) * sale.Items[i].UnitPriceCents
			if err := s.deps.Repo.UpdateItem(ctx, &sale.Items[i]); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale item")
			}
			return sale, nil
		}
	}

	item := models.SaleItem{
		SaleID:         sale.ID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		Quantity:       params.Quantity,
		UnitPriceCents: price,
		LineTotalCents: int64(params.Quantity) * price,
	}
	if err := s.deps.Repo.AddItem(ctx, &item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add sale item")
	}
	sale.Items = append(sale.Items, item)
	return sale, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, saleID, itemID uuid.UUID, quantity int) (*models.Sale, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	sale, err := s.openSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	for i := range sale.Items {
		if sale.Items[i].ID != itemID {
			continue
		}
		sale.Items[i].Quantity = quantity
		sale.Items[i].LineTotalCents = int64(quantity) * sale.Items[i].UnitPriceCents
		if err := s.deps.Repo.UpdateItem(ctx, &sale.Items[i]); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale item")
		}
		return sale, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale item not found")
}

func (s *service) RemoveItem(ctx context.Context, saleID, itemID uuid.UUID) (*models.Sale, error) {
	sale, err := s.openSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	removed, err := s.deps.Repo.RemoveItem(ctx, sale.ID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove sale item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale item not found")
	}

	kept := sale.Items[:0]
	for _, item := range sale.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	sale.Items = kept
	return sale, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sale.Status.CanSettle() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("sale is %s", sale.Status))
	}

	sale.Status = enums.SaleStatusCancelled
	if err := s.deps.Repo.Update(ctx, sale); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel sale")
	}

	ctx = s.deps.Logger.WithSaleID(ctx, sale.ID.String())
	s.deps.Logger.Info(ctx, "sale cancelled")
	return sale, nil
}

// Delete removes an open sale and its lines. Settled sales are immutable and
// cancelled ones are kept for the record.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	sale, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sale.Status != enums.SaleStatusOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("sale is %s", sale.Status))
	}

	deleted, err := s.deps.Repo.Delete(ctx, sale.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sale")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}

	ctx = s.deps.Logger.WithSaleID(ctx, sale.ID.String())
	s.deps.Logger.Info(ctx, "sale deleted")
	return nil
}

// Preview computes the settlement breakdown for an open sale without
// consuming the coupon or touching stock.
func (s *service) Preview(ctx context.Context, params PreviewParams) (*PreviewResult, error) {
	sale, err := s.openSale(ctx, params.SaleID)
	if err != nil {
		return nil, err
	}

	discounts, coupon, err := s.resolveDiscounts(ctx, sale, params.CouponCode, params.Manual)
	if err != nil {
		return nil, err
	}

	_, totals, err := s.deps.Engine.Compute(cartLines(sale), discounts)
	if err != nil {
		return nil, err
	}

	// Breakdown for display: coupon amount resolved alone, manual derived
	// from the combined figure so the stacking rule stays authoritative.
	var couponCents int64
	if coupon != nil {
		couponCents, err = s.deps.Engine.Amount(totals.SubtotalCents, discounts[0])
		if err != nil {
			return nil, err
		}
	}

	return &PreviewResult{
		SaleID:              sale.ID,
		SubtotalCents:       totals.SubtotalCents,
		DiscountCents:       totals.DiscountCents,
		CouponDiscountCents: couponCents,
		ManualDiscountCents: totals.DiscountCents - couponCents,
		TotalCents:          totals.TotalCents,
		CouponCode:          params.CouponCode,
		Formatted:           money.Format(totals.TotalCents),
		Totals:              totals,
	}, nil
}

// Settle completes an open sale in one transaction: totals are computed, the
// coupon is consumed, every line's stock is decremented with an audit
// movement, and an income row lands in the ledger. Any failure rolls the
// whole settlement back.
func (s *service) Settle(ctx context.Context, params SettleParams) (*models.Sale, error) {
	started := time.Now()

	if !params.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	sale, err := s.openSale(ctx, params.SaleID)
	if err != nil {
		return nil, err
	}
	ctx = s.deps.Logger.WithSaleID(ctx, sale.ID.String())

	discounts, coupon, err := s.resolveDiscounts(ctx, sale, params.CouponCode, params.Manual)
	if err != nil {
		s.deps.Metrics.IncFailure("coupon_invalid")
		return nil, err
	}

	mergedLines, totals, err := s.deps.Engine.Compute(cartLines(sale), discounts)
	if err != nil {
		s.deps.Metrics.IncFailure("pricing")
		return nil, err
	}

	settledAt := time.Now().UTC()
	err = s.deps.Tx.WithTx(ctx, func(tx *gorm.DB) error {
		if coupon != nil {
			consumed, err := s.deps.CouponRepo.WithTx(tx).Consume(ctx, coupon.ID, sale.ID, settledAt)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume coupon")
			}
			if !consumed {
				return pkgerrors.New(pkgerrors.CodeCouponInvalid, "coupon is no longer redeemable")
			}
			sale.CouponID = &coupon.ID
		}

		productRepo := s.deps.Products.WithTx(tx)
		tracked, err := trackedProducts(ctx, productRepo, mergedLines)
		if err != nil {
			return err
		}
		for _, line := range mergedLines {
			// Items sold by weight or without a tracked count skip the
			// decrement and leave no movement row.
			if !tracked[line.ProductID] {
				continue
			}
			if err := s.decrementLine(ctx, productRepo, sale.ID, line); err != nil {
				return err
			}
		}

		sale.Status = enums.SaleStatusCompleted
		sale.PaymentMethod = &params.PaymentMethod
		if params.Manual != nil {
			kind := params.Manual.Kind
			sale.ManualDiscountKind = &kind
			sale.ManualDiscountCents = params.Manual.AmountCents
			sale.ManualDiscountPercent = params.Manual.Percent
		}
		sale.SubtotalCents = totals.SubtotalCents
		sale.DiscountCents = totals.DiscountCents
		sale.TotalCents = totals.TotalCents
		sale.SettledAt = &settledAt
		if err := s.deps.Repo.WithTx(tx).Update(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale")
		}

		category := saleLedgerCategory
		income := &models.FinancialTransaction{
			Type:        enums.TransactionTypeIncome,
			Description: saleDescription(sale),
			Category:    &category,
			AmountCents: totals.TotalCents,
			SaleID:      &sale.ID,
			OccurredAt:  settledAt,
		}
		if err := s.deps.Finance.WithTx(tx).Create(ctx, income); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sale income")
		}
		return nil
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			s.deps.Metrics.IncFailure(string(coded.Code()))
		} else {
			s.deps.Metrics.IncFailure("internal")
		}
		return nil, err
	}

	s.deps.Metrics.ObserveSettlement(params.PaymentMethod.String(), totals.TotalCents, time.Since(started))
	s.deps.Logger.Info(s.deps.Logger.WithField(ctx, "total_cents", totals.TotalCents), "sale settled")

	s.issueLoyaltyReward(ctx, sale)

	settled, err := s.deps.Repo.GetByID(ctx, sale.ID)
	if err != nil {
		return sale, nil
	}
	return settled, nil
}

// trackedProducts reports, per cart line, whether the product's stock is
// counted. Products missing from the catalog are treated as tracked so the
// decrement surfaces the failure instead of silently skipping it.
func trackedProducts(ctx context.Context, repo products.Repository, lines []pricing.LineItem) (map[uuid.UUID]bool, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	rows, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale products")
	}

	tracked := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		tracked[line.ProductID] = true
	}
	for _, row := range rows {
		tracked[row.ID] = row.ControlsStock
	}
	return tracked, nil
}

func (s *service) decrementLine(ctx context.Context, repo products.Repository, saleID uuid.UUID, line pricing.LineItem) error {
	ok, err := repo.DecrementStock(ctx, line.ProductID, line.Quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if !ok {
		available := 0
		if product, loadErr := repo.GetByID(ctx, line.ProductID); loadErr == nil {
			available = product.CurrentStock
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %q", line.ProductName)).
			WithDetails(map[string]any{
				"product_id":   line.ProductID,
				"product_name": line.ProductName,
				"available":    available,
				"requested":    line.Quantity,
			})
	}

	product, err := repo.GetByID(ctx, line.ProductID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	movement := &models.StockMovement{
		ProductID:     line.ProductID,
		SaleID:        &saleID,
		Type:          enums.StockMovementSale,
		Quantity:      line.Quantity,
		PreviousStock: product.CurrentStock + line.Quantity,
		NewStock:      product.CurrentStock,
	}
	if err := repo.CreateMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return nil
}

// issueLoyaltyReward runs after the settlement commits. A reward that fails
// to issue is logged and dropped; the sale itself is already final.
func (s *service) issueLoyaltyReward(ctx context.Context, sale *models.Sale) {
	if sale.CustomerID == nil {
		return
	}
	tier := s.deps.Loyalty.Evaluate(sale.TotalCents)
	if tier == nil {
		return
	}

	reward, err := s.deps.Coupons.IssueReward(ctx, *sale.CustomerID, *tier)
	if err != nil {
		s.deps.Logger.Error(ctx, "loyalty reward issuance failed", err)
		return
	}

	_, err = s.deps.Notifications.Notify(ctx, notifications.NotifyParams{
		Type:  enums.NotificationTypeLoyaltyReward,
		Title: "Loyalty reward earned",
		Body:  rewardBody(reward),
	})
	if err != nil {
		s.deps.Logger.Error(ctx, "loyalty reward notification failed", err)
	}
}

// rewardBody personalizes the loyalty notification. When the coupon is
// missing the fields the message needs, the customer still gets a generic
// announcement instead of no notification at all.
func rewardBody(reward *models.Coupon) string {
	if reward == nil || reward.Code == "" || reward.Percent == nil {
		return "You earned a loyalty coupon on your latest purchase. Check your coupons for the code."
	}
	body := fmt.Sprintf("Coupon %s for %s%% off", reward.Code, reward.Percent.String())
	if reward.ExpiresAt != nil {
		body += ", valid until " + reward.ExpiresAt.Format("2006-01-02")
	}
	return body
}

func (s *service) openSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sale.Status.CanSettle() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("sale is %s", sale.Status))
	}
	return sale, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.deps.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("product %q is inactive", product.Name))
	}
	return product, nil
}

// resolveDiscounts builds the discount list in application order: coupon
// first, then the manual discount. When a coupon is present it is always
// discounts[0].
func (s *service) resolveDiscounts(ctx context.Context, sale *models.Sale, code *string, manual *ManualDiscount) ([]pricing.Discount, *models.Coupon, error) {
	var discounts []pricing.Discount
	var coupon *models.Coupon

	if code != nil && strings.TrimSpace(*code) != "" {
		resolved, discount, err := s.deps.Coupons.Resolve(ctx, *code, sale.CustomerID)
		if err != nil {
			return nil, nil, err
		}
		coupon = resolved
		discounts = append(discounts, discount)
	}

	if manual != nil {
		discount, err := manual.toDiscount()
		if err != nil {
			return nil, nil, err
		}
		discounts = append(discounts, discount)
	}

	return discounts, coupon, nil
}

func cartLines(sale *models.Sale) []pricing.LineItem {
	lines := make([]pricing.LineItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, pricing.LineItem{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return lines
}

func mergeLine(items []models.SaleItem, product *models.Product, quantity int, unitPriceCents *int64) []models.SaleItem {
	price := product.PriceCents
	if unitPriceCents != nil {
		price = *unitPriceCents
	}
	for i := range items {
		if items[i].ProductID == product.ID {
			items[i].Quantity += quantity
			if unitPriceCents != nil {
				items[i].UnitPriceCents = price
			}
			items[i].LineTotalCents = int64(items[i].Quantity) * items[i].UnitPriceCents
			return items
		}
	}
	return append(items, models.SaleItem{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Quantity:       quantity,
		UnitPriceCents: price,
		LineTotalCents: int64(quantity) * price,
	})
}

func saleDescription(sale *models.Sale) string {
	if sale.TabName != nil && *sale.TabName != "" {
		return fmt.Sprintf("Sale %s (%s)", shortID(sale.ID), *sale.TabName)
	}
	return fmt.Sprintf("Sale %s", shortID(sale.ID))
}

func shortID(id uuid.UUID) string {
	return strings.Split(id.String(), "-")[0]
}
