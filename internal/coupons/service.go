package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/internal/pricing"
	"github.com/vendaflow/pos-backend/pkg/config"
	pkgdb "github.com/vendaflow/pos-backend/pkg/db"
	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
	"github.com/vendaflow/pos-backend/pkg/logger"
	"github.com/vendaflow/pos-backend/pkg/pagination"
)

// Service defines coupon lifecycle and resolution operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Coupon, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Resolve(ctx context.Context, code string, customerID *uuid.UUID) (*models.Coupon, pricing.Discount, error)
	IssueReward(ctx context.Context, customerID uuid.UUID, tier RewardTier) (*models.Coupon, error)
}

type service struct {
	repo    Repository
	loyalty config.LoyaltyConfig
	logg    *logger.Logger
}

// CreateParams captures a manually issued coupon.
type CreateParams struct {
	Code        string
	Kind        enums.DiscountKind
	AmountCents *int64
	Percent     *decimal.Decimal
	CustomerID  *uuid.UUID
	ExpiresAt   *time.Time
}

// ListParams configures coupon pagination.
type ListParams struct {
	Limit      int
	Cursor     string
	ActiveOnly bool
	CustomerID uuid.UUID
}

// ListResult wraps a coupon page and the cursor for the next one.
type ListResult struct {
	Items  []models.Coupon `json:"items"`
	Cursor string          `json:"cursor"`
}

// NewService wires coupons dependencies.
func NewService(repo Repository, loyalty config.LoyaltyConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "coupons repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, loyalty: loyalty, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(params.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if !params.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount kind")
	}

	switch params.Kind {
	case enums.DiscountKindFixed:
		if params.AmountCents == nil || *params.AmountCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fixed coupons need a positive amount")
		}
	case enums.DiscountKindPercent:
		if params.Percent == nil || params.Percent.IsNegative() || params.Percent.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent coupons need a positive percentage")
		}
		if params.Percent.GreaterThan(decimal.NewFromInt(100)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent coupons cannot exceed 100")
		}
	}

	if params.ExpiresAt != nil && !params.ExpiresAt.After(time.Now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
	}

	coupon := &models.Coupon{
		Code:        code,
		Kind:        params.Kind,
		AmountCents: params.AmountCents,
		Percent:     params.Percent,
		CustomerID:  params.CustomerID,
		IsActive:    true,
		ExpiresAt:   params.ExpiresAt,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_coupons_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return coupon, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	coupon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	return coupon, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listCouponsParams{
		Limit:      params.Limit,
		ActiveOnly: params.ActiveOnly,
		CustomerID: params.CustomerID,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}

	deactivated, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate coupon")
	}
	if !deactivated {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon already inactive")
	}
	return nil
}

// Resolve validates a coupon code against the redeeming customer and returns
// the discount it grants. It never consumes the coupon; settlement does that
// inside its own transaction.
func (s *service) Resolve(ctx context.Context, code string, customerID *uuid.UUID) (*models.Coupon, pricing.Discount, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pricing.Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pricing.Discount{}, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pricing.Discount{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	now := time.Now().UTC()
	switch {
	case coupon.IsUsed:
		return nil, pricing.Discount{}, pkgerrors.New(pkgerrors.CodeCouponInvalid, "coupon already used")
	case !coupon.IsActive:
		return nil, pricing.Discount{}, pkgerrors.New(pkgerrors.CodeCouponInvalid, "coupon is inactive")
	case coupon.IsExpired(now):
		return nil, pricing.Discount{}, pkgerrors.New(pkgerrors.CodeCouponInvalid, "coupon has expired")
	}

	if coupon.CustomerID != nil {
		if customerID == nil || *customerID != *coupon.CustomerID {
			return nil, pricing.Discount{}, pkgerrors.New(pkgerrors.CodeCouponInvalid, "coupon belongs to another customer")
		}
	}

	discount := pricing.Discount{Kind: coupon.Kind, Label: coupon.Code}
	switch coupon.Kind {
	case enums.DiscountKindFixed:
		if coupon.AmountCents != nil {
			discount.AmountCents = *coupon.AmountCents
		}
	case enums.DiscountKindPercent:
		if coupon.Percent != nil {
			discount.Percent = *coupon.Percent
		}
	}
	return coupon, discount, nil
}

// IssueReward creates a loyalty coupon for the customer. Code generation
// retries on the rare unique collision.
func (s *service) IssueReward(ctx context.Context, customerID uuid.UUID, tier RewardTier) (*models.Coupon, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if tier.Percent.IsZero() || tier.Percent.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reward percent must be positive")
	}

	var coupon *models.Coupon
	backoff := retry.WithMaxRetries(3, retry.NewConstant(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		code, err := GenerateRewardCode()
		if err != nil {
			return err
		}

		percent := tier.Percent
		var expiresAt *time.Time
		if window := s.loyalty.ExpiryWindow(); window > 0 {
			deadline := time.Now().UTC().Add(window)
			expiresAt = &deadline
		}

		candidate := &models.Coupon{
			Code:       code,
			Kind:       enums.DiscountKindPercent,
			Percent:    &percent,
			CustomerID: &customerID,
			IsLoyalty:  true,
			IsActive:   true,
			ExpiresAt:  expiresAt,
		}
		if err := s.repo.Create(ctx, candidate); err != nil {
			if pkgdb.IsUniqueViolation(err, "idx_coupons_code") {
				return retry.RetryableError(err)
			}
			return err
		}
		coupon = candidate
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue loyalty reward")
	}

	ctx = s.logg.WithCustomerID(ctx, customerID.String())
	s.logg.Info(ctx, "loyalty reward issued")
	return coupon, nil
}
