package coupons

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
)

var rewardCodePattern = regexp.MustCompile(`^FIDELIDADE-[A-Z0-9]{8}$`)

func TestGenerateRewardCode_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateRewardCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !rewardCodePattern.MatchString(code) {
			t.Fatalf("code %q does not match reward format", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected generated codes to vary")
	}
}

func TestLoyaltyPolicy_Evaluate(t *testing.T) {
	policy := NewLoyaltyPolicy(testLoyaltyConfig())

	if tier := policy.Evaluate(4999); tier != nil {
		t.Fatalf("expected no reward below threshold, got %v", tier)
	}
	tier := policy.Evaluate(5000)
	if tier == nil || !tier.Percent.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected base tier at threshold, got %v", tier)
	}
	tier = policy.Evaluate(12500)
	if tier == nil || !tier.Percent.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected upgrade tier, got %v", tier)
	}

	disabledCfg := testLoyaltyConfig()
	disabledCfg.Enabled = false
	if tier := NewLoyaltyPolicy(disabledCfg).Evaluate(20000); tier != nil {
		t.Fatalf("expected no reward when disabled, got %v", tier)
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	amount := int64(500)
	percent := decimal.NewFromInt(150)
	past := time.Now().UTC().Add(-time.Hour)

	cases := []struct {
		name   string
		params CreateParams
	}{
		{name: "missing code", params: CreateParams{Kind: enums.DiscountKindFixed, AmountCents: &amount}},
		{name: "fixed without amount", params: CreateParams{Code: "SAVE5", Kind: enums.DiscountKindFixed}},
		{name: "percent without value", params: CreateParams{Code: "SAVE10", Kind: enums.DiscountKindPercent}},
		{name: "percent above 100", params: CreateParams{Code: "SAVE150", Kind: enums.DiscountKindPercent, Percent: &percent}},
		{name: "expiry in the past", params: CreateParams{Code: "OLD", Kind: enums.DiscountKindFixed, AmountCents: &amount, ExpiresAt: &past}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.params); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_Create_NormalizesAndPersists(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	amount := int64(500)
	coupon, err := svc.Create(ctx, CreateParams{Code: "  welcome5 ", Kind: enums.DiscountKindFixed, AmountCents: &amount})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if coupon.Code != "WELCOME5" {
		t.Fatalf("expected normalized code, got %q", coupon.Code)
	}

	loaded, err := repo.GetByCode(ctx, "WELCOME5")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if !loaded.IsActive || loaded.IsUsed {
		t.Fatalf("expected fresh active coupon, got %+v", loaded)
	}
}

func TestService_Resolve(t *testing.T) {
	svc, repo, conn := newTestService(t)
	ctx := context.Background()

	owner := &models.Customer{Name: "Ana Souza"}
	if err := conn.Create(owner).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	stranger := uuid.New()

	amount := int64(1000)
	percent := decimal.NewFromInt(10)
	expired := time.Now().UTC().Add(-time.Minute)

	seed := []*models.Coupon{
		{Code: "FIXED10", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true},
		{Code: "PCT10", Kind: enums.DiscountKindPercent, Percent: &percent, IsActive: true},
		{Code: "USED", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true, IsUsed: true},
		{Code: "INACTIVE", Kind: enums.DiscountKindFixed, AmountCents: &amount},
		{Code: "EXPIRED", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true, ExpiresAt: &expired},
		{Code: "BOUND", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true, CustomerID: &owner.ID},
	}
	for _, c := range seed {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("seed coupon %s: %v", c.Code, err)
		}
	}

	t.Run("fixed discount", func(t *testing.T) {
		coupon, discount, err := svc.Resolve(ctx, "fixed10", nil)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if coupon.Code != "FIXED10" || discount.AmountCents != 1000 || discount.Kind != enums.DiscountKindFixed {
			t.Fatalf("unexpected resolution: %+v %+v", coupon, discount)
		}
	})

	t.Run("percent discount", func(t *testing.T) {
		_, discount, err := svc.Resolve(ctx, "PCT10", nil)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !discount.Percent.Equal(decimal.NewFromInt(10)) {
			t.Fatalf("unexpected percent: %s", discount.Percent)
		}
	})

	t.Run("bound coupon with owner", func(t *testing.T) {
		if _, _, err := svc.Resolve(ctx, "BOUND", &owner.ID); err != nil {
			t.Fatalf("resolve for owner: %v", err)
		}
	})

	invalid := []struct {
		name       string
		code       string
		customerID *uuid.UUID
		wantCode   pkgerrors.Code
	}{
		{name: "unknown code", code: "NOPE", wantCode: pkgerrors.CodeNotFound},
		{name: "already used", code: "USED", wantCode: pkgerrors.CodeCouponInvalid},
		{name: "inactive", code: "INACTIVE", wantCode: pkgerrors.CodeCouponInvalid},
		{name: "expired", code: "EXPIRED", wantCode: pkgerrors.CodeCouponInvalid},
		{name: "bound without customer", code: "BOUND", wantCode: pkgerrors.CodeCouponInvalid},
		{name: "bound to another customer", code: "BOUND", customerID: &stranger, wantCode: pkgerrors.CodeCouponInvalid},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Resolve(ctx, tc.code, tc.customerID)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != tc.wantCode {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestRepository_Consume_SingleUse(t *testing.T) {
	_, repo, _ := newTestService(t)
	ctx := context.Background()

	amount := int64(500)
	coupon := &models.Coupon{Code: "ONCE", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true}
	if err := repo.Create(ctx, coupon); err != nil {
		t.Fatalf("seed: %v", err)
	}

	saleID := uuid.New()
	now := time.Now().UTC()

	consumed, err := repo.Consume(ctx, coupon.ID, saleID, now)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !consumed {
		t.Fatal("expected first consume to succeed")
	}

	consumed, err = repo.Consume(ctx, coupon.ID, uuid.New(), now)
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if consumed {
		t.Fatal("expected second consume to be rejected")
	}

	loaded, err := repo.GetByID(ctx, coupon.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !loaded.IsUsed || loaded.UsedSaleID == nil || *loaded.UsedSaleID != saleID {
		t.Fatalf("expected coupon marked used by first sale, got %+v", loaded)
	}
}

func TestRepository_Consume_RejectsExpired(t *testing.T) {
	_, repo, _ := newTestService(t)
	ctx := context.Background()

	amount := int64(500)
	expired := time.Now().UTC().Add(-time.Minute)
	coupon := &models.Coupon{Code: "LATE", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true, ExpiresAt: &expired}
	if err := repo.Create(ctx, coupon); err != nil {
		t.Fatalf("seed: %v", err)
	}

	consumed, err := repo.Consume(ctx, coupon.ID, uuid.New(), time.Now().UTC())
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if consumed {
		t.Fatal("expected expired coupon to be rejected")
	}
}

func TestService_Deactivate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	amount := int64(500)
	coupon := &models.Coupon{Code: "BYE", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true}
	if err := repo.Create(ctx, coupon); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Deactivate(ctx, coupon.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := svc.Deactivate(ctx, coupon.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on second deactivate, got %v", err)
	}
	if err := svc.Deactivate(ctx, uuid.New()); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown coupon, got %v", err)
	}
}

func TestService_IssueReward(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()

	customer := &models.Customer{Name: "Bruno Lima"}
	if err := conn.Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	before := time.Now().UTC()
	coupon, err := svc.IssueReward(ctx, customer.ID, RewardTier{Percent: decimal.NewFromInt(15)})
	if err != nil {
		t.Fatalf("issue reward: %v", err)
	}

	if !rewardCodePattern.MatchString(coupon.Code) {
		t.Fatalf("unexpected reward code %q", coupon.Code)
	}
	if !coupon.IsLoyalty || coupon.Kind != enums.DiscountKindPercent {
		t.Fatalf("expected loyalty percent coupon, got %+v", coupon)
	}
	if coupon.CustomerID == nil || *coupon.CustomerID != customer.ID {
		t.Fatal("expected reward bound to earning customer")
	}
	if coupon.Percent == nil || !coupon.Percent.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected reward percent: %v", coupon.Percent)
	}
	if coupon.ExpiresAt == nil {
		t.Fatal("expected reward expiry")
	}
	wantExpiry := before.Add(30 * 24 * time.Hour)
	if coupon.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || coupon.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Fatalf("expected expiry about 30 days out, got %s", coupon.ExpiresAt)
	}
}

func TestRepository_DeactivateExpired(t *testing.T) {
	_, repo, _ := newTestService(t)
	ctx := context.Background()

	amount := int64(500)
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	seed := []*models.Coupon{
		{Code: "GONE1", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true, ExpiresAt: &past},
		{Code: "GONE2", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true, ExpiresAt: &past},
		{Code: "FRESH", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true, ExpiresAt: &future},
		{Code: "FOREVER", Kind: enums.DiscountKindFixed, AmountCents: &amount, IsActive: true},
	}
	for _, c := range seed {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("seed %s: %v", c.Code, err)
		}
	}

	affected, err := repo.DeactivateExpired(ctx, now)
	if err != nil {
		t.Fatalf("deactivate expired: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 coupons deactivated, got %d", affected)
	}

	fresh, err := repo.GetByCode(ctx, "FRESH")
	if err != nil {
		t.Fatalf("reload fresh: %v", err)
	}
	if !fresh.IsActive {
		t.Fatal("expected unexpired coupon to stay active")
	}
}
