package coupons

import (
	"github.com/shopspring/decimal"

	"github.com/vendaflow/pos-backend/pkg/config"
)

// RewardTier describes the loyalty reward earned by a settled sale, if any.
type RewardTier struct {
	Percent decimal.Decimal
}

// LoyaltyPolicy is the single rule set deciding when a sale earns a reward
// coupon and how large it is. Every payment method goes through the same
// policy.
type LoyaltyPolicy struct {
	cfg config.LoyaltyConfig
}

func NewLoyaltyPolicy(cfg config.LoyaltyConfig) *LoyaltyPolicy {
	return &LoyaltyPolicy{cfg: cfg}
}

// Evaluate returns the earned tier for a settled total, or nil when the sale
// does not qualify. Totals at or above the upgrade tier earn the larger
// percentage.
func (p *LoyaltyPolicy) Evaluate(totalCents int64) *RewardTier {
	if !p.cfg.Enabled || totalCents < p.cfg.ThresholdCents {
		return nil
	}
	percent := p.cfg.BasePercent
	if p.cfg.UpgradeTierCents > 0 && totalCents >= p.cfg.UpgradeTierCents {
		percent = p.cfg.UpgradePercent
	}
	return &RewardTier{Percent: decimal.NewFromInt(int64(percent))}
}
