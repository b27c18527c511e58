package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/vendaflow/pos-backend/internal/notifications"
	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	"github.com/vendaflow/pos-backend/pkg/logger"
)

type couponSweepRepo interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type notifier interface {
	Notify(ctx context.Context, params notifications.NotifyParams) (*models.Notification, error)
}

// CouponExpiryJobParams configure the expired-coupon sweep.
type CouponExpiryJobParams struct {
	Logger     *logger.Logger
	Repository couponSweepRepo
	Notifier   notifier
}

// NewCouponExpiryJob deactivates coupons whose expiry has passed and raises
// an operator notification when any were swept.
func NewCouponExpiryJob(params CouponExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &couponExpiryJob{
		logg:     params.Logger,
		repo:     params.Repository,
		notifier: params.Notifier,
		now:      time.Now,
	}, nil
}

type couponExpiryJob struct {
	logg     *logger.Logger
	repo     couponSweepRepo
	notifier notifier
	now      func() time.Time
}

func (j *couponExpiryJob) Name() string { return "coupon-expiry" }

func (j *couponExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	swept, err := j.repo.DeactivateExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("coupon expiry sweep: %w", err)
	}
	if swept == 0 {
		return nil
	}

	_, err = j.notifier.Notify(ctx, notifications.NotifyParams{
		Type:  enums.NotificationTypeCouponExpiry,
		Title: "Coupons expired",
		Body:  fmt.Sprintf("%d coupon(s) expired and were deactivated", swept),
	})
	if err != nil {
		return fmt.Errorf("coupon expiry notification: %w", err)
	}

	logCtx := j.logg.WithField(ctx, "rows_deactivated", swept)
	j.logg.Info(logCtx, "coupon expiry sweep complete")
	return nil
}
