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

const lowStockDedupeTTL = 24 * time.Hour

type lowStockRepo interface {
	ListLowStock(ctx context.Context) ([]models.Product, error)
}

// alertDeduper suppresses repeat alerts for the same product. The Redis
// client satisfies it.
type alertDeduper interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	AlertDedupeKey(kind, id string) string
}

// LowStockJobParams configure the low-stock sweep.
type LowStockJobParams struct {
	Logger     *logger.Logger
	Repository lowStockRepo
	Notifier   notifier
	Deduper    alertDeduper
	DedupeTTL  time.Duration
}

// NewLowStockJob raises one notification per product at or below its
// minimum stock level, at most once per dedupe window.
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	ttl := params.DedupeTTL
	if ttl <= 0 {
		ttl = lowStockDedupeTTL
	}
	return &lowStockJob{
		logg:     params.Logger,
		repo:     params.Repository,
		notifier: params.Notifier,
		deduper:  params.Deduper,
		ttl:      ttl,
	}, nil
}

type lowStockJob struct {
	logg     *logger.Logger
	repo     lowStockRepo
	notifier notifier
	deduper  alertDeduper
	ttl      time.Duration
}

func (j *lowStockJob) Name() string { return "low-stock" }

func (j *lowStockJob) Run(ctx context.Context) error {
	products, err := j.repo.ListLowStock(ctx)
	if err != nil {
		return fmt.Errorf("low stock sweep: %w", err)
	}

	alerted := 0
	for _, product := range products {
		if j.deduper != nil {
			key := j.deduper.AlertDedupeKey("low-stock", product.ID.String())
			fresh, err := j.deduper.SetNX(ctx, key, 1, j.ttl)
			if err != nil {
				j.logg.Error(ctx, "low stock dedupe check failed", err)
			} else if !fresh {
				continue
			}
		}

		_, err := j.notifier.Notify(ctx, notifications.NotifyParams{
			Type:  enums.NotificationTypeLowStock,
			Title: fmt.Sprintf("Low stock: %s", product.Name),
			Body:  fmt.Sprintf("%d unit(s) left, minimum is %d", product.CurrentStock, product.MinStock),
		})
		if err != nil {
			return fmt.Errorf("low stock notification: %w", err)
		}
		alerted++
	}

	if alerted > 0 {
		logCtx := j.logg.WithField(ctx, "products_alerted", alerted)
		j.logg.Info(logCtx, "low stock sweep complete")
	}
	return nil
}
