package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/pagination"
)

// Repository exposes persistence helpers for coupons.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context, params listCouponsParams) ([]models.Coupon, *pagination.Cursor, error)
	Consume(ctx context.Context, id uuid.UUID, saleID uuid.UUID, now time.Time) (bool, error)
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
	ListExpiringBefore(ctx context.Context, deadline time.Time) ([]models.Coupon, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a coupons repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listCouponsParams struct {
	Limit      int
	Cursor     *pagination.Cursor
	ActiveOnly bool
	CustomerID uuid.UUID
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repositoryImpl) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listCouponsParams) ([]models.Coupon, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Coupon{})
	if params.ActiveOnly {
		query = query.Where("is_active = ? AND is_used = ?", true, false)
	}
	if params.CustomerID != uuid.Nil {
		query = query.Where("customer_id = ?", params.CustomerID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var coupons []models.Coupon
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&coupons).Error; err != nil {
		return nil, nil, err
	}

	if len(coupons) > normalized {
		next := coupons[normalized]
		coupons = coupons[:normalized]
		return coupons, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return coupons, nil, nil
}

// Consume marks the coupon used with a guarded update. The write only lands
// while the coupon is still active, unused, and unexpired, which makes reuse
// across concurrent settlements impossible.
func (r *repositoryImpl) Consume(ctx context.Context, id uuid.UUID, saleID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ? AND is_active = ? AND is_used = ? AND (expires_at IS NULL OR expires_at > ?)", id, true, false, now).
		Updates(map[string]any{
			"is_used":      true,
			"used_at":      now,
			"used_sale_id": saleID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_used = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, false, deadline).
		Order("expires_at ASC").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *repositoryImpl) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("is_active = ? AND is_used = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, false, now).
		UpdateColumn("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
