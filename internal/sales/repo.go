package sales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	"github.com/vendaflow/pos-backend/pkg/pagination"
)

// Repository persists sales and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sale *models.Sale) error
	Update(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, params listSalesParams) ([]models.Sale, *pagination.Cursor, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	AddItem(ctx context.Context, item *models.SaleItem) error
	UpdateItem(ctx context.Context, item *models.SaleItem) error
	RemoveItem(ctx context.Context, saleID, itemID uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listSalesParams struct {
	Limit      int
	Cursor     *pagination.Cursor
	Status     enums.SaleStatus
	CustomerID uuid.UUID
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repositoryImpl) Update(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"tab_name":                sale.TabName,
			"customer_id":             sale.CustomerID,
			"status":                  sale.Status,
			"payment_method":          sale.PaymentMethod,
			"coupon_id":               sale.CouponID,
			"manual_discount_kind":    sale.ManualDiscountKind,
			"manual_discount_cents":   sale.ManualDiscountCents,
			"manual_discount_percent": sale.ManualDiscountPercent,
			"subtotal_cents":          sale.SubtotalCents,
			"discount_cents":          sale.DiscountCents,
			"total_cents":             sale.TotalCents,
			"settled_at":              sale.SettledAt,
		}).Error
}

// Delete removes a sale while it is still open. Line items go with it via
// the cascade.
func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	// sqlite does not always enforce the cascade, so drop items explicitly
	// ahead of the sale row.
	if err := r.db.WithContext(ctx).Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, enums.SaleStatusOpen).
		Delete(&models.Sale{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listSalesParams) ([]models.Sale, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Sale{}).Preload("Items")
	if params.Status.IsValid() {
		query = query.Where("status = ?", params.Status)
	}
	if params.CustomerID != uuid.Nil {
		query = query.Where("customer_id = ?", params.CustomerID)
	}
	if params.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.Sale
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

func (r *repositoryImpl) AddItem(ctx context.Context, item *models.SaleItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) UpdateItem(ctx context.Context, item *models.SaleItem) error {
	return r.db.WithContext(ctx).
		Model(&models.SaleItem{}).
		Where("id = ? AND sale_id = ?", item.ID, item.SaleID).
		Updates(map[string]any{
			"quantity":         item.Quantity,
			"line_total_cents": item.LineTotalCents,
		}).Error
}

func (r *repositoryImpl) RemoveItem(ctx context.Context, saleID, itemID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND sale_id = ?", itemID, saleID).
		Delete(&models.SaleItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
