package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	"github.com/vendaflow/pos-backend/pkg/pagination"
)

// Repository persists financial ledger rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.FinancialTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FinancialTransaction, error)
	GetBySaleID(ctx context.Context, saleID uuid.UUID) (*models.FinancialTransaction, error)
	List(ctx context.Context, params listTransactionsParams) ([]models.FinancialTransaction, *pagination.Cursor, error)
	SumByType(ctx context.Context, from, to time.Time) (map[enums.TransactionType]int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a finance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listTransactionsParams struct {
	Limit  int
	Cursor *pagination.Cursor
	Type   enums.TransactionType
	From   *time.Time
	To     *time.Time
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, txn *models.FinancialTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.FinancialTransaction, error) {
	var txn models.FinancialTransaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repositoryImpl) GetBySaleID(ctx context.Context, saleID uuid.UUID) (*models.FinancialTransaction, error) {
	var txn models.FinancialTransaction
	if err := r.db.WithContext(ctx).First(&txn, "sale_id = ?", saleID).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listTransactionsParams) ([]models.FinancialTransaction, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.FinancialTransaction{})
	if params.Type.IsValid() {
		query = query.Where("type = ?", params.Type)
	}
	if params.From != nil {
		query = query.Where("occurred_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("occurred_at < ?", *params.To)
	}
	if params.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.FinancialTransaction
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

func (r *repositoryImpl) SumByType(ctx context.Context, from, to time.Time) (map[enums.TransactionType]int64, error) {
	type row struct {
		Type  enums.TransactionType
		Total int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.FinancialTransaction{}).
		Select("type, COALESCE(SUM(amount_cents), 0) AS total").
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := make(map[enums.TransactionType]int64, len(rows))
	for _, r := range rows {
		sums[r.Type] = r.Total
	}
	return sums, nil
}
