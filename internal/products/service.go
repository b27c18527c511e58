package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
	"github.com/vendaflow/pos-backend/pkg/logger"
	"github.com/vendaflow/pos-backend/pkg/pagination"
)

// Service defines catalog and stock operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	AdjustStock(ctx context.Context, params AdjustStockParams) (*models.Product, error)
	ListMovements(ctx context.Context, params MovementListParams) (*MovementListResult, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// CreateParams captures a new catalog entry. ControlsStock nil means the
// count is tracked, which is the common case.
type CreateParams struct {
	Name          string
	SKU           *string
	Barcode       *string
	Category      *string
	PriceCents    int64
	CostCents     int64
	ControlsStock *bool
	InitialStock  int
	MinStock      int
}

// UpdateParams applies a partial product update. Nil fields are left untouched.
type UpdateParams struct {
	Name          *string
	SKU           *string
	Barcode       *string
	Category      *string
	PriceCents    *int64
	CostCents     *int64
	ControlsStock *bool
	MinStock      *int
	IsActive      *bool
}

// ListParams configures catalog pagination.
type ListParams struct {
	Limit      int
	Cursor     string
	ActiveOnly bool
	Search     string
}

// ListResult wraps a catalog page and the cursor for the next one.
type ListResult struct {
	Items  []models.Product `json:"items"`
	Cursor string           `json:"cursor"`
}

// AdjustStockParams describes a manual stock correction or restock.
type AdjustStockParams struct {
	ProductID uuid.UUID
	Delta     int
	Type      enums.StockMovementType
	Reason    *string
}

// MovementListParams configures stock movement pagination.
type MovementListParams struct {
	ProductID uuid.UUID
	Limit     int
	Cursor    string
}

// MovementListResult wraps a page of stock movements.
type MovementListResult struct {
	Items  []models.StockMovement `json:"items"`
	Cursor string                 `json:"cursor"`
}

// NewService wires products dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Product, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if params.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if params.InitialStock < 0 || params.MinStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock levels cannot be negative")
	}

	controlsStock := true
	if params.ControlsStock != nil {
		controlsStock = *params.ControlsStock
	}

	product := &models.Product{
		Name:          name,
		SKU:           params.SKU,
		Barcode:       params.Barcode,
		Category:      params.Category,
		PriceCents:    params.PriceCents,
		CostCents:     params.CostCents,
		ControlsStock: controlsStock,
		CurrentStock:  params.InitialStock,
		MinStock:      params.MinStock,
		IsActive:      true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		if params.InitialStock > 0 {
			movement := &models.StockMovement{
				ProductID:     product.ID,
				Type:          enums.StockMovementRestock,
				Quantity:      params.InitialStock,
				PreviousStock: 0,
				NewStock:      params.InitialStock,
			}
			if err := repo.CreateMovement(ctx, movement); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record initial stock")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithProductID(ctx, product.ID.String())
	s.logg.Info(ctx, "product created")
	return product, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be blank")
		}
		product.Name = name
	}
	if params.SKU != nil {
		product.SKU = params.SKU
	}
	if params.Barcode != nil {
		product.Barcode = params.Barcode
	}
	if params.Category != nil {
		product.Category = params.Category
	}
	if params.PriceCents != nil {
		if *params.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.PriceCents = *params.PriceCents
	}
	if params.CostCents != nil {
		product.CostCents = *params.CostCents
	}
	if params.ControlsStock != nil {
		product.ControlsStock = *params.ControlsStock
	}
	if params.MinStock != nil {
		if *params.MinStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock cannot be negative")
		}
		product.MinStock = *params.MinStock
	}
	if params.IsActive != nil {
		product.IsActive = *params.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// Delete retires a product. Sale lines keep their FK reference to the row,
// so deletion is a deactivation rather than a hard delete.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	deactivated, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	if !deactivated {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product already inactive")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listProductsParams{
		Limit:      params.Limit,
		ActiveOnly: params.ActiveOnly,
		Search:     strings.TrimSpace(params.Search),
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// AdjustStock applies a manual stock delta and records the movement inside one
// transaction. Negative deltas use the same guarded decrement as settlement,
// so stock can never go below zero.
func (s *service) AdjustStock(ctx context.Context, params AdjustStockParams) (*models.Product, error) {
	if params.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if params.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock delta cannot be zero")
	}
	if params.Type != enums.StockMovementRestock && params.Type != enums.StockMovementAdjustment {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("movement type %q not allowed for manual adjustments", params.Type))
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		qty := params.Delta
		if qty < 0 {
			qty = -qty
		}

		var applied bool
		var err error
		if params.Delta < 0 {
			applied, err = repo.DecrementStock(ctx, params.ProductID, qty)
		} else {
			applied, err = repo.IncrementStock(ctx, params.ProductID, qty)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply stock delta")
		}

		product, loadErr := repo.GetByID(ctx, params.ProductID)
		if loadErr != nil {
			if errors.Is(loadErr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, loadErr, "load product")
		}

		if !applied {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %q", product.Name)).
				WithDetails(map[string]any{
					"product_id":   product.ID,
					"product_name": product.Name,
					"available":    product.CurrentStock,
					"requested":    qty,
				})
		}

		previous := product.CurrentStock - params.Delta
		movement := &models.StockMovement{
			ProductID:     product.ID,
			Type:          params.Type,
			Quantity:      qty,
			PreviousStock: previous,
			NewStock:      product.CurrentStock,
			Reason:        params.Reason,
		}
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
		}

		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithProductID(ctx, updated.ID.String())
	s.logg.Info(ctx, "stock adjusted")
	return updated, nil
}

func (s *service) ListMovements(ctx context.Context, params MovementListParams) (*MovementListResult, error) {
	query := listMovementsParams{
		ProductID: params.ProductID,
		Limit:     params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListMovements(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &MovementListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) ListLowStock(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock products")
	}
	return rows, nil
}
