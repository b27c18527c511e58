package finance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
	"github.com/vendaflow/pos-backend/pkg/logger"
	"github.com/vendaflow/pos-backend/pkg/pagination"
)

// Service exposes the financial ledger.
type Service interface {
	Record(ctx context.Context, params RecordParams) (*models.FinancialTransaction, error)
	Get(ctx context.Context, id uuid.UUID) (*models.FinancialTransaction, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Summary(ctx context.Context, from, to time.Time) (*SummaryResult, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// RecordParams captures a manually entered ledger row.
type RecordParams struct {
	Type        enums.TransactionType
	Description string
	Category    *string
	AmountCents int64
	OccurredAt  *time.Time
}

// ListParams configures ledger pagination.
type ListParams struct {
	Limit  int
	Cursor string
	Type   enums.TransactionType
	From   *time.Time
	To     *time.Time
}

// ListResult wraps a ledger page and the cursor for the next one.
type ListResult struct {
	Items  []models.FinancialTransaction `json:"items"`
	Cursor string                        `json:"cursor"`
}

// SummaryResult aggregates the ledger over a period.
type SummaryResult struct {
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	IncomeCents  int64     `json:"income_cents"`
	ExpenseCents int64     `json:"expense_cents"`
	NetCents     int64     `json:"net_cents"`
}

// NewService wires finance dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "finance repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, params RecordParams) (*models.FinancialTransaction, error) {
	if !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	if params.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	occurredAt := time.Now().UTC()
	if params.OccurredAt != nil {
		occurredAt = params.OccurredAt.UTC()
	}

	txn := &models.FinancialTransaction{
		Type:        params.Type,
		Description: strings.TrimSpace(params.Description),
		Category:    params.Category,
		AmountCents: params.AmountCents,
		OccurredAt:  occurredAt,
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transaction")
	}
	return txn, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.FinancialTransaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listTransactionsParams{
		Limit: params.Limit,
		Type:  params.Type,
		From:  params.From,
		To:    params.To,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Summary(ctx context.Context, from, to time.Time) (*SummaryResult, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period end must be after start")
	}

	sums, err := s.repo.SumByType(ctx, from.UTC(), to.UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize ledger")
	}

	income := sums[enums.TransactionTypeIncome]
	expense := sums[enums.TransactionTypeExpense]
	return &SummaryResult{
		From:         from.UTC(),
		To:           to.UTC(),
		IncomeCents:  income,
		ExpenseCents: expense,
		NetCents:     income - expense,
	}, nil
}
