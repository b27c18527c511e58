package tasks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
	"github.com/vendaflow/pos-backend/pkg/logger"
	"github.com/vendaflow/pos-backend/pkg/pagination"
)

// Service manages one-off and recurring tasks.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListDueOn(ctx context.Context, date time.Time) ([]models.Task, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// CreateParams captures a new task.
type CreateParams struct {
	Title      string
	Notes      *string
	Recurrence enums.TaskRecurrence
	Weekdays   []int64
	MonthDay   *int
	DueDate    *time.Time
}

// UpdateParams applies a partial task update.
type UpdateParams struct {
	Title    *string
	Notes    *string
	Weekdays []int64
	MonthDay *int
	DueDate  *time.Time
}

// ListParams configures task pagination.
type ListParams struct {
	Limit       int
	Cursor      string
	PendingOnly bool
}

// ListResult wraps a task page and the cursor for the next one.
type ListResult struct {
	Items  []models.Task `json:"items"`
	Cursor string        `json:"cursor"`
}

// NewService wires tasks dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tasks repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func validateRecurrence(recurrence enums.TaskRecurrence, weekdays []int64, monthDay *int, dueDate *time.Time) error {
	switch recurrence {
	case enums.TaskRecurrenceNone:
		if dueDate == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "one-off tasks need a due date")
		}
	case enums.TaskRecurrenceWeekly, enums.TaskRecurrenceBiweekly:
		if len(weekdays) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "weekly tasks need at least one weekday")
		}
		for _, wd := range weekdays {
			if wd < 0 || wd > 6 {
				return pkgerrors.New(pkgerrors.CodeValidation, "weekdays must be between 0 and 6")
			}
		}
	case enums.TaskRecurrenceMonthly:
		if monthDay == nil || *monthDay < 1 || *monthDay > 31 {
			return pkgerrors.New(pkgerrors.CodeValidation, "monthly tasks need a day between 1 and 31")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid recurrence")
	}
	return nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Task, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task title required")
	}
	if err := validateRecurrence(params.Recurrence, params.Weekdays, params.MonthDay, params.DueDate); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:      strings.TrimSpace(params.Title),
		Notes:      params.Notes,
		Recurrence: params.Recurrence,
		Weekdays:   pq.Int64Array(params.Weekdays),
		MonthDay:   params.MonthDay,
		DueDate:    params.DueDate,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create task")
	}
	return task, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		if strings.TrimSpace(*params.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "task title required")
		}
		task.Title = strings.TrimSpace(*params.Title)
	}
	if params.Notes != nil {
		task.Notes = params.Notes
	}
	if params.Weekdays != nil {
		task.Weekdays = pq.Int64Array(params.Weekdays)
	}
	if params.MonthDay != nil {
		task.MonthDay = params.MonthDay
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}
	if err := validateRecurrence(task.Recurrence, task.Weekdays, task.MonthDay, task.DueDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update task")
	}
	return task, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task id required")
	}
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load task")
	}
	return task, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listTasksParams{
		Limit:       params.Limit,
		PendingOnly: params.PendingOnly,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tasks")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// ListDueOn filters the candidate tasks through the due-date predicate.
func (s *service) ListDueOn(ctx context.Context, date time.Time) ([]models.Task, error) {
	candidates, err := s.repo.ListCandidates(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list task candidates")
	}

	due := make([]models.Task, 0, len(candidates))
	for _, task := range candidates {
		if IsDueOn(task, date) {
			due = append(due, task)
		}
	}
	return due, nil
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsDone {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "task already completed")
	}

	now := time.Now().UTC()
	task.IsDone = true
	task.CompletedAt = &now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete task")
	}
	return task, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "task id required")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete task")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
	}
	return nil
}
