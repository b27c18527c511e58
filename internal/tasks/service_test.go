package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	pkgerrors "github.com/vendaflow/pos-backend/pkg/errors"
	"github.com/vendaflow/pos-backend/pkg/logger"
	"github.com/vendaflow/pos-backend/pkg/pagination"
)

// stubRepo keeps tasks in memory. The weekdays column is a Postgres array,
// which the sqlite test databases used elsewhere cannot migrate.
type stubRepo struct {
	tasks map[uuid.UUID]models.Task
	order []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{tasks: map[uuid.UUID]models.Task{}}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	r.tasks[task.ID] = *task
	r.order = append(r.order, task.ID)
	return nil
}

func (r *stubRepo) Update(ctx context.Context, task *models.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &task, nil
}

func (r *stubRepo) List(ctx context.Context, params listTasksParams) ([]models.Task, *pagination.Cursor, error) {
	var rows []models.Task
	for _, id := range r.order {
		task := r.tasks[id]
		if params.PendingOnly && task.IsDone {
			continue
		}
		rows = append(rows, task)
	}
	return rows, nil, nil
}

func (r *stubRepo) ListCandidates(ctx context.Context) ([]models.Task, error) {
	var rows []models.Task
	for _, id := range r.order {
		task := r.tasks[id]
		if task.Recurrence != enums.TaskRecurrenceNone || !task.IsDone {
			rows = append(rows, task)
		}
	}
	return rows, nil
}

func (r *stubRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func newTestService(t *testing.T) (Service, *stubRepo) {
	t.Helper()

	repo := newStubRepo()
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	badDay := 40
	badWeekday := int64(9)
	cases := []struct {
		name   string
		params CreateParams
	}{
		{name: "missing title", params: CreateParams{Recurrence: enums.TaskRecurrenceWeekly, Weekdays: []int64{1}}},
		{name: "one-off without due date", params: CreateParams{Title: "Pay rent", Recurrence: enums.TaskRecurrenceNone}},
		{name: "weekly without weekdays", params: CreateParams{Title: "Clean", Recurrence: enums.TaskRecurrenceWeekly}},
		{name: "weekday out of range", params: CreateParams{Title: "Clean", Recurrence: enums.TaskRecurrenceBiweekly, Weekdays: []int64{badWeekday}}},
		{name: "monthly without day", params: CreateParams{Title: "Inventory", Recurrence: enums.TaskRecurrenceMonthly}},
		{name: "monthly day out of range", params: CreateParams{Title: "Inventory", Recurrence: enums.TaskRecurrenceMonthly, MonthDay: &badDay}},
		{name: "unknown recurrence", params: CreateParams{Title: "X", Recurrence: "daily"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.params)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_ListDueOn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	monday := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Create(ctx, CreateParams{Title: "Order beans", Recurrence: enums.TaskRecurrenceWeekly, Weekdays: []int64{1}}); err != nil {
		t.Fatalf("create weekly: %v", err)
	}
	if _, err := svc.Create(ctx, CreateParams{Title: "Deep clean", Recurrence: enums.TaskRecurrenceWeekly, Weekdays: []int64{5}}); err != nil {
		t.Fatalf("create friday task: %v", err)
	}
	oneOff, err := svc.Create(ctx, CreateParams{Title: "Call supplier", Recurrence: enums.TaskRecurrenceNone, DueDate: &monday})
	if err != nil {
		t.Fatalf("create one-off: %v", err)
	}

	due, err := svc.ListDueOn(ctx, monday)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due tasks on Monday, got %d", len(due))
	}

	if _, err := svc.Complete(ctx, oneOff.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	due, err = svc.ListDueOn(ctx, monday)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 || due[0].Title != "Order beans" {
		t.Fatalf("expected only the weekly task, got %+v", due)
	}
}

func TestService_CompleteAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	due := time.Now().UTC().Add(24 * time.Hour)
	task, err := svc.Create(ctx, CreateParams{Title: "Pay rent", Recurrence: enums.TaskRecurrenceNone, DueDate: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	completed, err := svc.Complete(ctx, task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !completed.IsDone || completed.CompletedAt == nil {
		t.Fatalf("expected done task, got %+v", completed)
	}
	if _, err := svc.Complete(ctx, task.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on double complete, got %v", err)
	}

	if err := svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, task.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
