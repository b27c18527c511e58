package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vendaflow/pos-backend/internal/notifications"
	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
	"github.com/vendaflow/pos-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

type fakeNotifier struct {
	sent []notifications.NotifyParams
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, params notifications.NotifyParams) (*models.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &models.Notification{Type: params.Type, Title: params.Title, Body: params.Body}, nil
}

type fakeDeduper struct {
	seen map[string]bool
	err  error
}

func (f *fakeDeduper) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeDeduper) AlertDedupeKey(kind, id string) string {
	return "vf:alert:" + kind + ":" + id
}

type fakeCouponSweep struct {
	swept   int64
	err     error
	lastNow time.Time
}

func (f *fakeCouponSweep) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	f.lastNow = now
	return f.swept, f.err
}

func TestCouponExpiryJob(t *testing.T) {
	repo := &fakeCouponSweep{swept: 3}
	notif := &fakeNotifier{}
	job, err := NewCouponExpiryJob(CouponExpiryJobParams{Logger: testLogger(), Repository: repo, Notifier: notif})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(notif.sent) != 1 || notif.sent[0].Type != enums.NotificationTypeCouponExpiry {
		t.Fatalf("expected one coupon expiry notification, got %+v", notif.sent)
	}

	// Nothing swept, nothing raised.
	repo.swept = 0
	notif.sent = nil
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(notif.sent) != 0 {
		t.Fatalf("expected no notification, got %+v", notif.sent)
	}

	repo.err = errors.New("boom")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeLowStockRepo struct {
	products []models.Product
	err      error
}

func (f *fakeLowStockRepo) ListLowStock(ctx context.Context) ([]models.Product, error) {
	return f.products, f.err
}

func TestLowStockJobDedupes(t *testing.T) {
	product := models.Product{ID: uuid.New(), Name: "Beans", CurrentStock: 2, MinStock: 5}
	repo := &fakeLowStockRepo{products: []models.Product{product}}
	notif := &fakeNotifier{}
	deduper := &fakeDeduper{}

	job, err := NewLowStockJob(LowStockJobParams{
		Logger:     testLogger(),
		Repository: repo,
		Notifier:   notif,
		Deduper:    deduper,
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(notif.sent) != 1 || notif.sent[0].Type != enums.NotificationTypeLowStock {
		t.Fatalf("expected one low stock notification, got %+v", notif.sent)
	}

	// Second sweep inside the dedupe window stays quiet.
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(notif.sent) != 1 {
		t.Fatalf("expected dedupe to suppress repeat alert, got %d", len(notif.sent))
	}
}

type fakeDueTasks struct {
	due []models.Task
	err error
}

func (f *fakeDueTasks) ListDueOn(ctx context.Context, date time.Time) ([]models.Task, error) {
	return f.due, f.err
}

func TestTaskReminderJob(t *testing.T) {
	task := models.Task{ID: uuid.New(), Title: "Order beans"}
	tasks := &fakeDueTasks{due: []models.Task{task}}
	notif := &fakeNotifier{}
	deduper := &fakeDeduper{}

	job, err := NewTaskReminderJob(TaskReminderJobParams{
		Logger:   testLogger(),
		Tasks:    tasks,
		Notifier: notif,
		Deduper:  deduper,
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(notif.sent) != 1 || notif.sent[0].Type != enums.NotificationTypeTaskReminder {
		t.Fatalf("expected one reminder, got %+v", notif.sent)
	}
	if notif.sent[0].Title != "Task due: Order beans" {
		t.Fatalf("unexpected title %q", notif.sent[0].Title)
	}

	// Same day, same task stays quiet.
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(notif.sent) != 1 {
		t.Fatalf("expected dedupe to suppress repeat reminder, got %d", len(notif.sent))
	}

	tasks.err = errors.New("boom")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
