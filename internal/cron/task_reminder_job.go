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

type dueTaskLister interface {
	ListDueOn(ctx context.Context, date time.Time) ([]models.Task, error)
}

// TaskReminderJobParams configure the due-task sweep.
type TaskReminderJobParams struct {
	Logger   *logger.Logger
	Tasks    dueTaskLister
	Notifier notifier
	Deduper  alertDeduper
}

// NewTaskReminderJob raises a notification for every task due today, at most
// once per task per day.
func NewTaskReminderJob(params TaskReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tasks == nil {
		return nil, fmt.Errorf("tasks service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &taskReminderJob{
		logg:     params.Logger,
		tasks:    params.Tasks,
		notifier: params.Notifier,
		deduper:  params.Deduper,
		now:      time.Now,
	}, nil
}

type taskReminderJob struct {
	logg     *logger.Logger
	tasks    dueTaskLister
	notifier notifier
	deduper  alertDeduper
	now      func() time.Time
}

func (j *taskReminderJob) Name() string { return "task-reminder" }

func (j *taskReminderJob) Run(ctx context.Context) error {
	today := j.now().UTC()
	due, err := j.tasks.ListDueOn(ctx, today)
	if err != nil {
		return fmt.Errorf("due task sweep: %w", err)
	}

	reminded := 0
	for _, task := range due {
		if j.deduper != nil {
			key := j.deduper.AlertDedupeKey("task-due", task.ID.String()+":"+today.Format("2006-01-02"))
			fresh, err := j.deduper.SetNX(ctx, key, 1, 24*time.Hour)
			if err != nil {
				j.logg.Error(ctx, "task reminder dedupe check failed", err)
			} else if !fresh {
				continue
			}
		}

		body := "Due today"
		if task.Notes != nil && *task.Notes != "" {
			body = *task.Notes
		}
		_, err := j.notifier.Notify(ctx, notifications.NotifyParams{
			Type:  enums.NotificationTypeTaskReminder,
			Title: fmt.Sprintf("Task due: %s", task.Title),
			Body:  body,
		})
		if err != nil {
			return fmt.Errorf("task reminder notification: %w", err)
		}
		reminded++
	}

	if reminded > 0 {
		logCtx := j.logg.WithField(ctx, "tasks_reminded", reminded)
		j.logg.Info(logCtx, "task reminder sweep complete")
	}
	return nil
}
