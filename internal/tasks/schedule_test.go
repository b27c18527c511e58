package tasks

import (
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsDueOn_OneOff(t *testing.T) {
	due := date(2026, time.September, 2)
	task := models.Task{Recurrence: enums.TaskRecurrenceNone, DueDate: &due}

	if !IsDueOn(task, due) {
		t.Fatal("expected task due on its due date")
	}
	if IsDueOn(task, due.AddDate(0, 0, 1)) {
		t.Fatal("expected task not due the day after")
	}

	task.IsDone = true
	if IsDueOn(task, due) {
		t.Fatal("completed one-off must not come back")
	}

	task = models.Task{Recurrence: enums.TaskRecurrenceNone}
	if IsDueOn(task, due) {
		t.Fatal("one-off without due date is never due")
	}
}

func TestIsDueOn_Weekly(t *testing.T) {
	// Monday and Thursday.
	task := models.Task{Recurrence: enums.TaskRecurrenceWeekly, Weekdays: pq.Int64Array{1, 4}}

	monday := date(2026, time.August, 31)
	if !IsDueOn(task, monday) {
		t.Fatal("expected due on Monday")
	}
	if !IsDueOn(task, monday.AddDate(0, 0, 3)) {
		t.Fatal("expected due on Thursday")
	}
	if IsDueOn(task, monday.AddDate(0, 0, 1)) {
		t.Fatal("expected not due on Tuesday")
	}
	// Recurring tasks ignore the done flag.
	task.IsDone = true
	if !IsDueOn(task, monday) {
		t.Fatal("weekly task keeps recurring after completion")
	}
}

func TestIsDueOn_BiweeklyParity(t *testing.T) {
	// Anchored to the week of Monday 2026-08-31, due on Wednesdays.
	anchor := date(2026, time.August, 31)
	task := models.Task{
		Recurrence: enums.TaskRecurrenceBiweekly,
		Weekdays:   pq.Int64Array{3},
		DueDate:    &anchor,
	}

	anchorWednesday := date(2026, time.September, 2)
	if !IsDueOn(task, anchorWednesday) {
		t.Fatal("expected due in the anchor week")
	}
	if IsDueOn(task, anchorWednesday.AddDate(0, 0, 7)) {
		t.Fatal("expected skipped in the off week")
	}
	if !IsDueOn(task, anchorWednesday.AddDate(0, 0, 14)) {
		t.Fatal("expected due two weeks after the anchor")
	}
	if IsDueOn(task, anchorWednesday.AddDate(0, 0, 13)) {
		t.Fatal("wrong weekday must not be due regardless of parity")
	}
}

func TestIsDueOn_BiweeklyAnchorsOnCreationWithoutDueDate(t *testing.T) {
	task := models.Task{
		Recurrence: enums.TaskRecurrenceBiweekly,
		Weekdays:   pq.Int64Array{5},
		CreatedAt:  date(2026, time.August, 25),
	}

	fridaySameWeek := date(2026, time.August, 28)
	if !IsDueOn(task, fridaySameWeek) {
		t.Fatal("expected due in the creation week")
	}
	if IsDueOn(task, fridaySameWeek.AddDate(0, 0, 7)) {
		t.Fatal("expected skipped the following week")
	}
}

func TestIsDueOn_MonthlyClampsShortMonths(t *testing.T) {
	day := 31
	task := models.Task{Recurrence: enums.TaskRecurrenceMonthly, MonthDay: &day}

	if !IsDueOn(task, date(2026, time.August, 31)) {
		t.Fatal("expected due on the 31st")
	}
	if IsDueOn(task, date(2026, time.August, 30)) {
		t.Fatal("expected not due on the 30th of a long month")
	}
	// September has 30 days, so day 31 clamps to the 30th.
	if !IsDueOn(task, date(2026, time.September, 30)) {
		t.Fatal("expected clamped to the last day of September")
	}
	// February 2026 has 28 days.
	if !IsDueOn(task, date(2026, time.February, 28)) {
		t.Fatal("expected clamped to the last day of February")
	}

	task.MonthDay = nil
	if IsDueOn(task, date(2026, time.August, 31)) {
		t.Fatal("monthly task without a day is never due")
	}
}
