package tasks

import (
	"time"

	"github.com/vendaflow/pos-backend/pkg/db/models"
	"github.com/vendaflow/pos-backend/pkg/enums"
)

// startOfWeek returns midnight of the Sunday starting the week containing t.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func containsWeekday(weekdays []int64, day time.Weekday) bool {
	for _, wd := range weekdays {
		if time.Weekday(wd) == day {
			return true
		}
	}
	return false
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsDueOn reports whether the task is due on the given date. Completed
// one-off tasks are never due again; recurring ones come back on their next
// occurrence regardless of IsDone.
//
// Weekly tasks are due on any of their configured weekdays. Biweekly tasks
// additionally require the week to be an even number of weeks from the
// task's anchor week (due date when set, otherwise creation). Monthly tasks
// are due on their configured day of month; a day past the end of a short
// month clamps to the month's last day.
func IsDueOn(task models.Task, date time.Time) bool {
	switch task.Recurrence {
	case enums.TaskRecurrenceNone:
		if task.IsDone || task.DueDate == nil {
			return false
		}
		return sameDate(*task.DueDate, date)

	case enums.TaskRecurrenceWeekly:
		return containsWeekday(task.Weekdays, date.UTC().Weekday())

	case enums.TaskRecurrenceBiweekly:
		if !containsWeekday(task.Weekdays, date.UTC().Weekday()) {
			return false
		}
		anchor := task.CreatedAt
		if task.DueDate != nil {
			anchor = *task.DueDate
		}
		weeks := int(startOfWeek(date).Sub(startOfWeek(anchor)).Hours() / (24 * 7))
		return weeks%2 == 0

	case enums.TaskRecurrenceMonthly:
		if task.MonthDay == nil {
			return false
		}
		day := *task.MonthDay
		year, month, today := date.UTC().Date()
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		return today == day

	default:
		return false
	}
}
