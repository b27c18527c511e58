package enums

import "fmt"

// TaskRecurrence defines how often a recurring task repeats.
type TaskRecurrence string

const (
	TaskRecurrenceNone     TaskRecurrence = "none"
	TaskRecurrenceWeekly   TaskRecurrence = "weekly"
	TaskRecurrenceBiweekly TaskRecurrence = "biweekly"
	TaskRecurrenceMonthly  TaskRecurrence = "monthly"
)

var validTaskRecurrences = []TaskRecurrence{
	TaskRecurrenceNone,
	TaskRecurrenceWeekly,
	TaskRecurrenceBiweekly,
	TaskRecurrenceMonthly,
}

// String implements fmt.Stringer.
func (t TaskRecurrence) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TaskRecurrence.
func (t TaskRecurrence) IsValid() bool {
	for _, candidate := range validTaskRecurrences {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTaskRecurrence converts raw input into a TaskRecurrence.
func ParseTaskRecurrence(value string) (TaskRecurrence, error) {
	for _, candidate := range validTaskRecurrences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid task recurrence %q", value)
}
