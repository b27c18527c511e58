package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vendaflow/pos-backend/pkg/enums"
)

// Task is a one-off or recurring operational chore. Weekdays uses time.Weekday
// numbering (0 = Sunday) and only applies to weekly and biweekly recurrences.
type Task struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Title       string               `gorm:"column:title;not null"`
	Notes       *string              `gorm:"column:notes"`
	Recurrence  enums.TaskRecurrence `gorm:"column:recurrence;not null;default:none"`
	Weekdays    pq.Int64Array        `gorm:"column:weekdays;type:integer[]"`
	MonthDay    *int                 `gorm:"column:month_day"`
	DueDate     *time.Time           `gorm:"column:due_date"`
	IsDone      bool                 `gorm:"column:is_done;not null;default:false"`
	CompletedAt *time.Time           `gorm:"column:completed_at"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
