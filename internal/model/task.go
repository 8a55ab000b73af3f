package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecurrencePattern describes how a task repeats.
type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "DAILY"
	RecurrenceWeekly  RecurrencePattern = "WEEKLY"
	RecurrenceMonthly RecurrencePattern = "MONTHLY"
)

// Valid reports whether p is one of the known patterns.
func (p RecurrencePattern) Valid() bool {
	switch p {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// Task is a single to-do item owned by a user. It is both the database row
// and the JSON representation exchanged with clients.
type Task struct {
	ID                uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID          `gorm:"type:uuid;index;not null" json:"userId"`
	Title             string             `gorm:"size:200;not null" json:"title"`
	Description       *string            `gorm:"size:2000" json:"description"`
	IsCompleted       bool               `gorm:"default:false;not null" json:"isCompleted"`
	DueDate           *time.Time         `gorm:"index" json:"dueDate"`
	RecurrencePattern *RecurrencePattern `gorm:"size:16" json:"recurrencePattern"`
	RecurrenceEndDate *time.Time         `json:"recurrenceEndDate"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

// BeforeCreate assigns an id when the caller did not.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsRecurring reports whether the task carries a recurrence rule.
func (t Task) IsRecurring() bool {
	return t.RecurrencePattern != nil && t.RecurrencePattern.Valid()
}

// OccursOn reports whether a recurring task has an occurrence on the calendar
// day of day. The rule is anchored on DueDate; non-recurring tasks occur only
// on their due day. Days are compared in day's location.
func (t Task) OccursOn(day time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	loc := day.Location()
	anchor := calendarDay(t.DueDate.In(loc))
	target := calendarDay(day)

	if !t.IsRecurring() {
		return anchor.Equal(target)
	}
	if target.Before(anchor) {
		return false
	}
	if t.RecurrenceEndDate != nil && target.After(calendarDay(t.RecurrenceEndDate.In(loc))) {
		return false
	}

	switch *t.RecurrencePattern {
	case RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return anchor.Weekday() == target.Weekday()
	case RecurrenceMonthly:
		// Days past the end of a short month fall on its last day.
		want := anchor.Day()
		if last := daysIn(target.Year(), target.Month()); want > last {
			want = last
		}
		return target.Day() == want
	default:
		return false
	}
}

// CreateTaskInput is the body of a create request.
type CreateTaskInput struct {
	Title             string             `json:"title" validate:"notblank,max=200"`
	Description       *string            `json:"description,omitempty" validate:"omitempty,max=2000"`
	DueDate           *time.Time         `json:"dueDate,omitempty"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern,omitempty" validate:"omitempty,recurrence"`
	RecurrenceEndDate *time.Time         `json:"recurrenceEndDate,omitempty" validate:"omitempty,requires_pattern"`
}

// UpdateTaskInput is a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title             *string            `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description       *string            `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsCompleted       *bool              `json:"isCompleted,omitempty"`
	DueDate           *time.Time         `json:"dueDate,omitempty"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern,omitempty" validate:"omitempty,recurrence"`
	RecurrenceEndDate *time.Time         `json:"recurrenceEndDate,omitempty" validate:"omitempty,requires_pattern"`
}

// Empty reports whether the update carries no field at all.
func (in UpdateTaskInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.IsCompleted == nil &&
		in.DueDate == nil && in.RecurrencePattern == nil && in.RecurrenceEndDate == nil
}

// calendarDay maps t to midnight UTC of its date in t's location. Local
// midnight does not exist on some DST transition days, UTC midnight always
// does.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
