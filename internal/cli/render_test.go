package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"todo-planner/internal/calendar"
	"todo-planner/internal/client"
	"todo-planner/internal/config"
	"todo-planner/internal/model"
	"todo-planner/internal/store"
	"todo-planner/internal/validation"
)

func ptr[T any](v T) *T { return &v }

func plainStyles() styles {
	return newStyles(&bytes.Buffer{})
}

func TestRenderTaskList(t *testing.T) {
	s := plainStyles()
	if got := s.renderTaskList(nil, testNow); !strings.Contains(got, "No tasks") {
		t.Errorf("empty list = %q", got)
	}

	late := model.Task{ID: uuid.New(), Title: "Pay rent", DueDate: ptr(testNow.Add(-time.Hour))}
	soon := model.Task{ID: uuid.New(), Title: "Call mom", DueDate: ptr(testNow.Add(2 * time.Hour))}
	done := model.Task{ID: uuid.New(), Title: "Gym", IsCompleted: true, RecurrencePattern: ptr(model.RecurrenceDaily)}
	got := s.renderTaskList([]model.Task{late, soon, done}, testNow)

	for _, want := range []string{
		"2 open, 1 done",
		late.ID.String()[:8] + " [ ] Pay rent",
		"(overdue)",
		"due 2026-02-10 11:00",
		"[x] Gym",
		"↻ daily",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("list missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "(overdue)") != 1 {
		t.Errorf("only one task is overdue:\n%s", got)
	}
}

func TestRenderTaskDetails(t *testing.T) {
	task := model.Task{
		ID:                uuid.New(),
		Title:             "Standup",
		Description:       ptr("daily sync"),
		DueDate:           ptr(time.Date(2026, 2, 11, 9, 30, 0, 0, time.UTC)),
		RecurrencePattern: ptr(model.RecurrenceWeekly),
		RecurrenceEndDate: ptr(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)),
		CreatedAt:         testNow,
	}
	got := plainStyles().renderTaskDetails(task, testNow)
	for _, want := range []string{"Standup", task.ID.String(), "status: open", "repeats weekly until 2026-06-30", "daily sync", "╭"} {
		if !strings.Contains(got, want) {
			t.Errorf("details missing %q:\n%s", want, got)
		}
	}
}

func TestRenderCalendarEmpty(t *testing.T) {
	grid := calendar.BuildMonthGrid(nil, testNow, calendar.WithClock(func() time.Time { return testNow }))
	got := plainStyles().renderCalendar(grid)
	for _, want := range []string{"February 2026", "Su", "[10]", "Nothing due"} {
		if !strings.Contains(got, want) {
			t.Errorf("calendar missing %q:\n%s", want, got)
		}
	}
	if rows := len(grid.Weeks()); rows != 5 {
		t.Errorf("weeks = %d", rows)
	}
}

func TestExplain(t *testing.T) {
	a := &app{cfg: config.CLIConfig{Server: "http://tasks.test"}}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing task", store.ErrTaskNotFound, "no such task"},
		{"expired", &client.Error{Kind: client.KindRequest, Status: 401, Code: client.CodeTokenExpired, Message: "expired"}, "not signed in"},
		{"bad credentials", &client.Error{Kind: client.KindRequest, Status: 401, Code: client.CodeInvalidCredentials, Message: "Invalid email or password"}, "Invalid email or password"},
		{"network", &client.Error{Kind: client.KindNetwork, Message: "dial"}, "http://tasks.test is unreachable"},
		{"validation", client.ValidationError(validation.Errors{{Field: "title", Message: "Title is required"}, {Field: "description", Message: "Too long"}}), "  - Too long"},
		{"other", errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.explain(tt.err).Error(); !strings.Contains(got, tt.want) {
				t.Errorf("explain = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestParseRepeat(t *testing.T) {
	if p, err := parseRepeat("Monthly"); err != nil || *p != model.RecurrenceMonthly {
		t.Errorf("monthly = %v, %v", p, err)
	}
	if p, err := parseRepeat(""); err != nil || p != nil {
		t.Errorf("empty = %v, %v", p, err)
	}
	if _, err := parseRepeat("yearly"); err == nil {
		t.Error("yearly should not parse")
	}
}
