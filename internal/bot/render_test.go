package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"todo-planner/internal/calendar"
	"todo-planner/internal/client"
	"todo-planner/internal/model"
	"todo-planner/internal/store"
	"todo-planner/internal/validation"
)

var testNow = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestRenderTaskListEmpty(t *testing.T) {
	if got := renderTaskList(nil, testNow); !strings.Contains(got, "No tasks yet") {
		t.Errorf("empty list = %q", got)
	}
}

func TestRenderTaskList(t *testing.T) {
	tasks := []model.Task{
		{ID: uuid.New(), Title: "Buy <milk>", DueDate: ptr(testNow.Add(-time.Hour))},
		{ID: uuid.New(), Title: "Pay rent", IsCompleted: true},
		{ID: uuid.New(), Title: "Gym", DueDate: ptr(testNow.Add(30 * time.Hour)), RecurrencePattern: ptr(model.RecurrenceWeekly)},
	}
	got := renderTaskList(tasks, testNow)

	for _, want := range []string{
		"(2 open · 1 done)",
		"1. ⬜ Buy &lt;milk&gt;",
		"<b>overdue</b>",
		"2. ✅ <s>Pay rent</s>",
		"3. ⬜ Gym",
		"≈2 d left",
		"♻️ repeats weekly",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("list missing %q:\n%s", want, got)
		}
	}
}

func TestTaskListKeyboard(t *testing.T) {
	open := model.Task{ID: uuid.New(), Title: "Open"}
	done := model.Task{ID: uuid.New(), Title: "Done", IsCompleted: true}

	markup, ok := taskListKeyboard([]model.Task{open, done})
	if !ok || len(markup.InlineKeyboard) != 2 {
		t.Fatalf("keyboard = %+v", markup)
	}
	toggle := markup.InlineKeyboard[0][0]
	if toggle.CallbackData == nil || *toggle.CallbackData != cbTogglePrefix+open.ID.String() {
		t.Errorf("toggle data = %v", toggle.CallbackData)
	}
	if !strings.HasPrefix(markup.InlineKeyboard[1][0].Text, "↩️") {
		t.Errorf("done task button = %q", markup.InlineKeyboard[1][0].Text)
	}
	if len(*markup.InlineKeyboard[0][1].CallbackData) > 64 {
		t.Error("callback data exceeds the Telegram limit")
	}

	if _, ok := taskListKeyboard(nil); ok {
		t.Error("empty list should have no keyboard")
	}
}

func TestRenderCalendar(t *testing.T) {
	tasks := []model.Task{
		{ID: uuid.New(), Title: "Dentist", DueDate: ptr(time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC))},
	}
	grid := calendar.BuildMonthGrid(tasks, testNow, calendar.WithClock(func() time.Time { return testNow }))
	got := renderCalendar(grid)

	for _, want := range []string{
		"February 2026",
		"Su Mo Tu We Th Fr Sa",
		" 1  2  3  4  5  6  7",
		" 8  9 10*11 12 13 14•",
		"<code>Feb 14</code> ⬜ Dentist",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("calendar missing %q:\n%s", want, got)
		}
	}
}

func TestRenderCalendarWithoutTasks(t *testing.T) {
	grid := calendar.BuildMonthGrid(nil, testNow, calendar.WithWeekStart(time.Monday))
	got := renderCalendar(grid)
	if !strings.Contains(got, "Mo Tu We Th Fr Sa Su") || !strings.Contains(got, "nothing due") {
		t.Errorf("calendar = %s", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing task", store.ErrTaskNotFound, "task is gone"},
		{"signed out", errSignedOut, "/login"},
		{"expired", &client.Error{Kind: client.KindRequest, Status: 401, Code: client.CodeTokenExpired, Message: "expired"}, "/login"},
		{"bad credentials", &client.Error{Kind: client.KindRequest, Status: 401, Code: client.CodeInvalidCredentials, Message: "Invalid email or password"}, "Invalid email or password"},
		{"network", &client.Error{Kind: client.KindNetwork, Message: "dial"}, "unreachable"},
		{"server", &client.Error{Kind: client.KindServer, Status: 500, Message: "boom"}, "failed: boom"},
		{"validation", client.ValidationError(validation.Errors{{Field: "email", Message: "Invalid email"}, {Field: "password", Message: "Too short"}}), "• Too short"},
		{"other", errors.New("disk <full>"), "disk &lt;full&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("userMessage = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestParseRecurrence(t *testing.T) {
	if p, ok := parseRecurrence("Weekly"); !ok || p == nil || *p != model.RecurrenceWeekly {
		t.Errorf("weekly = %v %v", p, ok)
	}
	if p, ok := parseRecurrence(btnNoRepeat); !ok || p != nil {
		t.Errorf("no repeat = %v %v", p, ok)
	}
	if _, ok := parseRecurrence("yearly"); ok {
		t.Error("yearly should not parse")
	}
}

func TestShortTitle(t *testing.T) {
	if got := shortTitle("  a\nb  ", 10); got != "a b" {
		t.Errorf("shortTitle = %q", got)
	}
	if got := shortTitle("abcdefgh", 5); got != "abcd…" {
		t.Errorf("shortTitle = %q", got)
	}
}
