package service

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"todo-planner/internal/model"
)

// dueSoonWindow marks open tasks due within this window with an hourglass.
const dueSoonWindow = 48 * time.Hour

// ReminderService builds human-readable summaries for scheduled reports.
type ReminderService struct{}

func NewReminderService() *ReminderService {
	return &ReminderService{}
}

// DailySummary renders open one-off tasks, soonest deadline first, and the
// recurring tasks that have an occurrence today. The output is Telegram HTML.
func (s *ReminderService) DailySummary(tasks []model.Task, now time.Time) string {
	var pending []model.Task
	var recurringToday []model.Task

	for _, task := range tasks {
		if task.IsRecurring() {
			if task.OccursOn(now) {
				recurringToday = append(recurringToday, task)
			}
			continue
		}
		if !task.IsCompleted {
			pending = append(pending, task)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		switch {
		case pending[i].DueDate == nil && pending[j].DueDate == nil:
			return pending[i].CreatedAt.After(pending[j].CreatedAt)
		case pending[i].DueDate == nil:
			return false
		case pending[j].DueDate == nil:
			return true
		default:
			return pending[i].DueDate.Before(*pending[j].DueDate)
		}
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("Mon, 02 Jan 2006")))

	builder.WriteString("🔥 <b>Open tasks</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— nothing open\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatTask(task, now))
		}
	}

	builder.WriteString("\n♻️ <b>Recurring today</b>\n")
	if len(recurringToday) == 0 {
		builder.WriteString("— nothing repeats today\n")
	} else {
		for _, task := range recurringToday {
			builder.WriteString(formatRecurring(task, now))
		}
	}

	return strings.TrimSpace(builder.String())
}

// Overdue counts open one-off tasks whose due date has passed.
func (s *ReminderService) Overdue(tasks []model.Task, now time.Time) int {
	n := 0
	for _, task := range tasks {
		if !task.IsRecurring() && !task.IsCompleted && task.DueDate != nil && now.After(*task.DueDate) {
			n++
		}
	}
	return n
}

func formatTask(task model.Task, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		switch {
		case now.After(d):
			icon = "⚠️"
		case d.Sub(now) <= dueSoonWindow:
			icon = "⏳"
		}
	}

	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Title))))

	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · <b>overdue</b>", d.Format("2006-01-02")))
		} else {
			daysLeft := int(d.Sub(now).Hours()/24) + 1
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · ≈%d d left", d.Format("2006-01-02"), daysLeft))
		}
	}

	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(*task.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func formatRecurring(task model.Task, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("♻️ %s <i>(%s)</i>",
		html.EscapeString(strings.TrimSpace(task.Title)),
		strings.ToLower(string(*task.RecurrencePattern))))

	if task.RecurrenceEndDate != nil {
		sb.WriteString(fmt.Sprintf("\n   📆 until %s", task.RecurrenceEndDate.In(now.Location()).Format("2006-01-02")))
	}

	sb.WriteByte('\n')
	return sb.String()
}
