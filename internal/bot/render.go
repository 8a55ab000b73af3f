package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"todo-planner/internal/calendar"
	"todo-planner/internal/client"
	"todo-planner/internal/model"
	"todo-planner/internal/store"
)

const signedOutText = "🔒 You are not signed in or your session expired. Use /login."

const (
	iconOpen      = "⬜"
	iconDone      = "✅"
	iconOverdue   = "⚠️"
	iconRecurring = "♻️"
	dayLayout     = "2006-01-02"
	monthLayout   = "2006-01"
)

// renderTaskList renders tasks numbered from 1 in the given order.
func renderTaskList(tasks []model.Task, now time.Time) string {
	if len(tasks) == 0 {
		return "📭 No tasks yet. Add one with /newtask."
	}

	open := 0
	for _, task := range tasks {
		if !task.IsCompleted {
			open++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 <b>Your tasks</b> (%d open · %d done)\n\n", open, len(tasks)-open))
	for i, task := range tasks {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, taskLine(task, now)))
	}
	sb.WriteString("\nTap a button, or use /done &lt;n&gt;, /delete &lt;n&gt; and /task &lt;n&gt;.")
	return sb.String()
}

func taskLine(task model.Task, now time.Time) string {
	var sb strings.Builder
	if task.IsCompleted {
		sb.WriteString(fmt.Sprintf("%s <s>%s</s>", iconDone, escape(task.Title)))
	} else {
		sb.WriteString(fmt.Sprintf("%s %s", iconOpen, escape(task.Title)))
	}
	if task.DueDate != nil {
		sb.WriteString("\n   " + dueLine(task, now))
	}
	if task.IsRecurring() {
		sb.WriteString("\n   " + recurrenceLine(task, now.Location()))
	}
	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		sb.WriteString("\n   📝 " + escape(shortTitle(*task.Description, 120)))
	}
	return sb.String()
}

func dueLine(task model.Task, now time.Time) string {
	due := task.DueDate.In(now.Location())
	switch {
	case task.IsCompleted:
		return fmt.Sprintf("⏰ due %s", due.Format(dayLayout))
	case now.After(due):
		return fmt.Sprintf("%s due %s · <b>overdue</b>", iconOverdue, due.Format(dayLayout))
	default:
		daysLeft := int(due.Sub(now).Hours()/24) + 1
		return fmt.Sprintf("⏰ due %s · ≈%d d left", due.Format(dayLayout), daysLeft)
	}
}

func recurrenceLine(task model.Task, loc *time.Location) string {
	line := fmt.Sprintf("%s repeats %s", iconRecurring, strings.ToLower(string(*task.RecurrencePattern)))
	if task.RecurrenceEndDate != nil {
		line += " until " + task.RecurrenceEndDate.In(loc).Format(dayLayout)
	}
	return line
}

// renderTaskDetails renders a single task with every field.
func renderTaskDetails(task model.Task, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📌 <b>%s</b>\n", escape(task.Title)))
	if task.IsCompleted {
		sb.WriteString(iconDone + " completed\n")
	} else {
		sb.WriteString(iconOpen + " open\n")
	}
	if task.DueDate != nil {
		sb.WriteString(dueLine(task, now) + "\n")
	}
	if task.IsRecurring() {
		sb.WriteString(recurrenceLine(task, now.Location()) + "\n")
	}
	if task.Description != nil && *task.Description != "" {
		sb.WriteString("📝 " + escape(*task.Description) + "\n")
	}
	sb.WriteString(fmt.Sprintf("🕓 created %s", task.CreatedAt.In(now.Location()).Format("2006-01-02 15:04")))
	return sb.String()
}

// renderCalendar draws the grid as a monospace block followed by the tasks
// placed on it.
func renderCalendar(grid calendar.Grid) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 <b>%s</b>\n<pre>", grid.Month.Format("January 2006")))

	for _, wd := range grid.Weekdays() {
		sb.WriteString(wd.String()[:2] + " ")
	}
	sb.WriteString("\n")

	for _, week := range grid.Weeks() {
		var row strings.Builder
		for _, day := range week {
			row.WriteString(fmt.Sprintf("%2d%s", day.Date.Day(), dayMarker(day)))
		}
		sb.WriteString(strings.TrimRight(row.String(), " ") + "\n")
	}
	sb.WriteString("</pre>\n• has tasks · * today\n")

	var lines []string
	for _, day := range grid.Days {
		for _, task := range day.Tasks {
			icon := iconOpen
			if task.IsCompleted {
				icon = iconDone
			}
			lines = append(lines, fmt.Sprintf("<code>%s</code> %s %s", day.Date.Format("Jan 02"), icon, escape(shortTitle(task.Title, 40))))
		}
	}
	if len(lines) == 0 {
		sb.WriteString("\n— nothing due in this view")
	} else {
		sb.WriteString("\n<b>Due in this view</b>\n")
		sb.WriteString(strings.Join(lines, "\n"))
	}
	return sb.String()
}

func dayMarker(day calendar.Day) string {
	switch {
	case len(day.Tasks) > 0:
		return "•"
	case day.IsToday:
		return "*"
	default:
		return " "
	}
}

// userMessage turns an operation error into chat text.
func userMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		return "🤷 That task is gone. Refresh the list with /tasks."
	case errors.Is(err, errSignedOut):
		return signedOutText
	}
	apiErr, ok := client.AsError(err)
	if !ok {
		return "😵 Something went wrong: " + escape(err.Error())
	}
	switch {
	case apiErr.Unauthorized() && apiErr.Code != client.CodeInvalidCredentials:
		return signedOutText
	case len(apiErr.Details) > 1:
		var sb strings.Builder
		sb.WriteString("✋ Please fix:")
		for _, d := range apiErr.Details {
			sb.WriteString("\n• " + escape(d.Message))
		}
		return sb.String()
	case apiErr.Kind == client.KindNetwork:
		return "📡 The task server is unreachable. Try again in a moment."
	case apiErr.Kind == client.KindServer:
		return "😵 The task server failed: " + escape(apiErr.Message)
	default:
		return "✋ " + escape(apiErr.Message)
	}
}

func escape(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

func shortTitle(title string, maxLen int) string {
	clean := strings.Join(strings.Fields(title), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
