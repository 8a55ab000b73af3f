package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"todo-planner/internal/calendar"
	"todo-planner/internal/client"
	"todo-planner/internal/model"
	"todo-planner/internal/store"
)

var errNoSuchTask = errors.New("no such task: list them with `todoctl tasks`")

const (
	shortIDLen = 8
	cellWidth  = 6
)

// styles are bound to the output stream so colors are dropped when it is
// not a terminal.
type styles struct {
	title     lipgloss.Style
	faint     lipgloss.Style
	done      lipgloss.Style
	overdue   lipgloss.Style
	soon      lipgloss.Style
	id        lipgloss.Style
	box       lipgloss.Style
	header    lipgloss.Style
	cell      lipgloss.Style
	outside   lipgloss.Style
	today     lipgloss.Style
	busy      lipgloss.Style
	legend    lipgloss.Style
	recurring lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	cell := r.NewStyle().Width(cellWidth).Align(lipgloss.Right)
	return styles{
		title:     r.NewStyle().Bold(true),
		faint:     r.NewStyle().Faint(true),
		done:      r.NewStyle().Faint(true).Strikethrough(true),
		overdue:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		soon:      r.NewStyle().Foreground(lipgloss.Color("11")),
		id:        r.NewStyle().Foreground(lipgloss.Color("244")),
		box:       r.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1),
		header:    cell.Bold(true).Foreground(lipgloss.Color("63")),
		cell:      cell,
		outside:   cell.Faint(true),
		today:     cell.Reverse(true).Bold(true),
		busy:      cell.Foreground(lipgloss.Color("11")).Bold(true),
		legend:    r.NewStyle().Faint(true).Italic(true),
		recurring: r.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

func shortID(task model.Task) string {
	return task.ID.String()[:shortIDLen]
}

func (s styles) renderTaskList(tasks []model.Task, now time.Time) string {
	if len(tasks) == 0 {
		return "No tasks. Add one with: todoctl tasks add <title>"
	}

	open := 0
	for _, task := range tasks {
		if !task.IsCompleted {
			open++
		}
	}

	var sb strings.Builder
	sb.WriteString(s.title.Render("Tasks") + s.faint.Render(fmt.Sprintf(" %d open, %d done", open, len(tasks)-open)) + "\n")
	for _, task := range tasks {
		mark := "[ ]"
		title := task.Title
		if task.IsCompleted {
			mark = "[x]"
			title = s.done.Render(title)
		}
		line := fmt.Sprintf("%s %s %s", s.id.Render(shortID(task)), mark, title)
		if task.DueDate != nil {
			line += "  " + s.dueLabel(task, now)
		}
		if task.IsRecurring() {
			line += "  " + s.recurring.Render("↻ "+strings.ToLower(string(*task.RecurrencePattern)))
		}
		sb.WriteString("\n" + line)
	}
	return sb.String()
}

func (s styles) dueLabel(task model.Task, now time.Time) string {
	due := task.DueDate.In(now.Location())
	label := "due " + due.Format("2006-01-02 15:04")
	switch {
	case task.IsCompleted:
		return s.faint.Render(label)
	case now.After(due):
		return s.overdue.Render(label + " (overdue)")
	case due.Sub(now) < 24*time.Hour:
		return s.soon.Render(label)
	default:
		return label
	}
}

func (s styles) renderTaskDetails(task model.Task, now time.Time) string {
	lines := []string{s.title.Render(task.Title), s.id.Render(task.ID.String())}
	if task.IsCompleted {
		lines = append(lines, "status: done")
	} else {
		lines = append(lines, "status: open")
	}
	if task.DueDate != nil {
		lines = append(lines, s.dueLabel(task, now))
	}
	if task.IsRecurring() {
		rule := "repeats " + strings.ToLower(string(*task.RecurrencePattern))
		if task.RecurrenceEndDate != nil {
			rule += " until " + task.RecurrenceEndDate.In(now.Location()).Format(client.DateLayout)
		}
		lines = append(lines, s.recurring.Render(rule))
	}
	if task.Description != nil && *task.Description != "" {
		lines = append(lines, "", *task.Description)
	}
	lines = append(lines, s.faint.Render("created "+task.CreatedAt.In(now.Location()).Format("2006-01-02 15:04")))
	return s.box.Render(strings.Join(lines, "\n"))
}

// renderCalendar draws the month as a table of day cells followed by the
// tasks placed on it.
func (s styles) renderCalendar(grid calendar.Grid) string {
	var sb strings.Builder
	sb.WriteString(s.title.Render(grid.Month.Format("January 2006")) + "\n")

	headers := make([]string, 0, len(grid.Weekdays()))
	for _, wd := range grid.Weekdays() {
		headers = append(headers, s.header.Render(wd.String()[:2]))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...) + "\n")

	for _, week := range grid.Weeks() {
		cells := make([]string, 0, len(week))
		for _, day := range week {
			cells = append(cells, s.dayCell(day))
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")
	}
	sb.WriteString(s.legend.Render("· has tasks  [] today"))

	var due []string
	for _, day := range grid.Days {
		for _, task := range day.Tasks {
			mark := "[ ]"
			title := task.Title
			if task.IsCompleted {
				mark = "[x]"
				title = s.done.Render(title)
			}
			due = append(due, fmt.Sprintf("%s %s %s %s", day.Date.Format("Jan 02"), s.id.Render(shortID(task)), mark, title))
		}
	}
	if len(due) == 0 {
		sb.WriteString("\n\nNothing due in this view.")
	} else {
		sb.WriteString("\n\n" + s.title.Render("Due in this view") + "\n" + strings.Join(due, "\n"))
	}
	return s.box.Render(sb.String())
}

func (s styles) dayCell(day calendar.Day) string {
	label := fmt.Sprintf("%d", day.Date.Day())
	if len(day.Tasks) > 0 {
		label += "·"
	}
	switch {
	case day.IsToday:
		return s.today.Render("[" + label + "]")
	case !day.IsCurrentMonth:
		return s.outside.Render(label)
	case len(day.Tasks) > 0:
		return s.busy.Render(label)
	default:
		return s.cell.Render(label)
	}
}

// explain rewrites operation errors into messages for the terminal.
func (a *app) explain(err error) error {
	if errors.Is(err, store.ErrTaskNotFound) {
		return errNoSuchTask
	}
	apiErr, ok := client.AsError(err)
	if !ok {
		return err
	}
	switch {
	case apiErr.Unauthorized() && apiErr.Code != client.CodeInvalidCredentials:
		return errSignedOut
	case len(apiErr.Details) > 1:
		lines := make([]string, len(apiErr.Details))
		for i, d := range apiErr.Details {
			lines[i] = "  - " + d.Message
		}
		return fmt.Errorf("please fix:\n%s", strings.Join(lines, "\n"))
	case apiErr.Kind == client.KindNetwork:
		return fmt.Errorf("task server at %s is unreachable: %w", a.cfg.Server, err)
	default:
		return err
	}
}
