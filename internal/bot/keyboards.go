package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"todo-planner/internal/model"
)

const (
	cbTogglePrefix  = "toggle:"
	cbDeletePrefix  = "delete:"
	cbConfirmPrefix = "confirm:"
	cbCancelPrefix  = "cancel:"
	cbMonthPrefix   = "cal:"
)

const (
	btnSkip         = "⏭️ Skip"
	btnConfirm      = "✅ Confirm"
	btnCancel       = "↩️ Keep it"
	btnCancelDialog = "⏪ Cancel input"
	btnDaily        = "Daily"
	btnWeekly       = "Weekly"
	btnMonthly      = "Monthly"
	btnNoRepeat     = "No repeat"

	menuLabelNewTask  = "➕ New task"
	menuLabelTasks    = "📋 Tasks"
	menuLabelCalendar = "🗓 Calendar"
	menuLabelHelp     = "ℹ️ Help"
)

// maxTaskButtons bounds the inline keyboard of a task list.
const maxTaskButtons = 30

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelCalendar),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func recurrenceKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDaily),
			tgbotapi.NewKeyboardButton(btnWeekly),
			tgbotapi.NewKeyboardButton(btnMonthly),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnNoRepeat),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// taskListKeyboard has one row per task: a toggle button and a delete button.
func taskListKeyboard(tasks []model.Task) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, task := range tasks {
		if i == maxTaskButtons {
			break
		}
		label := fmt.Sprintf("✅ %d · %s", i+1, shortTitle(task.Title, 24))
		if task.IsCompleted {
			label = fmt.Sprintf("↩️ %d · %s", i+1, shortTitle(task.Title, 24))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbTogglePrefix+task.ID.String()),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID.String()),
		))
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func deleteConfirmKeyboard(task model.Task) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbConfirmPrefix+task.ID.String()),
			tgbotapi.NewInlineKeyboardButtonData(btnCancel, cbCancelPrefix+task.ID.String()),
		),
	)
}

// monthKeyboard navigates between months of the calendar view.
func monthKeyboard(month, today time.Time) tgbotapi.InlineKeyboardMarkup {
	prev := month.AddDate(0, -1, 0)
	next := month.AddDate(0, 1, 0)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ "+prev.Format("Jan"), cbMonthPrefix+prev.Format(monthLayout)),
			tgbotapi.NewInlineKeyboardButtonData("📍 Today", cbMonthPrefix+today.Format(monthLayout)),
			tgbotapi.NewInlineKeyboardButtonData(next.Format("Jan")+" ▶️", cbMonthPrefix+next.Format(monthLayout)),
		),
	)
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes" || value == "y"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "no" || value == "n" || value == "keep"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel"
}

// parseRecurrence maps the recurrence keyboard to a pattern. ok is false for
// unrecognized input; a nil pattern means no repeat.
func parseRecurrence(text string) (*model.RecurrencePattern, bool) {
	var p model.RecurrencePattern
	switch strings.TrimSpace(strings.ToLower(text)) {
	case "daily":
		p = model.RecurrenceDaily
	case "weekly":
		p = model.RecurrenceWeekly
	case "monthly":
		p = model.RecurrenceMonthly
	case strings.ToLower(btnNoRepeat), "no", "none", "-":
		return nil, true
	default:
		return nil, false
	}
	return &p, true
}
