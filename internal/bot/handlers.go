package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"todo-planner/internal/model"
	"todo-planner/internal/store"
)

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /signup &lt;email&gt; &lt;password&gt; — create an account\n" +
	"• /login &lt;email&gt; &lt;password&gt; — sign in (or just /login to be asked)\n" +
	"• /logout — sign out\n" +
	"• /whoami — show the signed-in account\n" +
	"• /newtask — add a task step by step\n" +
	"• /tasks — list tasks and toggle them with buttons\n" +
	"• /task &lt;n&gt; — show task n of the last list\n" +
	"• /done &lt;n&gt; — mark task n done or open again\n" +
	"• /delete &lt;n&gt; — delete task n\n" +
	"• /calendar [YYYY-MM] — month view\n" +
	"• /report — today's report\n" +
	"• /reports on|off — scheduled reports\n" +
	"• /cancel — cancel the current input"

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID

	if _, err := b.ensureChat(ctx, msg); err != nil {
		return err
	}
	sess, err := b.session(ctx, chatID)
	if err != nil {
		return err
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.cancelInput(chatID, sess)
		return b.sendText(chatID, "⏪ Input cancelled.")
	}

	if msg.IsCommand() {
		log.Printf("[info] command from chat %d: /%s", chatID, msg.Command())
		return b.handleCommand(ctx, sess, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, sess, msg); handled {
		return err
	}

	if pending, ok := b.getConfirmation(chatID); ok {
		return b.handleConfirmationResponse(ctx, sess, msg, pending)
	}

	if state := b.getConversation(chatID); state != nil {
		log.Printf("[info] conversation step %d in chat %d", state.stage, chatID)
		return b.handleConversation(ctx, sess, msg, state)
	}

	return b.sendText(chatID, "🤔 I did not get that. Type /newtask to add a task or /help for all commands.")
}

func (b *Bot) handleCommand(ctx context.Context, sess *chatSession, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return b.handleStart(sess, msg)
	case "help":
		return b.sendText(chatID, helpText)
	case "signup":
		return b.handleAuthCommand(ctx, sess, msg, args, true)
	case "login":
		return b.handleAuthCommand(ctx, sess, msg, args, false)
	case "logout":
		return b.handleLogout(ctx, sess, chatID)
	case "cancel":
		b.cancelInput(chatID, sess)
		return b.sendText(chatID, "⏪ Input cancelled.")
	}

	if !sess.authenticated() {
		return b.sendText(chatID, "🔒 Sign in first with /login or create an account with /signup.")
	}

	switch msg.Command() {
	case "whoami":
		return b.handleWhoAmI(ctx, sess, chatID)
	case "newtask":
		return b.startNewTaskConversation(chatID)
	case "tasks":
		return b.handleListTasks(ctx, sess, chatID)
	case "task":
		return b.handleShowTask(ctx, sess, chatID, args)
	case "done", "toggle":
		return b.handleToggle(ctx, sess, chatID, args)
	case "delete":
		return b.handleDelete(ctx, sess, chatID, args)
	case "calendar":
		return b.handleCalendar(ctx, sess, chatID, args)
	case "report":
		return b.handleReport(ctx, sess, chatID)
	case "reports":
		return b.handleReportsSwitch(ctx, chatID, args)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(sess *chatSession, msg *tgbotapi.Message) error {
	name := ""
	if msg.From != nil {
		name = strings.TrimSpace(msg.From.FirstName)
	}
	if name == "" {
		name = "there"
	}

	next := "Sign in with /login or create an account with /signup to get started."
	if sess.authenticated() {
		next = "You are signed in. Try /tasks or /newtask."
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep your to-do list and calendar.</b>\n\n%s\n\n%s", escape(name), next, helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleMenuAlias(ctx context.Context, sess *chatSession, msg *tgbotapi.Message) (bool, error) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelHelp):
		return true, b.sendText(chatID, helpText)
	case strings.ToLower(menuLabelNewTask), strings.ToLower(menuLabelTasks), strings.ToLower(menuLabelCalendar):
	default:
		return false, nil
	}

	if !sess.authenticated() {
		return true, b.sendText(chatID, "🔒 Sign in first with /login or create an account with /signup.")
	}
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(chatID)
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, sess, chatID)
	default:
		return true, b.handleCalendar(ctx, sess, chatID, nil)
	}
}

func (b *Bot) cancelInput(chatID int64, sess *chatSession) {
	b.clearConversation(chatID)
	b.clearConfirmation(chatID)
	sess.store.ClearSelection()
}

func (b *Bot) handleLogout(ctx context.Context, sess *chatSession, chatID int64) error {
	b.cancelInput(chatID, sess)
	if err := sess.client.Logout(ctx); err != nil {
		log.Printf("logout chat %d: %v", chatID, err)
	}
	if err := b.chats.SaveToken(ctx, chatID, "", ""); err != nil {
		return err
	}
	b.dropSession(chatID)
	return b.sendText(chatID, "👋 Signed out. See you soon!")
}

func (b *Bot) handleWhoAmI(ctx context.Context, sess *chatSession, chatID int64) error {
	user, err := sess.client.Me(ctx)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	return b.sendText(chatID, fmt.Sprintf("🙋 Signed in as <b>%s</b> since %s.", escape(user.Email), user.CreatedAt.In(b.opts.Location).Format("2006-01-02")))
}

// handleListTasks refreshes the store and renders the list with its keyboard.
func (b *Bot) handleListTasks(ctx context.Context, sess *chatSession, chatID int64) error {
	text, markup, err := b.taskListView(ctx, sess)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	if markup == nil {
		return b.sendText(chatID, text)
	}
	return b.sendWithReplyMarkup(chatID, text, *markup)
}

func (b *Bot) taskListView(ctx context.Context, sess *chatSession) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	state, err := sess.refresh(ctx)
	if err != nil {
		return "", nil, err
	}
	return b.renderList(sess, state.Tasks)
}

func (b *Bot) renderList(sess *chatSession, tasks []model.Task) (string, *tgbotapi.InlineKeyboardMarkup, error) {
	sess.setRefs(tasks)
	text := renderTaskList(tasks, b.now())
	markup, ok := taskListKeyboard(tasks)
	if !ok {
		return text, nil, nil
	}
	return text, &markup, nil
}

// taskRef resolves a list number, loading the list first when no list has
// been shown yet.
func (b *Bot) taskRef(ctx context.Context, sess *chatSession, chatID int64, args []string, usage string) (model.Task, bool, error) {
	if len(args) != 1 {
		return model.Task{}, false, b.sendText(chatID, "Usage: "+usage)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || n < 1 {
		return model.Task{}, false, b.sendText(chatID, "The task number must be a positive integer. Usage: "+usage)
	}

	id, ok := sess.resolve(n)
	if !ok {
		if _, _, err := b.taskListView(ctx, sess); err != nil {
			return model.Task{}, false, b.sendText(chatID, userMessage(err))
		}
		id, ok = sess.resolve(n)
	}
	if !ok {
		return model.Task{}, false, b.sendText(chatID, fmt.Sprintf("There is no task %d. See /tasks.", n))
	}
	task, ok := sess.store.Find(id)
	if !ok {
		return model.Task{}, false, b.sendText(chatID, userMessage(store.ErrTaskNotFound))
	}
	return task, true, nil
}

func (b *Bot) handleShowTask(ctx context.Context, sess *chatSession, chatID int64, args []string) error {
	task, ok, err := b.taskRef(ctx, sess, chatID, args, "/task &lt;n&gt;")
	if !ok {
		return err
	}
	sess.store.Select(task.ID)
	selected := sess.store.State().Selected
	if selected == nil {
		return b.sendText(chatID, userMessage(store.ErrTaskNotFound))
	}
	markup, _ := taskListKeyboard([]model.Task{*selected})
	return b.sendWithReplyMarkup(chatID, renderTaskDetails(*selected, b.now()), markup)
}

func (b *Bot) handleToggle(ctx context.Context, sess *chatSession, chatID int64, args []string) error {
	task, ok, err := b.taskRef(ctx, sess, chatID, args, "/done &lt;n&gt;")
	if !ok {
		return err
	}
	updated, err := sess.store.ToggleCompletion(ctx, task.ID)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	if updated.IsCompleted {
		return b.sendText(chatID, fmt.Sprintf("🎉 Done: <b>%s</b>", escape(updated.Title)))
	}
	return b.sendText(chatID, fmt.Sprintf("↩️ Open again: <b>%s</b>", escape(updated.Title)))
}

func (b *Bot) handleDelete(ctx context.Context, sess *chatSession, chatID int64, args []string) error {
	task, ok, err := b.taskRef(ctx, sess, chatID, args, "/delete &lt;n&gt;")
	if !ok {
		return err
	}
	return b.askDeleteConfirmation(chatID, task)
}

func (b *Bot) askDeleteConfirmation(chatID int64, task model.Task) error {
	b.setConfirmation(chatID, confirmationRequest{taskID: task.ID, title: task.Title})
	text := fmt.Sprintf("🗑 Delete <b>%s</b>? This cannot be undone.", escape(task.Title))
	if err := b.sendWithReplyMarkup(chatID, text, deleteConfirmKeyboard(task)); err != nil {
		return err
	}
	return b.sendWithReplyMarkup(chatID, "Tap a button or answer here.", confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, sess *chatSession, msg *tgbotapi.Message, req confirmationRequest) error {
	chatID := msg.Chat.ID
	switch {
	case isConfirmInput(msg.Text):
		b.clearConfirmation(chatID)
		return b.sendText(chatID, b.deleteTask(ctx, sess, req))
	case isCancelInput(msg.Text):
		b.clearConfirmation(chatID)
		return b.sendText(chatID, fmt.Sprintf("↩️ Kept <b>%s</b>.", escape(req.title)))
	default:
		return b.sendWithReplyMarkup(chatID, "Please confirm or keep the task.", confirmKeyboard())
	}
}

// deleteTask removes the task and returns the chat reply.
func (b *Bot) deleteTask(ctx context.Context, sess *chatSession, req confirmationRequest) string {
	if err := sess.store.Delete(ctx, req.taskID); err != nil {
		return userMessage(err)
	}
	return fmt.Sprintf("🗑 Deleted <b>%s</b>.", escape(req.title))
}

func (b *Bot) handleCalendar(ctx context.Context, sess *chatSession, chatID int64, args []string) error {
	month := b.now()
	if len(args) > 0 {
		parsed, err := time.ParseInLocation(monthLayout, args[0], b.opts.Location)
		if err != nil {
			return b.sendText(chatID, "Usage: /calendar [YYYY-MM], for example /calendar 2026-02")
		}
		month = parsed
	}

	text, markup, err := b.calendarView(ctx, sess, month)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	return b.sendWithReplyMarkup(chatID, text, markup)
}

func (b *Bot) calendarView(ctx context.Context, sess *chatSession, month time.Time) (string, tgbotapi.InlineKeyboardMarkup, error) {
	state, err := sess.refresh(ctx)
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, err
	}

	grid := sess.grid.MonthGrid(state.Version, state.Tasks, month)
	return renderCalendar(grid), monthKeyboard(grid.Month, b.now()), nil
}

func (b *Bot) handleReport(ctx context.Context, sess *chatSession, chatID int64) error {
	state, err := sess.refresh(ctx)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	return b.sendText(chatID, b.reminderSvc.DailySummary(state.Tasks, b.now()))
}

func (b *Bot) handleReportsSwitch(ctx context.Context, chatID int64, args []string) error {
	if len(args) != 1 {
		return b.sendText(chatID, "Usage: /reports on|off")
	}
	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on":
		enabled = true
	case "off":
	default:
		return b.sendText(chatID, "Usage: /reports on|off")
	}
	if err := b.chats.SetReports(ctx, chatID, enabled); err != nil {
		return err
	}
	if enabled {
		return b.sendText(chatID, "🔔 Scheduled reports are on.")
	}
	return b.sendText(chatID, "🔕 Scheduled reports are off. /report still works.")
}
