package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"todo-planner/internal/model"
	"todo-planner/internal/store"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	data := cb.Data

	sess, err := b.session(ctx, chatID)
	if err != nil {
		b.ack(cb, "")
		return err
	}
	if !sess.authenticated() {
		b.ack(cb, "Sign in first with /login")
		return nil
	}

	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		log.Printf("[info] callback toggle chat=%d task=%s", chatID, strings.TrimPrefix(data, cbTogglePrefix))
		id, err := parseTaskID(data, cbTogglePrefix)
		if err != nil {
			b.ack(cb, "")
			return nil
		}
		b.findTask(ctx, sess, id)
		task, err := sess.store.ToggleCompletion(ctx, id)
		if err != nil {
			b.ack(cb, "Could not update the task")
			return b.sendText(chatID, userMessage(err))
		}
		if task.IsCompleted {
			b.ack(cb, "Marked done 🎉")
		} else {
			b.ack(cb, "Marked open")
		}
		text, markup, _ := b.renderList(sess, sess.store.Tasks())
		return b.editText(chatID, messageID, text, markup)

	case strings.HasPrefix(data, cbDeletePrefix):
		log.Printf("[info] callback delete request chat=%d task=%s", chatID, strings.TrimPrefix(data, cbDeletePrefix))
		b.ack(cb, "")
		id, err := parseTaskID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		task, ok := b.findTask(ctx, sess, id)
		if !ok {
			return b.sendText(chatID, userMessage(store.ErrTaskNotFound))
		}
		return b.askDeleteConfirmation(chatID, task)

	case strings.HasPrefix(data, cbConfirmPrefix):
		log.Printf("[info] callback confirm delete chat=%d task=%s", chatID, strings.TrimPrefix(data, cbConfirmPrefix))
		b.ack(cb, "")
		id, err := parseTaskID(data, cbConfirmPrefix)
		if err != nil {
			return nil
		}
		req, ok := b.getConfirmation(chatID)
		if !ok || req.taskID != id {
			task, found := b.findTask(ctx, sess, id)
			if !found {
				return b.editText(chatID, messageID, userMessage(store.ErrTaskNotFound), nil)
			}
			req = confirmationRequest{taskID: id, title: task.Title}
		}
		b.clearConfirmation(chatID)
		return b.editText(chatID, messageID, b.deleteTask(ctx, sess, req), nil)

	case strings.HasPrefix(data, cbCancelPrefix):
		log.Printf("[info] callback cancel delete chat=%d", chatID)
		b.ack(cb, "")
		b.clearConfirmation(chatID)
		return b.editText(chatID, messageID, "↩️ Kept the task.", nil)

	case strings.HasPrefix(data, cbMonthPrefix):
		month, err := time.ParseInLocation(monthLayout, strings.TrimPrefix(data, cbMonthPrefix), b.opts.Location)
		if err != nil {
			b.ack(cb, "")
			return nil
		}
		text, markup, err := b.calendarView(ctx, sess, month)
		if err != nil {
			b.ack(cb, "Could not load the calendar")
			return b.sendText(chatID, userMessage(err))
		}
		b.ack(cb, "")
		return b.editText(chatID, messageID, text, &markup)

	default:
		b.ack(cb, "")
		return nil
	}
}

// findTask looks id up in the store, refreshing it once on a miss. Buttons
// may outlive the session that rendered them.
func (b *Bot) findTask(ctx context.Context, sess *chatSession, id uuid.UUID) (model.Task, bool) {
	if task, ok := sess.store.Find(id); ok {
		return task, true
	}
	sess.store.FetchAll(ctx)
	return sess.store.Find(id)
}

func parseTaskID(data, prefix string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimPrefix(data, prefix))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse task id: %w", err)
	}
	return id, nil
}
