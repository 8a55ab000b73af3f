package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"todo-planner/internal/client"
	"todo-planner/internal/model"
	"todo-planner/internal/validation"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageDueDate
	stageRecurrence
	stageRecurrenceEnd
	stageEmail
	stagePassword
	stageConfirmPassword
)

type conversationState struct {
	stage  conversationStage
	input  model.CreateTaskInput
	signup bool
	creds  model.Credentials
}

type confirmationRequest struct {
	taskID uuid.UUID
	title  string
}

func (b *Bot) startNewTaskConversation(chatID int64) error {
	b.clearConfirmation(chatID)
	b.setConversation(chatID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(chatID, "📝 What is the task? Send a short title.", cancelKeyboard())
}

// handleAuthCommand signs in or up from inline arguments, or starts a
// conversation asking for them.
func (b *Bot) handleAuthCommand(ctx context.Context, sess *chatSession, msg *tgbotapi.Message, args []string, signup bool) error {
	chatID := msg.Chat.ID
	b.clearConfirmation(chatID)

	if len(args) >= 2 {
		b.deleteMessage(chatID, msg.MessageID)
		b.clearConversation(chatID)
		return b.authenticate(ctx, sess, chatID, model.Credentials{Email: args[0], Password: args[1]}, signup)
	}

	state := &conversationState{stage: stageEmail, signup: signup}
	if len(args) == 1 {
		state.creds.Email = args[0]
		state.stage = stagePassword
		b.setConversation(chatID, state)
		return b.sendWithReplyMarkup(chatID, "🔑 Now send your password. I will delete the message right away.", cancelKeyboard())
	}
	b.setConversation(chatID, state)
	return b.sendWithReplyMarkup(chatID, "📧 What is your email?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, sess *chatSession, msg *tgbotapi.Message, state *conversationState) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageEmail:
		state.creds.Email = text
		state.stage = stagePassword
		return b.sendWithReplyMarkup(chatID, "🔑 Now send your password. I will delete the message right away.", cancelKeyboard())

	case stagePassword:
		b.deleteMessage(chatID, msg.MessageID)
		state.creds.Password = msg.Text
		if err := validation.Credentials(state.creds); err != nil {
			state.stage = stageEmail
			return b.sendWithReplyMarkup(chatID, fieldErrors(err)+"\n\n📧 Let's try again. What is your email?", cancelKeyboard())
		}
		if state.signup {
			state.stage = stageConfirmPassword
			return b.sendWithReplyMarkup(chatID, "🔁 Send the password once more to confirm it.", cancelKeyboard())
		}
		b.clearConversation(chatID)
		return b.authenticate(ctx, sess, chatID, state.creds, false)

	case stageConfirmPassword:
		b.deleteMessage(chatID, msg.MessageID)
		if err := validation.ConfirmPassword(state.creds.Password, msg.Text); err != nil {
			state.stage = stagePassword
			return b.sendWithReplyMarkup(chatID, fieldErrors(err)+"\n\n🔑 Send your password again.", cancelKeyboard())
		}
		b.clearConversation(chatID)
		return b.authenticate(ctx, sess, chatID, state.creds, true)

	case stageTitle:
		if _, err := validation.CreateTask(model.CreateTaskInput{Title: text}); err != nil {
			return b.sendWithReplyMarkup(chatID, fieldErrors(err), cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(chatID, "🗒 Add a description, or skip.", skipKeyboard())

	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = &text
			if _, err := validation.CreateTask(state.input); err != nil {
				state.input.Description = nil
				return b.sendWithReplyMarkup(chatID, fieldErrors(err), skipKeyboard())
			}
		}
		state.stage = stageDueDate
		return b.sendWithReplyMarkup(chatID, "⏰ When is it due? Send YYYY-MM-DD, YYYY-MM-DD HH:MM, today or tomorrow. Or skip.", skipKeyboard())

	case stageDueDate:
		if isSkipInput(text) {
			return b.finishTaskCreation(ctx, sess, chatID, state.input)
		}
		due, err := client.ParseDueDate(text, b.now())
		if err != nil {
			return b.sendWithReplyMarkup(chatID, "🤔 I could not read that date. Try 2026-02-14 or 2026-02-14 18:30.", skipKeyboard())
		}
		state.input.DueDate = &due
		state.stage = stageRecurrence
		return b.sendWithReplyMarkup(chatID, "♻️ Does it repeat?", recurrenceKeyboard())

	case stageRecurrence:
		pattern, ok := parseRecurrence(text)
		if !ok {
			return b.sendWithReplyMarkup(chatID, "Pick one of the buttons.", recurrenceKeyboard())
		}
		if pattern == nil {
			return b.finishTaskCreation(ctx, sess, chatID, state.input)
		}
		state.input.RecurrencePattern = pattern
		state.stage = stageRecurrenceEnd
		return b.sendWithReplyMarkup(chatID, "📆 Until when? Send YYYY-MM-DD, or skip to repeat forever.", skipKeyboard())

	case stageRecurrenceEnd:
		if !isSkipInput(text) {
			end, err := client.ParseDueDate(text, b.now())
			if err != nil {
				return b.sendWithReplyMarkup(chatID, "🤔 I could not read that date. Try 2026-06-30.", skipKeyboard())
			}
			if state.input.DueDate != nil && end.Before(*state.input.DueDate) {
				return b.sendWithReplyMarkup(chatID, "The end date must not be before the due date.", skipKeyboard())
			}
			state.input.RecurrenceEndDate = &end
		}
		return b.finishTaskCreation(ctx, sess, chatID, state.input)

	default:
		b.clearConversation(chatID)
		return b.sendText(chatID, "Send /newtask to start again.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, sess *chatSession, chatID int64, input model.CreateTaskInput) error {
	b.clearConversation(chatID)

	task, err := sess.store.Create(ctx, input)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	log.Printf("[info] task %s created in chat %d", task.ID, chatID)

	text := "✅ Task saved!\n\n" + renderTaskDetails(task, b.now())
	return b.sendText(chatID, text)
}

func (b *Bot) authenticate(ctx context.Context, sess *chatSession, chatID int64, creds model.Credentials, signup bool) error {
	var (
		result model.AuthResult
		err    error
	)
	if signup {
		result, err = sess.client.SignUp(ctx, creds)
	} else {
		result, err = sess.client.Login(ctx, creds)
	}
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}

	if err := b.chats.SaveToken(ctx, chatID, result.User.Email, result.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	sess.store.FetchAll(ctx)

	greeting := "✅ Welcome back"
	if signup {
		greeting = "🎉 Account created"
	}
	return b.sendText(chatID, fmt.Sprintf("%s, <b>%s</b>! Try /tasks or /newtask.", greeting, escape(result.User.Email)))
}

func fieldErrors(err error) string {
	verrs, ok := validation.AsErrors(err)
	if !ok {
		return "✋ " + escape(err.Error())
	}
	lines := make([]string, len(verrs))
	for i, fe := range verrs {
		lines[i] = "✋ " + escape(fe.Message)
	}
	return strings.Join(lines, "\n")
}
