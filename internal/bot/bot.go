// Package bot is the Telegram frontend. Each chat signs in to the REST API
// and works on its tasks through its own client session and task store.
package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"todo-planner/internal/repository"
	"todo-planner/internal/service"
)

// Messenger is the part of the Telegram API the bot uses.
// *tgbotapi.BotAPI satisfies it.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options configures the bot's view of the API and the calendar.
type Options struct {
	APIURL     string
	WeekStart  time.Weekday
	Location   *time.Location
	HTTPClient *http.Client
	Now        func() time.Time

	// IdleTimeout retires a chat's worker after this long without messages.
	IdleTimeout time.Duration
}

// Bot aggregates the Telegram API with per-chat API sessions.
type Bot struct {
	api         Messenger
	chats       *repository.ChatRepository
	reminderSvc *service.ReminderService
	opts        Options

	mu            sync.Mutex
	sessions      map[int64]*chatSession
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	inboxes       map[int64]chan *tgbotapi.Message
	wg            sync.WaitGroup
}

const (
	// inboxSize is how many messages of one chat may wait for its worker.
	inboxSize = 16

	defaultIdleTimeout = 10 * time.Minute
)

const busyText = "⏳ Still working on your previous messages. Please wait a moment and try again."

// Connect authorizes the bot token with Telegram.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return api, nil
}

func New(api Messenger, chats *repository.ChatRepository, reminderSvc *service.ReminderService, opts Options) *Bot {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	return &Bot{
		api:           api,
		chats:         chats,
		reminderSvc:   reminderSvc,
		opts:          opts,
		sessions:      make(map[int64]*chatSession),
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		inboxes:       make(map[int64]chan *tgbotapi.Message),
	}
}

// Start begins polling updates until ctx is cancelled. Messages of one chat
// are handled in order; callbacks run concurrently.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.dispatch(ctx, update)
	}

	b.wg.Wait()
	b.closeSessions()
	return nil
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		}()
	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil || !msg.Chat.IsPrivate() {
			return
		}
		b.enqueue(ctx, msg)
	}
}

// enqueue hands msg to its chat's worker, starting one on first use. It
// never blocks the polling loop: a chat whose inbox is full gets a busy
// reply instead.
func (b *Bot) enqueue(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.mu.Lock()
	inbox, ok := b.inboxes[chatID]
	if !ok {
		inbox = make(chan *tgbotapi.Message, inboxSize)
		b.inboxes[chatID] = inbox
		b.wg.Add(1)
		go b.serveChat(ctx, chatID, inbox)
	}
	select {
	case inbox <- msg:
		b.mu.Unlock()
	default:
		b.mu.Unlock()
		log.Printf("[info] inbox of chat %d is full, message dropped", chatID)
		if err := b.sendText(chatID, busyText); err != nil {
			log.Printf("send busy reply: %v", err)
		}
	}
}

// serveChat handles one chat's messages in order. After IdleTimeout without
// messages it removes its inbox and exits; the next message starts a new
// worker.
func (b *Bot) serveChat(ctx context.Context, chatID int64, inbox chan *tgbotapi.Message) {
	defer b.wg.Done()
	idle := time.NewTimer(b.opts.IdleTimeout)
	defer idle.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-inbox:
			if err := b.handleMessage(ctx, msg); err != nil {
				log.Printf("handle message: %v", err)
			}
			idle.Reset(b.opts.IdleTimeout)
		case <-idle.C:
			// enqueue sends under b.mu, so an empty inbox here stays empty
			// until the entry is gone.
			b.mu.Lock()
			if len(inbox) > 0 {
				b.mu.Unlock()
				idle.Reset(b.opts.IdleTimeout)
				continue
			}
			delete(b.inboxes, chatID)
			b.mu.Unlock()
			return
		}
	}
}

func (b *Bot) now() time.Time {
	return b.opts.Now().In(b.opts.Location)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

// editText replaces a message sent earlier, typically the one holding an
// inline keyboard that was just tapped.
func (b *Bot) editText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = markup
	_, err := b.api.Send(edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

// deleteMessage removes a message holding a password. Failures are only
// logged: the bot may lack the right in some chats.
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		log.Printf("delete message %d: %v", messageID, err)
	}
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		log.Printf("callback ack: %v", err)
	}
}

func (b *Bot) getConfirmation(chatID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[chatID]
	return req, ok
}

func (b *Bot) setConfirmation(chatID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[chatID] = req
}

func (b *Bot) clearConfirmation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, chatID)
}

func (b *Bot) setConversation(chatID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[chatID] = state
}

func (b *Bot) getConversation(chatID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, chatID)
}
