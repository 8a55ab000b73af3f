package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"todo-planner/internal/calendar"
	"todo-planner/internal/client"
	"todo-planner/internal/model"
	"todo-planner/internal/repository"
	"todo-planner/internal/store"
)

var errSignedOut = errors.New("chat is signed out")

// chatSession is one chat's connection to the API.
type chatSession struct {
	chatID int64
	client *client.Client
	store  *store.Store
	grid   *calendar.Aggregator

	mu   sync.Mutex
	refs []uuid.UUID // task ids in the order of the last rendered list
}

func (s *chatSession) authenticated() bool {
	return s.client.Session().Authenticated()
}

func (s *chatSession) setRefs(tasks []model.Task) {
	ids := make([]uuid.UUID, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	s.mu.Lock()
	s.refs = ids
	s.mu.Unlock()
}

// resolve maps a 1-based list number to a task id.
func (s *chatSession) resolve(n int) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n > len(s.refs) {
		return uuid.Nil, false
	}
	return s.refs[n-1], true
}

// refresh reloads the store from the API. A token rejected during the
// reload is reported as errSignedOut.
func (s *chatSession) refresh(ctx context.Context) (store.State, error) {
	s.store.FetchAll(ctx)
	if !s.authenticated() {
		return store.State{}, errSignedOut
	}
	state := s.store.State()
	return state, state.Err
}

func (s *chatSession) close() {
	s.store.Close()
	s.grid.Invalidate()
}

// session returns the chat's live session, restoring a saved token from the
// chat repository on first use.
func (b *Bot) session(ctx context.Context, chatID int64) (*chatSession, error) {
	b.mu.Lock()
	sess, ok := b.sessions[chatID]
	b.mu.Unlock()
	if ok {
		return sess, nil
	}

	token := ""
	row, err := b.chats.FindByChatID(ctx, chatID)
	switch {
	case err == nil:
		token = row.Token
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("load chat: %w", err)
	}

	sess = b.newSession(chatID, token)

	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.sessions[chatID]; ok {
		sess.close()
		return existing, nil
	}
	b.sessions[chatID] = sess
	return sess, nil
}

func (b *Bot) newSession(chatID int64, token string) *chatSession {
	apiSession := client.NewSession(token)
	var clientOpts []client.Option
	if b.opts.HTTPClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(b.opts.HTTPClient))
	}
	cl := client.New(b.opts.APIURL, apiSession, clientOpts...)

	sess := &chatSession{
		chatID: chatID,
		client: cl,
		store:  store.New(cl),
		grid: calendar.NewAggregator(
			calendar.WithWeekStart(b.opts.WeekStart),
			calendar.WithLocation(b.opts.Location),
			calendar.WithClock(b.opts.Now),
		),
	}
	apiSession.OnUnauthorized(func(err *client.Error) {
		b.expire(chatID, err)
	})
	return sess
}

// expire forgets a token the API rejected. The caller of the failed request
// reports it to the chat.
func (b *Bot) expire(chatID int64, cause *client.Error) {
	log.Printf("[info] session of chat %d rejected: %s", chatID, cause.Code)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.chats.SaveToken(ctx, chatID, "", ""); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("clear token of chat %d: %v", chatID, err)
	}
	b.dropSession(chatID)
}

func (b *Bot) dropSession(chatID int64) {
	b.mu.Lock()
	sess, ok := b.sessions[chatID]
	delete(b.sessions, chatID)
	b.mu.Unlock()
	if ok {
		sess.close()
	}
}

func (b *Bot) closeSessions() {
	b.mu.Lock()
	sessions := b.sessions
	b.sessions = make(map[int64]*chatSession)
	b.mu.Unlock()
	for _, sess := range sessions {
		sess.close()
	}
}

func (b *Bot) ensureChat(ctx context.Context, msg *tgbotapi.Message) (*model.ChatSession, error) {
	var telegramID int64
	var firstName, username string
	if msg.From != nil {
		telegramID = msg.From.ID
		firstName = msg.From.FirstName
		username = msg.From.UserName
	}
	return b.chats.UpsertFromTelegram(ctx, msg.Chat.ID, telegramID, firstName, username)
}
