package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todo-planner/internal/model"
)

// ChatRepository persists the bot's per-chat sessions.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// UpsertFromTelegram finds or creates the chat row and refreshes the
// profile fields.
func (r *ChatRepository) UpsertFromTelegram(ctx context.Context, chatID, telegramID int64, firstName, username string) (*model.ChatSession, error) {
	var chat model.ChatSession
	db := r.db.WithContext(ctx)
	err := db.Where("chat_id = ?", chatID).First(&chat).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"telegram_id": telegramID,
			"first_name":  firstName,
			"username":    username,
		}
		if err := db.Model(&chat).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update chat: %w", err)
		}
		return &chat, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		chat = model.ChatSession{
			ChatID:     chatID,
			TelegramID: telegramID,
			FirstName:  firstName,
			Username:   username,
			Reports:    true,
		}
		if err := db.Create(&chat).Error; err != nil {
			return nil, fmt.Errorf("create chat: %w", err)
		}
		return &chat, nil
	default:
		return nil, fmt.Errorf("find chat: %w", err)
	}
}

func (r *ChatRepository) FindByChatID(ctx context.Context, chatID int64) (*model.ChatSession, error) {
	var chat model.ChatSession
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&chat).Error; err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

// SaveToken stores the token and email of a signed-in chat. An empty token
// signs the chat out.
func (r *ChatRepository) SaveToken(ctx context.Context, chatID int64, email, token string) error {
	res := r.db.WithContext(ctx).Model(&model.ChatSession{}).Where("chat_id = ?", chatID).
		Updates(map[string]interface{}{"email": email, "token": token})
	if res.Error != nil {
		return fmt.Errorf("save chat token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ChatRepository) SetReports(ctx context.Context, chatID int64, enabled bool) error {
	if err := r.db.WithContext(ctx).Model(&model.ChatSession{}).Where("chat_id = ?", chatID).
		Update("reports", enabled).Error; err != nil {
		return fmt.Errorf("set reports: %w", err)
	}
	return nil
}

// ListReportable returns signed-in chats that accept scheduled reports.
func (r *ChatRepository) ListReportable(ctx context.Context) ([]model.ChatSession, error) {
	var chats []model.ChatSession
	if err := r.db.WithContext(ctx).Where("token <> '' AND reports = ?", true).Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}
