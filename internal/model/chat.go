package model

import "time"

// ChatSession links a Telegram chat to an API session. It lives in the bot's
// own database, never in the API server's.
type ChatSession struct {
	ChatID     int64     `gorm:"primaryKey;autoIncrement:false"`
	TelegramID int64     `gorm:"index"`
	Username   string    `gorm:"size:255"`
	FirstName  string    `gorm:"size:255"`
	Email      string    `gorm:"size:255"`
	Token      string    `gorm:"size:1024"`
	Reports    bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// SignedIn reports whether the chat holds an API token.
func (c ChatSession) SignedIn() bool {
	return c.Token != ""
}
