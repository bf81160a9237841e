package models

import (
	"time"
)

// Chat — Telegram-чат, в который доставляются уведомления.
type Chat struct {
	ID        int64
	TgChatID  int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
