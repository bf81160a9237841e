package models

import (
	"time"
)

// SentMessage — отправленное ботом сообщение, учитывается для последующей
// очистки: сначала мягкое удаление (deleted_ts), затем жёсткое по ретенции.
type SentMessage struct {
	ID          int64
	TgChatID    int64
	TgMessageID int64
	SentAt      time.Time
	DeletedTS   *time.Time
}
