package models

import (
	"time"
)

// Reminder — открытая отметка "покупатель ждёт ответа" по одному диалогу.
// На пару (аккаунт, диалог Avito) существует не более одной записи.
type Reminder struct {
	ID           int64
	AccountID    int64
	AvitoChatID  string
	FirstTS      time.Time
	LastReminder *time.Time
	ChatTitle    string
	CreatedAt    time.Time
}

// ElapsedMinutes — сколько полных минут покупатель ждёт ответа.
func (r *Reminder) ElapsedMinutes(now time.Time) int {
	return int(now.Sub(r.FirstTS).Minutes())
}
