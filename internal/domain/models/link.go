package models

import (
	"time"
)

// Link — привязка аккаунта Avito к Telegram-чату вместе с политикой доставки.
// Link — единственный источник правды о том, когда и куда слать уведомления.
type Link struct {
	ID         int64
	AccountID  int64
	ChatID     int64
	Muted      bool
	WorkFrom   *DayTime
	WorkTo     *DayTime
	TZ         string
	DigestTime *DayTime
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Денормализованные поля чата, заполняются при выборке с JOIN.
	TgChatID  int64
	ChatTitle string
}

// LinkSettings перечисляет изменяемые поля привязки явно.
// nil означает "не менять". ClearDigest снимает время дайджеста.
type LinkSettings struct {
	Muted       *bool
	WorkFrom    *DayTime
	WorkTo      *DayTime
	TZ          *string
	DigestTime  *DayTime
	ClearDigest bool
}

func (s LinkSettings) Empty() bool {
	return s.Muted == nil && s.WorkFrom == nil && s.WorkTo == nil &&
		s.TZ == nil && s.DigestTime == nil && !s.ClearDigest
}
