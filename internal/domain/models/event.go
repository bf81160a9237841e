package models

import (
	"time"
)

// Direction — чьё сообщение было последним в диалоге Avito.
type Direction string

const (
	DirectionBuyer   Direction = "buyer"
	DirectionSeller  Direction = "seller"
	DirectionUnknown Direction = "unknown"
)

// ChatEvent — входящее событие мессенджера Avito, уже привязанное
// к внутреннему аккаунту. Направление вычисляется один раз на границе
// (author_id == seller_id) и дальше обрабатывается единой точкой входа.
type ChatEvent struct {
	AccountID   int64
	AvitoUserID int64
	AvitoChatID string
	Direction   Direction
	Text        string
	Timestamp   time.Time
}

func (e *ChatEvent) IsSellerReply() bool {
	return e.Direction == DirectionSeller
}
