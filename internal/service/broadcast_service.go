package service

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"avito-notify/internal/common/metrics"
	"avito-notify/internal/common/workhours"
	"avito-notify/internal/domain/models"
)

type LinkRepository interface {
	Ensure(ctx context.Context, accountID, chatID int64) error

	Delete(ctx context.Context, accountID, chatID int64) error

	FindByAccountID(ctx context.Context, accountID int64) ([]*models.Link, error)

	FindByChatID(ctx context.Context, chatID int64) ([]*models.Link, error)

	FindWithDigest(ctx context.Context) ([]*models.Link, error)

	UpdateSettingsForChat(ctx context.Context, chatID int64, settings models.LinkSettings) (int64, error)
}

type Notifier interface {
	SendMessage(ctx context.Context, tgChatID int64, text string) (int64, error)

	DeleteMessage(ctx context.Context, tgChatID, tgMessageID int64) error
}

type SentMessageLog interface {
	Log(ctx context.Context, tgChatID, tgMessageID int64, sentAt time.Time) error
}

// BroadcastService раскладывает сообщение аккаунта по всем привязанным
// Telegram-чатам. Доставки независимы: сбой одного чата не мешает остальным.
type BroadcastService struct {
	linkRepo LinkRepository
	notifier Notifier
	sentLog  SentMessageLog
	logger   *slog.Logger

	now func() time.Time
}

func NewBroadcastService(
	linkRepo LinkRepository,
	notifier Notifier,
	sentLog SentMessageLog,
	logger *slog.Logger,
) *BroadcastService {
	return &BroadcastService{
		linkRepo: linkRepo,
		notifier: notifier,
		sentLog:  sentLog,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock подменяет источник времени в тестах.
func (s *BroadcastService) SetClock(now func() time.Time) {
	s.now = now
}

// Deliver отправляет текст во все чаты аккаунта с учётом mute и рабочих
// часов каждой привязки. Возвращает число успешных доставок; ошибка
// отдаётся только если не доставлено никуда, а сбои были.
func (s *BroadcastService) Deliver(ctx context.Context, accountID int64, text string) (int, error) {
	return s.deliver(ctx, accountID, text, true)
}

// DeliverAll отправляет текст во все чаты аккаунта, игнорируя mute и
// рабочие часы. Используется для служебных уведомлений.
func (s *BroadcastService) DeliverAll(ctx context.Context, accountID int64, text string) (int, error) {
	return s.deliver(ctx, accountID, text, false)
}

func (s *BroadcastService) deliver(ctx context.Context, accountID int64, text string, honorPolicy bool) (int, error) {
	links, err := s.linkRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	if len(links) == 0 {
		s.logger.Warn("У аккаунта нет привязанных чатов, уведомление потеряно",
			"account_id", accountID,
		)

		return 0, nil
	}

	now := s.now()

	var (
		delivered int
		errs      error
	)

	for _, link := range links {
		if honorPolicy && !s.shouldDeliver(link, now) {
			continue
		}

		if err := s.sendAndLog(ctx, link.TgChatID, text); err != nil {
			s.logger.Error("Не удалось доставить уведомление",
				"account_id", accountID,
				"tg_chat_id", link.TgChatID,
				"error", err,
			)
			metrics.RecordNotification("broadcast", "error")

			errs = multierr.Append(errs, err)

			continue
		}

		metrics.RecordNotification("broadcast", "success")

		delivered++
	}

	if delivered > 0 {
		return delivered, nil
	}

	return 0, errs
}

func (s *BroadcastService) shouldDeliver(link *models.Link, now time.Time) bool {
	if link.Muted {
		s.logger.Debug("Чат замьючен, уведомление пропущено", "tg_chat_id", link.TgChatID)
		return false
	}

	loc, err := time.LoadLocation(link.TZ)
	if err != nil {
		s.logger.Warn("Неизвестная таймзона привязки, используется UTC",
			"tg_chat_id", link.TgChatID,
			"tz", link.TZ,
		)

		loc = time.UTC
	}

	if !workhours.InWindow(now, loc, link.WorkFrom, link.WorkTo) {
		s.logger.Debug("Вне рабочих часов, уведомление пропущено",
			"tg_chat_id", link.TgChatID,
		)

		return false
	}

	return true
}

// DeliverTo отправляет текст в конкретный Telegram-чат без проверок политики.
func (s *BroadcastService) DeliverTo(ctx context.Context, tgChatID int64, text string) error {
	if err := s.sendAndLog(ctx, tgChatID, text); err != nil {
		metrics.RecordNotification("direct", "error")
		return err
	}

	metrics.RecordNotification("direct", "success")

	return nil
}

func (s *BroadcastService) sendAndLog(ctx context.Context, tgChatID int64, text string) error {
	msgID, err := s.notifier.SendMessage(ctx, tgChatID, text)
	if err != nil {
		return err
	}

	if err := s.sentLog.Log(ctx, tgChatID, msgID, s.now()); err != nil {
		// Сообщение уже в Telegram, потеря строки журнала не критична.
		s.logger.Warn("Не удалось записать сообщение в журнал",
			"tg_chat_id", tgChatID,
			"tg_message_id", msgID,
			"error", err,
		)
	}

	return nil
}
