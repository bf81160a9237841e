package service

import (
	"context"
	"log/slog"
	"time"

	"avito-notify/internal/common/metrics"
	"avito-notify/internal/domain/models"
)

type SentMessageRepository interface {
	Log(ctx context.Context, tgChatID, tgMessageID int64, sentAt time.Time) error

	FindActiveOlderThan(ctx context.Context, cutoff time.Time) ([]*models.SentMessage, error)

	FindActiveByChat(ctx context.Context, tgChatID int64) ([]*models.SentMessage, error)

	SoftDelete(ctx context.Context, id int64, ts time.Time) error

	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupService подчищает отправленные ботом сообщения: удаляет старые
// из Telegram (мягкая отметка в журнале) и окончательно вычищает строки
// журнала старше ретенции.
type CleanupService struct {
	sentRepo  SentMessageRepository
	notifier  Notifier
	maxAge    time.Duration
	retention time.Duration
	logger    *slog.Logger

	now func() time.Time
}

func NewCleanupService(
	sentRepo SentMessageRepository,
	notifier Notifier,
	maxAge time.Duration,
	retention time.Duration,
	logger *slog.Logger,
) *CleanupService {
	return &CleanupService{
		sentRepo:  sentRepo,
		notifier:  notifier,
		maxAge:    maxAge,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock подменяет источник времени в тестах.
func (s *CleanupService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CleanupService) Tick(ctx context.Context) {
	started := s.now()

	defer func() {
		metrics.RecordTick("cleanup", time.Since(started))
	}()

	now := s.now()

	messages, err := s.sentRepo.FindActiveOlderThan(ctx, now.Add(-s.maxAge))
	if err != nil {
		s.logger.Error("Не удалось получить сообщения для очистки", "error", err)
		return
	}

	s.deleteMessages(ctx, messages)

	purged, err := s.sentRepo.PurgeOlderThan(ctx, now.Add(-s.retention))
	if err != nil {
		s.logger.Error("Не удалось вычистить журнал сообщений", "error", err)
		return
	}

	if len(messages) > 0 || purged > 0 {
		s.logger.Info("Очистка сообщений завершена",
			"deleted", len(messages),
			"purged", purged,
		)
	}
}

// CleanupChat удаляет все сообщения бота в конкретном чате,
// например когда бота убрали из группы.
func (s *CleanupService) CleanupChat(ctx context.Context, tgChatID int64) error {
	messages, err := s.sentRepo.FindActiveByChat(ctx, tgChatID)
	if err != nil {
		return err
	}

	s.deleteMessages(ctx, messages)

	return nil
}

// deleteMessages удаляет сообщения из Telegram по возможности: сообщение
// старше 48 часов или уже удалённое руками Telegram не отдаст, такие
// просто отмечаются в журнале.
func (s *CleanupService) deleteMessages(ctx context.Context, messages []*models.SentMessage) {
	for _, msg := range messages {
		if err := s.notifier.DeleteMessage(ctx, msg.TgChatID, msg.TgMessageID); err != nil {
			s.logger.Debug("Telegram не удалил сообщение",
				"tg_chat_id", msg.TgChatID,
				"tg_message_id", msg.TgMessageID,
				"error", err,
			)
		}

		if err := s.sentRepo.SoftDelete(ctx, msg.ID, s.now()); err != nil {
			s.logger.Warn("Не удалось отметить сообщение удалённым",
				"id", msg.ID,
				"error", err,
			)
		}
	}
}
