package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"avito-notify/internal/common/metrics"
	"avito-notify/internal/domain/models"
)

type DirectSender interface {
	DeliverTo(ctx context.Context, tgChatID int64, text string) error
}

// DigestService раз в минуту сверяет локальное время каждой привязки
// с назначенным временем дайджеста и шлёт сводку открытых напоминаний.
// Сравнение точное, по минуте: пропущенная минута не навёрстывается.
type DigestService struct {
	linkRepo     LinkRepository
	reminderRepo ReminderRepository
	sender       DirectSender
	logger       *slog.Logger

	now func() time.Time
}

func NewDigestService(
	linkRepo LinkRepository,
	reminderRepo ReminderRepository,
	sender DirectSender,
	logger *slog.Logger,
) *DigestService {
	return &DigestService{
		linkRepo:     linkRepo,
		reminderRepo: reminderRepo,
		sender:       sender,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock подменяет источник времени в тестах.
func (s *DigestService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *DigestService) Tick(ctx context.Context) {
	started := s.now()

	defer func() {
		metrics.RecordTick("digest", time.Since(started))
	}()

	links, err := s.linkRepo.FindWithDigest(ctx)
	if err != nil {
		s.logger.Error("Не удалось получить привязки с дайджестом", "error", err)
		return
	}

	now := s.now()

	for _, link := range links {
		if err := s.processLink(ctx, link, now); err != nil {
			s.logger.Error("Ошибка при отправке дайджеста",
				"tg_chat_id", link.TgChatID,
				"account_id", link.AccountID,
				"error", err,
			)
		}
	}
}

func (s *DigestService) processLink(ctx context.Context, link *models.Link, now time.Time) error {
	if link.Muted || link.DigestTime == nil {
		return nil
	}

	loc, err := time.LoadLocation(link.TZ)
	if err != nil {
		s.logger.Warn("Неизвестная таймзона привязки, используется UTC",
			"tg_chat_id", link.TgChatID,
			"tz", link.TZ,
		)

		loc = time.UTC
	}

	if models.DayTimeOf(now.In(loc)) != *link.DigestTime {
		return nil
	}

	reminders, err := s.reminderRepo.FindOpenByAccount(ctx, link.AccountID)
	if err != nil {
		return err
	}

	if len(reminders) == 0 {
		return nil
	}

	return s.sender.DeliverTo(ctx, link.TgChatID, s.render(reminders, now))
}

// render собирает сводку: заголовок и по строке на диалог,
// самые давние ожидания первыми.
func (s *DigestService) render(reminders []*models.Reminder, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🗞️ Дайджест: %d чат(ов) ждут ответа\n", len(reminders))

	for _, reminder := range reminders {
		label := reminder.ChatTitle
		if label == "" {
			label = "#" + reminder.AvitoChatID
		}

		fmt.Fprintf(&b, "\n• чат %s — %d мин без ответа", label, reminder.ElapsedMinutes(now))
	}

	return b.String()
}
