package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"avito-notify/internal/common/metrics"
	"avito-notify/internal/domain/models"
)

type ReminderRepository interface {
	Create(ctx context.Context, accountID int64, avitoChatID string, firstTS time.Time, chatTitle string) (bool, error)

	FindDue(ctx context.Context, now time.Time, interval time.Duration) ([]*models.Reminder, error)

	MarkReminded(ctx context.Context, id int64, ts time.Time) (bool, error)

	DeleteByConversation(ctx context.Context, accountID int64, avitoChatID string) (bool, error)

	FindOpenByAccount(ctx context.Context, accountID int64) ([]*models.Reminder, error)

	ClearByAccount(ctx context.Context, accountID int64) (int64, error)

	CountOpen(ctx context.Context) (int64, error)
}

type AccountRepository interface {
	EnsureByAvitoID(ctx context.Context, avitoUserID int64, name string) (*models.Account, error)

	FindByID(ctx context.Context, id int64) (*models.Account, error)

	FindByAvitoID(ctx context.Context, avitoUserID int64) (*models.Account, error)

	UpdateDisplayName(ctx context.Context, id int64, displayName string) error

	Delete(ctx context.Context, id int64) error

	GetAll(ctx context.Context) ([]*models.Account, error)
}

type Broadcaster interface {
	Deliver(ctx context.Context, accountID int64, text string) (int, error)

	DeliverAll(ctx context.Context, accountID int64, text string) (int, error)
}

type DirectionChecker interface {
	LastMessageDirection(ctx context.Context, avitoUserID int64, avitoChatID string) models.Direction
}

// ReminderService ведёт жизненный цикл напоминаний "покупатель ждёт ответа".
// Вся логика строится на условных операциях в базе, поэтому вебхук
// и периодический тик могут работать одновременно без блокировок.
type ReminderService struct {
	reminderRepo ReminderRepository
	accountRepo  AccountRepository
	broadcaster  Broadcaster
	avito        DirectionChecker
	interval     time.Duration
	logger       *slog.Logger

	now func() time.Time
}

func NewReminderService(
	reminderRepo ReminderRepository,
	accountRepo AccountRepository,
	broadcaster Broadcaster,
	avito DirectionChecker,
	interval time.Duration,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		accountRepo:  accountRepo,
		broadcaster:  broadcaster,
		avito:        avito,
		interval:     interval,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClock подменяет источник времени в тестах.
func (s *ReminderService) SetClock(now func() time.Time) {
	s.now = now
}

// HandleEvent — единая точка входа для событий мессенджера Avito.
// Сообщение покупателя открывает напоминание и сразу уходит в чаты,
// ответ продавца закрывает напоминание.
func (s *ReminderService) HandleEvent(ctx context.Context, event *models.ChatEvent) error {
	metrics.RecordWebhookEvent(string(event.Direction))

	if event.IsSellerReply() {
		deleted, err := s.reminderRepo.DeleteByConversation(ctx, event.AccountID, event.AvitoChatID)
		if err != nil {
			return err
		}

		if deleted {
			s.logger.Info("Продавец ответил, напоминание закрыто",
				"account_id", event.AccountID,
				"avito_chat_id", event.AvitoChatID,
			)
		}

		return nil
	}

	created, err := s.reminderRepo.Create(ctx, event.AccountID, event.AvitoChatID, event.Timestamp, "")
	if err != nil {
		return err
	}

	if created {
		s.logger.Info("Открыто напоминание по диалогу",
			"account_id", event.AccountID,
			"avito_chat_id", event.AvitoChatID,
		)
	}

	account, err := s.accountRepo.FindByID(ctx, event.AccountID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("📩 <b>%s</b>: новое сообщение в чате %s\n\n%s",
		account.Label(), event.AvitoChatID, event.Text)

	if _, err := s.broadcaster.Deliver(ctx, event.AccountID, text); err != nil {
		return err
	}

	return nil
}

// Tick обходит просроченные напоминания. Ошибки по отдельным строкам
// логируются и не прерывают обход.
func (s *ReminderService) Tick(ctx context.Context) {
	started := s.now()

	defer func() {
		metrics.RecordTick("reminders", time.Since(started))
	}()

	now := s.now()

	reminders, err := s.reminderRepo.FindDue(ctx, now, s.interval)
	if err != nil {
		s.logger.Error("Не удалось получить просроченные напоминания", "error", err)
		return
	}

	for _, reminder := range reminders {
		if err := s.processDue(ctx, reminder, now); err != nil {
			s.logger.Error("Ошибка при обработке напоминания",
				"reminder_id", reminder.ID,
				"avito_chat_id", reminder.AvitoChatID,
				"error", err,
			)
		}
	}

	if count, err := s.reminderRepo.CountOpen(ctx); err == nil {
		metrics.SetOpenReminders(float64(count))
	}
}

func (s *ReminderService) processDue(ctx context.Context, reminder *models.Reminder, now time.Time) error {
	account, err := s.accountRepo.FindByID(ctx, reminder.AccountID)
	if err != nil {
		return err
	}

	direction := s.avito.LastMessageDirection(ctx, account.AvitoUserID, reminder.AvitoChatID)

	switch direction {
	case models.DirectionSeller:
		// Продавец ответил между вебхуком и тиком, напоминание устарело.
		if _, err := s.reminderRepo.DeleteByConversation(ctx, reminder.AccountID, reminder.AvitoChatID); err != nil {
			return err
		}

		s.logger.Info("Продавец уже ответил, напоминание снято",
			"reminder_id", reminder.ID,
			"avito_chat_id", reminder.AvitoChatID,
		)

		return nil

	case models.DirectionBuyer:
		text := fmt.Sprintf("⏰ Уже %d мин без ответа в чате %s (аккаунт %s)",
			reminder.ElapsedMinutes(now), s.conversationLabel(reminder), account.Label())

		delivered, err := s.broadcaster.Deliver(ctx, reminder.AccountID, text)
		if err != nil {
			return err
		}

		// Отметка сдвигается только после хотя бы одной доставки,
		// иначе напоминание попадёт в следующий тик.
		if delivered >= 1 {
			if _, err := s.reminderRepo.MarkReminded(ctx, reminder.ID, now); err != nil {
				return err
			}
		}

		return nil

	default:
		text := fmt.Sprintf("⚠️ Не удалось проверить чат %s (аккаунт %s): возможно, покупатель ждёт ответа",
			s.conversationLabel(reminder), account.Label())

		if _, err := s.broadcaster.DeliverAll(ctx, reminder.AccountID, text); err != nil {
			s.logger.Error("Не удалось доставить служебное уведомление",
				"reminder_id", reminder.ID,
				"error", err,
			)
		}

		// Статус диалога неизвестен, не зацикливаем уведомления чаще интервала.
		if _, err := s.reminderRepo.MarkReminded(ctx, reminder.ID, now); err != nil {
			return err
		}

		return nil
	}
}

func (s *ReminderService) conversationLabel(reminder *models.Reminder) string {
	if reminder.ChatTitle != "" {
		return reminder.ChatTitle
	}

	return "#" + reminder.AvitoChatID
}

// ClearForAccount снимает все напоминания аккаунта и возвращает их число.
func (s *ReminderService) ClearForAccount(ctx context.Context, accountID int64) (int64, error) {
	count, err := s.reminderRepo.ClearByAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Напоминания аккаунта сняты", "account_id", accountID, "count", count)

	return count, nil
}
