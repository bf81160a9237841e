package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"avito-notify/internal/common/metrics"
	customerrors "avito-notify/internal/domain/errors"
	"avito-notify/internal/domain/models"
)

type ChatRepository interface {
	UpsertByTgChatID(ctx context.Context, tgChatID int64, title string) (*models.Chat, error)

	FindByTgChatID(ctx context.Context, tgChatID int64) (*models.Chat, error)

	DeleteByTgChatID(ctx context.Context, tgChatID int64) error
}

type ReminderCleaner interface {
	ClearForAccount(ctx context.Context, accountID int64) (int64, error)
}

type AuthURLBuilder interface {
	BuildAuthorizeURL() string
}

type Transactor interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

// AdminService выполняет команды управляющего Telegram-бота.
// Права уже проверены на входе: приватные команды доступны только
// администратору сервиса, групповые — администраторам группы.
type AdminService struct {
	accountRepo AccountRepository
	chatRepo    ChatRepository
	linkRepo    LinkRepository
	reminders   ReminderCleaner
	auth        AuthURLBuilder
	tx          Transactor
	logger      *slog.Logger
}

func NewAdminService(
	accountRepo AccountRepository,
	chatRepo ChatRepository,
	linkRepo LinkRepository,
	reminders ReminderCleaner,
	auth AuthURLBuilder,
	tx Transactor,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		accountRepo: accountRepo,
		chatRepo:    chatRepo,
		linkRepo:    linkRepo,
		reminders:   reminders,
		auth:        auth,
		tx:          tx,
		logger:      logger,
	}
}

// ProcessCommand выполняет команду и возвращает текст ответа.
func (s *AdminService) ProcessCommand(ctx context.Context, cmd *models.Command) (string, error) {
	reply, err := s.dispatch(ctx, cmd)

	status := "success"
	if err != nil {
		status = "error"
	}

	metrics.RecordBotCommand(string(cmd.Type), status)

	return reply, err
}

//nolint:cyclop // Диспетчеризация команд — плоский switch
func (s *AdminService) dispatch(ctx context.Context, cmd *models.Command) (string, error) {
	switch cmd.Type {
	case models.CommandStart, models.CommandHelp:
		return s.helpText(cmd.Private), nil
	case models.CommandAddAvito:
		return s.addAccount(ctx, cmd.Args)
	case models.CommandRename:
		return s.renameAccount(ctx, cmd.Args)
	case models.CommandAccounts:
		return s.listAccounts(ctx)
	case models.CommandDeleteAccount:
		return s.deleteAccount(ctx, cmd.Args)
	case models.CommandClearReminders:
		return s.clearReminders(ctx, cmd.Args)
	case models.CommandAvitoLink:
		return "🔗 Ссылка для авторизации на Avito:\n" + s.auth.BuildAuthorizeURL(), nil
	case models.CommandLink:
		return s.linkChat(ctx, cmd)
	case models.CommandUnlink:
		return s.unlinkChat(ctx, cmd)
	case models.CommandMute:
		return s.setMute(ctx, cmd)
	case models.CommandHours:
		return s.setHours(ctx, cmd)
	case models.CommandDigest:
		return s.setDigest(ctx, cmd)
	default:
		return "", &customerrors.ErrUnknownCommand{Command: string(cmd.Type)}
	}
}

func (s *AdminService) helpText(private bool) string {
	if private {
		return strings.Join([]string{
			"Доступные команды:",
			"/add_avito <avito_user_id> [имя] — добавить аккаунт",
			"/rename <avito_user_id> <имя> — переименовать аккаунт",
			"/accounts — список аккаунтов",
			"/delete_account <avito_user_id> — удалить аккаунт",
			"/clear_reminders <avito_user_id> — снять напоминания",
			"/avito_link — ссылка для авторизации на Avito",
		}, "\n")
	}

	return strings.Join([]string{
		"Команды группы:",
		"/link <avito_user_id> — привязать аккаунт к этому чату",
		"/unlink <avito_user_id> — отвязать аккаунт",
		"/mute on|off — приглушить уведомления",
		"/hours HH:MM-HH:MM [Europe/Moscow] — рабочие часы",
		"/digest HH:MM|off — время дневного дайджеста",
	}, "\n")
}

func (s *AdminService) addAccount(ctx context.Context, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", &customerrors.ErrInvalidArgument{Message: "укажите avito_user_id: /add_avito <id> [имя]"}
	}

	avitoUserID, err := parseAvitoID(fields[0])
	if err != nil {
		return "", err
	}

	name := strings.Join(fields[1:], " ")

	account, err := s.accountRepo.EnsureByAvitoID(ctx, avitoUserID, name)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Аккаунт %s добавлен", account.Label()), nil
}

func (s *AdminService) renameAccount(ctx context.Context, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", &customerrors.ErrInvalidArgument{Message: "формат: /rename <avito_user_id> <имя>"}
	}

	avitoUserID, err := parseAvitoID(fields[0])
	if err != nil {
		return "", err
	}

	account, err := s.accountRepo.FindByAvitoID(ctx, avitoUserID)
	if err != nil {
		return "", err
	}

	displayName := strings.Join(fields[1:], " ")

	if err := s.accountRepo.UpdateDisplayName(ctx, account.ID, displayName); err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Аккаунт %d теперь называется «%s»", avitoUserID, displayName), nil
}

func (s *AdminService) listAccounts(ctx context.Context) (string, error) {
	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return "", err
	}

	if len(accounts) == 0 {
		return "Аккаунтов пока нет. Добавьте первый: /add_avito <id>", nil
	}

	var b strings.Builder

	b.WriteString("Подключённые аккаунты:\n")

	for _, account := range accounts {
		fmt.Fprintf(&b, "• %s (avito_user_id %d)\n", account.Label(), account.AvitoUserID)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *AdminService) deleteAccount(ctx context.Context, args string) (string, error) {
	avitoUserID, err := parseAvitoID(strings.TrimSpace(args))
	if err != nil {
		return "", err
	}

	account, err := s.accountRepo.FindByAvitoID(ctx, avitoUserID)
	if err != nil {
		return "", err
	}

	if err := s.accountRepo.Delete(ctx, account.ID); err != nil {
		return "", err
	}

	s.logger.Info("Аккаунт удалён", "avito_user_id", avitoUserID)

	return fmt.Sprintf("🗑 Аккаунт %s удалён вместе с привязками и напоминаниями", account.Label()), nil
}

func (s *AdminService) clearReminders(ctx context.Context, args string) (string, error) {
	avitoUserID, err := parseAvitoID(strings.TrimSpace(args))
	if err != nil {
		return "", err
	}

	account, err := s.accountRepo.FindByAvitoID(ctx, avitoUserID)
	if err != nil {
		return "", err
	}

	count, err := s.reminders.ClearForAccount(ctx, account.ID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("🧹 Снято напоминаний: %d", count), nil
}

func (s *AdminService) linkChat(ctx context.Context, cmd *models.Command) (string, error) {
	avitoUserID, err := parseAvitoID(strings.TrimSpace(cmd.Args))
	if err != nil {
		return "", err
	}

	account, err := s.accountRepo.FindByAvitoID(ctx, avitoUserID)
	if err != nil {
		return "", err
	}

	// Чат и привязка появляются вместе либо не появляются вовсе.
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		chat, err := s.chatRepo.UpsertByTgChatID(ctx, cmd.ChatID, "")
		if err != nil {
			return err
		}

		return s.linkRepo.Ensure(ctx, account.ID, chat.ID)
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("🔗 Аккаунт %s привязан к этому чату", account.Label()), nil
}

func (s *AdminService) unlinkChat(ctx context.Context, cmd *models.Command) (string, error) {
	avitoUserID, err := parseAvitoID(strings.TrimSpace(cmd.Args))
	if err != nil {
		return "", err
	}

	account, err := s.accountRepo.FindByAvitoID(ctx, avitoUserID)
	if err != nil {
		return "", err
	}

	chat, err := s.chatRepo.FindByTgChatID(ctx, cmd.ChatID)
	if err != nil {
		return "", err
	}

	if err := s.linkRepo.Delete(ctx, account.ID, chat.ID); err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Аккаунт %s отвязан от этого чата", account.Label()), nil
}

func (s *AdminService) setMute(ctx context.Context, cmd *models.Command) (string, error) {
	var muted bool

	switch strings.ToLower(strings.TrimSpace(cmd.Args)) {
	case "on":
		muted = true
	case "off":
		muted = false
	default:
		return "", &customerrors.ErrInvalidArgument{Message: "формат: /mute on|off"}
	}

	chat, err := s.chatRepo.FindByTgChatID(ctx, cmd.ChatID)
	if err != nil {
		return "", err
	}

	updated, err := s.linkRepo.UpdateSettingsForChat(ctx, chat.ID, models.LinkSettings{Muted: &muted})
	if err != nil {
		return "", err
	}

	if updated == 0 {
		return "В этом чате нет привязанных аккаунтов", nil
	}

	if muted {
		return "🔕 Уведомления приглушены", nil
	}

	return "🔔 Уведомления включены", nil
}

func (s *AdminService) setHours(ctx context.Context, cmd *models.Command) (string, error) {
	from, to, tz, err := models.ParseHoursRange(cmd.Args)
	if err != nil {
		return "", &customerrors.ErrInvalidArgument{Message: err.Error()}
	}

	settings := models.LinkSettings{WorkFrom: &from, WorkTo: &to}

	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return "", &customerrors.ErrInvalidTimezone{Name: tz}
		}

		settings.TZ = &tz
	}

	chat, err := s.chatRepo.FindByTgChatID(ctx, cmd.ChatID)
	if err != nil {
		return "", err
	}

	updated, err := s.linkRepo.UpdateSettingsForChat(ctx, chat.ID, settings)
	if err != nil {
		return "", err
	}

	if updated == 0 {
		return "В этом чате нет привязанных аккаунтов", nil
	}

	reply := fmt.Sprintf("🕘 Рабочие часы: %s-%s", from, to)
	if tz != "" {
		reply += " " + tz
	}

	return reply, nil
}

func (s *AdminService) setDigest(ctx context.Context, cmd *models.Command) (string, error) {
	arg := strings.ToLower(strings.TrimSpace(cmd.Args))

	var settings models.LinkSettings

	switch arg {
	case "":
		return "", &customerrors.ErrInvalidArgument{Message: "формат: /digest HH:MM или /digest off"}
	case "off":
		settings.ClearDigest = true
	default:
		dt, err := models.ParseDayTime(arg)
		if err != nil {
			return "", &customerrors.ErrInvalidArgument{Message: err.Error()}
		}

		settings.DigestTime = &dt
	}

	chat, err := s.chatRepo.FindByTgChatID(ctx, cmd.ChatID)
	if err != nil {
		return "", err
	}

	updated, err := s.linkRepo.UpdateSettingsForChat(ctx, chat.ID, settings)
	if err != nil {
		return "", err
	}

	if updated == 0 {
		return "В этом чате нет привязанных аккаунтов", nil
	}

	if settings.ClearDigest {
		return "🗞️ Дневной дайджест отключён", nil
	}

	return fmt.Sprintf("🗞️ Дайджест будет приходить в %s", settings.DigestTime), nil
}

func parseAvitoID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &customerrors.ErrInvalidArgument{Message: fmt.Sprintf("некорректный avito_user_id %q", s)}
	}

	return id, nil
}
