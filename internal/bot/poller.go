package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	customerrors "avito-notify/internal/domain/errors"
	"avito-notify/internal/domain/models"
)

type CommandProcessor interface {
	ProcessCommand(ctx context.Context, command *models.Command) (string, error)
}

type ChatRegistry interface {
	UpsertByTgChatID(ctx context.Context, tgChatID int64, title string) (*models.Chat, error)

	DeleteByTgChatID(ctx context.Context, tgChatID int64) error
}

type ChatCleaner interface {
	CleanupChat(ctx context.Context, tgChatID int64) error
}

// MemberChecker отвечает на вопрос, кем пользователь является в группе.
type MemberChecker interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Poller читает обновления Telegram длинным опросом и раздаёт команды.
// Приватные команды доступны только администратору сервиса, групповые —
// администраторам группы.
type Poller struct {
	bot         *tgbotapi.BotAPI
	members     MemberChecker
	commands    CommandProcessor
	chats       ChatRegistry
	cleaner     ChatCleaner
	adminUserID int64
	logger      *slog.Logger
	stopCh      chan struct{}
}

func NewPoller(
	bot *tgbotapi.BotAPI,
	commands CommandProcessor,
	chats ChatRegistry,
	cleaner ChatCleaner,
	adminUserID int64,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		bot:         bot,
		members:     bot,
		commands:    commands,
		chats:       chats,
		cleaner:     cleaner,
		adminUserID: adminUserID,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

func (p *Poller) Start() {
	p.logger.Info("Запуск Telegram поллера")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := p.bot.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-p.stopCh:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			p.processUpdate(update)
		}
	}
}

func (p *Poller) Stop() {
	p.logger.Info("Остановка Telegram поллера")
	p.bot.StopReceivingUpdates()
	close(p.stopCh)
}

func (p *Poller) processUpdate(update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if update.MyChatMember != nil {
		p.processMembership(ctx, update.MyChatMember)
		return
	}

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	p.processCommand(ctx, update.Message)
}

// processMembership реагирует на добавление и удаление бота из чатов.
func (p *Poller) processMembership(ctx context.Context, member *tgbotapi.ChatMemberUpdated) {
	status := member.NewChatMember.Status

	switch status {
	case "member", "administrator":
		if _, err := p.chats.UpsertByTgChatID(ctx, member.Chat.ID, member.Chat.Title); err != nil {
			p.logger.Error("Не удалось зарегистрировать чат", "tg_chat_id", member.Chat.ID, "error", err)
			return
		}

		p.logger.Info("Бот добавлен в чат", "tg_chat_id", member.Chat.ID, "title", member.Chat.Title)
		p.reply(member.Chat.ID, "Привет! Привяжите аккаунт Avito командой /link <avito_user_id>")

	case "left", "kicked":
		if err := p.cleaner.CleanupChat(ctx, member.Chat.ID); err != nil {
			p.logger.Warn("Не удалось очистить сообщения чата", "tg_chat_id", member.Chat.ID, "error", err)
		}

		if err := p.chats.DeleteByTgChatID(ctx, member.Chat.ID); err != nil {
			p.logger.Warn("Не удалось снять чат с учёта", "tg_chat_id", member.Chat.ID, "error", err)
			return
		}

		p.logger.Info("Бот удалён из чата, привязки сняты", "tg_chat_id", member.Chat.ID)
	}
}

func (p *Poller) processCommand(ctx context.Context, message *tgbotapi.Message) {
	private := message.Chat.IsPrivate()

	command := &models.Command{
		Type:     models.CommandType("/" + message.Command()),
		ChatID:   message.Chat.ID,
		UserID:   message.From.ID,
		Args:     message.CommandArguments(),
		Private:  private,
		Group:    !private,
		Username: message.From.UserName,
	}

	p.logger.Info("Получена команда",
		"command", command.Type,
		"chat_id", command.ChatID,
		"user_id", command.UserID,
	)

	if !p.authorized(command) {
		p.reply(command.ChatID, "⛔ Команда доступна только администраторам")
		return
	}

	response, err := p.commands.ProcessCommand(ctx, command)
	if err != nil {
		p.logger.Warn("Команда завершилась ошибкой",
			"command", command.Type,
			"chat_id", command.ChatID,
			"error", err,
		)

		response = userMessage(err)
	}

	if response != "" {
		p.reply(command.ChatID, response)
	}
}

func (p *Poller) authorized(command *models.Command) bool {
	if command.Private {
		return command.UserID == p.adminUserID
	}

	member, err := p.members.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: command.ChatID,
			UserID: command.UserID,
		},
	})
	if err != nil {
		p.logger.Warn("Не удалось проверить права в группе",
			"chat_id", command.ChatID,
			"user_id", command.UserID,
			"error", err,
		)

		return false
	}

	return member.Status == "administrator" || member.Status == "creator"
}

func (p *Poller) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := p.bot.Send(msg); err != nil {
		p.logger.Error("Ошибка при отправке ответа", "chat_id", chatID, "error", err)
	}
}

// userMessage переводит доменные ошибки в ответ пользователю.
func userMessage(err error) string {
	switch err.(type) {
	case *customerrors.ErrInvalidArgument,
		*customerrors.ErrInvalidTimezone,
		*customerrors.ErrAccountNotFound,
		*customerrors.ErrChatNotFound,
		*customerrors.ErrLinkNotFound,
		*customerrors.ErrUnknownCommand:
		return "❌ " + err.Error()
	default:
		return "Произошла ошибка при обработке команды. Попробуйте позже."
	}
}
