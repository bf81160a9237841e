package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier отправляет сообщения в Telegram-чаты.
type Notifier interface {
	SendMessage(ctx context.Context, tgChatID int64, text string) (int64, error)
	DeleteMessage(ctx context.Context, tgChatID, tgMessageID int64) error
}

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

func NewTelegramNotifier(bot *tgbotapi.BotAPI, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		logger: logger,
	}
}

// SendMessage отправляет текст в чат и возвращает ID сообщения Telegram.
func (n *TelegramNotifier) SendMessage(_ context.Context, tgChatID int64, text string) (int64, error) {
	if n.bot == nil {
		return 0, fmt.Errorf("telegram клиент не инициализирован")
	}

	msg := tgbotapi.NewMessage(tgChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	sent, err := n.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("ошибка при отправке сообщения в чат %d: %w", tgChatID, err)
	}

	return int64(sent.MessageID), nil
}

func (n *TelegramNotifier) DeleteMessage(_ context.Context, tgChatID, tgMessageID int64) error {
	if n.bot == nil {
		return fmt.Errorf("telegram клиент не инициализирован")
	}

	//nolint:gosec // G115: ID сообщений Telegram укладываются в int32
	_, err := n.bot.Request(tgbotapi.NewDeleteMessage(tgChatID, int(tgMessageID)))
	if err != nil {
		return fmt.Errorf("ошибка при удалении сообщения %d из чата %d: %w", tgMessageID, tgChatID, err)
	}

	return nil
}
