package avito

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"avito-notify/internal/config"
	customerrors "avito-notify/internal/domain/errors"
	"avito-notify/internal/domain/models"
)

// MessengerClient работает с мессенджером Avito от имени продавца.
type MessengerClient struct {
	client  *resty.Client
	tokens  *TokenManager
	baseURL string
	logger  *slog.Logger
}

func NewMessengerClient(client *resty.Client, tokens *TokenManager, cfg *config.Config, logger *slog.Logger) *MessengerClient {
	return &MessengerClient{
		client:  client,
		tokens:  tokens,
		baseURL: cfg.AvitoAPIBase,
		logger:  logger,
	}
}

type messagesResponse struct {
	Messages []struct {
		Direction string `json:"direction"`
	} `json:"messages"`
}

// LastMessageDirection определяет, кто написал последним в диалоге.
// При любой ошибке возвращает DirectionUnknown: уведомление в этом случае
// лучше отправить, чем потерять.
func (c *MessengerClient) LastMessageDirection(ctx context.Context, avitoUserID int64, avitoChatID string) models.Direction {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		c.logger.Warn("Нет действующего токена для проверки направления", "error", err)
		return models.DirectionUnknown
	}

	url := fmt.Sprintf("%s/messenger/v2/accounts/%d/chats/%s/messages/", c.baseURL, avitoUserID, avitoChatID)

	result := &messagesResponse{}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("limit", "1").
		SetResult(result).
		Get(url)
	if err != nil {
		c.logger.Warn("Не удалось получить последнее сообщение диалога",
			"avito_chat_id", avitoChatID,
			"error", err,
		)

		return models.DirectionUnknown
	}

	if !resp.IsSuccess() || len(result.Messages) == 0 {
		c.logger.Warn("Мессенджер Avito не вернул сообщения",
			"avito_chat_id", avitoChatID,
			"status", resp.StatusCode(),
		)

		return models.DirectionUnknown
	}

	switch result.Messages[0].Direction {
	case "in":
		return models.DirectionBuyer
	case "out":
		return models.DirectionSeller
	default:
		return models.DirectionUnknown
	}
}

// SubscribeWebhook подписывает сервис на веб-хуки мессенджера Avito.
func (c *MessengerClient) SubscribeWebhook(ctx context.Context, publicURL string) error {
	if publicURL == "" {
		return &customerrors.ErrNotConfigured{What: "WEBHOOK_PUBLIC_URL"}
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]string{"url": publicURL}).
		Post(c.baseURL + "/messenger/v3/webhook")
	if err != nil {
		return fmt.Errorf("подписка на webhook: %w", err)
	}

	if !resp.IsSuccess() {
		return &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	c.logger.Info("Подписка на webhook Avito оформлена", "url", publicURL)

	return nil
}

// Ping проверяет доступность Avito API с действующим токеном.
func (c *MessengerClient) Ping(ctx context.Context) (int, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get(c.baseURL + "/messenger/v2/chats")
	if err != nil {
		return 0, fmt.Errorf("проверка Avito API: %w", err)
	}

	return resp.StatusCode(), nil
}
