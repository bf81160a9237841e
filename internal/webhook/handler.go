package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"avito-notify/internal/domain/models"
)

type EventHandler interface {
	HandleEvent(ctx context.Context, event *models.ChatEvent) error
}

type AccountEnsurer interface {
	EnsureByAvitoID(ctx context.Context, avitoUserID int64, name string) (*models.Account, error)
}

type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code string) error
}

type WebhookSubscriber interface {
	SubscribeWebhook(ctx context.Context, publicURL string) error
}

// Handler принимает веб-хуки мессенджера Avito и служебные запросы OAuth.
type Handler struct {
	events     EventHandler
	accounts   AccountEnsurer
	tokens     TokenExchanger
	subscriber WebhookSubscriber
	hookSecret string
	publicURL  string
	logger     *slog.Logger
}

func NewHandler(
	events EventHandler,
	accounts AccountEnsurer,
	tokens TokenExchanger,
	subscriber WebhookSubscriber,
	hookSecret string,
	publicURL string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		events:     events,
		accounts:   accounts,
		tokens:     tokens,
		subscriber: subscriber,
		hookSecret: hookSecret,
		publicURL:  publicURL,
		logger:     logger,
	}
}

// chatID принимает и строковые, и числовые идентификаторы диалога.
type chatID string

func (c *chatID) UnmarshalJSON(data []byte) error {
	*c = chatID(strings.Trim(string(data), `"`))
	return nil
}

type webhookEvent struct {
	Payload struct {
		Value struct {
			UserID   int64  `json:"user_id"`
			AuthorID int64  `json:"author_id"`
			ChatID   chatID `json:"chat_id"`
			Content  struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"value"`
	} `json:"payload"`
	Timestamp int64 `json:"timestamp"`
}

// HandleWebhook — POST /avito/webhook.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "ошибка чтения запроса", http.StatusBadRequest)
		return
	}

	if !VerifySignature(body, r.Header.Get("X-Hook-Signature"), h.hookSecret) {
		h.logger.Warn("Webhook с некорректной подписью отклонён", "remote", r.RemoteAddr)
		http.Error(w, "некорректная подпись", http.StatusUnauthorized)

		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "некорректное тело запроса", http.StatusBadRequest)
		return
	}

	value := event.Payload.Value
	if value.UserID == 0 || value.ChatID == "" {
		http.Error(w, "неполное событие", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.EnsureByAvitoID(r.Context(), value.UserID, "")
	if err != nil {
		h.logger.Error("Не удалось зарегистрировать аккаунт из вебхука",
			"avito_user_id", value.UserID,
			"error", err,
		)
		http.Error(w, "внутренняя ошибка", http.StatusInternalServerError)

		return
	}

	direction := models.DirectionBuyer
	if value.AuthorID == value.UserID {
		direction = models.DirectionSeller
	}

	text := value.Content.Text
	if text == "" {
		text = "[пусто]"
	}

	ts := time.Unix(event.Timestamp, 0).UTC()
	if event.Timestamp == 0 {
		ts = time.Now().UTC()
	}

	chatEvent := &models.ChatEvent{
		AccountID:   account.ID,
		AvitoUserID: value.UserID,
		AvitoChatID: string(value.ChatID),
		Direction:   direction,
		Text:        text,
		Timestamp:   ts,
	}

	if err := h.events.HandleEvent(r.Context(), chatEvent); err != nil {
		h.logger.Error("Ошибка при обработке события вебхука",
			"avito_chat_id", chatEvent.AvitoChatID,
			"error", err,
		)
		http.Error(w, "внутренняя ошибка", http.StatusInternalServerError)

		return
	}

	writeJSON(w, map[string]bool{"ok": true})
}

// HandleOAuthCallback — GET /oauth/callback?code=. Обменивает код на токены.
func (h *Handler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "параметр code обязателен", http.StatusBadRequest)
		return
	}

	if err := h.tokens.ExchangeCode(r.Context(), code); err != nil {
		h.logger.Error("Не удалось обменять код авторизации", "error", err)
		http.Error(w, "обмен кода не удался", http.StatusBadGateway)

		return
	}

	writeJSON(w, map[string]string{"detail": "Авторизация успешна. Бот готов работать 🎉"})
}

// HandleSubscribe — POST /subscribe-webhook. Подписывает сервис на веб-хуки.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriber.SubscribeWebhook(r.Context(), h.publicURL); err != nil {
		h.logger.Error("Не удалось подписаться на webhook Avito", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)

		return
	}

	writeJSON(w, map[string]string{"detail": "Подписка на webhook оформлена"})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "ошибка сериализации ответа", http.StatusInternalServerError)
	}
}
