package avito

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"avito-notify/internal/config"
	customerrors "avito-notify/internal/domain/errors"
)

// Tokens — пара OAuth-токенов Avito и момент истечения access-токена.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (t *Tokens) valid() bool {
	return t.AccessToken != "" && t.RefreshToken != "" && t.ExpiresAt > 0
}

// refreshLeeway — за сколько секунд до истечения токен считается просроченным.
const refreshLeeway = 60

// TokenManager хранит токены Avito в файле и обновляет их по мере истечения.
// Повреждённый или неполный файл удаляется, как будто авторизации не было.
type TokenManager struct {
	client *resty.Client
	cfg    *config.Config
	logger *slog.Logger
	path   string

	mu  sync.Mutex
	now func() time.Time
}

func NewTokenManager(client *resty.Client, cfg *config.Config, logger *slog.Logger) *TokenManager {
	return &TokenManager{
		client: client,
		cfg:    cfg,
		logger: logger,
		path:   cfg.TokensPath,
		now:    time.Now,
	}
}

// SetClock подменяет источник времени в тестах.
func (m *TokenManager) SetClock(now func() time.Time) {
	m.now = now
}

// BuildAuthorizeURL возвращает ссылку для авторизации продавца на Avito.
func (m *TokenManager) BuildAuthorizeURL() string {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", m.cfg.AvitoClientID)
	query.Set("scope", strings.ReplaceAll(m.cfg.AvitoOAuthScopes, " ", ""))

	return "https://avito.ru/oauth?" + query.Encode()
}

// AccessToken возвращает действующий access-токен, обновив его при
// необходимости.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens := m.load()
	if tokens == nil {
		return "", &customerrors.ErrNoTokens{}
	}

	if m.now().Unix() >= tokens.ExpiresAt-refreshLeeway {
		refreshed, err := m.refresh(ctx, tokens)
		if err != nil {
			return "", err
		}

		tokens = refreshed
	}

	return tokens.AccessToken, nil
}

// ExchangeCode обменивает одноразовый код OAuth на токены и сохраняет их.
func (m *TokenManager) ExchangeCode(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Обмен кода авторизации на токены Avito")

	body, err := m.requestToken(ctx, map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"client_id":     m.cfg.AvitoClientID,
		"client_secret": m.cfg.AvitoClientSecret,
		"redirect_uri":  m.cfg.AvitoRedirectURI,
	})
	if err != nil {
		return fmt.Errorf("обмен кода на токены: %w", err)
	}

	tokens := &Tokens{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    m.now().Unix() + body.ExpiresIn,
	}

	return m.save(tokens)
}

func (m *TokenManager) refresh(ctx context.Context, tokens *Tokens) (*Tokens, error) {
	m.logger.Info("Access-токен истекает, обновление через refresh-токен")

	body, err := m.requestToken(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": tokens.RefreshToken,
		"client_id":     m.cfg.AvitoClientID,
		"client_secret": m.cfg.AvitoClientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("обновление токена: %w", err)
	}

	refreshToken := body.RefreshToken
	if refreshToken == "" {
		refreshToken = tokens.RefreshToken
	}

	refreshed := &Tokens{
		AccessToken:  body.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    m.now().Unix() + body.ExpiresIn,
	}

	if err := m.save(refreshed); err != nil {
		return nil, err
	}

	return refreshed, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (m *TokenManager) requestToken(ctx context.Context, form map[string]string) (*tokenResponse, error) {
	result := &tokenResponse{}

	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(result).
		Post(m.cfg.AvitoTokenURL)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		m.logger.Warn("Avito отклонил запрос токена",
			"status", resp.StatusCode(),
			"body", string(resp.Body()),
		)

		return nil, &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	return result, nil
}

func (m *TokenManager) load() *Tokens {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil
	}

	tokens := &Tokens{}
	if err := json.Unmarshal(data, tokens); err != nil {
		m.logger.Error("Файл токенов повреждён, удаляю", "path", m.path)
		_ = os.Remove(m.path)

		return nil
	}

	if !tokens.valid() {
		m.logger.Error("Файл токенов неполный, удаляю", "path", m.path)
		_ = os.Remove(m.path)

		return nil
	}

	return tokens
}

// save пишет токены атомарно: во временный файл с правами 0600, затем rename.
func (m *TokenManager) save(tokens *Tokens) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация токенов: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("запись токенов в %s: %w", filepath.Base(tmp), err)
	}

	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("замена файла токенов: %w", err)
	}

	m.logger.Info("Токены сохранены",
		"expires_at", time.Unix(tokens.ExpiresAt, 0).UTC().Format(time.RFC3339),
	)

	return nil
}
