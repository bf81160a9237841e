package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"avito-notify/internal/domain/models"
)

// DirectionCache хранит недавно узнанные направления последнего сообщения
// в диалогах Avito. Промах возвращает DirectionUnknown без ошибки.
type DirectionCache interface {
	Get(ctx context.Context, avitoUserID int64, avitoChatID string) (models.Direction, bool)
	Set(ctx context.Context, avitoUserID int64, avitoChatID string, direction models.Direction)
}

type RedisDirectionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisDirectionCache(addr, password string, db int, ttl time.Duration, logger *slog.Logger) (*RedisDirectionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено")

	return &RedisDirectionCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func directionKey(avitoUserID int64, avitoChatID string) string {
	return fmt.Sprintf("direction:%d:%s", avitoUserID, avitoChatID)
}

func (c *RedisDirectionCache) Get(ctx context.Context, avitoUserID int64, avitoChatID string) (models.Direction, bool) {
	value, err := c.client.Get(ctx, directionKey(avitoUserID, avitoChatID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Error("Ошибка при получении данных из Redis",
				"error", err,
				"avito_chat_id", avitoChatID,
			)
		}

		return models.DirectionUnknown, false
	}

	return models.Direction(value), true
}

func (c *RedisDirectionCache) Set(ctx context.Context, avitoUserID int64, avitoChatID string, direction models.Direction) {
	// Неизвестное направление не кэшируется: его стоит перепроверить.
	if direction == models.DirectionUnknown {
		return
	}

	if err := c.client.Set(ctx, directionKey(avitoUserID, avitoChatID), string(direction), c.ttl).Err(); err != nil {
		c.logger.Error("Ошибка при сохранении данных в Redis",
			"error", err,
			"avito_chat_id", avitoChatID,
		)
	}
}

func (c *RedisDirectionCache) Close() error {
	return c.client.Close()
}
