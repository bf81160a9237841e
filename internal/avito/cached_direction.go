package avito

import (
	"context"
	"log/slog"

	"avito-notify/internal/cache"
	"avito-notify/internal/domain/models"
)

type DirectionSource interface {
	LastMessageDirection(ctx context.Context, avitoUserID int64, avitoChatID string) models.Direction
}

// CachedDirectionChecker снижает нагрузку на API Avito: направление
// последнего сообщения в диалоге переспрашивается не чаще TTL кэша.
// Устаревание ограничено TTL, он заметно короче интервала напоминаний.
type CachedDirectionChecker struct {
	source DirectionSource
	cache  cache.DirectionCache
	logger *slog.Logger
}

func NewCachedDirectionChecker(source DirectionSource, directionCache cache.DirectionCache, logger *slog.Logger) *CachedDirectionChecker {
	return &CachedDirectionChecker{
		source: source,
		cache:  directionCache,
		logger: logger,
	}
}

func (c *CachedDirectionChecker) LastMessageDirection(ctx context.Context, avitoUserID int64, avitoChatID string) models.Direction {
	if direction, ok := c.cache.Get(ctx, avitoUserID, avitoChatID); ok {
		c.logger.Debug("Направление диалога получено из кэша",
			"avito_chat_id", avitoChatID,
			"direction", direction,
		)

		return direction
	}

	direction := c.source.LastMessageDirection(ctx, avitoUserID, avitoChatID)
	c.cache.Set(ctx, avitoUserID, avitoChatID, direction)

	return direction
}
