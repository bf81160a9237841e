package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"avito-notify/internal/cache"
	"avito-notify/internal/domain/models"
)

func TestRedisDirectionCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	redisC, redisPort := startRedisContainer(t)
	defer func() {
		if err := redisC.Terminate(context.Background()); err != nil {
			t.Logf("Ошибка при остановке Redis контейнера: %v", err)
		}
	}()

	addr := "localhost:" + redisPort

	directionCache, err := cache.NewRedisDirectionCache(addr, "", 0, 30*time.Second, logger)
	require.NoError(t, err)

	defer directionCache.Close()

	ctx := context.Background()

	_, ok := directionCache.Get(ctx, 123456, "u2i-abc")
	assert.False(t, ok)

	directionCache.Set(ctx, 123456, "u2i-abc", models.DirectionBuyer)

	direction, ok := directionCache.Get(ctx, 123456, "u2i-abc")
	require.True(t, ok)
	assert.Equal(t, models.DirectionBuyer, direction)

	// Неизвестное направление не оседает в кэше.
	directionCache.Set(ctx, 123456, "u2i-void", models.DirectionUnknown)

	_, ok = directionCache.Get(ctx, 123456, "u2i-void")
	assert.False(t, ok)

	// Диалоги разных аккаунтов не пересекаются.
	_, ok = directionCache.Get(ctx, 654321, "u2i-abc")
	assert.False(t, ok)

	shortTTLCache, err := cache.NewRedisDirectionCache(addr, "", 0, time.Second, logger)
	require.NoError(t, err)

	defer shortTTLCache.Close()

	shortTTLCache.Set(ctx, 123456, "u2i-ttl", models.DirectionSeller)

	_, ok = shortTTLCache.Get(ctx, 123456, "u2i-ttl")
	require.True(t, ok)

	time.Sleep(2 * time.Second)

	_, ok = shortTTLCache.Get(ctx, 123456, "u2i-ttl")
	assert.False(t, ok)
}

func startRedisContainer(t *testing.T) (container testcontainers.Container, port string) {
	ctx := context.Background()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	mappedPort, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return redisC, mappedPort.Port()
}
