package repository_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"avito-notify/internal/config"
	"avito-notify/internal/database"
	customerrors "avito-notify/internal/domain/errors"
	"avito-notify/internal/domain/models"
	"avito-notify/internal/repository"
)

var (
	testDB *database.PostgresDB
	logger *slog.Logger
)

func setupTestDatabase(ctx context.Context) (*database.PostgresDB, func(), error) {
	dbName := "testdb"
	dbUser := "testuser"
	dbPassword := "testpassword"

	container, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(10*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось запустить контейнер postgres: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось получить хост контейнера: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось получить порт контейнера: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port.Port(), dbName)

	migrationsPath, _ := filepath.Abs("../../migrations")
	migrateURL := fmt.Sprintf("file://%s", migrationsPath)

	m, err := migrate.New(migrateURL, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, nil, fmt.Errorf("не удалось применить миграции: %w", err)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return nil, nil, fmt.Errorf("ошибка закрытия источника миграций: %w", sourceErr)
	}

	if dbErr != nil {
		return nil, nil, fmt.Errorf("ошибка закрытия подключения БД миграций: %w", dbErr)
	}

	logger.Info("Миграции успешно применены к тестовой БД")

	testCfg := &config.Config{
		DatabaseURL:     dsn,
		DatabaseMaxConn: 5,
	}

	db, err := database.NewPostgresDB(ctx, testCfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось подключиться к тестовой БД: %w", err)
	}

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			logger.Error("Не удалось остановить контейнер postgres", "error", err)
		}
	}

	return db, cleanup, nil
}

func TestMain(m *testing.M) {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	exitCode := func() int {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		var cleanup func()

		var err error

		testDB, cleanup, err = setupTestDatabase(ctx)
		if err != nil {
			logger.Error("Ошибка при настройке тестовой БД", "error", err)
			return 1
		}

		code := m.Run()

		cleanup()

		return code
	}()

	os.Exit(exitCode)
}

func clearTables(ctx context.Context, t *testing.T) {
	t.Helper()

	tables := []string{
		"sent_messages",
		"reminders",
		"account_chat_links",
		"chats",
		"accounts",
	}
	for _, table := range tables {
		_, err := testDB.Pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		require.NoErrorf(t, err, "не удалось очистить таблицу %s", table)
	}
}

func createAccount(ctx context.Context, t *testing.T, avitoUserID int64) *models.Account {
	t.Helper()

	account, err := repository.NewAccountRepository(testDB).EnsureByAvitoID(ctx, avitoUserID, "Тестовый магазин")
	require.NoError(t, err)

	return account
}

func TestReminderRepository_CreateIdempotent(t *testing.T) {
	ctx := context.Background()
	clearTables(ctx, t)

	account := createAccount(ctx, t, 111)
	repo := repository.NewReminderRepository(testDB)

	firstTS := time.Now().UTC().Truncate(time.Microsecond)

	created, err := repo.Create(ctx, account.ID, "u2i-abc", firstTS, "Диван")
	require.NoError(t, err)
	assert.True(t, created)

	// Повторное сообщение покупателя first_ts не сдвигает.
	created, err = repo.Create(ctx, account.ID, "u2i-abc", firstTS.Add(time.Hour), "Диван")
	require.NoError(t, err)
	assert.False(t, created)

	reminders, err := repo.FindOpenByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.WithinDuration(t, firstTS, reminders[0].FirstTS, time.Second)
	assert.Equal(t, "Диван", reminders[0].ChatTitle)
	assert.Nil(t, reminders[0].LastReminder)
}

func TestReminderRepository_FindDue(t *testing.T) {
	ctx := context.Background()
	clearTables(ctx, t)

	account := createAccount(ctx, t, 112)
	repo := repository.NewReminderRepository(testDB)

	now := time.Now().UTC()
	interval := 15 * time.Minute

	// Ждёт дольше интервала, ни разу не уведомляли — должно попасть в выборку.
	_, err := repo.Create(ctx, account.ID, "u2i-due", now.Add(-20*time.Minute), "")
	require.NoError(t, err)

	// Ждёт меньше интервала.
	_, err = repo.Create(ctx, account.ID, "u2i-fresh", now.Add(-5*time.Minute), "")
	require.NoError(t, err)

	// Ждёт давно, но недавно уведомляли.
	_, err = repo.Create(ctx, account.ID, "u2i-recent", now.Add(-2*time.Hour), "")
	require.NoError(t, err)

	all, err := repo.FindOpenByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)

	for _, reminder := range all {
		if reminder.AvitoChatID == "u2i-recent" {
			marked, err := repo.MarkReminded(ctx, reminder.ID, now.Add(-time.Minute))
			require.NoError(t, err)
			require.True(t, marked)
		}
	}

	due, err := repo.FindDue(ctx, now, interval)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "u2i-due", due[0].AvitoChatID)
}

func TestReminderRepository_MarkRemindedMonotonic(t *testing.T) {
	ctx := context.Background()
	clearTables(ctx, t)

	account := createAccount(ctx, t, 113)
	repo := repository.NewReminderRepository(testDB)

	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := repo.Create(ctx, account.ID, "u2i-abc", now.Add(-time.Hour), "")
	require.NoError(t, err)

	reminders, err := repo.FindOpenByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)

	id := reminders[0].ID

	marked, err := repo.MarkReminded(ctx, id, now)
	require.NoError(t, err)
	assert.True(t, marked)

	// Конкурирующий тик с более ранним временем отметку не откатывает.
	marked, err = repo.MarkReminded(ctx, id, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.False(t, marked)

	reminders, err = repo.FindOpenByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, reminders[0].LastReminder)
	assert.WithinDuration(t, now, *reminders[0].LastReminder, time.Second)
}

func TestReminderRepository_DeleteByConversation(t *testing.T) {
	ctx := context.Background()
	clearTables(ctx, t)

	account := createAccount(ctx, t, 114)
	repo := repository.NewReminderRepository(testDB)

	_, err := repo.Create(ctx, account.ID, "u2i-abc", time.Now().UTC(), "")
	require.NoError(t, err)

	deleted, err := repo.DeleteByConversation(ctx, account.ID, "u2i-abc")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Повторное закрытие уже ничего не находит.
	deleted, err = repo.DeleteByConversation(ctx, account.ID, "u2i-abc")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestReminderRepository_ClearByAccountAndCount(t *testing.T) {
	ctx := context.Background()
	clearTables(ctx, t)

	account := createAccount(ctx, t, 115)
	other := createAccount(ctx, t, 116)
	repo := repository.NewReminderRepository(testDB)

	for i, chatID := range []string{"u2i-1", "u2i-2", "u2i-3"} {
		_, err := repo.Create(ctx, account.ID, chatID, time.Now().UTC().Add(-time.Duration(i)*time.Minute), "")
		require.NoError(t, err)
	}

	_, err := repo.Create(ctx, other.ID, "u2i-other", time.Now().UTC(), "")
	require.NoError(t, err)

	count, err := repo.CountOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	cleared, err := repo.ClearByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)

	count, err = repo.CountOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAccountRepository_CascadeDelete(t *testing.T) {
	ctx := context.Background()
	clearTables(ctx, t)

	accountRepo := repository.NewAccountRepository(testDB)
	chatRepo := repository.NewChatRepository(testDB)
	linkRepo := repository.NewLinkRepository(testDB)
	reminderRepo := repository.NewReminderRepository(testDB)

	account := createAccount(ctx, t, 117)

	chat, err := chatRepo.UpsertByTgChatID(ctx, -100500, "Группа продаж")
	require.NoError(t, err)

	require.NoError(t, linkRepo.Ensure(ctx, account.ID, chat.ID))

	_, err = reminderRepo.Create(ctx, account.ID, "u2i-abc", time.Now().UTC(), "")
	require.NoError(t, err)

	require.NoError(t, accountRepo.Delete(ctx, account.ID))

	_, err = accountRepo.FindByAvitoID(ctx, 117)
	assert.IsType(t, &customerrors.ErrAccountNotFound{}, err)

	links, err := linkRepo.FindByChatID(ctx, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, links)

	count, err := reminderRepo.CountOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestLinkRepository_UpdateSettingsForChat(t *testing.T) {
	ctx := context.Background()
	clearTables(ctx, t)

	chatRepo := repository.NewChatRepository(testDB)
	linkRepo := repository.NewLinkRepository(testDB)

	account := createAccount(ctx, t, 118)
	chat, err := chatRepo.UpsertByTgChatID(ctx, -100501, "Группа")
	require.NoError(t, err)
	require.NoError(t, linkRepo.Ensure(ctx, account.ID, chat.ID))

	from := models.DayTime{Hour: 9}
	to := models.DayTime{Hour: 18}
	tz := "Europe/Moscow"
	digest := models.DayTime{Hour: 10, Minute: 30}

	updated, err := linkRepo.UpdateSettingsForChat(ctx, chat.ID, models.LinkSettings{
		WorkFrom:   &from,
		WorkTo:     &to,
		TZ:         &tz,
		DigestTime: &digest,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	links, err := linkRepo.FindWithDigest(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, from, *links[0].WorkFrom)
	assert.Equal(t, to, *links[0].WorkTo)
	assert.Equal(t, tz, links[0].TZ)
	assert.Equal(t, digest, *links[0].DigestTime)
	assert.Equal(t, int64(-100501), links[0].TgChatID)

	// Снятие дайджеста убирает привязку из выборки.
	updated, err = linkRepo.UpdateSettingsForChat(ctx, chat.ID, models.LinkSettings{ClearDigest: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	links, err = linkRepo.FindWithDigest(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)

	// Пустые настройки ничего не трогают.
	updated, err = linkRepo.UpdateSettingsForChat(ctx, chat.ID, models.LinkSettings{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestSentMessageRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	clearTables(ctx, t)

	repo := repository.NewSentMessageRepository(testDB)

	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, repo.Log(ctx, -100500, 11, now.Add(-2*time.Hour)))
	require.NoError(t, repo.Log(ctx, -100500, 22, now.Add(-10*time.Minute)))

	stale, err := repo.FindActiveOlderThan(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, int64(11), stale[0].TgMessageID)

	require.NoError(t, repo.SoftDelete(ctx, stale[0].ID, now))

	active, err := repo.FindActiveByChat(ctx, -100500)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(22), active[0].TgMessageID)

	// Жёсткая очистка забирает только давно удалённые записи.
	purged, err := repo.PurgeOlderThan(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)

	purged, err = repo.PurgeOlderThan(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
