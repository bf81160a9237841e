package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"avito-notify/internal/avito"
	"avito-notify/internal/bot"
	"avito-notify/internal/cache"
	"avito-notify/internal/common/httputil"
	"avito-notify/internal/common/metrics"
	"avito-notify/internal/config"
	"avito-notify/internal/database"
	"avito-notify/internal/notify"
	"avito-notify/internal/repository"
	"avito-notify/internal/scheduler"
	"avito-notify/internal/service"
	"avito-notify/internal/webhook"
	"avito-notify/pkg"
	"avito-notify/pkg/txs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена последовательной инициализацией всех компонентов.
func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	chatRepo := repository.NewChatRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	sentRepo := repository.NewSentMessageRepository(db)

	avitoHTTP := httputil.CreateResilientHTTPClient(cfg, appLogger, "avito")
	tokenManager := avito.NewTokenManager(avitoHTTP, cfg, appLogger)
	messengerClient := avito.NewMessengerClient(avitoHTTP, tokenManager, cfg, appLogger)

	var directionChecker service.DirectionChecker = messengerClient

	if cfg.RedisAddr != "" {
		directionCache, err := cache.NewRedisDirectionCache(
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.DirectionCacheTTL, appLogger)
		if err != nil {
			return fmt.Errorf("ошибка подключения к Redis: %w", err)
		}

		defer directionCache.Close()

		directionChecker = avito.NewCachedDirectionChecker(messengerClient, directionCache, appLogger)
	}

	tgBot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("ошибка создания Telegram клиента: %w", err)
	}

	notifier := notify.NewTelegramNotifier(tgBot, appLogger)

	broadcastService := service.NewBroadcastService(linkRepo, notifier, sentRepo, appLogger)
	reminderService := service.NewReminderService(
		reminderRepo, accountRepo, broadcastService, directionChecker, cfg.RemindAfter, appLogger)
	digestService := service.NewDigestService(linkRepo, reminderRepo, broadcastService, appLogger)
	cleanupService := service.NewCleanupService(
		sentRepo, notifier, cfg.CleanupInterval, cfg.SentMessagesRetention, appLogger)
	txManager := txs.NewTxManager(db.Pool, appLogger)
	adminService := service.NewAdminService(
		accountRepo, chatRepo, linkRepo, reminderService, tokenManager, txManager, appLogger)

	sch := scheduler.NewScheduler(
		reminderService,
		digestService,
		cleanupService,
		cfg.RemindAfter,
		cfg.CleanupInterval,
		appLogger,
	)
	sch.Start()

	poller := bot.NewPoller(tgBot, adminService, chatRepo, cleanupService, cfg.TelegramAdminUserID, appLogger)
	go poller.Start()

	webhookHandler := webhook.NewHandler(
		reminderService, accountRepo, tokenManager, messengerClient,
		cfg.AvitoHookSecret, cfg.WebhookPublicURL, appLogger)
	webhookServer := webhook.NewServer(ctx, webhookHandler, cfg, appLogger)

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Сервер метрик завершился с ошибкой", "error", err)
		}
	}()

	errCh := make(chan error, 1)

	go func() {
		errCh <- webhookServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLogger.Info("Получен сигнал завершения", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			appLogger.Error("HTTP сервер завершился с ошибкой", "error", err)
		}
	}

	gracefulShutdown(sch, poller, webhookServer, appLogger)
	cancel()

	return nil
}

func gracefulShutdown(
	sch *scheduler.Scheduler,
	poller *bot.Poller,
	server *webhook.Server,
	appLogger *slog.Logger,
) {
	sch.Stop()
	poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		appLogger.Error("Ошибка при остановке HTTP сервера", "error", err)
	}

	appLogger.Info("Сервис успешно остановлен")
}
