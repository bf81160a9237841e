package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"avito-notify/internal/common/middleware"
	"avito-notify/internal/config"
)

// Server — HTTP-приёмник вебхуков Avito и служебных запросов.
type Server struct {
	server *http.Server
	logger *slog.Logger
	port   int
}

func NewServer(ctx context.Context, handler *Handler, cfg *config.Config, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /avito/webhook", handler.HandleWebhook)
	mux.HandleFunc("GET /oauth/callback", handler.HandleOAuthCallback)
	mux.HandleFunc("POST /subscribe-webhook", handler.HandleSubscribe)
	mux.HandleFunc("GET /health", handler.HandleHealth)

	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
	metricsMiddleware := middleware.NewMetricsMiddleware()

	wrapped := rateLimiter.Middleware(metricsMiddleware.Middleware(mux))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           wrapped,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTPRequestTimeout,
		WriteTimeout:      cfg.HTTPRequestTimeout,
	}

	return &Server{
		server: server,
		logger: logger,
		port:   cfg.ServerPort,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Запуск HTTP сервера вебхуков", "port", s.port)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ошибка запуска сервера вебхуков: %w", err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Остановка HTTP сервера вебхуков")
	return s.server.Shutdown(ctx)
}
