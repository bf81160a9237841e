package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type TickJob interface {
	Tick(ctx context.Context)
}

// Scheduler запускает периодические задачи: обход напоминаний,
// поминутный дайджест и очистку отправленных сообщений.
// SingletonMode гарантирует не более одного выполнения задачи
// одновременно: затянувшийся тик пропускает следующий запуск.
type Scheduler struct {
	scheduler       *gocron.Scheduler
	reminders       TickJob
	digest          TickJob
	cleanup         TickJob
	logger          *slog.Logger
	remindInterval  time.Duration
	cleanupInterval time.Duration
}

func NewScheduler(
	reminders TickJob,
	digest TickJob,
	cleanup TickJob,
	remindInterval time.Duration,
	cleanupInterval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		scheduler:       gocron.NewScheduler(time.UTC),
		reminders:       reminders,
		digest:          digest,
		cleanup:         cleanup,
		logger:          logger,
		remindInterval:  remindInterval,
		cleanupInterval: cleanupInterval,
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("Запуск планировщика",
		"remind_interval", s.remindInterval.String(),
		"cleanup_interval", s.cleanupInterval.String(),
	)

	s.register("напоминания", s.reminders, func() *gocron.Scheduler {
		return s.scheduler.Every(s.remindInterval)
	})
	s.register("дайджест", s.digest, func() *gocron.Scheduler {
		return s.scheduler.Every(1).Minute()
	})
	s.register("очистка", s.cleanup, func() *gocron.Scheduler {
		return s.scheduler.Every(s.cleanupInterval)
	})

	s.scheduler.StartAsync()
}

// register вызывает Every только когда задача есть: вызов Every без
// последующего Do оставляет в gocron полусобранную задачу, и запуск
// планировщика зависает.
func (s *Scheduler) register(name string, job TickJob, every func() *gocron.Scheduler) {
	if job == nil {
		return
	}

	_, err := every().SingletonMode().Do(func() {
		job.Tick(context.Background())
	})
	if err != nil {
		s.logger.Error("Ошибка при настройке задачи планировщика",
			"job", name,
			"error", err,
		)
	}
}

func (s *Scheduler) Stop() {
	s.logger.Info("Остановка планировщика")
	s.scheduler.Stop()
}
