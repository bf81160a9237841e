package scheduler_test

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"avito-notify/internal/scheduler"
)

type countingJob struct {
	calls int32
}

func (j *countingJob) Tick(_ context.Context) {
	atomic.AddInt32(&j.calls, 1)
}

func TestScheduler_Start(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	reminders := &countingJob{}

	s := scheduler.NewScheduler(reminders, nil, nil, 100*time.Millisecond, time.Hour, logger)
	s.Start()

	time.Sleep(250 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&reminders.calls), int32(1))
}

func TestScheduler_Stop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	reminders := &countingJob{}

	s := scheduler.NewScheduler(reminders, nil, nil, time.Hour, time.Hour, logger)
	s.Start()
	s.Stop()

	assert.Equal(t, int32(0), atomic.LoadInt32(&reminders.calls))
}

func TestScheduler_NilJobsSkipped(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	reminders := &countingJob{}

	s := scheduler.NewScheduler(reminders, nil, nil, 50*time.Millisecond, time.Hour, logger)

	done := make(chan struct{})

	go func() {
		s.Start()
		time.Sleep(150 * time.Millisecond)
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
		assert.GreaterOrEqual(t, atomic.LoadInt32(&reminders.calls), int32(1))
	case <-time.After(5 * time.Second):
		t.Fatal("Планировщик завис при запуске с отсутствующими задачами")
	}
}

func TestScheduler_SlowTickNotStacked(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	var running, overlapped int32

	slow := tickFunc(func(_ context.Context) {
		if atomic.AddInt32(&running, 1) > 1 {
			atomic.StoreInt32(&overlapped, 1)
		}

		time.Sleep(150 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	})

	s := scheduler.NewScheduler(slow, nil, nil, 50*time.Millisecond, time.Hour, logger)
	s.Start()

	time.Sleep(400 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(0), atomic.LoadInt32(&overlapped),
		"Медленный тик не должен запускаться параллельно с самим собой")
}

type tickFunc func(ctx context.Context)

func (f tickFunc) Tick(ctx context.Context) { f(ctx) }
