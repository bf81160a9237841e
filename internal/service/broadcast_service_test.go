package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"avito-notify/internal/domain/models"
	"avito-notify/internal/service"
	"avito-notify/internal/service/mocks"
)

func workLink(tgChatID int64, mutate func(*models.Link)) *models.Link {
	link := &models.Link{
		ID:        tgChatID,
		AccountID: testAccountID,
		ChatID:    tgChatID,
		TgChatID:  tgChatID,
		TZ:        "UTC",
	}

	if mutate != nil {
		mutate(link)
	}

	return link
}

func newBroadcastService(
	linkRepo *mocks.LinkRepository,
	notifier *mocks.Notifier,
	sentLog *mocks.SentMessageLog,
	now time.Time,
) *service.BroadcastService {
	s := service.NewBroadcastService(linkRepo, notifier, sentLog, testLogger())
	s.SetClock(func() time.Time { return now })

	return s
}

func TestDeliver_AllDestinations(t *testing.T) {
	t.Parallel()

	linkRepo := new(mocks.LinkRepository)
	notifier := new(mocks.Notifier)
	sentLog := new(mocks.SentMessageLog)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	linkRepo.On("FindByAccountID", ctx, testAccountID).Return([]*models.Link{
		workLink(100, nil),
		workLink(200, nil),
	}, nil)
	notifier.On("SendMessage", ctx, int64(100), "привет").Return(int64(11), nil)
	notifier.On("SendMessage", ctx, int64(200), "привет").Return(int64(22), nil)
	sentLog.On("Log", ctx, int64(100), int64(11), now).Return(nil)
	sentLog.On("Log", ctx, int64(200), int64(22), now).Return(nil)

	s := newBroadcastService(linkRepo, notifier, sentLog, now)

	delivered, err := s.Deliver(ctx, testAccountID, "привет")

	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
	notifier.AssertExpectations(t)
	sentLog.AssertExpectations(t)
}

func TestDeliver_SkipsMutedAndOutOfWindow(t *testing.T) {
	t.Parallel()

	linkRepo := new(mocks.LinkRepository)
	notifier := new(mocks.Notifier)
	sentLog := new(mocks.SentMessageLog)

	// 20:00 UTC, рабочее окно 09:00-18:00 закрыто.
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	ctx := context.Background()

	from := models.DayTime{Hour: 9}
	to := models.DayTime{Hour: 18}

	linkRepo.On("FindByAccountID", ctx, testAccountID).Return([]*models.Link{
		workLink(100, func(l *models.Link) { l.Muted = true }),
		workLink(200, func(l *models.Link) { l.WorkFrom, l.WorkTo = &from, &to }),
		workLink(300, nil),
	}, nil)
	notifier.On("SendMessage", ctx, int64(300), "привет").Return(int64(33), nil)
	sentLog.On("Log", ctx, int64(300), int64(33), now).Return(nil)

	s := newBroadcastService(linkRepo, notifier, sentLog, now)

	delivered, err := s.Deliver(ctx, testAccountID, "привет")

	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	notifier.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestDeliverAll_IgnoresPolicy(t *testing.T) {
	t.Parallel()

	linkRepo := new(mocks.LinkRepository)
	notifier := new(mocks.Notifier)
	sentLog := new(mocks.SentMessageLog)

	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
	ctx := context.Background()

	linkRepo.On("FindByAccountID", ctx, testAccountID).Return([]*models.Link{
		workLink(100, func(l *models.Link) { l.Muted = true }),
	}, nil)
	notifier.On("SendMessage", ctx, int64(100), "служебное").Return(int64(11), nil)
	sentLog.On("Log", ctx, int64(100), int64(11), now).Return(nil)

	s := newBroadcastService(linkRepo, notifier, sentLog, now)

	delivered, err := s.DeliverAll(ctx, testAccountID, "служебное")

	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestDeliver_FailuresAreIndependent(t *testing.T) {
	t.Parallel()

	linkRepo := new(mocks.LinkRepository)
	notifier := new(mocks.Notifier)
	sentLog := new(mocks.SentMessageLog)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	linkRepo.On("FindByAccountID", ctx, testAccountID).Return([]*models.Link{
		workLink(100, nil),
		workLink(200, nil),
	}, nil)
	notifier.On("SendMessage", ctx, int64(100), "привет").Return(int64(0), assert.AnError)
	notifier.On("SendMessage", ctx, int64(200), "привет").Return(int64(22), nil)
	sentLog.On("Log", ctx, int64(200), int64(22), now).Return(nil)

	s := newBroadcastService(linkRepo, notifier, sentLog, now)

	delivered, err := s.Deliver(ctx, testAccountID, "привет")

	// Часть чатов получила сообщение — это успех, сбой только в журнале.
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestDeliver_AllFailed_ReturnsError(t *testing.T) {
	t.Parallel()

	linkRepo := new(mocks.LinkRepository)
	notifier := new(mocks.Notifier)
	sentLog := new(mocks.SentMessageLog)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	linkRepo.On("FindByAccountID", ctx, testAccountID).Return([]*models.Link{
		workLink(100, nil),
	}, nil)
	notifier.On("SendMessage", ctx, int64(100), "привет").Return(int64(0), assert.AnError)

	s := newBroadcastService(linkRepo, notifier, sentLog, now)

	delivered, err := s.Deliver(ctx, testAccountID, "привет")

	require.Error(t, err)
	assert.Equal(t, 0, delivered)
}

func TestDeliver_NoLinks(t *testing.T) {
	t.Parallel()

	linkRepo := new(mocks.LinkRepository)

	ctx := context.Background()

	linkRepo.On("FindByAccountID", ctx, testAccountID).Return([]*models.Link{}, nil)

	s := newBroadcastService(linkRepo, new(mocks.Notifier), new(mocks.SentMessageLog), time.Now())

	delivered, err := s.Deliver(ctx, testAccountID, "привет")

	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
}

func TestDeliver_LogFailureDoesNotFailDelivery(t *testing.T) {
	t.Parallel()

	linkRepo := new(mocks.LinkRepository)
	notifier := new(mocks.Notifier)
	sentLog := new(mocks.SentMessageLog)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	linkRepo.On("FindByAccountID", ctx, testAccountID).Return([]*models.Link{
		workLink(100, nil),
	}, nil)
	notifier.On("SendMessage", ctx, int64(100), "привет").Return(int64(11), nil)
	sentLog.On("Log", ctx, int64(100), int64(11), now).Return(assert.AnError)

	s := newBroadcastService(linkRepo, notifier, sentLog, now)

	delivered, err := s.Deliver(ctx, testAccountID, "привет")

	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestDeliverTo(t *testing.T) {
	t.Parallel()

	notifier := new(mocks.Notifier)
	sentLog := new(mocks.SentMessageLog)

	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	notifier.On("SendMessage", ctx, int64(100), "дайджест").Return(int64(44), nil)
	sentLog.On("Log", ctx, int64(100), int64(44), now).Return(nil)

	s := newBroadcastService(new(mocks.LinkRepository), notifier, sentLog, now)

	require.NoError(t, s.DeliverTo(ctx, 100, "дайджест"))

	mock.AssertExpectationsForObjects(t, notifier, sentLog)
}
