package bot

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"avito-notify/internal/domain/models"
)

type memberCheckerMock struct {
	mock.Mock
}

func (m *memberCheckerMock) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	args := m.Called(config)
	return args.Get(0).(tgbotapi.ChatMember), args.Error(1)
}

const testAdminUserID = int64(99)

func newTestPoller(members MemberChecker) *Poller {
	return &Poller{
		members:     members,
		adminUserID: testAdminUserID,
		logger:      slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})),
	}
}

func privateFrom(userID int64) *models.Command {
	return &models.Command{Type: "/accounts", ChatID: userID, UserID: userID, Private: true}
}

func groupFrom(userID int64) *models.Command {
	return &models.Command{Type: "/mute", ChatID: -100500, UserID: userID, Group: true}
}

func TestAuthorized_PrivateAdmin(t *testing.T) {
	members := &memberCheckerMock{}
	p := newTestPoller(members)

	assert.True(t, p.authorized(privateFrom(testAdminUserID)))
	members.AssertNotCalled(t, "GetChatMember", mock.Anything)
}

func TestAuthorized_PrivateStranger(t *testing.T) {
	members := &memberCheckerMock{}
	p := newTestPoller(members)

	assert.False(t, p.authorized(privateFrom(777)))
	members.AssertNotCalled(t, "GetChatMember", mock.Anything)
}

func TestAuthorized_GroupByStatus(t *testing.T) {
	tests := []struct {
		status     string
		authorized bool
	}{
		{status: "creator", authorized: true},
		{status: "administrator", authorized: true},
		{status: "member", authorized: false},
		{status: "restricted", authorized: false},
		{status: "left", authorized: false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			members := &memberCheckerMock{}
			members.On("GetChatMember", mock.MatchedBy(func(config tgbotapi.GetChatMemberConfig) bool {
				return config.ChatID == -100500 && config.UserID == 777
			})).Return(tgbotapi.ChatMember{Status: tt.status}, nil)

			p := newTestPoller(members)

			assert.Equal(t, tt.authorized, p.authorized(groupFrom(777)))
			members.AssertExpectations(t)
		})
	}
}

func TestAuthorized_GroupCheckFails(t *testing.T) {
	members := &memberCheckerMock{}
	members.On("GetChatMember", mock.Anything).
		Return(tgbotapi.ChatMember{}, errors.New("telegram недоступен"))

	p := newTestPoller(members)

	assert.False(t, p.authorized(groupFrom(777)))
}
