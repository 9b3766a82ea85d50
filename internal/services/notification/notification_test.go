package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) CreateNotification(ctx context.Context, n models.Notification) (int, error) {
	args := m.Called(ctx, n)
	return args.Int(0), args.Error(1)
}

func (m *NotificationRepositoryMock) ListNotifications(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, int, int, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, 0, args.Error(3)
	}
	return args.Get(0).([]*models.Notification), args.Int(1), args.Int(2), args.Error(3)
}

func (m *NotificationRepositoryMock) MarkNotificationRead(ctx context.Context, id int, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

func (m *NotificationRepositoryMock) MarkAllNotificationsRead(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

func (m *NotificationRepositoryMock) RemoveNotification(ctx context.Context, id int, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_MarkRead(t *testing.T) {
	tests := []struct {
		name     string
		affected int
		repoErr  error
		wantErr  error
	}{
		{
			name:     "Непрочитанное уведомление отмечается",
			affected: 1,
		},
		{
			name:     "Прочитанное или чужое уведомление не изменяется",
			affected: 0,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:    "Ошибка хранилища",
			repoErr: errors.New("update failed"),
			wantErr: errors.New("update failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(NotificationRepositoryMock)
			repo.On("MarkNotificationRead", mock.Anything, 5, "user-uid").
				Return(tt.affected, tt.repoErr)

			svc := New(repo, discardLogger())
			err := svc.MarkRead(context.Background(), 5, "user-uid")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestService_BulkCreate(t *testing.T) {
	t.Run("Уведомление создаётся для каждого получателя", func(t *testing.T) {
		repo := new(NotificationRepositoryMock)
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
			return n.Title == "Maintenance" && n.Type == models.NotificationTypeSystem
		})).Return(1, nil).Times(3)

		svc := New(repo, discardLogger())
		created, err := svc.BulkCreate(context.Background(), models.DummyNotification{
			UserUIDs: []string{"uid-1", "uid-2", "uid-3"},
			Title:    "Maintenance",
			Message:  "Portal will be down tonight",
			Type:     models.NotificationTypeSystem,
		})

		require.NoError(t, err)
		assert.Equal(t, 3, created)
		repo.AssertExpectations(t)
	})

	t.Run("Ошибка прерывает рассылку и возвращает число созданных", func(t *testing.T) {
		repo := new(NotificationRepositoryMock)
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(1, nil).Once()
		repo.On("CreateNotification", mock.Anything, mock.Anything).
			Return(0, errors.New("insert failed")).Once()

		svc := New(repo, discardLogger())
		created, err := svc.BulkCreate(context.Background(), models.DummyNotification{
			UserUIDs: []string{"uid-1", "uid-2", "uid-3"},
			Title:    "Maintenance",
			Message:  "Portal will be down tonight",
			Type:     models.NotificationTypeSystem,
		})

		require.Error(t, err)
		assert.Equal(t, 1, created)
	})
}

func TestService_MarkAllRead(t *testing.T) {
	repo := new(NotificationRepositoryMock)
	repo.On("MarkAllNotificationsRead", mock.Anything, "user-uid").Return(4, nil)

	svc := New(repo, discardLogger())
	marked, err := svc.MarkAllRead(context.Background(), "user-uid")

	require.NoError(t, err)
	assert.Equal(t, 4, marked)
}
