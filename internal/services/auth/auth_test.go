package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kunalverma25/wifi-portal/internal/lib/jwt"
	"github.com/kunalverma25/wifi-portal/internal/lib/password"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/rabbitmq"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepositoryMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepositoryMock) MarkEmailVerified(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

func (m *UserRepositoryMock) UpdatePassword(ctx context.Context, email, passwordHash string) (int, error) {
	args := m.Called(ctx, email, passwordHash)
	return args.Int(0), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(users *UserRepositoryMock, cache *CacheMock, publisher *PublisherMock) *Service {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	return New(users, cache, publisher, maker, discardLogger(), 10*time.Minute, time.Hour)
}

func TestService_Register(t *testing.T) {
	req := RegisterRequest{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "new@example.com",
		Password:  "secret-password",
	}

	t.Run("Занятая почта отклоняется", func(t *testing.T) {
		users := new(UserRepositoryMock)
		users.On("GetUserByEmail", mock.Anything, req.Email).
			Return(&models.User{Email: req.Email}, nil)

		svc := newService(users, new(CacheMock), new(PublisherMock))
		_, err := svc.Register(context.Background(), req)

		require.ErrorIs(t, err, ErrEmailTaken)
		users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("Новый пользователь создаётся неактивным с ролью user", func(t *testing.T) {
		users := new(UserRepositoryMock)
		cache := new(CacheMock)
		publisher := new(PublisherMock)

		users.On("GetUserByEmail", mock.Anything, req.Email).
			Return(nil, repository.ErrNotFound).Once()
		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleUser &&
				u.Status == models.UserStatusInactive &&
				!u.EmailVerified &&
				u.PasswordHash != req.Password
		})).Return("new-uid", nil)

		// Повторное чтение выполняет SendOTP.
		users.On("GetUserByEmail", mock.Anything, req.Email).
			Return(&models.User{UID: "new-uid", Email: req.Email, FirstName: "Ivan"}, nil).Once()
		cache.On("Set", mock.AnythingOfType("string"), mock.Anything, 10*time.Minute).Return(nil)
		publisher.On("Publish", rabbitmq.RoutingKeyOTP, mock.MatchedBy(func(e models.OTPEvent) bool {
			return e.Email == req.Email && e.Purpose == "verify"
		})).Return(nil)

		svc := newService(users, cache, publisher)
		uid, err := svc.Register(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "new-uid", uid)
		users.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})
}

func TestService_Login(t *testing.T) {
	hash, err := password.GetHash("correct-password")
	require.NoError(t, err)

	activeUser := &models.User{
		UID:          "uid-1",
		Email:        "user@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}
	inactiveUser := &models.User{
		UID:          "uid-2",
		Email:        "inactive@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
		Status:       models.UserStatusInactive,
	}

	tests := []struct {
		name     string
		email    string
		password string
		user     *models.User
		repoErr  error
		wantErr  error
	}{
		{
			name:     "Успешный вход",
			email:    "user@example.com",
			password: "correct-password",
			user:     activeUser,
		},
		{
			name:     "Неизвестная почта",
			email:    "ghost@example.com",
			password: "correct-password",
			repoErr:  repository.ErrNotFound,
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Неверный пароль",
			email:    "user@example.com",
			password: "wrong-password",
			user:     activeUser,
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Неактивный аккаунт не получает токен",
			email:    "inactive@example.com",
			password: "correct-password",
			user:     inactiveUser,
			wantErr:  ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserRepositoryMock)
			if tt.repoErr != nil {
				users.On("GetUserByEmail", mock.Anything, tt.email).Return(nil, tt.repoErr)
			} else {
				users.On("GetUserByEmail", mock.Anything, tt.email).Return(tt.user, nil)
			}

			svc := newService(users, new(CacheMock), new(PublisherMock))
			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, tt.user.UID, user.UID)
		})
	}
}

func TestService_VerifyOTP(t *testing.T) {
	t.Run("Верный код подтверждает почту", func(t *testing.T) {
		users := new(UserRepositoryMock)
		cache := new(CacheMock)

		cache.On("Get", "otp:user@example.com", mock.Anything).
			Run(func(args mock.Arguments) {
				*args.Get(1).(*string) = "123456"
			}).Return(true, nil)
		users.On("MarkEmailVerified", mock.Anything, "user@example.com").Return(1, nil)
		cache.On("Invalidate", "otp:user@example.com").Return(nil)

		svc := newService(users, cache, new(PublisherMock))
		err := svc.VerifyOTP(context.Background(), "user@example.com", "123456")

		require.NoError(t, err)
		users.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("Неверный код отклоняется", func(t *testing.T) {
		users := new(UserRepositoryMock)
		cache := new(CacheMock)
		cache.On("Get", "otp:user@example.com", mock.Anything).
			Run(func(args mock.Arguments) {
				*args.Get(1).(*string) = "123456"
			}).Return(true, nil)

		svc := newService(users, cache, new(PublisherMock))
		err := svc.VerifyOTP(context.Background(), "user@example.com", "000000")

		require.ErrorIs(t, err, ErrInvalidCode)
		users.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything)
	})

	t.Run("Просроченный код отклоняется", func(t *testing.T) {
		cache := new(CacheMock)
		cache.On("Get", "otp:user@example.com", mock.Anything).Return(false, nil)

		svc := newService(new(UserRepositoryMock), cache, new(PublisherMock))
		err := svc.VerifyOTP(context.Background(), "user@example.com", "123456")

		require.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestService_ForgotPassword(t *testing.T) {
	t.Run("Отсутствие пользователя не раскрывается", func(t *testing.T) {
		users := new(UserRepositoryMock)
		publisher := new(PublisherMock)
		users.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(nil, repository.ErrNotFound)

		svc := newService(users, new(CacheMock), publisher)
		err := svc.ForgotPassword(context.Background(), "ghost@example.com")

		require.NoError(t, err)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Токен сброса сохраняется и письмо публикуется", func(t *testing.T) {
		users := new(UserRepositoryMock)
		cache := new(CacheMock)
		publisher := new(PublisherMock)

		users.On("GetUserByEmail", mock.Anything, "user@example.com").
			Return(&models.User{UID: "uid-1", Email: "user@example.com", FirstName: "Ivan"}, nil)
		cache.On("Set", mock.AnythingOfType("string"), "user@example.com", time.Hour).Return(nil)
		publisher.On("Publish", rabbitmq.RoutingKeyOTP, mock.MatchedBy(func(e models.OTPEvent) bool {
			return e.Purpose == "reset" && e.Code != ""
		})).Return(nil)

		svc := newService(users, cache, publisher)
		err := svc.ForgotPassword(context.Background(), "user@example.com")

		require.NoError(t, err)
		cache.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})
}
