package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalverma25/wifi-portal/internal/lib/jwt"
	"github.com/kunalverma25/wifi-portal/internal/models"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	token, err := maker.GenerateToken("uid-123", "user@example.com", models.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "Валидный токен",
			authHeader:     "Bearer " + token,
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "Отсутствие заголовка",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Без префикса Bearer",
			authHeader:     token,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Мусор вместо токена",
			authHeader:     "Bearer not.a.token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				assert.Equal(t, "uid-123", r.Context().Value(UserUID))
				assert.Equal(t, "user@example.com", r.Context().Value(Email))
				assert.Equal(t, models.RoleUser, r.Context().Value(Role))
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			JWTMiddleware(maker, discardLogger)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		role           any
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "Администратор",
			role:           models.RoleAdmin,
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "Обычный пользователь",
			role:           models.RoleUser,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Неизвестная роль",
			role:           "superuser",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Роль отсутствует в контексте",
			role:           nil,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), Role, tt.role))
			}
			rr := httptest.NewRecorder()

			AdminOnlyMiddleware(discardLogger)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}

type stubStatusProvider struct {
	user *models.User
	err  error
}

func (s *stubStatusProvider) Profile(_ context.Context, _ string) (*models.User, error) {
	return s.user, s.err
}

func TestAccountStatusMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		user           *models.User
		expectedStatus int
		expectedBody   string
		expectNext     bool
	}{
		{
			name:           "Активный аккаунт",
			user:           &models.User{Status: models.UserStatusActive},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "Неактивный аккаунт",
			user:           &models.User{Status: models.UserStatusInactive},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "account is inactive",
		},
		{
			name:           "Заблокированный аккаунт",
			user:           &models.User{Status: models.UserStatusSuspended},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "account is inactive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
			req = req.WithContext(context.WithValue(req.Context(), UserUID, "uid-123"))
			rr := httptest.NewRecorder()

			provider := &stubStatusProvider{user: tt.user}
			AccountStatusMiddleware(discardLogger, provider)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
		})
	}
}
