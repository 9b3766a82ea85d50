package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

func newAuthenticatedStorage(t *testing.T, uid, email string) *MemoryStorage {
	t.Helper()

	storage := NewMemoryStorage()
	user := models.User{UID: uid, Email: email, Role: models.RoleUser, Status: models.UserStatusActive}
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, storage.Set(StorageKeyToken, "stored-token-abcdef"))
	require.NoError(t, storage.Set(StorageKeyUser, string(raw)))
	return storage
}

func TestAuthManager_Bootstrap(t *testing.T) {
	tests := []struct {
		name    string
		storage *MemoryStorage
		want    State
	}{
		{
			name:    "Сохранённая сессия восстанавливается без сети",
			storage: newAuthenticatedStorage(t, "uid-1", "user@example.com"),
			want:    StateAuthenticated,
		},
		{
			name:    "Пустое хранилище даёт неаутентифицированное состояние",
			storage: NewMemoryStorage(),
			want:    StateUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSessionStore(tt.storage, newTestLogger())
			api := NewAPI("http://127.0.0.1:1", session, newTestLogger())
			auth := NewAuthManager(api, session, newTestLogger())

			assert.Equal(t, StateUnknown, auth.State())
			auth.Bootstrap()
			assert.Equal(t, tt.want, auth.State())
		})
	}
}

func TestAuthManager_LoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"data": map[string]any{
				"token": "issued-token-abcdef",
				"user": models.User{
					UID:    "uid-1",
					Email:  "user@example.com",
					Role:   models.RoleUser,
					Status: models.UserStatusActive,
				},
			},
		})
	}))
	defer srv.Close()

	storage := NewMemoryStorage()
	session := NewSessionStore(storage, newTestLogger())
	api := NewAPI(srv.URL, session, newTestLogger())
	auth := NewAuthManager(api, session, newTestLogger())

	var states []State
	auth.Subscribe(func(s State) { states = append(states, s) })

	require.NoError(t, auth.Login(context.Background(), "user@example.com", "secret"))

	assert.Equal(t, StateAuthenticated, auth.State())
	assert.Equal(t, []State{StateLoading, StateAuthenticated}, states)
	assert.Equal(t, "issued-token-abcdef", session.Token())
	require.NotNil(t, session.User())
	assert.Equal(t, "uid-1", session.User().UID)

	storedToken, ok := storage.Get(StorageKeyToken)
	require.True(t, ok)
	assert.Equal(t, "issued-token-abcdef", storedToken)
}

func TestAuthManager_FailedLoginKeepsExistingSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "Error",
			"error":  "invalid credentials",
		})
	}))
	defer srv.Close()

	storage := newAuthenticatedStorage(t, "uid-1", "first@example.com")
	session := NewSessionStore(storage, newTestLogger())
	api := NewAPI(srv.URL, session, newTestLogger())
	auth := NewAuthManager(api, session, newTestLogger())
	auth.Bootstrap()
	require.Equal(t, StateAuthenticated, auth.State())

	err := auth.Login(context.Background(), "second@example.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	// Первый пользователь остаётся вошедшим.
	assert.Equal(t, StateAuthenticated, auth.State())
	require.NotNil(t, session.User())
	assert.Equal(t, "first@example.com", session.User().Email)
}

func TestAuthManager_NetworkErrorRestoresState(t *testing.T) {
	storage := newAuthenticatedStorage(t, "uid-1", "user@example.com")
	session := NewSessionStore(storage, newTestLogger())
	api := NewAPI("http://127.0.0.1:1", session, newTestLogger())
	auth := NewAuthManager(api, session, newTestLogger())
	auth.Bootstrap()

	err := auth.Login(context.Background(), "user@example.com", "secret")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, StateAuthenticated, auth.State())
	assert.True(t, session.IsAuthenticated())
}

func TestAuthManager_Logout(t *testing.T) {
	storage := newAuthenticatedStorage(t, "uid-1", "user@example.com")
	session := NewSessionStore(storage, newTestLogger())
	api := NewAPI("http://127.0.0.1:1", session, newTestLogger())
	auth := NewAuthManager(api, session, newTestLogger())
	auth.Bootstrap()

	auth.Logout()

	assert.Equal(t, StateUnauthenticated, auth.State())
	assert.False(t, session.IsAuthenticated())
	_, ok := storage.Get(StorageKeyToken)
	assert.False(t, ok)
	_, ok = storage.Get(StorageKeyUser)
	assert.False(t, ok)
}

func TestAuthManager_DeactivatedAccountForcesLogout(t *testing.T) {
	// Профиль отвечает и деактивированному аккаунту: токен остаётся
	// действительным, сервер возвращает 200 с неактивным статусом.
	tests := []struct {
		name   string
		status string
	}{
		{"Деактивированный аккаунт", models.UserStatusInactive},
		{"Заблокированный аккаунт", models.UserStatusSuspended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/auth/profile", r.URL.Path)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": "OK",
					"data": map[string]any{
						"user": models.User{
							UID:    "uid-1",
							Email:  "user@example.com",
							Role:   models.RoleUser,
							Status: tt.status,
						},
					},
				})
			}))
			defer srv.Close()

			storage := newAuthenticatedStorage(t, "uid-1", "user@example.com")
			session := NewSessionStore(storage, newTestLogger())
			api := NewAPI(srv.URL, session, newTestLogger())
			auth := NewAuthManager(api, session, newTestLogger())
			auth.Bootstrap()
			require.Equal(t, StateAuthenticated, auth.State())

			require.NoError(t, auth.CheckUserStatus(context.Background()))

			assert.Equal(t, StateUnauthenticated, auth.State())
			assert.False(t, session.IsAuthenticated())
			_, ok := storage.Get(StorageKeyToken)
			assert.False(t, ok)
			_, ok = storage.Get(StorageKeyUser)
			assert.False(t, ok)
		})
	}
}

func TestAuthManager_RevokedTokenForcesLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/profile", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "Error",
			"error":  "invalid or expired token",
		})
	}))
	defer srv.Close()

	storage := newAuthenticatedStorage(t, "uid-1", "user@example.com")
	session := NewSessionStore(storage, newTestLogger())
	api := NewAPI(srv.URL, session, newTestLogger())
	auth := NewAuthManager(api, session, newTestLogger())
	auth.Bootstrap()
	require.Equal(t, StateAuthenticated, auth.State())

	err := auth.CheckUserStatus(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateUnauthenticated, auth.State())
	assert.False(t, session.IsAuthenticated())
	_, ok := storage.Get(StorageKeyToken)
	assert.False(t, ok)
}

func TestAuthManager_CheckUserStatusRefreshesProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"data": map[string]any{
				"user": models.User{
					UID:    "uid-1",
					Email:  "renamed@example.com",
					Role:   models.RoleUser,
					Status: models.UserStatusActive,
				},
			},
		})
	}))
	defer srv.Close()

	storage := newAuthenticatedStorage(t, "uid-1", "user@example.com")
	session := NewSessionStore(storage, newTestLogger())
	api := NewAPI(srv.URL, session, newTestLogger())
	auth := NewAuthManager(api, session, newTestLogger())
	auth.Bootstrap()

	require.NoError(t, auth.CheckUserStatus(context.Background()))

	require.NotNil(t, session.User())
	assert.Equal(t, "renamed@example.com", session.User().Email)
	assert.Equal(t, StateAuthenticated, auth.State())
}
