package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUnwrapPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "Плоский объект без конверта",
			raw:  `{"token":"abc","role":"user"}`,
			want: `{"token":"abc","role":"user"}`,
		},
		{
			name: "Один уровень data",
			raw:  `{"data":{"id":1}}`,
			want: `{"id":1}`,
		},
		{
			name: "Вложенные data и result",
			raw:  `{"data":{"result":{"data":{"id":7}}}}`,
			want: `{"id":7}`,
		},
		{
			name: "Массив не разворачивается",
			raw:  `[{"data":1}]`,
			want: `[{"data":1}]`,
		},
		{
			name: "Null завершает разбор",
			raw:  `{"data":null}`,
			want: `null`,
		},
		{
			name: "Строка остаётся как есть",
			raw:  `"plain"`,
			want: `"plain"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnwrapPayload(json.RawMessage(tt.raw))
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestUnwrapPayload_Idempotent(t *testing.T) {
	raw := json.RawMessage(`{"data":{"data":{"items":[1,2,3]}}}`)
	once := UnwrapPayload(raw)
	twice := UnwrapPayload(once)
	assert.JSONEq(t, string(once), string(twice))
}

func TestAPI_DoDecodesWrapperVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "Конверт с data",
			body: `{"status":"OK","data":{"id":7}}`,
		},
		{
			name: "Конверт с result",
			body: `{"result":{"id":7}}`,
		},
		{
			name: "Вложенные конверты",
			body: `{"data":{"result":{"id":7}}}`,
		},
		{
			name: "Плоское тело без конверта",
			body: `{"id":7}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			session := NewSessionStore(NewMemoryStorage(), newTestLogger())
			api := NewAPI(srv.URL, session, newTestLogger())

			var out struct {
				ID int `json:"id"`
			}
			require.NoError(t, api.Do(context.Background(), http.MethodGet, "/payments", nil, &out))
			assert.Equal(t, 7, out.ID)
		})
	}
}

func TestAPI_AttachToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	defer srv.Close()

	storage := NewMemoryStorage()
	session := NewSessionStore(storage, newTestLogger())
	api := NewAPI(srv.URL, session, newTestLogger())

	t.Run("Валидный токен прикладывается", func(t *testing.T) {
		require.NoError(t, storage.Set(StorageKeyToken, "valid-token-abcdef"))
		session = NewSessionStore(storage, newTestLogger())
		api = NewAPI(srv.URL, session, newTestLogger())

		require.NoError(t, api.Do(context.Background(), http.MethodGet, "/payments", nil, nil))
		assert.Equal(t, "Bearer valid-token-abcdef", gotAuth)
	})

	t.Run("Токен с невалидной формой удаляется и не прикладывается", func(t *testing.T) {
		require.NoError(t, storage.Set(StorageKeyToken, "undefined"))
		session = NewSessionStore(storage, newTestLogger())
		api = NewAPI(srv.URL, session, newTestLogger())

		require.NoError(t, api.Do(context.Background(), http.MethodGet, "/payments", nil, nil))
		assert.Empty(t, gotAuth)
		_, ok := storage.Get(StorageKeyToken)
		assert.False(t, ok)
	})
}

func TestAPI_UnauthorizedClassification(t *testing.T) {
	tests := []struct {
		name            string
		path            string
		token           string
		serverError     string
		wantForceLogout bool
	}{
		{
			name:            "401 от логина не завершает сессию",
			path:            "/auth/login",
			token:           "valid-token-abcdef",
			serverError:     "invalid credentials",
			wantForceLogout: false,
		},
		{
			name:            "401 от логина с маркером неактивного аккаунта не завершает сессию",
			path:            "/auth/login",
			token:           "valid-token-abcdef",
			serverError:     "account is inactive",
			wantForceLogout: false,
		},
		{
			name:            "401 от защищённого пути с приложенным токеном завершает сессию",
			path:            "/payments",
			token:           "valid-token-abcdef",
			serverError:     "invalid or expired token",
			wantForceLogout: true,
		},
		{
			name:            "401 от профиля с маркером неактивного аккаунта завершает сессию",
			path:            "/auth/profile",
			token:           "valid-token-abcdef",
			serverError:     "account is inactive",
			wantForceLogout: true,
		},
		{
			name:            "401 без токена и без маркера не завершает сессию",
			path:            "/payments",
			token:           "",
			serverError:     "missing or invalid authorization header",
			wantForceLogout: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"status": "Error",
					"error":  tt.serverError,
				})
			}))
			defer srv.Close()

			storage := NewMemoryStorage()
			if tt.token != "" {
				require.NoError(t, storage.Set(StorageKeyToken, tt.token))
			}
			session := NewSessionStore(storage, newTestLogger())
			api := NewAPI(srv.URL, session, newTestLogger())

			var forced bool
			api.SetForceLogoutHook(func(string) { forced = true })

			err := api.Do(context.Background(), http.MethodPost, tt.path, nil, nil)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
			assert.Equal(t, tt.wantForceLogout, forced)
		})
	}
}

func TestAPI_NetworkErrorIsNotAPIError(t *testing.T) {
	storage := NewMemoryStorage()
	session := NewSessionStore(storage, newTestLogger())
	api := NewAPI("http://127.0.0.1:1", session, newTestLogger())

	err := api.Do(context.Background(), http.MethodGet, "/payments", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
