package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

func TestTokenIsValid(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"Нормальный JWT", "eyJhbGciOiJIUzI1NiJ9.payload.sig", true},
		{"Пустая строка", "", false},
		{"Слишком короткий", "abc", false},
		{"Строка undefined", "undefined", false},
		{"Строка null", "null", false},
		{"Склейка с undefined", "Bearer-undefined-token", false},
		{"Склейка с null", "token-null-value-long", false},
		{"Ровно десять символов", "0123456789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenIsValid(tt.token))
		})
	}
}

func TestSessionStore_IsAuthenticated(t *testing.T) {
	user := &models.User{UID: "uid-1", Email: "user@example.com", Status: models.UserStatusActive}

	tests := []struct {
		name  string
		token string
		user  *models.User
		want  bool
	}{
		{"Токен и профиль", "valid-token-abcdef", user, true},
		{"Только токен", "valid-token-abcdef", nil, false},
		{"Только профиль", "", user, false},
		{"Невалидный токен с профилем", "undefined", user, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			if tt.token != "" {
				require.NoError(t, storage.Set(StorageKeyToken, tt.token))
			}
			if tt.user != nil {
				raw, err := json.Marshal(tt.user)
				require.NoError(t, err)
				require.NoError(t, storage.Set(StorageKeyUser, string(raw)))
			}

			session := NewSessionStore(storage, newTestLogger())
			assert.Equal(t, tt.want, session.IsAuthenticated())
		})
	}
}

func TestSessionStore_CorruptedUserDropped(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(StorageKeyToken, "valid-token-abcdef"))
	require.NoError(t, storage.Set(StorageKeyUser, "{not json"))

	session := NewSessionStore(storage, newTestLogger())

	assert.Nil(t, session.User())
	assert.False(t, session.IsAuthenticated())
	_, ok := storage.Get(StorageKeyUser)
	assert.False(t, ok)
}

func TestSessionStore_SetAndClear(t *testing.T) {
	storage := NewMemoryStorage()
	session := NewSessionStore(storage, newTestLogger())

	var notified int
	unsubscribe := session.Subscribe(func() { notified++ })
	defer unsubscribe()

	user := &models.User{UID: "uid-1", Email: "user@example.com"}
	require.NoError(t, session.SetSession("valid-token-abcdef", user))

	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, 1, notified)

	storedToken, ok := storage.Get(StorageKeyToken)
	require.True(t, ok)
	assert.Equal(t, "valid-token-abcdef", storedToken)

	session.ClearSession()

	assert.False(t, session.IsAuthenticated())
	assert.Nil(t, session.User())
	assert.Empty(t, session.Token())
	assert.Equal(t, 2, notified)

	_, ok = storage.Get(StorageKeyToken)
	assert.False(t, ok)
	_, ok = storage.Get(StorageKeyUser)
	assert.False(t, ok)
}

func TestSessionStore_PreferencesSurviveClear(t *testing.T) {
	storage := NewMemoryStorage()
	session := NewSessionStore(storage, newTestLogger())

	require.NoError(t, session.SetPreference(StorageKeySidebar, "true"))
	require.NoError(t, session.SetPreference(StorageKeyTheme, "dark"))
	require.NoError(t, session.SetSession("valid-token-abcdef", &models.User{UID: "uid-1"}))

	session.ClearSession()

	v, ok := session.Preference(StorageKeySidebar)
	require.True(t, ok)
	assert.Equal(t, "true", v)
	v, ok = session.Preference(StorageKeyTheme)
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestFileStorage_Roundtrip(t *testing.T) {
	path := t.TempDir() + "/session.json"

	storage, err := NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, storage.Set(StorageKeyToken, "valid-token-abcdef"))

	reopened, err := NewFileStorage(path)
	require.NoError(t, err)
	v, ok := reopened.Get(StorageKeyToken)
	require.True(t, ok)
	assert.Equal(t, "valid-token-abcdef", v)
}
