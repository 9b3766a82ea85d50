package client

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

// TokenIsValid проверяет форму токена: непустой, достаточной длины
// и без следов сериализации отсутствующего значения. Подпись токена
// проверяет только сервер.
func TokenIsValid(token string) bool {
	if token == "" || len(token) <= 10 {
		return false
	}
	if strings.Contains(token, "undefined") || strings.Contains(token, "null") {
		return false
	}
	return true
}

// SessionStore хранит текущую сессию (токен и профиль) в памяти
// с персистентностью в Storage и уведомляет подписчиков об изменениях.
//
// Сессия считается аутентифицированной только при валидном по форме
// токене И наличии профиля: одного токена недостаточно.
type SessionStore struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	user    *models.User
	subs    map[int]func()
	nextSub int
	log     *slog.Logger
}

// NewSessionStore создаёт SessionStore и восстанавливает сессию
// из хранилища. Повреждённый профиль отбрасывается.
func NewSessionStore(storage Storage, log *slog.Logger) *SessionStore {
	s := &SessionStore{
		storage: storage,
		subs:    make(map[int]func()),
		log:     log,
	}

	if token, ok := storage.Get(StorageKeyToken); ok {
		s.token = token
	}
	if raw, ok := storage.Get(StorageKeyUser); ok {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			s.user = &user
		} else {
			log.Warn("stored user profile is corrupted, dropping")
			_ = storage.Delete(StorageKeyUser)
		}
	}
	return s
}

// Token возвращает текущий токен.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User возвращает текущий профиль пользователя.
func (s *SessionStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated сообщает, действует ли сессия: токен валиден по форме
// и профиль присутствует.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TokenIsValid(s.token) && s.user != nil
}

// SetSession сохраняет токен и профиль и уведомляет подписчиков.
func (s *SessionStore) SetSession(token string, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	if err := s.storage.Set(StorageKeyToken, token); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.storage.Set(StorageKeyUser, string(raw)); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// ClearToken удаляет только токен. Используется при обнаружении
// токена с невалидной формой.
func (s *SessionStore) ClearToken() {
	s.mu.Lock()
	s.token = ""
	_ = s.storage.Delete(StorageKeyToken)
	s.mu.Unlock()

	s.notify()
}

// ClearSession удаляет токен и профиль. Настройки интерфейса
// сохраняются.
func (s *SessionStore) ClearSession() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	_ = s.storage.Delete(StorageKeyToken)
	_ = s.storage.Delete(StorageKeyUser)
	s.mu.Unlock()

	s.notify()
}

// Subscribe регистрирует подписчика на изменения сессии и возвращает
// функцию отписки.
func (s *SessionStore) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Preference возвращает настройку интерфейса по ключу.
func (s *SessionStore) Preference(key string) (string, bool) {
	return s.storage.Get(key)
}

// SetPreference сохраняет настройку интерфейса.
func (s *SessionStore) SetPreference(key, value string) error {
	return s.storage.Set(key, value)
}
