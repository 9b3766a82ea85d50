package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
)

// State состояние аутентификации клиента.
type State string

// Состояния жизненного цикла аутентификации. Unknown действует до
// первого Bootstrap, Loading — на время операции входа.
const (
	StateUnknown         State = "unknown"
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// AuthManager управляет жизненным циклом аутентификации: вход, выход,
// восстановление сессии и периодическая проверка статуса аккаунта.
//
// Конкурирующие операции разрешаются по принципу "последняя
// побеждает": результат устаревшей операции не применяется.
type AuthManager struct {
	api     *API
	session *SessionStore
	log     *slog.Logger

	mu    sync.RWMutex
	state State
	seq   atomic.Uint64
	subs  map[int]func(State)
	next  int
}

// NewAuthManager создаёт менеджер и подключает его к API как обработчик
// принудительного завершения сессии.
func NewAuthManager(api *API, session *SessionStore, log *slog.Logger) *AuthManager {
	m := &AuthManager{
		api:     api,
		session: session,
		log:     log,
		state:   StateUnknown,
		subs:    make(map[int]func(State)),
	}
	api.SetForceLogoutHook(m.ForceLogout)
	return m
}

// State возвращает текущее состояние аутентификации.
func (m *AuthManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe регистрирует подписчика на смену состояния и возвращает
// функцию отписки.
func (m *AuthManager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *AuthManager) setState(s State) {
	m.mu.Lock()
	changed := m.state != s
	m.state = s
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range fns {
		fn(s)
	}
}

// Bootstrap оптимистично восстанавливает состояние из сохранённой
// сессии без обращения к серверу. Актуальность сессии подтверждает
// последующий CheckUserStatus.
func (m *AuthManager) Bootstrap() {
	if m.session.IsAuthenticated() {
		m.setState(StateAuthenticated)
		return
	}
	m.setState(StateUnauthenticated)
}

// Login выполняет вход. Неудачный вход не завершает уже действующую
// сессию: отказ сервера оставляет прежнего пользователя вошедшим.
func (m *AuthManager) Login(ctx context.Context, email, password string) error {
	id := m.seq.Add(1)
	prev := m.State()
	m.setState(StateLoading)

	var res struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	err := m.api.Do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &res)

	if id != m.seq.Load() {
		// Пока выполнялся запрос, началась более новая операция.
		return err
	}

	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			// Сетевая ошибка: состояние не меняется.
			m.log.Warn("login request failed", sl.Err(err))
			m.setState(prev)
			return err
		}
		if m.session.IsAuthenticated() {
			m.setState(StateAuthenticated)
		} else {
			m.setState(StateUnauthenticated)
		}
		return err
	}

	if err := m.session.SetSession(res.Token, res.User); err != nil {
		m.setState(prev)
		return err
	}
	m.setState(StateAuthenticated)
	m.log.Info("login completed", slog.String("email", email))
	return nil
}

// Logout завершает сессию локально.
func (m *AuthManager) Logout() {
	m.seq.Add(1)
	m.session.ClearSession()
	m.setState(StateUnauthenticated)
	m.log.Info("logged out")
}

// ForceLogout завершает сессию по требованию сервера: недействительный
// токен или деактивированный аккаунт.
func (m *AuthManager) ForceLogout(reason string) {
	m.seq.Add(1)
	m.session.ClearSession()
	m.setState(StateUnauthenticated)
	m.log.Warn("session terminated by server", slog.String("reason", reason))
}

// CheckUserStatus запрашивает профиль и обновляет сохранённую сессию.
// Профиль отвечает и деактивированному аккаунту, поэтому неактивный
// статус в успешном ответе завершает сессию так же, как ответ 401.
// Сетевые ошибки оставляют состояние без изменений.
func (m *AuthManager) CheckUserStatus(ctx context.Context) error {
	id := m.seq.Add(1)

	var res struct {
		User *models.User `json:"user"`
	}
	err := m.api.Do(ctx, http.MethodGet, "/auth/profile", nil, &res)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			m.log.Warn("status check failed, keeping current state", sl.Err(err))
		}
		return err
	}

	if id != m.seq.Load() {
		return nil
	}
	if res.User == nil {
		return nil
	}
	if res.User.Status != models.UserStatusActive {
		m.ForceLogout("account status is " + res.User.Status)
		return nil
	}
	if err := m.session.SetSession(m.session.Token(), res.User); err != nil {
		return err
	}
	m.setState(StateAuthenticated)
	return nil
}
