package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
)

// Decision решение шлюза по защищённому разделу.
type Decision string

// Возможные решения шлюза.
const (
	// DecisionRender — раздел показывается.
	DecisionRender Decision = "render"
	// DecisionRedirect — пользователь отправляется на страницу входа.
	DecisionRedirect Decision = "redirect"
	// DecisionBlock — раздел не показывается, пока состояние не определено.
	DecisionBlock Decision = "block"
)

// Gate принимает решение о доступе к защищённому разделу по текущему
// состоянию аутентификации. Неопределённые состояния блокируют показ
// вместо преждевременного редиректа.
type Gate struct {
	auth *AuthManager
}

// NewGate создает новый экземпляр Gate.
func NewGate(auth *AuthManager) *Gate {
	return &Gate{auth: auth}
}

// Decide возвращает решение для текущего состояния аутентификации.
func (g *Gate) Decide() Decision {
	switch g.auth.State() {
	case StateAuthenticated:
		return DecisionRender
	case StateUnauthenticated:
		return DecisionRedirect
	case StateUnknown, StateLoading:
		return DecisionBlock
	default:
		return DecisionBlock
	}
}

// StatusPoller периодически проверяет статус аккаунта, чтобы
// деактивация на сервере завершала сессию без действий пользователя.
type StatusPoller struct {
	auth     *AuthManager
	interval time.Duration
	log      *slog.Logger
}

// NewStatusPoller создает поллер с указанным интервалом.
func NewStatusPoller(auth *AuthManager, interval time.Duration, log *slog.Logger) *StatusPoller {
	return &StatusPoller{
		auth:     auth,
		interval: interval,
		log:      log,
	}
}

// Run запускает цикл проверки и блокируется до отмены контекста.
// Первая проверка выполняется сразу.
func (p *StatusPoller) Run(ctx context.Context) {
	p.check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *StatusPoller) check(ctx context.Context) {
	if p.auth.State() != StateAuthenticated {
		return
	}
	if err := p.auth.CheckUserStatus(ctx); err != nil {
		p.log.Debug("status poll failed", sl.Err(err))
	}
}
