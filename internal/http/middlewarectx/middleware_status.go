package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
)

// StatusProvider возвращает актуального пользователя для проверки статуса.
type StatusProvider interface {
	Profile(ctx context.Context, uid string) (*models.User, error)
}

// AccountStatusMiddleware запрещает доступ к защищённым маршрутам
// пользователям с неактивным аккаунтом. Текст ошибки "account is inactive"
// служит клиенту маркером принудительного завершения сессии.
func AccountStatusMiddleware(log *slog.Logger, provider StatusProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			user, err := provider.Profile(r.Context(), userUID)
			if err != nil {
				log.Error("failed to get account status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal server error"))
				return
			}

			if user.Status != models.UserStatusActive {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("account is inactive"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
