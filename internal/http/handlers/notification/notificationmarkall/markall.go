// Package notificationmarkall реализует HTTP-обработчик отметки всех
// уведомлений пользователя прочитанными.
package notificationmarkall

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы на отметку всех уведомлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отметки уведомлений.
type Service interface {
	MarkAllRead(ctx context.Context, userUID string) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отметка всех уведомлений прочитанными
// @Description Переводит все непрочитанные уведомления пользователя в read.
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Количество отмеченных уведомлений"
// @Failure 401 {object} response.ErrorResponse "Недействительный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notifications/read-all [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.notificationmarkall"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	marked, err := h.service.MarkAllRead(r.Context(), userUID)
	if err != nil {
		log.Error("failed to mark all notifications read", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to mark all notifications read"))
		return
	}

	log.Info("all notifications marked read", slog.Int("count", marked))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"marked": marked,
	}))
}
