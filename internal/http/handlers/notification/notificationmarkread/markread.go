// Package notificationmarkread реализует HTTP-обработчик отметки
// уведомления прочитанным. Переход только unread -> read, чужое или
// уже прочитанное уведомление отметить нельзя.
package notificationmarkread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/services/notification"
)

// Handler обрабатывает HTTP-запросы на отметку уведомления прочитанным.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отметки уведомлений.
type Service interface {
	MarkRead(ctx context.Context, id int, userUID string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отметка уведомления прочитанным
// @Description Переводит уведомление из unread в read. Обратный переход невозможен.
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID уведомления"
// @Success 200 {object} response.Response "Уведомление прочитано"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 409 {object} response.ErrorResponse "Уведомление не является непрочитанным"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notifications/{id}/read [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.notificationmarkread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid notification id"))
		return
	}

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	if err := h.service.MarkRead(r.Context(), id, userUID); err != nil {
		if errors.Is(err, notification.ErrInvalidTransition) {
			log.Warn("notification is not unread", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("notification is not unread"))
			return
		}
		log.Error("failed to mark notification read", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to mark notification read"))
		return
	}

	log.Info("notification marked read", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
