// Package notificationlist реализует HTTP-обработчик получения уведомлений
// текущего пользователя вместе со счётчиком непрочитанных.
package notificationlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
)

// Handler обрабатывает HTTP-запросы на получение уведомлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики уведомлений.
type Service interface {
	List(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, int, int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Уведомления пользователя
// @Description Возвращает страницу уведомлений и число непрочитанных.
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы (по умолчанию 1)"
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Success 200 {object} map[string]any "Страница уведомлений"
// @Failure 401 {object} response.ErrorResponse "Недействительный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notifications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.notificationlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, unread, err := h.service.List(r.Context(), userUID, limit, (page-1)*limit)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list notifications"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"items":      items,
		"unread":     unread,
		"pagination": models.NewPagination(page, limit, total),
	}))
}
