// Package paymentstats реализует HTTP-обработчик получения агрегатов
// по платежам: администратору по всем, пользователю по собственным.
package paymentstats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
)

// Handler обрабатывает HTTP-запросы на получение статистики платежей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики статистики платежей.
type Service interface {
	Stats(ctx context.Context, userUID, role string) (*models.PaymentStats, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика платежей
// @Description Возвращает агрегаты по платежам: количество по статусам и сумму одобренных.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Агрегаты платежей"
// @Failure 401 {object} response.ErrorResponse "Недействительный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentstats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	stats, err := h.service.Stats(r.Context(), userUID, role)
	if err != nil {
		log.Error("failed to count payment stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to count payment stats"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"stats": stats,
	}))
}
