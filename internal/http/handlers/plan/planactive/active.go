// Package planactive реализует публичный HTTP-обработчик получения
// активных тарифных планов. Выдача кешируется.
package planactive

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
)

// Handler обрабатывает HTTP-запросы на получение активных тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики активных тарифов.
type Service interface {
	ListActive(ctx context.Context) ([]*models.Plan, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Активные тарифные планы
// @Description Возвращает тарифы, доступные для оформления подписки. Не требует авторизации.
// @Tags Plans
// @Produce  json
// @Success 200 {object} map[string]any "Список активных тарифов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payment-plans/active [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.planactive"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.ListActive(r.Context())
	if err != nil {
		log.Error("failed to list active plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list active plans"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"items": plans,
	}))
}
