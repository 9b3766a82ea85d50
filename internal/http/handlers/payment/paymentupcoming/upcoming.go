// Package paymentupcoming реализует HTTP-обработчик отчёта по подпискам
// с подходящим сроком окончания. Используется администратором.
package paymentupcoming

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
)

// Handler обрабатывает HTTP-запросы отчёта по заканчивающимся подпискам.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отчёта.
type Service interface {
	Upcoming(ctx context.Context, days int) ([]*models.ExpiringPayment, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Заканчивающиеся подписки
// @Description Возвращает подписки, оплаченный период которых заканчивается в ближайшие N дней (по умолчанию 7).
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Param days query int false "Горизонт в днях (по умолчанию 7)"
// @Success 200 {object} map[string]any "Список заканчивающихся подписок"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/upcoming [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentupcoming"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 1 || days > 90 {
		days = 7
	}

	items, err := h.service.Upcoming(r.Context(), days)
	if err != nil {
		log.Error("failed to list upcoming expirations", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list upcoming expirations"))
		return
	}

	log.Info("upcoming expirations listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"items": items,
		"days":  days,
	}))
}
