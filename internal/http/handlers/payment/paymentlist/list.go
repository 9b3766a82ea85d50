// Package paymentlist реализует HTTP-обработчик получения списка платежей
// с фильтрацией и пагинацией. Обычный пользователь видит только свои
// платежи, администратор — платежи всех пользователей.
package paymentlist

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

// Handler обрабатывает HTTP-запросы на получение списка платежей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики получения списка платежей.
type Service interface {
	List(ctx context.Context, userUID, role string, filter models.PaymentFilter) ([]*models.Payment, int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список платежей
// @Description Возвращает страницу платежей. Пользователь видит только свои платежи.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Param status query string false "Фильтр по статусу (pending, approved, rejected)"
// @Param method query string false "Фильтр по способу оплаты (qr_code, upi)"
// @Param search query string false "Поиск по сумме или периоду"
// @Param page query int false "Номер страницы (по умолчанию 1)"
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Success 200 {object} map[string]any "Страница платежей"
// @Failure 401 {object} response.ErrorResponse "Недействительный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	page, limit := parsePagination(r)
	filter := models.PaymentFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}
	if v := r.URL.Query().Get("method"); v != "" {
		filter.Method = &v
	}
	if v := r.URL.Query().Get("search"); v != "" {
		filter.Search = &v
	}
	if v := r.URL.Query().Get("user_uid"); v != "" && role == models.RoleAdmin {
		filter.UserUID = &v
	}

	items, total, err := h.service.List(r.Context(), userUID, role, filter)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list payments"))
		return
	}

	log.Info("payments listed", slog.Int("count", len(items)), slog.Int("total", total))
	render.JSON(w, r, response.OKWithList(items, models.NewPagination(page, limit, total)))
}

func parsePagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
