// Package paymentcreate реализует HTTP-обработчик создания заявки
// на оплату подписки. Заявка создаётся в статусе pending и ожидает
// решения администратора.
package paymentcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/services/payment"
)

// Handler обрабатывает HTTP-запросы на создание платежа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики платежей
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс бизнес-логики создания платежа.
type Service interface {
	Submit(ctx context.Context, userUID string, req models.DummyPayment) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создание заявки на оплату
// @Description Создаёт платёж в статусе pending. Для qr_code обязателен скриншот, сумма и период должны совпадать с активным тарифом.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyPayment true "Данные платежа"
// @Success 201 {object} map[string]any "Платёж создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или нарушение бизнес-правил"
// @Failure 401 {object} response.ErrorResponse "Недействительный токен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentcreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("missing user uid in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyPayment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.service.Submit(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPlanMismatch):
			log.Warn("plan mismatch", slog.Float64("amount", req.Amount))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("amount and duration do not match an active plan"))
		case errors.Is(err, payment.ErrScreenshotRequired):
			log.Warn("screenshot missing for qr_code payment")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("screenshot is required for qr_code payments"))
		default:
			log.Error("failed to create payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to create payment"))
		}
		return
	}

	log.Info("payment created", slog.Int("id", id), slog.String("user_uid", userUID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
