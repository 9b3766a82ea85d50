// Package paymentreject реализует HTTP-обработчик отклонения платежа
// администратором. Причина отклонения обязательна.
package paymentreject

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/services/payment"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

// Request — структура входных данных для отклонения платежа.
type Request struct {
	Reason string `json:"reason" validate:"required,max=500"`
	Notes  string `json:"notes,omitempty"`
}

// Handler обрабатывает HTTP-запросы на отклонение платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики отклонения платежа.
type Service interface {
	Reject(ctx context.Context, id int, adminUID, reason string, notes *string) (*models.Payment, error)
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
// @Summary Отклонение платежа
// @Description Переводит платёж из pending в rejected с обязательной причиной. Терминальный платёж изменить нельзя.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID платежа"
// @Param request body Request true "Причина отклонения"
// @Success 200 {object} map[string]any "Обновлённый платёж"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 409 {object} response.ErrorResponse "Платёж уже в терминальном статусе"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/{id}/reject [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentreject"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payment id"))
		return
	}

	adminUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	var req Request
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

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	updated, err := h.service.Reject(r.Context(), id, adminUID, req.Reason, notes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Warn("payment not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		case errors.Is(err, payment.ErrInvalidTransition):
			log.Warn("invalid status transition", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("payment is already finalized"))
		case errors.Is(err, payment.ErrEmptyReason):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("rejection reason is required"))
		default:
			log.Error("failed to reject payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to reject payment"))
		}
		return
	}

	log.Info("payment rejected", slog.Int("id", id), slog.String("admin", adminUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"payment": updated,
	}))
}
