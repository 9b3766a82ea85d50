// Package paymentapprove реализует HTTP-обработчик одобрения платежа
// администратором. Одобрение переводит платёж из pending в approved
// и продлевает подписку владельца; терминальный платёж изменить нельзя.
package paymentapprove

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/services/payment"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

// Request — необязательное тело запроса с комментарием администратора.
type Request struct {
	Notes string `json:"notes,omitempty"`
}

// Handler обрабатывает HTTP-запросы на одобрение платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики одобрения платежа.
type Service interface {
	Approve(ctx context.Context, id int, adminUID string, notes *string) (*models.Payment, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Одобрение платежа
// @Description Переводит платёж из pending в approved и продлевает подписку владельца. Терминальный платёж изменить нельзя.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID платежа"
// @Param request body Request false "Комментарий администратора"
// @Success 200 {object} map[string]any "Обновлённый платёж"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 409 {object} response.ErrorResponse "Платёж уже в терминальном статусе"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/{id}/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentapprove"

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

	// Тело необязательно: пустое тело означает одобрение без комментария.
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	updated, err := h.service.Approve(r.Context(), id, adminUID, notes)
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
		default:
			log.Error("failed to approve payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to approve payment"))
		}
		return
	}

	log.Info("payment approved", slog.Int("id", id), slog.String("admin", adminUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"payment": updated,
	}))
}
