// Package userstatus реализует HTTP-обработчик смены статуса аккаунта
// администратором. Ручная активация может сопровождаться выдачей
// оплаченного периода.
package userstatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/services/user"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

// Request — структура входных данных для смены статуса аккаунта.
type Request struct {
	Status      string `json:"status" validate:"required,oneof=active inactive suspended"`
	GrantMonths int    `json:"grant_months,omitempty" validate:"omitempty,gte=0,lte=24"`
}

// Handler обрабатывает HTTP-запросы на смену статуса аккаунта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики смены статуса.
type Service interface {
	UpdateStatus(ctx context.Context, uid, status, adminUID string, grantMonths int) (*models.User, error)
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
// @Summary Смена статуса аккаунта
// @Description Меняет статус аккаунта пользователя. Активация с grant_months создаёт ручной платёж и продлевает подписку.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID пользователя"
// @Param request body Request true "Новый статус"
// @Success 200 {object} map[string]any "Обновлённый пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{uid}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.userstatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
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

	updated, err := h.service.UpdateStatus(r.Context(), uid, req.Status, adminUID, req.GrantMonths)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Warn("user not found", slog.String("uid", uid))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, user.ErrUnknownStatus):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown account status"))
		default:
			log.Error("failed to update user status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update user status"))
		}
		return
	}

	log.Info("user status updated", slog.String("uid", uid), slog.String("status", req.Status))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": updated,
	}))
}
