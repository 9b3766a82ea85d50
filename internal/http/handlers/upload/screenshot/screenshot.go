// Package screenshot реализует HTTP-обработчик загрузки скриншота оплаты
// в объектное хранилище. Возвращённый URL затем передаётся при создании
// qr_code платежа.
package screenshot

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/http/response"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
)

// Максимальный размер скриншота — 5 МиБ.
const maxUploadSize = 5 << 20

// Handler обрабатывает HTTP-запросы на загрузку скриншота.
type Handler struct {
	log   *slog.Logger
	store Store
}

// Store описывает интерфейс объектного хранилища скриншотов.
type Store interface {
	UploadScreenshot(ctx context.Context, userUID string, reader io.Reader, size int64, contentType string) (string, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, store Store) *Handler {
	return &Handler{log: log, store: store}
}

// ServeHTTP godoc
// @Summary Загрузка скриншота оплаты
// @Description Принимает multipart-файл поля screenshot (png, jpeg, webp до 5 МиБ) и возвращает публичный URL.
// @Tags Uploads
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param screenshot formData file true "Файл скриншота"
// @Success 201 {object} map[string]any "URL загруженного файла"
// @Failure 400 {object} response.ErrorResponse "Отсутствует файл или неподдерживаемый формат"
// @Failure 401 {object} response.ErrorResponse "Недействительный токен"
// @Failure 413 {object} response.ErrorResponse "Файл слишком большой"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /uploads/payment-screenshot [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.upload.screenshot"

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

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		render.JSON(w, r, response.Error("file is too large"))
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		log.Error("missing screenshot file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing screenshot file"))
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")

	url, err := h.store.UploadScreenshot(r.Context(), userUID, file, header.Size, contentType)
	if err != nil {
		log.Error("failed to upload screenshot", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to upload screenshot"))
		return
	}

	log.Info("screenshot uploaded", slog.String("user_uid", userUID), slog.String("url", url))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"url": url,
	}))
}
