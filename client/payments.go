package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

// ErrScreenshotRequired возвращается при попытке оформить qr_code платёж
// без скриншота. Проверка выполняется до обращения к серверу.
var ErrScreenshotRequired = errors.New("screenshot is required for qr_code payments")

// SubmitRequest данные для оформления платежа. Для qr_code обязателен
// файл скриншота.
type SubmitRequest struct {
	Amount         float64
	DurationMonths int
	Method         string
	UPIReference   string
	Notes          string

	Screenshot            io.Reader
	ScreenshotName        string
	ScreenshotContentType string
}

// PaymentsClient реализует клиентский сценарий оплаты: загрузку
// скриншота, создание заявки и операции администратора.
type PaymentsClient struct {
	api *API
	log *slog.Logger
}

// NewPaymentsClient создает новый экземпляр PaymentsClient.
func NewPaymentsClient(api *API, log *slog.Logger) *PaymentsClient {
	return &PaymentsClient{api: api, log: log}
}

// Submit оформляет платёж. Скриншот загружается до создания заявки:
// неуспешная загрузка прерывает сценарий, заявка без подтверждения
// не создаётся.
func (c *PaymentsClient) Submit(ctx context.Context, req SubmitRequest) (int, error) {
	if req.Method == models.PaymentMethodQRCode && req.Screenshot == nil {
		return 0, ErrScreenshotRequired
	}

	var screenshotURL string
	if req.Screenshot != nil {
		var uploaded struct {
			URL string `json:"url"`
		}
		err := c.api.DoMultipart(ctx, "/uploads/payment-screenshot",
			"screenshot", req.ScreenshotName, req.ScreenshotContentType,
			req.Screenshot, &uploaded)
		if err != nil {
			return 0, fmt.Errorf("screenshot upload failed: %w", err)
		}
		screenshotURL = uploaded.URL
		c.log.Info("screenshot uploaded", slog.String("url", screenshotURL))
	}

	payload := models.DummyPayment{
		Amount:         req.Amount,
		DurationMonths: req.DurationMonths,
		Method:         req.Method,
		ScreenshotURL:  screenshotURL,
		UPIReference:   req.UPIReference,
		Notes:          req.Notes,
	}
	var res struct {
		ID int `json:"id"`
	}
	if err := c.api.Do(ctx, http.MethodPost, "/payments", payload, &res); err != nil {
		return 0, err
	}

	c.log.Info("payment submitted", slog.Int("id", res.ID))
	return res.ID, nil
}

// List возвращает платежи текущего пользователя (или всех, если вошёл
// администратор).
func (c *PaymentsClient) List(ctx context.Context) ([]*models.Payment, error) {
	var res struct {
		Items []*models.Payment `json:"items"`
	}
	if err := c.api.Do(ctx, http.MethodGet, "/payments", nil, &res); err != nil {
		return nil, err
	}
	return res.Items, nil
}

// Approve одобряет платёж от имени администратора.
func (c *PaymentsClient) Approve(ctx context.Context, id int, notes string) (*models.Payment, error) {
	body := map[string]string{}
	if notes != "" {
		body["notes"] = notes
	}
	var res struct {
		Payment *models.Payment `json:"payment"`
	}
	if err := c.api.Do(ctx, http.MethodPost, fmt.Sprintf("/payments/%d/approve", id), body, &res); err != nil {
		return nil, err
	}
	return res.Payment, nil
}

// Reject отклоняет платёж от имени администратора. Причина обязательна.
func (c *PaymentsClient) Reject(ctx context.Context, id int, reason, notes string) (*models.Payment, error) {
	body := map[string]string{"reason": reason}
	if notes != "" {
		body["notes"] = notes
	}
	var res struct {
		Payment *models.Payment `json:"payment"`
	}
	if err := c.api.Do(ctx, http.MethodPost, fmt.Sprintf("/payments/%d/reject", id), body, &res); err != nil {
		return nil, err
	}
	return res.Payment, nil
}

// Remove удаляет платёж от имени администратора.
func (c *PaymentsClient) Remove(ctx context.Context, id int) error {
	return c.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/payments/%d", id), nil, nil)
}
