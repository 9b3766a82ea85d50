package paymentapprove

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/services/payment"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

type PaymentServiceMock struct {
	mock.Mock
}

func (m *PaymentServiceMock) Approve(ctx context.Context, id int, adminUID string, notes *string) (*models.Payment, error) {
	args := m.Called(ctx, id, adminUID, notes)
	p, _ := args.Get(0).(*models.Payment)
	return p, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestApproveHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(PaymentServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	approved := &models.Payment{
		ID:      42,
		UserUID: "user-uid",
		Amount:  499,
		Status:  models.PaymentStatusApproved,
	}

	tests := []struct {
		name           string
		urlID          string
		requestBody    string
		mockResp       *models.Payment
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "valid approve",
			urlID:          "42",
			requestBody:    `{"notes":"verified manually"}`,
			mockResp:       approved,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "valid approve without body",
			urlID:          "42",
			requestBody:    "",
			mockResp:       approved,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid id",
			urlID:          "abc",
			requestBody:    "",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid payment id",
		},
		{
			name:           "payment not found",
			urlID:          "42",
			requestBody:    "",
			mockErr:        repository.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "payment not found",
		},
		{
			name:           "already finalized",
			urlID:          "42",
			requestBody:    "",
			mockErr:        payment.ErrInvalidTransition,
			wantStatusCode: http.StatusConflict,
			wantError:      "payment is already finalized",
		},
		{
			name:           "internal error",
			urlID:          "42",
			requestBody:    "",
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to approve payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockResp != nil || tt.mockErr != nil {
				serviceMock.On("Approve", mock.Anything, 42, "admin-uid", mock.Anything).
					Return(tt.mockResp, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+tt.urlID+"/approve",
				bytes.NewReader([]byte(tt.requestBody)))

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.urlID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "admin-uid")
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
				data := got["data"].(map[string]any)
				p := data["payment"].(map[string]any)
				assert.Equal(t, models.PaymentStatusApproved, p["status"])
			}

			if tt.mockResp != nil || tt.mockErr != nil {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}
