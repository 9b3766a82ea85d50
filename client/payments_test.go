package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

func TestPaymentsClient_QRCodeRequiresScreenshot(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	defer srv.Close()

	session := NewSessionStore(NewMemoryStorage(), newTestLogger())
	api := NewAPI(srv.URL, session, newTestLogger())
	payments := NewPaymentsClient(api, newTestLogger())

	_, err := payments.Submit(context.Background(), SubmitRequest{
		Amount:         500,
		DurationMonths: 1,
		Method:         models.PaymentMethodQRCode,
	})

	require.ErrorIs(t, err, ErrScreenshotRequired)
	assert.Equal(t, int64(0), requests.Load(), "проверка выполняется до обращения к серверу")
}

func TestPaymentsClient_UploadFailureAbortsSubmit(t *testing.T) {
	var paymentCreated atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uploads/payment-screenshot":
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "Error",
				"error":  "failed to store screenshot",
			})
		case "/payments":
			paymentCreated.Store(true)
			_, _ = w.Write([]byte(`{"status":"OK","data":{"id":1}}`))
		}
	}))
	defer srv.Close()

	session := NewSessionStore(NewMemoryStorage(), newTestLogger())
	api := NewAPI(srv.URL, session, newTestLogger())
	payments := NewPaymentsClient(api, newTestLogger())

	_, err := payments.Submit(context.Background(), SubmitRequest{
		Amount:                500,
		DurationMonths:        1,
		Method:                models.PaymentMethodQRCode,
		Screenshot:            strings.NewReader("png-bytes"),
		ScreenshotName:        "receipt.png",
		ScreenshotContentType: "image/png",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "screenshot upload failed")
	assert.False(t, paymentCreated.Load(), "заявка без загруженного скриншота не создаётся")
}

func TestPaymentsClient_SubmitUploadsThenCreates(t *testing.T) {
	var gotPayment models.DummyPayment
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uploads/payment-screenshot":
			require.NoError(t, r.ParseMultipartForm(5<<20))
			file, header, err := r.FormFile("screenshot")
			require.NoError(t, err)
			defer func() { _ = file.Close() }()
			assert.Equal(t, "receipt.png", header.Filename)
			assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "OK",
				"data":   map[string]string{"url": "https://cdn.example.com/screens/receipt.png"},
			})
		case "/payments":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayment))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "OK",
				"data":   map[string]int{"id": 42},
			})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	session := NewSessionStore(NewMemoryStorage(), newTestLogger())
	api := NewAPI(srv.URL, session, newTestLogger())
	payments := NewPaymentsClient(api, newTestLogger())

	id, err := payments.Submit(context.Background(), SubmitRequest{
		Amount:                500,
		DurationMonths:        3,
		Method:                models.PaymentMethodQRCode,
		Notes:                 "март-май",
		Screenshot:            strings.NewReader("png-bytes"),
		ScreenshotName:        "receipt.png",
		ScreenshotContentType: "image/png",
	})

	require.NoError(t, err)
	assert.Equal(t, 42, id)
	assert.Equal(t, "https://cdn.example.com/screens/receipt.png", gotPayment.ScreenshotURL)
	assert.Equal(t, models.PaymentMethodQRCode, gotPayment.Method)
	assert.Equal(t, 3, gotPayment.DurationMonths)
}

func TestPaymentsClient_UPIWithoutScreenshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments", r.URL.Path, "upi платёж не требует загрузки")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"data":   map[string]int{"id": 7},
		})
	}))
	defer srv.Close()

	session := NewSessionStore(NewMemoryStorage(), newTestLogger())
	api := NewAPI(srv.URL, session, newTestLogger())
	payments := NewPaymentsClient(api, newTestLogger())

	id, err := payments.Submit(context.Background(), SubmitRequest{
		Amount:         500,
		DurationMonths: 1,
		Method:         models.PaymentMethodUPI,
		UPIReference:   "UPI123456",
	})

	require.NoError(t, err)
	assert.Equal(t, 7, id)
}
