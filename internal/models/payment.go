// Package models содержит доменные структуры платежа за подписку,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Статусы платежа. Переходы односторонние: pending -> approved
// или pending -> rejected, терминальные статусы не изменяются.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// Способы оплаты.
const (
	PaymentMethodQRCode = "qr_code"
	PaymentMethodUPI    = "upi"
)

// Payment представляет заявку на оплату подписки. Создаётся
// пользователем, проверяется администратором вручную по скриншоту
// или UPI-референсу.
type Payment struct {
	ID              int        `json:"id"`
	UserUID         string     `json:"user_uid"`         // Владелец платежа
	Amount          float64    `json:"amount"`           // Сумма платежа
	DurationMonths  int        `json:"duration_months"`  // Оплаченный период в месяцах
	Method          string     `json:"method"`           // qr_code или upi
	Status          string     `json:"status"`           // pending, approved, rejected
	ScreenshotURL   *string    `json:"screenshot_url,omitempty"`
	UPIReference    *string    `json:"upi_reference,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ApprovedBy      *string    `json:"approved_by,omitempty"` // UID администратора
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ActivatedAt     *time.Time `json:"activated_at,omitempty"` // Начало оплаченного периода
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`   // Конец оплаченного периода
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsTerminal сообщает, достиг ли платёж терминального статуса.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusApproved || p.Status == PaymentStatusRejected
}

// DummyPayment используется для приёма данных из JSON-запроса
// до их валидации и преобразования в Payment.
type DummyPayment struct {
	Amount         float64 `json:"amount" validate:"required,gt=0"`                  // Сумма (>0)
	DurationMonths int     `json:"duration_months" validate:"required,gt=0"`         // Период в месяцах (>0)
	Method         string  `json:"method" validate:"required,oneof=qr_code upi"`     // Способ оплаты
	ScreenshotURL  string  `json:"screenshot_url,omitempty" validate:"omitempty,url"` // Ссылка на скриншот
	UPIReference   string  `json:"upi_reference,omitempty"`                          // UPI-референс
	Notes          string  `json:"notes,omitempty"`                                  // Комментарий
}

// PaymentStats агрегированные показатели по платежам для панели администратора.
type PaymentStats struct {
	Total          int     `json:"total"`
	Pending        int     `json:"pending"`
	Approved       int     `json:"approved"`
	Rejected       int     `json:"rejected"`
	ApprovedAmount float64 `json:"approved_amount"`
}

// ExpiringPayment строка выдачи списка подписок с подходящим сроком
// окончания. Используется планировщиком и отчётом upcoming.
type ExpiringPayment struct {
	PaymentID int       `json:"payment_id"`
	UserUID   string    `json:"user_uid"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Amount    float64   `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
}
