package models

import "time"

// Статусы уведомления. Переход только unread -> read.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Типы уведомлений, создаваемых сервером.
const (
	NotificationTypePayment = "payment"
	NotificationTypeAccount = "account"
	NotificationTypeSystem  = "system"
)

// Notification представляет уведомление пользователя. Создаётся
// серверными событиями (решение по платежу, смена статуса аккаунта)
// или администратором вручную.
type Notification struct {
	ID        int               `json:"id"`
	UserUID   string            `json:"user_uid"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      string            `json:"type"`   // payment, account, system
	Status    string            `json:"status"` // unread, read
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// DummyNotification используется для приёма данных из JSON-запроса
// при массовом создании уведомлений администратором.
type DummyNotification struct {
	UserUIDs []string `json:"user_uids" validate:"required,min=1,dive,uuid"` // Получатели
	Title    string   `json:"title" validate:"required,max=200"`
	Message  string   `json:"message" validate:"required"`
	Type     string   `json:"type" validate:"required,oneof=payment account system"`
}
