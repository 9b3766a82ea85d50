package models

import "time"

// Plan представляет тарифный план: пару (сумма, период), которую
// сервер предлагает пользователям для оформления подписки.
// Сумма и период платежа обязаны совпадать с активным планом
// на момент создания платежа.
type Plan struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"`
	DurationMonths int       `json:"duration_months"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DummyPlan используется для приёма данных из JSON-запроса
// при создании и обновлении тарифного плана.
type DummyPlan struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	DurationMonths int     `json:"duration_months" validate:"required,gt=0"`
	IsActive       *bool   `json:"is_active,omitempty"`
}
