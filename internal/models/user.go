// Package models содержит доменную модель пользователя портала,
// включающую учётные данные, роль, статус аккаунта и признак
// подтверждения почты. Структура используется в бизнес‑логике
// и при работе с хранилищем.
package models

import "time"

// Роли пользователей. Закрытый набор: добавление новой роли требует
// обработки во всех switch по ролям.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Статусы аккаунта пользователя.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User представляет зарегистрированного пользователя портала.
type User struct {
	UID           string     `json:"uid"`             // Уникальный идентификатор пользователя
	FirstName     string     `json:"first_name"`      // Имя
	LastName      string     `json:"last_name"`       // Фамилия
	Email         string     `json:"email"`           // Электронная почта (уникальная)
	Phone         *string    `json:"phone,omitempty"` // Телефон (опционально)
	PasswordHash  string     `json:"-"`               // Хэш пароля
	Role          string     `json:"role"`            // Роль: admin или user
	Status        string     `json:"status"`          // Статус: active, inactive, suspended
	EmailVerified bool       `json:"email_verified"`  // Признак подтверждённой почты
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"` // Дата окончания оплаченного периода
}

// FullName возвращает отображаемое имя пользователя.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserStats агрегированные показатели для панели администратора.
type UserStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Suspended int `json:"suspended"`
	Verified  int `json:"verified"`
}
