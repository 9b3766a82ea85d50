package models

// События, публикуемые в RabbitMQ для отправки писем пользователям.
// Маршрутизация: exchange "notifications", ключи payment / account / otp.

// PaymentEvent уведомление о решении администратора по платежу.
type PaymentEvent struct {
	Email     string  `json:"email"`
	FullName  string  `json:"full_name"`
	PaymentID int     `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"` // approved или rejected
	Reason    string  `json:"reason,omitempty"`
}

// AccountEvent уведомление о смене статуса аккаунта.
type AccountEvent struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Status   string `json:"status"`
}

// OTPEvent письмо с одноразовым кодом подтверждения почты
// или ссылкой для сброса пароля.
type OTPEvent struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Code     string `json:"code"`
	Purpose  string `json:"purpose"` // verify или reset
}

// ExpiryEvent напоминание о скором окончании оплаченного периода.
type ExpiryEvent struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	ExpiresAt string `json:"expires_at"`
}
