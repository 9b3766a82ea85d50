// Package smtp отправляет письма портала: коды подтверждения, решения
// по платежам и напоминания об окончании подписки.
package smtp

import "io"

// Client описывает минимальный SMTP-диалог, используемый транспортом.
// Выделен в интерфейс, чтобы тесты могли подменить net/smtp.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface устанавливает соединение с SMTP-сервером.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
