// Package sender формирует и отправляет письма пользователям по событиям
// портала: решение по платежу, смена статуса аккаунта, одноразовые коды
// и напоминания об окончании подписки.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	smtptransport "github.com/kunalverma25/wifi-portal/internal/lib/smtp"
	"github.com/kunalverma25/wifi-portal/internal/models"
)

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtptransport.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtptransport.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendPaymentDecision отправляет письмо о решении администратора по платежу.
func (s *Service) SendPaymentDecision(body []byte) error {
	var event models.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your payment has been approved"
	text := fmt.Sprintf("Hello, %s!\n\nYour payment #%d of %.2f has been approved. Enjoy your WiFi subscription.",
		event.FullName, event.PaymentID, event.Amount)
	if event.Status == models.PaymentStatusRejected {
		subject = "Your payment has been rejected"
		text = fmt.Sprintf("Hello, %s!\n\nYour payment #%d of %.2f has been rejected.\nReason: %s\n\nPlease submit a new payment with valid proof.",
			event.FullName, event.PaymentID, event.Amount, event.Reason)
	}

	return s.sendEmail([]string{event.Email}, subject, text)
}

// SendAccountStatus отправляет письмо о смене статуса аккаунта.
func (s *Service) SendAccountStatus(body []byte) error {
	var event models.AccountEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your account status has changed"
	text := fmt.Sprintf("Hello, %s!\n\nYour account status is now: %s.",
		event.FullName, event.Status)
	if event.Status != models.UserStatusActive {
		text += "\nContact support if you believe this is a mistake."
	}

	return s.sendEmail([]string{event.Email}, subject, text)
}

// SendOTP отправляет письмо с кодом подтверждения почты или токеном
// сброса пароля.
func (s *Service) SendOTP(body []byte) error {
	var event models.OTPEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	var subject, text string
	switch event.Purpose {
	case "reset":
		subject = "Password reset request"
		text = fmt.Sprintf("Hello, %s!\n\nUse this token to reset your password: %s\n\nIf you did not request a reset, ignore this email.",
			event.FullName, event.Code)
	default:
		subject = "Verify your email"
		text = fmt.Sprintf("Hello, %s!\n\nYour verification code is: %s",
			event.FullName, event.Code)
	}

	return s.sendEmail([]string{event.Email}, subject, text)
}

// SendExpiryReminder отправляет напоминание о скором окончании подписки.
func (s *Service) SendExpiryReminder(body []byte) error {
	var event models.ExpiryEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your WiFi subscription expires soon"
	text := fmt.Sprintf("Hello, %s!\n\nYour subscription expires on %s. Renew it in advance to keep your access.",
		event.FullName, event.ExpiresAt)

	return s.sendEmail([]string{event.Email}, subject, text)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
