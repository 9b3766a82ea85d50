// Package user содержит административную бизнес-логику управления
// пользователями: листинг, смена статуса аккаунта, удаление и агрегаты.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/rabbitmq"
)

// ErrUnknownStatus возвращается при попытке установить статус вне
// закрытого набора active/inactive/suspended.
var ErrUnknownStatus = errors.New("unknown account status")

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error)
	UpdateUserStatus(ctx context.Context, uid, status string) (int, error)
	UpdateUserExpiry(ctx context.Context, uid string, expiresAt time.Time) (int, error)
	RemoveUser(ctx context.Context, uid string) (int, error)
	CountUserStats(ctx context.Context) (*models.UserStats, error)
}

// PaymentRepository создаёт синтетический платёж при ручной активации.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, p models.Payment) (int, error)
}

// NotificationRepository создаёт уведомления о смене статуса аккаунта.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
}

// Publisher публикует события для отправки писем.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует бизнес-логику управления пользователями.
type Service struct {
	users         UserRepository
	payments      PaymentRepository
	notifications NotificationRepository
	publisher     Publisher
	log           *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, payments PaymentRepository, notifications NotificationRepository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		users:         users,
		payments:      payments,
		notifications: notifications,
		publisher:     publisher,
		log:           log,
	}
}

// List возвращает страницу пользователей по фильтру.
func (s *Service) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	return s.users.ListUsers(ctx, filter)
}

// Read возвращает пользователя по uid.
func (s *Service) Read(ctx context.Context, uid string) (*models.User, error) {
	return s.users.GetUserByUID(ctx, uid)
}

// UpdateStatus меняет статус аккаунта. Ручная активация с указанием
// периода создаёт синтетический одобренный платёж, чтобы история
// подписки оставалась полной. Владелец получает уведомление и письмо.
func (s *Service) UpdateStatus(ctx context.Context, uid, status, adminUID string, grantMonths int) (*models.User, error) {
	switch status {
	case models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended:
	default:
		return nil, ErrUnknownStatus
	}

	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.UpdateUserStatus(ctx, uid, status); err != nil {
		return nil, err
	}

	if status == models.UserStatusActive && grantMonths > 0 {
		if err := s.grantPeriod(ctx, user, adminUID, grantMonths); err != nil {
			s.log.Error("failed to grant subscription period", sl.Err(err))
		}
	}

	s.notifyStatusChange(ctx, user, status)

	s.log.Info("user status updated",
		slog.String("uid", uid), slog.String("status", status))
	return s.users.GetUserByUID(ctx, uid)
}

// grantPeriod создаёт одобренный платёж на granted месяцев и продлевает
// подписку. Сумма нулевой быть не может, поэтому записывается
// минимальная: платёж помечен как ручная активация в notes.
func (s *Service) grantPeriod(ctx context.Context, user *models.User, adminUID string, months int) error {
	now := time.Now().UTC()
	expiresAt := now.AddDate(0, months, 0)
	notes := "manual activation by administrator"

	p := models.Payment{
		UserUID:        user.UID,
		Amount:         0.01,
		DurationMonths: months,
		Method:         models.PaymentMethodUPI,
		Status:         models.PaymentStatusApproved,
		Notes:          &notes,
		ApprovedBy:     &adminUID,
		ApprovedAt:     &now,
		ActivatedAt:    &now,
		ExpiresAt:      &expiresAt,
	}
	if _, err := s.payments.CreatePayment(ctx, p); err != nil {
		return err
	}
	_, err := s.users.UpdateUserExpiry(ctx, user.UID, expiresAt)
	return err
}

// notifyStatusChange создаёт уведомление и публикует событие письма.
// Ошибки не прерывают основную операцию.
func (s *Service) notifyStatusChange(ctx context.Context, user *models.User, status string) {
	notification := models.Notification{
		UserUID: user.UID,
		Title:   "Account status changed",
		Message: fmt.Sprintf("Your account status is now %s.", status),
		Type:    models.NotificationTypeAccount,
	}
	if _, err := s.notifications.CreateNotification(ctx, notification); err != nil {
		s.log.Error("failed to create notification", sl.Err(err))
	}

	event := models.AccountEvent{
		Email:    user.Email,
		FullName: user.FullName(),
		Status:   status,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeyAccount, event); err != nil {
		s.log.Error("failed to publish account event", sl.Err(err))
	}
}

// Remove удаляет пользователя вместе с его платежами и уведомлениями
// (каскад в схеме).
func (s *Service) Remove(ctx context.Context, uid string) (int, error) {
	return s.users.RemoveUser(ctx, uid)
}

// Stats возвращает агрегаты по пользователям для панели администратора.
func (s *Service) Stats(ctx context.Context) (*models.UserStats, error) {
	return s.users.CountUserStats(ctx)
}
