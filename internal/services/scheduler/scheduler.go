// Package scheduler реализует периодические задачи портала: напоминания
// о скором окончании подписки и деактивацию просроченных аккаунтов.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
	"github.com/kunalverma25/wifi-portal/internal/rabbitmq"
)

// PaymentRepository находит подписки с подходящим сроком окончания.
type PaymentRepository interface {
	FindPaymentsExpiringSoon(ctx context.Context, days int) ([]*models.ExpiringPayment, error)
}

// UserRepository находит и деактивирует просроченных пользователей.
type UserRepository interface {
	FindUsersExpiredToday(ctx context.Context) ([]*models.User, error)
	UpdateUserStatus(ctx context.Context, uid, status string) (int, error)
}

// NotificationRepository создаёт уведомления о деактивации.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
}

// Publisher публикует события для отправки писем.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует периодические задачи.
type Service struct {
	payments      PaymentRepository
	users         UserRepository
	notifications NotificationRepository
	publisher     Publisher
	log           *slog.Logger
}

// New создает новый экземпляр Service.
func New(payments PaymentRepository, users UserRepository, notifications NotificationRepository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		payments:      payments,
		users:         users,
		notifications: notifications,
		publisher:     publisher,
		log:           log,
	}
}

// Run запускает обе периодические задачи и блокируется до отмены
// контекста. Первый прогон выполняется сразу.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.runRemindExpiring(ctx)
	s.runDeactivateExpired(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runRemindExpiring(ctx)
			s.runDeactivateExpired(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// runRemindExpiring публикует напоминания о подписках, истекающих
// в ближайший день.
func (s *Service) runRemindExpiring(ctx context.Context) {
	s.log.Info("looking for subscriptions expiring soon")
	expiring, err := s.payments.FindPaymentsExpiringSoon(ctx, 1)
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return
	}
	if len(expiring) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", slog.Int("count", len(expiring)))
	for _, item := range expiring {
		event := models.ExpiryEvent{
			Email:     item.Email,
			FullName:  item.FullName,
			ExpiresAt: item.ExpiresAt.Format("02.01.2006"),
		}
		if err := s.publisher.Publish(rabbitmq.RoutingKeyExpiry, event); err != nil {
			s.log.Error("failed to publish expiry event", sl.Err(err))
		}
	}
}

// runDeactivateExpired деактивирует пользователей с закончившимся
// оплаченным периодом, создаёт уведомление и публикует событие письма.
func (s *Service) runDeactivateExpired(ctx context.Context) {
	s.log.Info("looking for expired users")
	expired, err := s.users.FindUsersExpiredToday(ctx)
	if err != nil {
		s.log.Error("failed to find expired users", sl.Err(err))
		return
	}
	if len(expired) == 0 {
		s.log.Info("no expired users found")
		return
	}
	s.log.Info("found expired users", slog.Int("count", len(expired)))

	for _, user := range expired {
		if _, err := s.users.UpdateUserStatus(ctx, user.UID, models.UserStatusInactive); err != nil {
			s.log.Error("failed to deactivate user", sl.Err(err))
			continue
		}

		notification := models.Notification{
			UserUID: user.UID,
			Title:   "Subscription expired",
			Message: fmt.Sprintf("Your subscription expired on %s. Submit a new payment to restore access.",
				user.ExpiresAt.Format("02.01.2006")),
			Type: models.NotificationTypeAccount,
		}
		if _, err := s.notifications.CreateNotification(ctx, notification); err != nil {
			s.log.Error("failed to create notification", sl.Err(err))
		}

		event := models.AccountEvent{
			Email:    user.Email,
			FullName: user.FullName(),
			Status:   models.UserStatusInactive,
		}
		if err := s.publisher.Publish(rabbitmq.RoutingKeyAccount, event); err != nil {
			s.log.Error("failed to publish account event", sl.Err(err))
		}
	}
}
