// Package notification содержит бизнес-логику уведомлений пользователя.
// Статус уведомления монотонен: unread -> read, обратный переход запрещён.
package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

// ErrInvalidTransition возвращается при попытке отметить прочитанным
// уже прочитанное либо чужое уведомление.
var ErrInvalidTransition = errors.New("notification is not unread")

// NotificationRepository определяет методы для работы с уведомлениями в хранилище.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
	ListNotifications(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, int, int, error)
	MarkNotificationRead(ctx context.Context, id int, userUID string) (int, error)
	MarkAllNotificationsRead(ctx context.Context, userUID string) (int, error)
	RemoveNotification(ctx context.Context, id int, userUID string) (int, error)
}

// Service реализует бизнес-логику уведомлений.
type Service struct {
	repo NotificationRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo NotificationRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает страницу уведомлений пользователя, общее число
// и число непрочитанных.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, int, int, error) {
	return s.repo.ListNotifications(ctx, userUID, limit, offset)
}

// MarkRead отмечает уведомление прочитанным.
func (s *Service) MarkRead(ctx context.Context, id int, userUID string) error {
	affected, err := s.repo.MarkNotificationRead(ctx, id, userUID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// MarkAllRead отмечает все уведомления пользователя прочитанными
// и возвращает их количество.
func (s *Service) MarkAllRead(ctx context.Context, userUID string) (int, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userUID)
}

// BulkCreate создаёт уведомление для каждого из получателей. Возвращает
// количество созданных записей.
func (s *Service) BulkCreate(ctx context.Context, req models.DummyNotification) (int, error) {
	var created int
	for _, uid := range req.UserUIDs {
		n := models.Notification{
			UserUID: uid,
			Title:   req.Title,
			Message: req.Message,
			Type:    req.Type,
		}
		if _, err := s.repo.CreateNotification(ctx, n); err != nil {
			return created, err
		}
		created++
	}
	s.log.Info("notifications created", slog.Int("count", created))
	return created, nil
}

// Remove удаляет уведомление пользователя и возвращает количество
// удалённых записей.
func (s *Service) Remove(ctx context.Context, id int, userUID string) (int, error) {
	return s.repo.RemoveNotification(ctx, id, userUID)
}
