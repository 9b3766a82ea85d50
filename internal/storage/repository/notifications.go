package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

// CreateNotification вставляет уведомление и возвращает его ID.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (int, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var metadata []byte
	if n.Metadata != nil {
		var err error
		metadata, err = json.Marshal(n.Metadata)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `INSERT INTO notifications (user_uid, title, message, type, status, metadata)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		n.UserUID, n.Title, n.Message, n.Type, models.NotificationUnread, metadata).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListNotifications возвращает страницу уведомлений пользователя,
// общее число записей и число непрочитанных.
func (s *Storage) ListNotifications(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, int, int, error) {
	const op = "storage.ListNotifications"
	select {
	case <-ctx.Done():
		return nil, 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total, unread int
	countQuery := `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'unread')
			       FROM notifications WHERE user_uid = $1`
	if err := s.DB.QueryRowContext(ctx, countQuery, userUID).Scan(&total, &unread); err != nil {
		return nil, 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT id, user_uid, title, message, type, status, metadata, created_at, updated_at
			  FROM notifications
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Notification
	for rows.Next() {
		var item models.Notification
		var metadata []byte
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Title, &item.Message,
			&item.Type, &item.Status, &metadata, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, 0, 0, fmt.Errorf("%s: %w", op, err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
				return nil, 0, 0, fmt.Errorf("%s: %w", op, err)
			}
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, unread, nil
}

// MarkNotificationRead переводит уведомление пользователя из unread в read.
// Обратный переход запрещён условием в запросе.
func (s *Storage) MarkNotificationRead(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications SET status = 'read', updated_at = now()
			  WHERE id = $1 AND user_uid = $2 AND status = 'unread'`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkAllNotificationsRead отмечает все уведомления пользователя прочитанными.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userUID string) (int, error) {
	const op = "storage.MarkAllNotificationsRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications SET status = 'read', updated_at = now()
			  WHERE user_uid = $1 AND status = 'unread'`
	result, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveNotification удаляет уведомление пользователя.
func (s *Storage) RemoveNotification(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveNotification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM notifications WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
