package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует.
var ErrNotFound = errors.New("not found")

const userColumns = `uid, first_name, last_name, email, phone, password_hash,
	role, status, email_verified, created_at, updated_at, expires_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.UID, &u.FirstName, &u.LastName, &u.Email, &u.Phone,
		&u.PasswordHash, &u.Role, &u.Status, &u.EmailVerified,
		&u.CreatedAt, &u.UpdatedAt, &u.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser вставляет нового пользователя и возвращает его uid.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, first_name, last_name, email, phone,
			      password_hash, role, status, email_verified)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING uid`
	var uid string
	err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.FirstName, user.LastName, user.Email, user.Phone,
		user.PasswordHash, user.Role, user.Status, user.EmailVerified).Scan(&uid)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetUserByEmail возвращает пользователя по почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUserByUID возвращает пользователя по uid.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, uid))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ListUsers возвращает страницу пользователей по фильтру и общее число записей.
func (s *Storage) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := `WHERE ($1::text IS NULL OR status = $1)
	            AND ($2::text IS NULL OR role = $2)
	            AND ($3::text IS NULL OR first_name ILIKE '%' || $3 || '%'
	                 OR last_name ILIKE '%' || $3 || '%'
	                 OR email ILIKE '%' || $3 || '%')`

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users `+where,
		filter.Status, filter.Role, filter.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + userColumns + ` FROM users ` + where + `
			  ORDER BY created_at DESC
			  LIMIT $4 OFFSET $5`
	rows, err := s.DB.QueryContext(ctx, query,
		filter.Status, filter.Role, filter.Search, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// UpdateUserStatus меняет статус аккаунта и возвращает количество изменённых строк.
func (s *Storage) UpdateUserStatus(ctx context.Context, uid, status string) (int, error) {
	const op = "storage.UpdateUserStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET status = $1, updated_at = now() WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, status, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkEmailVerified отмечает почту подтверждённой и активирует аккаунт.
func (s *Storage) MarkEmailVerified(ctx context.Context, email string) (int, error) {
	const op = "storage.MarkEmailVerified"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET email_verified = true, status = $1, updated_at = now()
			  WHERE email = $2 AND email_verified = false`
	result, err := s.DB.ExecContext(ctx, query, models.UserStatusActive, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdatePassword заменяет хэш пароля пользователя.
func (s *Storage) UpdatePassword(ctx context.Context, email, passwordHash string) (int, error) {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE email = $2`
	result, err := s.DB.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateUserExpiry продлевает оплаченный период пользователя.
func (s *Storage) UpdateUserExpiry(ctx context.Context, uid string, expiresAt time.Time) (int, error) {
	const op = "storage.UpdateUserExpiry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET expires_at = $1, updated_at = now() WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, expiresAt, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveUser удаляет пользователя и возвращает количество удалённых строк.
func (s *Storage) RemoveUser(ctx context.Context, uid string) (int, error) {
	const op = "storage.RemoveUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM users WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountUserStats собирает агрегаты по пользователям для панели администратора.
func (s *Storage) CountUserStats(ctx context.Context) (*models.UserStats, error) {
	const op = "storage.CountUserStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*),
			      COUNT(*) FILTER (WHERE status = 'active'),
			      COUNT(*) FILTER (WHERE status = 'inactive'),
			      COUNT(*) FILTER (WHERE status = 'suspended'),
			      COUNT(*) FILTER (WHERE email_verified)
			  FROM users`
	var stats models.UserStats
	if err := s.DB.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Active,
		&stats.Inactive, &stats.Suspended, &stats.Verified); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}

// FindUsersExpiredToday находит активных пользователей, чей оплаченный
// период закончился. Используется планировщиком для деактивации.
func (s *Storage) FindUsersExpiredToday(ctx context.Context) ([]*models.User, error) {
	const op = "storage.FindUsersExpiredToday"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at < now()`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
