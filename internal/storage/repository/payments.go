package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

const paymentColumns = `id, user_uid, amount, duration_months, method, status,
	screenshot_url, upi_reference, notes, rejection_reason, approved_by,
	approved_at, activated_at, expires_at, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.UserUID, &p.Amount, &p.DurationMonths, &p.Method,
		&p.Status, &p.ScreenshotURL, &p.UPIReference, &p.Notes, &p.RejectionReason,
		&p.ApprovedBy, &p.ApprovedAt, &p.ActivatedAt, &p.ExpiresAt,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePayment вставляет новую заявку на оплату и возвращает её ID.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (int, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_uid, amount, duration_months, method,
			      status, screenshot_url, upi_reference, notes,
			      approved_by, approved_at, activated_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		p.UserUID, p.Amount, p.DurationMonths, p.Method, p.Status,
		p.ScreenshotURL, p.UPIReference, p.Notes,
		p.ApprovedBy, p.ApprovedAt, p.ActivatedAt, p.ExpiresAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadPayment возвращает платёж по ID.
func (s *Storage) ReadPayment(ctx context.Context, id int) (*models.Payment, error) {
	const op = "storage.ReadPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	payment, err := scanPayment(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payment, nil
}

// ListPayments возвращает страницу платежей по фильтру и общее число записей.
// Поиск сопоставляется с суммой и периодом платежа.
func (s *Storage) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, int, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := `WHERE ($1::text IS NULL OR user_uid = $1)
	            AND ($2::text IS NULL OR status = $2)
	            AND ($3::text IS NULL OR method = $3)
	            AND ($4::text IS NULL OR amount::text LIKE '%' || $4 || '%'
	                 OR duration_months::text = $4)`

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments `+where,
		filter.UserUID, filter.Status, filter.Method, filter.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments ` + where + `
			  ORDER BY created_at DESC
			  LIMIT $5 OFFSET $6`
	rows, err := s.DB.QueryContext(ctx, query,
		filter.UserUID, filter.Status, filter.Method, filter.Search,
		filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// ApprovePayment переводит платёж из pending в approved. Условие по
// статусу в самом запросе: нулевое число изменённых строк означает,
// что платёж отсутствует или уже в терминальном статусе.
func (s *Storage) ApprovePayment(ctx context.Context, id int, approvedBy string, notes *string, activatedAt, expiresAt time.Time) (int, error) {
	const op = "storage.ApprovePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = $1, approved_by = $2, approved_at = now(),
			      notes = COALESCE($3, notes), activated_at = $4, expires_at = $5,
			      updated_at = now()
			  WHERE id = $6 AND status = $7`
	result, err := s.DB.ExecContext(ctx, query,
		models.PaymentStatusApproved, approvedBy, notes, activatedAt, expiresAt,
		id, models.PaymentStatusPending)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RejectPayment переводит платёж из pending в rejected с указанием причины.
func (s *Storage) RejectPayment(ctx context.Context, id int, rejectedBy, reason string, notes *string) (int, error) {
	const op = "storage.RejectPayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = $1, approved_by = $2, approved_at = now(),
			      rejection_reason = $3, notes = COALESCE($4, notes), updated_at = now()
			  WHERE id = $5 AND status = $6`
	result, err := s.DB.ExecContext(ctx, query,
		models.PaymentStatusRejected, rejectedBy, reason, notes,
		id, models.PaymentStatusPending)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemovePayment удаляет платёж по ID и возвращает количество удалённых строк.
func (s *Storage) RemovePayment(ctx context.Context, id int) (int, error) {
	const op = "storage.RemovePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM payments WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountPaymentStats собирает агрегаты по платежам. Nil userUID означает
// агрегаты по всем пользователям.
func (s *Storage) CountPaymentStats(ctx context.Context, userUID *string) (*models.PaymentStats, error) {
	const op = "storage.CountPaymentStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*),
			      COUNT(*) FILTER (WHERE status = 'pending'),
			      COUNT(*) FILTER (WHERE status = 'approved'),
			      COUNT(*) FILTER (WHERE status = 'rejected'),
			      COALESCE(SUM(amount) FILTER (WHERE status = 'approved'), 0)
			  FROM payments
			  WHERE ($1::text IS NULL OR user_uid = $1)`
	var stats models.PaymentStats
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&stats.Total,
		&stats.Pending, &stats.Approved, &stats.Rejected, &stats.ApprovedAmount); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}

// FindPaymentsExpiringSoon находит одобренные платежи, оплаченный период
// которых заканчивается в ближайшие days дней.
func (s *Storage) FindPaymentsExpiringSoon(ctx context.Context, days int) ([]*models.ExpiringPayment, error) {
	const op = "storage.FindPaymentsExpiringSoon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.user_uid, u.email,
			      TRIM(u.first_name || ' ' || u.last_name), p.amount, p.expires_at
			  FROM payments p
			  JOIN users u ON p.user_uid = u.uid
			  WHERE p.status = 'approved'
			    AND p.expires_at IS NOT NULL
			    AND p.expires_at::date BETWEEN CURRENT_DATE AND CURRENT_DATE + make_interval(days => $1)
			  ORDER BY p.expires_at`
	rows, err := s.DB.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpiringPayment
	for rows.Next() {
		var item models.ExpiringPayment
		if err := rows.Scan(&item.PaymentID, &item.UserUID, &item.Email,
			&item.FullName, &item.Amount, &item.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
