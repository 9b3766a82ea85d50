package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kunalverma25/wifi-portal/internal/models"
)

const planColumns = `id, name, amount, duration_months, is_active, created_at, updated_at`

func scanPlan(row interface{ Scan(...any) error }) (*models.Plan, error) {
	var p models.Plan
	err := row.Scan(&p.ID, &p.Name, &p.Amount, &p.DurationMonths, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlan вставляет новый тарифный план и возвращает его ID.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (int, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payment_plans (name, amount, duration_months, is_active)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Amount, plan.DurationMonths, plan.IsActive).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPlans возвращает все тарифные планы.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	return s.listPlans(ctx, op, `SELECT `+planColumns+` FROM payment_plans ORDER BY amount`)
}

// ListActivePlans возвращает только активные тарифные планы.
// Публичная выдача для страницы тарифов.
func (s *Storage) ListActivePlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListActivePlans"
	return s.listPlans(ctx, op,
		`SELECT `+planColumns+` FROM payment_plans WHERE is_active ORDER BY amount`)
}

func (s *Storage) listPlans(ctx context.Context, op, query string) ([]*models.Plan, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindActivePlan ищет активный план с заданными суммой и периодом.
// Используется для проверки, что платёж соответствует действующему тарифу.
func (s *Storage) FindActivePlan(ctx context.Context, amount float64, durationMonths int) (*models.Plan, error) {
	const op = "storage.FindActivePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM payment_plans
			  WHERE is_active AND amount = $1 AND duration_months = $2`
	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, amount, durationMonths))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// UpdatePlan обновляет тарифный план и возвращает количество изменённых строк.
func (s *Storage) UpdatePlan(ctx context.Context, id int, plan models.Plan) (int, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_plans
			  SET name = $1, amount = $2, duration_months = $3, is_active = $4, updated_at = now()
			  WHERE id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		plan.Name, plan.Amount, plan.DurationMonths, plan.IsActive, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemovePlan удаляет тарифный план.
func (s *Storage) RemovePlan(ctx context.Context, id int) (int, error) {
	const op = "storage.RemovePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM payment_plans WHERE id = $1`
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
