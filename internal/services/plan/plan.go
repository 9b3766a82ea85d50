// Package plan содержит бизнес-логику тарифных планов с кешированием
// публичной выдачи активных тарифов.
package plan

import (
	"context"
	"log/slog"
	"time"

	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/models"
)

const activePlansCacheKey = "plans:active"

// PlanRepository определяет методы для работы с тарифами в хранилище.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan models.Plan) (int, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	ListActivePlans(ctx context.Context) ([]*models.Plan, error)
	UpdatePlan(ctx context.Context, id int, plan models.Plan) (int, error)
	RemovePlan(ctx context.Context, id int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику тарифных планов.
type Service struct {
	repo  PlanRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo PlanRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Create создает тарифный план и сбрасывает кеш активных тарифов.
func (s *Service) Create(ctx context.Context, req models.DummyPlan) (int, error) {
	plan := models.Plan{
		Name:           req.Name,
		Amount:         req.Amount,
		DurationMonths: req.DurationMonths,
		IsActive:       true,
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	id, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return 0, err
	}
	s.invalidateActive()
	s.log.Info("plan created", slog.Int("id", id))
	return id, nil
}

// List возвращает все тарифные планы, включая неактивные.
func (s *Service) List(ctx context.Context) ([]*models.Plan, error) {
	return s.repo.ListPlans(ctx)
}

// ListActive возвращает активные тарифы, используя кеш.
// Публичная операция для страницы тарифов.
func (s *Service) ListActive(ctx context.Context) ([]*models.Plan, error) {
	var cached []*models.Plan
	found, err := s.cache.Get(activePlansCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(activePlansCacheKey, plans, time.Hour); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return plans, nil
}

// Update обновляет тарифный план и сбрасывает кеш активных тарифов.
func (s *Service) Update(ctx context.Context, id int, req models.DummyPlan) (int, error) {
	plan := models.Plan{
		Name:           req.Name,
		Amount:         req.Amount,
		DurationMonths: req.DurationMonths,
		IsActive:       true,
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	affected, err := s.repo.UpdatePlan(ctx, id, plan)
	if err != nil {
		return 0, err
	}
	s.invalidateActive()
	return affected, nil
}

// Remove удаляет тарифный план и сбрасывает кеш активных тарифов.
func (s *Service) Remove(ctx context.Context, id int) (int, error) {
	affected, err := s.repo.RemovePlan(ctx, id)
	if err != nil {
		return 0, err
	}
	s.invalidateActive()
	return affected, nil
}

func (s *Service) invalidateActive() {
	if err := s.cache.Invalidate(activePlansCacheKey); err != nil {
		s.log.Warn("failed to invalidate plans cache", sl.Err(err))
	}
}
