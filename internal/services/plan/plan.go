// Package services содержит бизнес-логику каталога тарифов и подписок пользователя.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-payments/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// ListSubscriptionsByUser возвращает все подписки пользователя.
	ListSubscriptionsByUser(ctx context.Context, userUID string) ([]*models.UserSubscription, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// PlanService отдаёт статический каталог тарифов и список подписок пользователя.
type PlanService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo SubscriptionRepository, cache Cache, log *slog.Logger) *PlanService {
	return &PlanService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает каталог тарифов. Каталог статический и read-only.
func (s *PlanService) List() []models.Plan {
	return []models.Plan{
		{ID: 1, Name: "Basic Plan", Price: 500, Duration: "monthly"},
		{ID: 2, Name: "Premium Plan", Price: 1000, Duration: "monthly"},
		{ID: 3, Name: "Pro Plan", Price: 2000, Duration: "monthly"},
	}
}

// FindByID возвращает тариф по его ID или false, если тарифа нет в каталоге.
func (s *PlanService) FindByID(id int) (models.Plan, bool) {
	for _, p := range s.List() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

// ListForUser возвращает подписки пользователя, используя кеш или репозиторий.
func (s *PlanService) ListForUser(ctx context.Context, userUID string) ([]*models.UserSubscription, error) {
	var result []*models.UserSubscription
	cacheKey := fmt.Sprintf("subscriptions:user:%s", userUID)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListSubscriptionsByUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache subscriptions", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}
