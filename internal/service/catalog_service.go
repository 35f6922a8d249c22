package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignatzorin/turismo/internal/auth"
	"github.com/ignatzorin/turismo/internal/models"
	"github.com/ignatzorin/turismo/internal/pkg/apperror"
	"github.com/ignatzorin/turismo/internal/repository"
)

// ActivityReader описывает чтение каталога.
type ActivityReader interface {
	List(ctx context.Context) ([]models.Activity, error)
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
	ListFavoritedBy(ctx context.Context, userID int64) ([]models.Activity, error)
}

// FavoriteChecker отвечает на вопрос, отмечена ли активность пользователем.
type FavoriteChecker interface {
	Exists(ctx context.Context, userID, activityID int64) (bool, error)
}

// CatalogService отдаёт страницы каталога.
type CatalogService struct {
	activities ActivityReader
	favorites  FavoriteChecker
	cache      *CacheService
	cacheTTL   time.Duration
}

func NewCatalogService(activities ActivityReader, favorites FavoriteChecker, cache *CacheService, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		activities: activities,
		favorites:  favorites,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// List возвращает все активности. Результат кешируется на cacheTTL.
func (s *CatalogService) List(ctx context.Context) ([]models.Activity, error) {
	if s.cache == nil {
		return s.load(ctx)
	}

	value, err := s.cache.GetOrSet(ctx, CatalogCacheKey(), s.cacheTTL, func(ctx context.Context) (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}

	activities, ok := value.([]models.Activity)
	if !ok {
		s.cache.InvalidateCatalog()
		return s.load(ctx)
	}
	// Копия, чтобы вызывающий код не портил закешированный срез.
	return append([]models.Activity(nil), activities...), nil
}

func (s *CatalogService) load(ctx context.Context) ([]models.Activity, error) {
	activities, err := s.activities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog service: %w", err)
	}
	return activities, nil
}

// Detail возвращает активность и признак избранного для текущего посетителя.
// У анонима IsFavorite всегда false.
func (s *CatalogService) Detail(ctx context.Context, identity auth.Identity, id int64) (*models.ActivityDetail, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return nil, apperror.ErrActivityNotFound
		}
		return nil, fmt.Errorf("catalog service: %w", err)
	}

	detail := &models.ActivityDetail{Activity: activity}

	if user, ok := auth.UserOf(identity); ok {
		favorite, err := s.favorites.Exists(ctx, user.UserID, activity.ID)
		if err != nil {
			return nil, fmt.Errorf("catalog service: %w", err)
		}
		detail.IsFavorite = favorite
	}

	return detail, nil
}

// Favorites возвращает избранные активности пользователя.
func (s *CatalogService) Favorites(ctx context.Context, identity auth.Identity) ([]models.Activity, error) {
	user, ok := auth.UserOf(identity)
	if !ok {
		return nil, apperror.ErrUnauthenticated
	}

	activities, err := s.activities.ListFavoritedBy(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("catalog service: %w", err)
	}
	return activities, nil
}
