package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignatzorin/turismo/internal/auth"
	"github.com/ignatzorin/turismo/internal/logger"
	"github.com/ignatzorin/turismo/internal/models"
	"github.com/ignatzorin/turismo/internal/pkg/apperror"
	"github.com/ignatzorin/turismo/internal/repository"
)

// FavoriteToggler переключает отметку избранного.
type FavoriteToggler interface {
	Toggle(ctx context.Context, userID, activityID int64) (bool, error)
}

// ActivityLookup находит активность по ID.
type ActivityLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
}

type FavoriteService struct {
	favorites  FavoriteToggler
	activities ActivityLookup
}

func NewFavoriteService(favorites FavoriteToggler, activities ActivityLookup) *FavoriteService {
	return &FavoriteService{favorites: favorites, activities: activities}
}

// Toggle добавляет активность в избранное или убирает из него.
// Возвращает true, если после вызова активность в избранном.
func (s *FavoriteService) Toggle(ctx context.Context, identity auth.Identity, activityID int64) (bool, error) {
	user, ok := auth.UserOf(identity)
	if !ok {
		return false, apperror.ErrUnauthenticated
	}

	if _, err := s.activities.GetByID(ctx, activityID); err != nil {
		if errors.Is(err, repository.ErrActivityNotFound) {
			return false, apperror.ErrActivityNotFound
		}
		return false, fmt.Errorf("favorite service: %w", err)
	}

	added, err := s.favorites.Toggle(ctx, user.UserID, activityID)
	if err != nil {
		// Активность могли удалить между проверкой и вставкой.
		if errors.Is(err, repository.ErrActivityNotFound) {
			return false, apperror.ErrActivityNotFound
		}
		return false, fmt.Errorf("favorite service: %w", err)
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"user_id":     user.UserID,
		"activity_id": activityID,
		"favorite":    added,
	}).Debug("favorite service: отметка переключена")

	return added, nil
}
