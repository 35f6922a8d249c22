package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/turismo/internal/models"
	"github.com/ignatzorin/turismo/internal/repository/common"
)

// ErrActivityNotFound возвращается, когда активности с таким ID нет.
var ErrActivityNotFound = errors.New("activity not found")

const activityColumns = "id, name, description, location, created_at"

type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List возвращает все активности каталога.
func (r *ActivityRepository) List(ctx context.Context) ([]models.Activity, error) {
	activities := []models.Activity{}
	err := r.db.SelectContext(ctx, &activities, `SELECT `+activityColumns+` FROM activities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("activity repository: list %w", err)
	}
	return activities, nil
}

// GetByID возвращает активность по ID.
func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	return common.GetByID[models.Activity](ctx, r.db, "activities", activityColumns, id, ErrActivityNotFound)
}

// ListFavoritedBy возвращает активности, отмеченные пользователем, новые отметки первыми.
func (r *ActivityRepository) ListFavoritedBy(ctx context.Context, userID int64) ([]models.Activity, error) {
	activities := []models.Activity{}
	err := r.db.SelectContext(ctx, &activities, `
		SELECT a.id, a.name, a.description, a.location, a.created_at
		FROM activities a
		JOIN favorites f ON f.activity_id = a.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, a.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("activity repository: list favorited %w", err)
	}
	return activities, nil
}

// Count возвращает количество активностей в каталоге.
func (r *ActivityRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM activities`); err != nil {
		return 0, fmt.Errorf("activity repository: count %w", err)
	}
	return n, nil
}

// CreateBatch вставляет активности одной транзакцией.
func (r *ActivityRepository) CreateBatch(ctx context.Context, activities []models.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		inserter := common.NewBatchInserter(tx, `INSERT INTO activities (name, description, location)`, 3, 50)
		for _, a := range activities {
			if err := inserter.Add(ctx, a.Name, a.Description, a.Location); err != nil {
				return fmt.Errorf("activity repository: create batch %w", err)
			}
		}
		if err := inserter.Flush(ctx); err != nil {
			return fmt.Errorf("activity repository: create batch %w", err)
		}
		return nil
	})
}
