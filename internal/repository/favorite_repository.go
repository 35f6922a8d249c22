package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/turismo/internal/repository/common"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, activityID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND activity_id = $2)
	`, userID, activityID)
	if err != nil {
		return false, fmt.Errorf("favorite repository: exists %w", err)
	}
	return exists, nil
}

// Toggle удаляет отметку, если она есть, иначе добавляет. Возвращает новое состояние.
// Уникальный ключ (user_id, activity_id) не даёт двойному сабмиту создать дубль.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, activityID int64) (bool, error) {
	var added bool
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM favorites WHERE user_id = $1 AND activity_id = $2
		`, userID, activityID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added = false
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO favorites (user_id, activity_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, activity_id) DO NOTHING
		`, userID, activityID); err != nil {
			if common.IsForeignKeyViolation(err) {
				return ErrActivityNotFound
			}
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrActivityNotFound) {
			return false, err
		}
		return false, fmt.Errorf("favorite repository: toggle %w", err)
	}
	return added, nil
}
