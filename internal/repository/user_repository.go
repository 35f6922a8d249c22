package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/turismo/internal/models"
	"github.com/ignatzorin/turismo/internal/repository/common"
)

var (
	// ErrUserNotFound возвращается, когда запись пользователя не найдена.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken возвращается при нарушении уникальности username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrSessionNotFound возвращается, когда сессии нет или она истекла.
	ErrSessionNotFound = errors.New("session not found")
)

const userColumns = "id, username, password_hash, created_at"

// UserRepository отвечает за работу с таблицами users и user_sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create сохраняет пользователя и заполняет ID и CreatedAt.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByUsername возвращает пользователя по имени.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", userColumns, "username", username, ErrUserNotFound)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", userColumns, id, ErrUserNotFound)
}

// CreateSession сохраняет серверную запись сессии.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	query := `
		INSERT INTO user_sessions (id, user_id, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		session.ID, session.UserID, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// GetActiveSession возвращает неистёкшую сессию по ID.
func (r *UserRepository) GetActiveSession(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
	var session models.Session
	query := `
		SELECT id, user_id, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE id = $1 AND expires_at > $2
	`
	if err := r.db.GetContext(ctx, &session, query, id, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("user repository: get session %w", err)
	}

	return &session, nil
}

// DeleteSession удаляет сессию. Отсутствие сессии ошибкой не считается.
func (r *UserRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}

// DeleteExpiredSessions чистит истёкшие сессии пользователя.
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, userID int64, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1 AND expires_at <= $2`, userID, now)
	if err != nil {
		return 0, fmt.Errorf("user repository: delete expired sessions %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
