package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/turismo/internal/auth"
	"github.com/ignatzorin/turismo/internal/logger"
	"github.com/ignatzorin/turismo/internal/models"
	"github.com/ignatzorin/turismo/internal/pkg/apperror"
	"github.com/ignatzorin/turismo/internal/repository"
	"github.com/ignatzorin/turismo/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	CreateSession(ctx context.Context, session *models.Session) error
	GetActiveSession(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	DeleteExpiredSessions(ctx context.Context, userID int64, now time.Time) (int64, error)
}

// AuthService инкапсулирует регистрацию, вход и выход.
type AuthService struct {
	repo       AuthRepository
	sessions   *SessionManager
	sessionTTL time.Duration
	now        func() time.Time
}

// RegisterInput содержит данные формы регистрации.
type RegisterInput struct {
	Username string
	Password string
}

// LoginInput содержит данные формы входа.
type LoginInput struct {
	Username string
	Password string
}

// SessionMeta содержит сведения о браузере, сохраняемые вместе с сессией.
type SessionMeta struct {
	UserAgent string
	IP        string
	// Current это личность, с которой пришёл запрос на вход. Её сессия закрывается.
	Current   auth.Identity
}

// LoginResult возвращает пользователя и значение cookie сессии.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, sessions *SessionManager, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Register создаёт пользователя с bcrypt-хешем пароля.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := validation.NormalizeUsername(in.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Validation(err)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, apperror.ErrDuplicateUsername
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(passHash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Гонка двух регистраций ловится уникальным индексом.
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, apperror.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("auth service: %w", err)
	}

	logger.WithContext(ctx).WithField("user_id", user.ID).Info("auth service: пользователь зарегистрирован")
	return user, nil
}

// Login проверяет учётные данные и открывает сессию.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta SessionMeta) (*LoginResult, error) {
	username := validation.NormalizeUsername(in.Username)
	if username == "" || in.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	s.revokeCurrent(ctx, meta.Current)

	now := s.now()
	if _, err := s.repo.DeleteExpiredSessions(ctx, user.ID, now); err != nil {
		// Не критично для входа.
		logger.WithContext(ctx).WithFields(map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось удалить истёкшие сессии")
	}

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if meta.UserAgent != "" {
		session.UserAgent = &meta.UserAgent
	}
	if meta.IP != "" {
		session.IPAddress = &meta.IP
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	token, err := s.sessions.IssueSessionToken(session)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// revokeCurrent закрывает сессию, которую заменяет новый вход. Ошибка только логируется.
func (s *AuthService) revokeCurrent(ctx context.Context, identity auth.Identity) {
	current, ok := auth.UserOf(identity)
	if !ok {
		return
	}
	if err := s.repo.DeleteSession(ctx, current.SessionID); err != nil {
		logger.WithContext(ctx).WithFields(map[string]interface{}{
			"user_id": current.UserID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось закрыть предыдущую сессию")
	}
}

// Logout закрывает серверную сессию, если она есть. Для анонима ничего не делает.
func (s *AuthService) Logout(ctx context.Context, identity auth.Identity) error {
	user, ok := auth.UserOf(identity)
	if !ok {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, user.SessionID); err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	return nil
}

// Resolve превращает значение cookie в Identity.
// Невалидный токен, истёкшая или удалённая сессия дают Anonymous без ошибки.
func (s *AuthService) Resolve(ctx context.Context, token string) (auth.Identity, error) {
	if token == "" {
		return auth.Anonymous{}, nil
	}

	sessionID, userID, err := s.sessions.ParseSessionToken(token)
	if err != nil {
		return auth.Anonymous{}, nil
	}

	session, err := s.repo.GetActiveSession(ctx, sessionID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return auth.Anonymous{}, nil
		}
		return auth.Anonymous{}, fmt.Errorf("auth service: %w", err)
	}
	if session.UserID != userID {
		return auth.Anonymous{}, nil
	}

	user, err := s.repo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return auth.Anonymous{}, nil
		}
		return auth.Anonymous{}, fmt.Errorf("auth service: %w", err)
	}

	return auth.Authenticated{
		UserID:    user.ID,
		Username:  user.Username,
		SessionID: session.ID,
	}, nil
}
