package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/turismo/internal/auth"
	"github.com/ignatzorin/turismo/internal/models"
	"github.com/ignatzorin/turismo/internal/pkg/apperror"
	"github.com/ignatzorin/turismo/internal/repository"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByName map[string]*models.User
	usersByID   map[int64]*models.User
	sessions    map[uuid.UUID]*models.Session
	nextID      int64
	createErr   error
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByName: make(map[string]*models.User),
		usersByID:   make(map[int64]*models.User),
		sessions:    make(map[uuid.UUID]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.usersByName[user.Username]; ok {
		return repository.ErrUsernameTaken
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.usersByName[user.Username] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := m.usersByName[username]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.CreatedAt = time.Now()
	m.sessions[session.ID] = session
	return nil
}

func (m *mockAuthRepository) GetActiveSession(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
	if s, ok := m.sessions[id]; ok && !s.Expired(now) {
		return s, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockAuthRepository) DeleteExpiredSessions(ctx context.Context, userID int64, now time.Time) (int64, error) {
	var n int64
	for id, s := range m.sessions {
		if s.UserID == userID && s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func newTestAuthService(repo *mockAuthRepository) *AuthService {
	return NewAuthService(repo, NewSessionManager("test-secret"), time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))

	res, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret"}, SessionMeta{UserAgent: "test", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Len(t, repo.sessions, 1)

	identity, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	authenticated, ok := auth.UserOf(identity)
	require.True(t, ok)
	assert.Equal(t, user.ID, authenticated.UserID)
	assert.Equal(t, "alice", authenticated.Username)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "another"})
	assert.ErrorIs(t, err, apperror.ErrDuplicateUsername)
	assert.Len(t, repo.usersByID, 1)
}

func TestAuthService_RegisterDuplicateRace(t *testing.T) {
	repo := newMockAuthRepository()
	repo.createErr = repository.ErrUsernameTaken
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "secret"})
	assert.ErrorIs(t, err, apperror.ErrDuplicateUsername)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "al", Password: "secret"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "123"})
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"}, SessionMeta{})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "secret"}, SessionMeta{})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	assert.Empty(t, repo.sessions)
}

func TestAuthService_LoginRemovesExpiredSessions(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	stale := uuid.New()
	repo.sessions[stale] = &models.Session{ID: stale, UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)}

	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "secret"}, SessionMeta{})
	require.NoError(t, err)

	assert.NotContains(t, repo.sessions, stale)
	assert.Len(t, repo.sessions, 1)
}

func TestAuthService_LoginRevokesCurrentSession(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	first, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret"}, SessionMeta{})
	require.NoError(t, err)
	current, err := svc.Resolve(ctx, first.Token)
	require.NoError(t, err)

	second, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret"}, SessionMeta{Current: current})
	require.NoError(t, err)
	assert.Len(t, repo.sessions, 1)

	identity, err := svc.Resolve(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Anonymous{}, identity)

	identity, err = svc.Resolve(ctx, second.Token)
	require.NoError(t, err)
	_, ok := auth.UserOf(identity)
	assert.True(t, ok)
}

func TestAuthService_Logout(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret"}, SessionMeta{})
	require.NoError(t, err)

	identity, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, identity))
	assert.Empty(t, repo.sessions)

	// После выхода тот же cookie уже не аутентифицирует.
	identity, err = svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Anonymous{}, identity)

	assert.NoError(t, svc.Logout(ctx, auth.Anonymous{}))
}

func TestAuthService_ResolveAnonymous(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	for _, token := range []string{"", "garbage"} {
		identity, err := svc.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, auth.Anonymous{}, identity)
	}

	// Подпись чужим ключом.
	foreign, err := NewSessionManager("other").IssueSessionToken(&models.Session{
		ID: uuid.New(), UserID: 1, ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	identity, err := svc.Resolve(ctx, foreign)
	require.NoError(t, err)
	assert.Equal(t, auth.Anonymous{}, identity)
}

func TestAuthService_ResolveExpiredSession(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret"}, SessionMeta{})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	identity, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Anonymous{}, identity)
}

type failingSessionRepo struct {
	*mockAuthRepository
}

func (f failingSessionRepo) GetActiveSession(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
	return nil, errors.New("connection refused")
}

func TestAuthService_ResolveStorageError(t *testing.T) {
	repo := newMockAuthRepository()
	svc := NewAuthService(failingSessionRepo{repo}, NewSessionManager("test-secret"), time.Hour)

	token, err := NewSessionManager("test-secret").IssueSessionToken(&models.Session{
		ID: uuid.New(), UserID: 1, ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	identity, err := svc.Resolve(context.Background(), token)
	assert.Error(t, err)
	assert.Equal(t, auth.Anonymous{}, identity)
}
