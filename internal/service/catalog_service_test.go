package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/turismo/internal/auth"
	"github.com/ignatzorin/turismo/internal/models"
	"github.com/ignatzorin/turismo/internal/pkg/apperror"
	"github.com/ignatzorin/turismo/internal/repository"
)

type mockActivityRepo struct {
	mock.Mock
}

func (m *mockActivityRepo) List(ctx context.Context) ([]models.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *mockActivityRepo) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Activity), args.Error(1)
}

func (m *mockActivityRepo) ListFavoritedBy(ctx context.Context, userID int64) ([]models.Activity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *mockActivityRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockActivityRepo) CreateBatch(ctx context.Context, activities []models.Activity) error {
	args := m.Called(ctx, activities)
	return args.Error(0)
}

type mockFavoriteRepo struct {
	mock.Mock
}

func (m *mockFavoriteRepo) Exists(ctx context.Context, userID, activityID int64) (bool, error) {
	args := m.Called(ctx, userID, activityID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFavoriteRepo) Toggle(ctx context.Context, userID, activityID int64) (bool, error) {
	args := m.Called(ctx, userID, activityID)
	return args.Bool(0), args.Error(1)
}

func alice() auth.Authenticated {
	return auth.Authenticated{UserID: 7, Username: "alice", SessionID: uuid.New()}
}

func TestCatalogService_ListIsCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := new(mockActivityRepo)
	repo.On("List", mock.Anything).Return([]models.Activity{{ID: 1, Name: "Рафтинг"}}, nil).Once()

	svc := NewCatalogService(repo, new(mockFavoriteRepo), NewCacheService(ctx), time.Minute)

	first, err := svc.List(ctx)
	require.NoError(t, err)
	second, err := svc.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 1)
	repo.AssertNumberOfCalls(t, "List", 1)
}

func TestCatalogService_ListError(t *testing.T) {
	repo := new(mockActivityRepo)
	repo.On("List", mock.Anything).Return(nil, errors.New("db down"))

	svc := NewCatalogService(repo, new(mockFavoriteRepo), nil, 0)
	_, err := svc.List(context.Background())
	assert.Error(t, err)
}

func TestCatalogService_DetailNotFound(t *testing.T) {
	repo := new(mockActivityRepo)
	repo.On("GetByID", mock.Anything, int64(9999)).Return(nil, repository.ErrActivityNotFound)

	svc := NewCatalogService(repo, new(mockFavoriteRepo), nil, 0)
	_, err := svc.Detail(context.Background(), auth.Anonymous{}, 9999)
	assert.ErrorIs(t, err, apperror.ErrActivityNotFound)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCatalogService_DetailAnonymousNeverFavorite(t *testing.T) {
	repo := new(mockActivityRepo)
	favs := new(mockFavoriteRepo)
	repo.On("GetByID", mock.Anything, int64(1)).Return(&models.Activity{ID: 1}, nil)

	svc := NewCatalogService(repo, favs, nil, 0)
	detail, err := svc.Detail(context.Background(), auth.Anonymous{}, 1)
	require.NoError(t, err)
	assert.False(t, detail.IsFavorite)
	favs.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_DetailFavorite(t *testing.T) {
	repo := new(mockActivityRepo)
	favs := new(mockFavoriteRepo)
	repo.On("GetByID", mock.Anything, int64(1)).Return(&models.Activity{ID: 1}, nil)
	favs.On("Exists", mock.Anything, int64(7), int64(1)).Return(true, nil)

	svc := NewCatalogService(repo, favs, nil, 0)
	detail, err := svc.Detail(context.Background(), alice(), 1)
	require.NoError(t, err)
	assert.True(t, detail.IsFavorite)
}

func TestCatalogService_FavoritesEmpty(t *testing.T) {
	repo := new(mockActivityRepo)
	repo.On("ListFavoritedBy", mock.Anything, int64(7)).Return([]models.Activity{}, nil)

	svc := NewCatalogService(repo, new(mockFavoriteRepo), nil, 0)
	activities, err := svc.Favorites(context.Background(), alice())
	require.NoError(t, err)
	assert.NotNil(t, activities)
	assert.Empty(t, activities)

	_, err = svc.Favorites(context.Background(), auth.Anonymous{})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}
