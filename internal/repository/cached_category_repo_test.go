package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCategoryRepo struct {
	categories map[string]*domain.Category
	gets       int
	lists      int
}

func (r *countingCategoryRepo) GetByExposedID(_ context.Context, id string) (*domain.Category, error) {
	r.gets++
	return r.categories[id], nil
}

func (r *countingCategoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	c, err := r.GetByExposedID(ctx, id)
	return c != nil, err
}

func (r *countingCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	r.lists++
	out := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *countingCategoryRepo) Upsert(_ context.Context, c *domain.Category) error {
	r.categories[c.ExposedID] = c
	return nil
}

func newCachedCategories(t *testing.T) (*CachedCategoryRepository, *countingCategoryRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingCategoryRepo{categories: map[string]*domain.Category{
		"cat-1": {ID: "65f000000000000000000001", ExposedID: "cat-1", DisplayName: "Electronics"},
	}}
	return NewCachedCategoryRepository(inner, NewRedisCacheRepository(client)), inner, mr
}

func TestCachedCategoryRepository_GetByExposedID(t *testing.T) {
	repo, inner, mr := newCachedCategories(t)
	ctx := context.Background()

	first, err := repo.GetByExposedID(ctx, "cat-1")
	require.NoError(t, err)
	second, err := repo.GetByExposedID(ctx, "cat-1")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.gets, "second read is served from Redis")
	assert.Equal(t, first, second)
	assert.Equal(t, "65f000000000000000000001", second.ID)
	assert.True(t, mr.Exists(categoryByIDKeyPrefix+"cat-1"))

	mr.FastForward(categoryCacheTTL + time.Second)
	_, err = repo.GetByExposedID(ctx, "cat-1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.gets)
}

func TestCachedCategoryRepository_MissIsNotCached(t *testing.T) {
	repo, inner, mr := newCachedCategories(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "cat-404")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(categoryByIDKeyPrefix+"cat-404"))

	_, _ = repo.Exists(ctx, "cat-404")
	assert.Equal(t, 2, inner.gets)
}

func TestCachedCategoryRepository_ListAndUpsert(t *testing.T) {
	repo, inner, mr := newCachedCategories(t)
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.lists)

	require.NoError(t, repo.Upsert(ctx, &domain.Category{ExposedID: "cat-2", DisplayName: "Documents"}))
	assert.False(t, mr.Exists(categoryListKey))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, inner.lists)
}

func TestCachedCategoryRepository_RedisDownFallsThrough(t *testing.T) {
	repo, inner, mr := newCachedCategories(t)
	mr.Close()

	c, err := repo.GetByExposedID(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.Equal(t, "Electronics", c.DisplayName)
	assert.Equal(t, 1, inner.gets)
}
