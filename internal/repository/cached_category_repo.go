package repository

import (
	"context"
	"time"

	"github.com/lostandfound/backend/internal/domain"
)

const (
	categoryByIDKeyPrefix = "category:id:"
	categoryListKey       = "category:all"
	categoryCacheTTL      = 10 * time.Minute
)

// CachedCategoryRepository wraps a category repository with Redis caching.
// Categories change only through the seeder, so a short TTL is the only invalidation
// besides Upsert.
type CachedCategoryRepository struct {
	inner domain.CategoryRepository
	cache *RedisCacheRepository
}

// NewCachedCategoryRepository creates a new cached category repository
func NewCachedCategoryRepository(inner domain.CategoryRepository, cache *RedisCacheRepository) *CachedCategoryRepository {
	return &CachedCategoryRepository{
		inner: inner,
		cache: cache,
	}
}

// GetByExposedID retrieves a category with caching. Misses are not cached.
func (r *CachedCategoryRepository) GetByExposedID(ctx context.Context, id string) (*domain.Category, error) {
	key := categoryByIDKeyPrefix + id

	var cached categoryCacheEntry
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		return cached.toDomain(), nil
	}

	result, err := r.inner.GetByExposedID(ctx, id)
	if err != nil || result == nil {
		return result, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, cachedCategory(result), categoryCacheTTL)
	return result, nil
}

func (r *CachedCategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	category, err := r.GetByExposedID(ctx, id)
	if err != nil {
		return false, err
	}
	return category != nil, nil
}

// List retrieves all categories with caching
func (r *CachedCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var cached []categoryCacheEntry
	if err := r.cache.Get(ctx, categoryListKey, &cached); err == nil {
		categories := make([]*domain.Category, 0, len(cached))
		for _, c := range cached {
			categories = append(categories, c.toDomain())
		}
		return categories, nil
	}

	result, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]categoryCacheEntry, 0, len(result))
	for _, c := range result {
		entries = append(entries, cachedCategory(c))
	}
	_ = r.cache.Set(ctx, categoryListKey, entries, categoryCacheTTL)
	return result, nil
}

// Upsert writes through and invalidates the affected keys
func (r *CachedCategoryRepository) Upsert(ctx context.Context, category *domain.Category) error {
	if err := r.inner.Upsert(ctx, category); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, categoryByIDKeyPrefix+category.ExposedID, categoryListKey)
	return nil
}

// categoryCacheEntry keeps the internal id, which the domain type hides from JSON
type categoryCacheEntry struct {
	ID          string `json:"internal_id"`
	ExposedID   string `json:"id"`
	DisplayName string `json:"display_name"`
}

func cachedCategory(c *domain.Category) categoryCacheEntry {
	return categoryCacheEntry{ID: c.ID, ExposedID: c.ExposedID, DisplayName: c.DisplayName}
}

func (e categoryCacheEntry) toDomain() *domain.Category {
	return &domain.Category{ID: e.ID, ExposedID: e.ExposedID, DisplayName: e.DisplayName}
}
