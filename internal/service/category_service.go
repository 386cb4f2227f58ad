package service

import (
	"context"
	"fmt"

	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
)

// CategoryService exposes the category catalogue
type CategoryService struct {
	categories domain.CategoryRepository
}

func NewCategoryService(categories domain.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]dto.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	out := make([]dto.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryDTO(c))
	}
	return out, nil
}
