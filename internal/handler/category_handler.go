package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/lostandfound/backend/internal/dto"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]dto.Category, error)
}

// CategoryHandler serves the category catalogue
type CategoryHandler struct {
	categories CategoryService
}

func NewCategoryHandler(categories CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// ListCategories handles GET /v1/categories
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categories.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}
