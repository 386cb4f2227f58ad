package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/validation"
)

// MapHTTPStatus maps workflow errors to response codes. Anything unclassified is a 500.
func MapHTTPStatus(err error) int {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}
	kind, ok := domain.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes classified errors directly and hands the rest to the app ErrorHandler
func respondError(c *fiber.Ctx, err error) error {
	status := MapHTTPStatus(err)
	if status == http.StatusInternalServerError {
		return err
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.Status(status).JSON(fiber.Map{
			"error":  "Validation failed",
			"errors": verrs,
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
