package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
	"github.com/lostandfound/backend/internal/middleware"
	"github.com/lostandfound/backend/internal/validation"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*dto.ProfileDetails, error)
	UpdateProfile(ctx context.Context, callerID string, req *dto.UpdateProfileRequest) (*dto.ProfileDetails, error)
	UpdateProfilePicture(ctx context.Context, callerID string, picture *domain.File) (*dto.ProfileDetails, error)
	DeleteProfilePicture(ctx context.Context, callerID string) error
	GetProfileComments(ctx context.Context, callerID, profileUserID string, pageNumber, pageSize int) (*dto.ProfileCommentsSection, dto.PaginationMetadata, error)
	AddComment(ctx context.Context, callerID, callerUsername, profileUserID string, req *dto.ProfileCommentRequest) (*dto.ProfileComment, error)
	UpdateComment(ctx context.Context, callerID, profileUserID string, req *dto.ProfileCommentRequest) (*dto.ProfileComment, error)
	DeleteComment(ctx context.Context, callerID, profileUserID string) error
}

// ProfileHandler handles profile and profile comment endpoints
type ProfileHandler struct {
	profiles        ProfileService
	validator       *validation.Validator
	maxUploadMB     int64
	defaultPageSize int
	maxPageSize     int
}

func NewProfileHandler(profiles ProfileService, validator *validation.Validator, maxUploadMB int64, defaultPageSize, maxPageSize int) *ProfileHandler {
	return &ProfileHandler{
		profiles:        profiles,
		validator:       validator,
		maxUploadMB:     maxUploadMB,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// GetMyProfile handles GET /v1/profiles/me
func (h *ProfileHandler) GetMyProfile(c *fiber.Ctx) error {
	out, err := h.profiles.GetProfile(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetProfile handles GET /v1/profiles/:userId
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	out, err := h.profiles.GetProfile(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateMyProfile handles PUT /v1/profiles/me
func (h *ProfileHandler) UpdateMyProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	if err := h.validator.Struct(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	out, err := h.profiles.UpdateProfile(c.UserContext(), middleware.GetUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdatePicture handles PUT /v1/profiles/me/picture
func (h *ProfileHandler) UpdatePicture(c *fiber.Ctx) error {
	picture, err := readFormFile(c, "picture", h.maxUploadMB)
	if err != nil {
		return respondError(c, err)
	}
	if picture == nil {
		return badRequest(c, "Missing 'picture' field in form data.")
	}

	out, err := h.profiles.UpdateProfilePicture(c.UserContext(), middleware.GetUserID(c), picture)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeletePicture handles DELETE /v1/profiles/me/picture
func (h *ProfileHandler) DeletePicture(c *fiber.Ctx) error {
	if err := h.profiles.DeleteProfilePicture(c.UserContext(), middleware.GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetComments handles GET /v1/profiles/:userId/comments
func (h *ProfileHandler) GetComments(c *fiber.Ctx) error {
	pageNumber, pageSize, err := parsePaging(c, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		return respondError(c, err)
	}

	section, meta, err := h.profiles.GetProfileComments(c.UserContext(), middleware.GetUserID(c), c.Params("userId"), pageNumber, pageSize)
	if err != nil {
		return respondError(c, err)
	}

	if err := setPaginationHeader(c, meta); err != nil {
		return err
	}
	return c.JSON(section)
}

// AddComment handles POST /v1/profiles/:userId/comments
func (h *ProfileHandler) AddComment(c *fiber.Ctx) error {
	req, err := h.parseComment(c)
	if err != nil {
		return respondError(c, err)
	}

	out, err := h.profiles.AddComment(c.UserContext(), middleware.GetUserID(c), middleware.GetUsername(c), c.Params("userId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateComment handles PUT /v1/profiles/:userId/comments
func (h *ProfileHandler) UpdateComment(c *fiber.Ctx) error {
	req, err := h.parseComment(c)
	if err != nil {
		return respondError(c, err)
	}

	out, err := h.profiles.UpdateComment(c.UserContext(), middleware.GetUserID(c), c.Params("userId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteComment handles DELETE /v1/profiles/:userId/comments
func (h *ProfileHandler) DeleteComment(c *fiber.Ctx) error {
	if err := h.profiles.DeleteComment(c.UserContext(), middleware.GetUserID(c), c.Params("userId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProfileHandler) parseComment(c *fiber.Ctx) (*dto.ProfileCommentRequest, error) {
	var req dto.ProfileCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, domain.BadRequest("Invalid request body.")
	}
	if err := h.validator.Struct(c.UserContext(), &req); err != nil {
		return nil, err
	}
	return &req, nil
}
