package handler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
	"github.com/lostandfound/backend/internal/middleware"
	"github.com/lostandfound/backend/internal/validation"
)

// PublicationService is the workflow the publication endpoints drive
type PublicationService interface {
	CreatePublication(ctx context.Context, callerID, username string, req *dto.CreatePublicationRequest, photo *domain.File) (*dto.PublicationDetails, error)
	UpdatePublicationPhoto(ctx context.Context, photo *domain.File, callerID, publicationID string) (*dto.PublicationDetails, error)
	DeletePublicationPhoto(ctx context.Context, callerID, publicationID string) error
	UpdatePublicationDetails(ctx context.Context, callerID, publicationID string, req *dto.UpdatePublicationDetailsRequest) (*dto.PublicationDetails, error)
	DeletePublication(ctx context.Context, callerID, publicationID string) error
	GetPublications(ctx context.Context, callerID string, params *dto.PublicationsResourceParameters) ([]dto.PublicationBaseData, dto.PaginationMetadata, error)
	UpdatePublicationState(ctx context.Context, callerID, publicationID string, req *dto.UpdatePublicationStateRequest) (*dto.PublicationDetails, error)
	UpdatePublicationRating(ctx context.Context, callerID, publicationID string, req *dto.UpdatePublicationRatingRequest) (*dto.PublicationDetails, error)
	GetPublicationDetails(ctx context.Context, callerID, publicationID string) (*dto.PublicationDetails, error)
}

// PublicationHandler handles HTTP requests for publications
type PublicationHandler struct {
	publications    PublicationService
	validator       *validation.Validator
	maxUploadMB     int64
	defaultPageSize int
}

// NewPublicationHandler creates a new publication handler
func NewPublicationHandler(publications PublicationService, validator *validation.Validator, maxUploadMB int64, defaultPageSize int) *PublicationHandler {
	return &PublicationHandler{
		publications:    publications,
		validator:       validator,
		maxUploadMB:     maxUploadMB,
		defaultPageSize: defaultPageSize,
	}
}

// GetPublications handles GET /v1/publications
func (h *PublicationHandler) GetPublications(c *fiber.Ctx) error {
	params, err := parseResourceParameters(c, h.defaultPageSize)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.validator.ResourceParameters(c.UserContext(), &params); err != nil {
		return respondError(c, err)
	}

	page, meta, err := h.publications.GetPublications(c.UserContext(), middleware.GetUserID(c), &params)
	if err != nil {
		return respondError(c, err)
	}

	if err := setPaginationHeader(c, meta); err != nil {
		return err
	}
	return c.JSON(page)
}

// CreatePublication handles POST /v1/publications.
// Accepts a JSON body, or multipart with a "data" JSON field and an optional "photo" file.
func (h *PublicationHandler) CreatePublication(c *fiber.Ctx) error {
	var req dto.CreatePublicationRequest
	var photo *domain.File

	if isMultipart(c) {
		data := c.FormValue("data")
		if data == "" {
			return badRequest(c, "Missing 'data' field in form data.")
		}
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			return badRequest(c, "Invalid publication data.")
		}
		file, err := readFormFile(c, "photo", h.maxUploadMB)
		if err != nil {
			return respondError(c, err)
		}
		photo = file
	} else if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}

	if err := h.validator.Struct(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	out, err := h.publications.CreatePublication(c.UserContext(), middleware.GetUserID(c), middleware.GetUsername(c), &req, photo)
	if err != nil {
		return respondError(c, err)
	}

	c.Location("/v1/publications/" + out.PublicationID)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetPublication handles GET /v1/publications/:id
func (h *PublicationHandler) GetPublication(c *fiber.Ctx) error {
	out, err := h.publications.GetPublicationDetails(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdatePublication handles PUT /v1/publications/:id
func (h *PublicationHandler) UpdatePublication(c *fiber.Ctx) error {
	var req dto.UpdatePublicationDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	if err := h.validator.Struct(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	out, err := h.publications.UpdatePublicationDetails(c.UserContext(), middleware.GetUserID(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeletePublication handles DELETE /v1/publications/:id
func (h *PublicationHandler) DeletePublication(c *fiber.Ctx) error {
	if err := h.publications.DeletePublication(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdatePhoto handles PUT /v1/publications/:id/photo
func (h *PublicationHandler) UpdatePhoto(c *fiber.Ctx) error {
	photo, err := readFormFile(c, "photo", h.maxUploadMB)
	if err != nil {
		return respondError(c, err)
	}
	if photo == nil {
		return badRequest(c, "Missing 'photo' field in form data.")
	}

	out, err := h.publications.UpdatePublicationPhoto(c.UserContext(), photo, middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeletePhoto handles DELETE /v1/publications/:id/photo
func (h *PublicationHandler) DeletePhoto(c *fiber.Ctx) error {
	if err := h.publications.DeletePublicationPhoto(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateState handles PATCH /v1/publications/:id/state
func (h *PublicationHandler) UpdateState(c *fiber.Ctx) error {
	var req dto.UpdatePublicationStateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	if err := h.validator.Struct(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	out, err := h.publications.UpdatePublicationState(c.UserContext(), middleware.GetUserID(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateRating handles PATCH /v1/publications/:id/rating
func (h *PublicationHandler) UpdateRating(c *fiber.Ctx) error {
	var req dto.UpdatePublicationRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	if err := h.validator.Struct(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	out, err := h.publications.UpdatePublicationRating(c.UserContext(), middleware.GetUserID(c), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// parseResourceParameters reads listing query parameters over the defaults.
// Dates accept RFC 3339 or a plain 2006-01-02 day.
func parseResourceParameters(c *fiber.Ctx, defaultPageSize int) (dto.PublicationsResourceParameters, error) {
	params := dto.DefaultResourceParameters(defaultPageSize)

	if raw := c.Query("pageNumber"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, domain.BadRequest("pageNumber must be an integer.")
		}
		params.PageNumber = n
	}
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, domain.BadRequest("pageSize must be an integer.")
		}
		params.PageSize = n
	}
	if raw := c.Query("onlyUserPublications"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return params, domain.BadRequest("onlyUserPublications must be a boolean.")
		}
		params.OnlyUserPublications = b
	}
	if raw := c.Query("subjectCategoryId"); raw != "" {
		params.SubjectCategoryID = &raw
	}
	if raw := c.Query("publicationState"); raw != "" {
		params.PublicationState = dto.PublicationState(raw)
	}
	if raw := c.Query("publicationType"); raw != "" {
		params.PublicationType = dto.PublicationType(raw)
	}
	params.SearchQuery = c.Query("searchQuery")

	var err error
	if params.FromDate, err = parseDateParam(c.Query("fromDate"), "fromDate", false); err != nil {
		return params, err
	}
	if params.ToDate, err = parseDateParam(c.Query("toDate"), "toDate", true); err != nil {
		return params, err
	}
	return params, nil
}

// parseDateParam accepts RFC3339 timestamps or plain dates.
// A plain date means the start of that day, or its last instant when endOfDay is set.
func parseDateParam(raw, name string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, nil
	}
	return nil, domain.BadRequest(name + " must be a date.")
}

// parsePaging reads pageNumber and pageSize, rejecting pages outside [1, maxPageSize]
func parsePaging(c *fiber.Ctx, defaultPageSize, maxPageSize int) (int, int, error) {
	pageNumber := c.QueryInt("pageNumber", 1)
	pageSize := c.QueryInt("pageSize", defaultPageSize)
	if pageNumber < 1 || pageSize < 1 || pageSize > maxPageSize {
		return 0, 0, domain.BadRequest("Invalid paging parameters.")
	}
	return pageNumber, pageSize, nil
}

func setPaginationHeader(c *fiber.Ctx, meta dto.PaginationMetadata) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	c.Set("X-Pagination", string(raw))
	return nil
}
