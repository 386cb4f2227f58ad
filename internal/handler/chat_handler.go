package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/lostandfound/backend/internal/dto"
	"github.com/lostandfound/backend/internal/middleware"
	"github.com/lostandfound/backend/internal/validation"
)

type ChatService interface {
	SendMessage(ctx context.Context, callerID, callerUsername, recipientID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetChats(ctx context.Context, callerID string, pageNumber, pageSize int) ([]dto.ChatResponse, dto.PaginationMetadata, error)
	GetMessages(ctx context.Context, callerID, recipientID string, pageNumber, pageSize int) ([]dto.MessageResponse, dto.PaginationMetadata, error)
	GetUnreadChatsCount(ctx context.Context, callerID string) (*dto.UnreadChatsCount, error)
}

// ChatHandler handles chat endpoints. Conversations are addressed by the other user's id.
type ChatHandler struct {
	chats           ChatService
	validator       *validation.Validator
	defaultPageSize int
	maxPageSize     int
}

func NewChatHandler(chats ChatService, validator *validation.Validator, defaultPageSize, maxPageSize int) *ChatHandler {
	return &ChatHandler{
		chats:           chats,
		validator:       validator,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// GetChats handles GET /v1/chats
func (h *ChatHandler) GetChats(c *fiber.Ctx) error {
	pageNumber, pageSize, err := parsePaging(c, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		return respondError(c, err)
	}

	chats, meta, err := h.chats.GetChats(c.UserContext(), middleware.GetUserID(c), pageNumber, pageSize)
	if err != nil {
		return respondError(c, err)
	}

	if err := setPaginationHeader(c, meta); err != nil {
		return err
	}
	return c.JSON(chats)
}

// GetUnreadCount handles GET /v1/chats/unread
func (h *ChatHandler) GetUnreadCount(c *fiber.Ctx) error {
	out, err := h.chats.GetUnreadChatsCount(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetMessages handles GET /v1/chats/:userId/messages
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	pageNumber, pageSize, err := parsePaging(c, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		return respondError(c, err)
	}

	messages, meta, err := h.chats.GetMessages(c.UserContext(), middleware.GetUserID(c), c.Params("userId"), pageNumber, pageSize)
	if err != nil {
		return respondError(c, err)
	}

	if err := setPaginationHeader(c, meta); err != nil {
		return err
	}
	return c.JSON(messages)
}

// SendMessage handles POST /v1/chats/:userId/messages
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	if err := h.validator.Struct(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	out, err := h.chats.SendMessage(c.UserContext(), middleware.GetUserID(c), middleware.GetUsername(c), c.Params("userId"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
